// Package binhash computes and resolves the hashed identifiers used by
// the bin container format.
//
// Four 32-bit domains (entry paths, class names, field names, generic
// hash values) use an FNV-1a variant computed over the ASCII-lowercased
// input. A fifth 64-bit domain (path values, referencing assets in a
// sibling archive format) uses xxHash64 over the raw string and is
// case-sensitive.
//
// Each domain gets its own Go type so that hashes from different
// domains cannot be compared or mixed up, even where the bit width
// coincides.
package binhash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type (
	// EntryHash identifies a top-level entry by its path.
	EntryHash uint32
	// ClassHash identifies a struct/embed class name.
	ClassHash uint32
	// FieldHash identifies a field name within a class.
	FieldHash uint32
	// ValueHash is a generic hash-valued leaf inside entry data.
	ValueHash uint32
	// PathHash references an asset in the sibling archive format.
	PathHash uint64
)

const (
	fnvOffsetBasis uint32 = 0x811c9dc5
	fnvPrime       uint32 = 0x01000193
)

// Lowercased FNV-1a. The format hashes identifiers case-insensitively,
// so the input is folded before hashing.
func fnv1aLower(s string) uint32 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h = (h ^ uint32(c)) * fnvPrime
	}
	return h
}

func HashEntry(s string) EntryHash { return EntryHash(fnv1aLower(s)) }
func HashClass(s string) ClassHash { return ClassHash(fnv1aLower(s)) }
func HashField(s string) FieldHash { return FieldHash(fnv1aLower(s)) }
func HashValue(s string) ValueHash { return ValueHash(fnv1aLower(s)) }

// HashPath is case-sensitive, unlike the 32-bit domains.
func HashPath(s string) PathHash { return PathHash(xxhash.Sum64String(s)) }

// parseHex32 accepts exactly 8 hex chars, optionally {braced}.
func parseHex32(token string) (uint32, bool) {
	if len(token) == 10 && token[0] == '{' && token[9] == '}' {
		token = token[1:9]
	}
	if len(token) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(token, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func parseHex64(token string) (uint64, bool) {
	if len(token) == 18 && token[0] == '{' && token[17] == '}' {
		token = token[1:17]
	}
	if len(token) != 16 {
		return 0, false
	}
	v, err := strconv.ParseUint(token, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MakeEntry interprets token as a raw hex hash if it looks like one,
// and hashes it otherwise. Same for the other Make functions below.
func MakeEntry(token string) EntryHash {
	if v, ok := parseHex32(token); ok {
		return EntryHash(v)
	}
	return HashEntry(token)
}

func MakeClass(token string) ClassHash {
	if v, ok := parseHex32(token); ok {
		return ClassHash(v)
	}
	return HashClass(token)
}

func MakeField(token string) FieldHash {
	if v, ok := parseHex32(token); ok {
		return FieldHash(v)
	}
	return HashField(token)
}

func MakeValue(token string) ValueHash {
	if v, ok := parseHex32(token); ok {
		return ValueHash(v)
	}
	return HashValue(token)
}

func MakePath(token string) PathHash {
	if v, ok := parseHex64(token); ok {
		return PathHash(v)
	}
	return HashPath(token)
}

func hex32(v uint32) string {
	var b [8]byte
	putHex(b[:], uint64(v))
	return string(b[:])
}

func hex64(v uint64) string {
	var b [16]byte
	putHex(b[:], v)
	return string(b[:])
}

func putHex(dst []byte, v uint64) {
	const digits = "0123456789abcdef"
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = digits[v&0xF]
		v >>= 4
	}
}

// Hex returns the fixed-width lowercase hex form used in dictionary
// files and as the JSON key fallback.
func (h EntryHash) Hex() string { return hex32(uint32(h)) }
func (h ClassHash) Hex() string { return hex32(uint32(h)) }
func (h FieldHash) Hex() string { return hex32(uint32(h)) }
func (h ValueHash) Hex() string { return hex32(uint32(h)) }
func (h PathHash) Hex() string  { return hex64(uint64(h)) }

func (h EntryHash) String() string { return "{" + h.Hex() + "}" }
func (h ClassHash) String() string { return "{" + h.Hex() + "}" }
func (h FieldHash) String() string { return "{" + h.Hex() + "}" }
func (h ValueHash) String() string { return "{" + h.Hex() + "}" }
func (h PathHash) String() string  { return "{" + h.Hex() + "}" }

// Word constrains a hash type to its underlying machine word.
type Word interface {
	~uint32 | ~uint64
}

func hexWidth[H Word]() int {
	if uint64(^H(0)) == uint64(^uint32(0)) {
		return 8
	}
	return 16
}
