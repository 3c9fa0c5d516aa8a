package binhash

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// DictError reports a malformed dictionary line, keeping the offending
// line for diagnostics.
type DictError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *DictError) Unwrap() error {
	return e.Err
}

func (e *DictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: bad dictionary line %q: %v", e.File, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%s:%d: bad dictionary line %q", e.File, e.Line, e.Text)
}

func dictErrf(file string, line int, text string, err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf(format, args...)
	}
	return &DictError{file, line, text, err}
}

// Mapper resolves hashes of one domain back to their originating
// strings. It is populated once (from a dictionary file or by
// guessing) and is safe for concurrent readers once loaded; Insert
// requires a single writer.
type Mapper[H Word] struct {
	names map[H]string
	width int
}

func NewMapper[H Word]() *Mapper[H] {
	return &Mapper[H]{
		names: make(map[H]string),
		width: hexWidth[H](),
	}
}

func (m *Mapper[H]) Len() int {
	return len(m.names)
}

// Get returns the string h was computed from, if known.
func (m *Mapper[H]) Get(h H) (string, bool) {
	s, ok := m.names[h]
	return s, ok
}

func (m *Mapper[H]) IsKnown(h H) bool {
	_, ok := m.names[h]
	return ok
}

// Insert records name as the origin of h. The caller guarantees that
// name actually hashes to h; the mapper does not verify.
func (m *Mapper[H]) Insert(h H, name string) {
	m.names[h] = name
}

// Seek returns the resolved name, or the canonical {hex} placeholder
// when the hash is unknown. Every serializer renders hash identifiers
// through this one contract.
func (m *Mapper[H]) Seek(h H) string {
	if s, ok := m.names[h]; ok {
		return s
	}
	return "{" + m.Hex(h) + "}"
}

// Hex returns the fixed-width lowercase hex form of h.
func (m *Mapper[H]) Hex(h H) string {
	b := make([]byte, m.width)
	putHex(b, uint64(h))
	return string(b)
}

func (m *Mapper[H]) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Read(f, path)
}

// Read parses the line format: fixed-width lowercase hex, one space,
// the string. Lines too short to hold both parts are rejected.
func (m *Mapper[H]) Read(r io.Reader, name string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if len(line) < m.width+2 {
			return dictErrf(name, lineno, line, nil, "line shorter than %d chars", m.width+2)
		}
		if line[m.width] != ' ' {
			return dictErrf(name, lineno, line, nil, "missing separator after hash")
		}
		v, err := strconv.ParseUint(line[:m.width], 16, m.width*4)
		if err != nil {
			return dictErrf(name, lineno, line, err, "")
		}
		m.names[H(v)] = line[m.width+1:]
	}
	return scanner.Err()
}

func (m *Mapper[H]) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write emits entries sorted by string value, not by hash, so that
// dictionary diffs stay stable as names are discovered out of order.
func (m *Mapper[H]) Write(w io.Writer) error {
	type pair struct {
		hash H
		name string
	}
	pairs := make([]pair, 0, len(m.names))
	for h, s := range m.names {
		pairs = append(pairs, pair{h, s})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].name != pairs[j].name {
			return pairs[i].name < pairs[j].name
		}
		return pairs[i].hash < pairs[j].hash
	})
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		bw.WriteString(m.Hex(p.hash))
		bw.WriteByte(' ')
		bw.WriteString(p.name)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
