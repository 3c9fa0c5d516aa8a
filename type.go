package propbin

import "fmt"

// Type is the wire tag of a bin value. Every field carries one; the
// format is fully self-describing and needs no external schema.
type Type uint8

const (
	TypeNone   Type = 0
	TypeBool   Type = 1
	TypeS8     Type = 2
	TypeU8     Type = 3
	TypeS16    Type = 4
	TypeU16    Type = 5
	TypeS32    Type = 6
	TypeU32    Type = 7
	TypeS64    Type = 8
	TypeU64    Type = 9
	TypeFloat  Type = 10
	TypeVec2   Type = 11
	TypeVec3   Type = 12
	TypeVec4   Type = 13
	TypeMatrix Type = 14
	TypeColor  Type = 15
	TypeString Type = 16
	TypeHash   Type = 17
	TypePath   Type = 18
	TypeList   Type = 19
	// TypeList2 is a legacy synonym of TypeList; the decoder collapses
	// it, so decoded values never carry this tag.
	TypeList2  Type = 20
	TypeStruct Type = 21
	TypeEmbed  Type = 22
	TypeLink   Type = 23
	TypeOption Type = 24
	TypeMap    Type = 25
	TypeFlag   Type = 26

	typeMax = TypeFlag
)

var typeNames = [typeMax + 1]string{
	"NONE", "BOOL", "S8", "U8", "S16", "U16", "S32", "U32", "S64", "U64",
	"FLOAT", "VEC2", "VEC3", "VEC4", "MATRIX", "COLOR", "STRING", "HASH",
	"PATH", "LIST", "LIST2", "STRUCT", "EMBED", "LINK", "OPTION", "MAP",
	"FLAG",
}

func (t Type) String() string {
	if t > typeMax {
		return fmt.Sprintf("TYPE(%d)", uint8(t))
	}
	return typeNames[t]
}

func (t Type) valid() bool {
	return t <= typeMax
}

// IsContainer reports whether values of this type hold further values.
func (t Type) IsContainer() bool {
	switch t {
	case TypeList, TypeList2, TypeStruct, TypeEmbed, TypeOption, TypeMap:
		return true
	}
	return false
}

// IsKeyable reports whether this type may key a Map. The wire format
// restricts map keys to a closed scalar subset; containers, Link and
// Path never key a map.
func (t Type) IsKeyable() bool {
	switch t {
	case TypeS8, TypeU8, TypeS16, TypeU16, TypeS32, TypeU32, TypeS64, TypeU64,
		TypeFloat, TypeString, TypeHash:
		return true
	}
	return false
}

// typeFromWire decodes an on-disk tag byte. Tag bytes ≥ 0x80 are the
// older numbering for container types: subtract 0x80 and offset into
// the container range starting at LIST. The legacy LIST2 synonym is
// collapsed into LIST here.
func typeFromWire(b uint8) (Type, error) {
	t := Type(b)
	if b >= 0x80 {
		t = Type(b-0x80) + TypeList
	}
	if !t.valid() {
		return 0, fmt.Errorf("unrecognized type tag 0x%02x", b)
	}
	if t == TypeList2 {
		t = TypeList
	}
	return t, nil
}
