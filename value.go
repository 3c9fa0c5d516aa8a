package propbin

import "github.com/deverenn/propbin/binhash"

// Value is the closed union over every bin value variant. Exactly one
// concrete type exists per wire tag; consumers dispatch with a type
// switch (or As) and never see a payload that disagrees with its tag.
//
// Values are produced once by the decoder from an immutable byte
// stream and are never mutated afterwards; consumers only read or
// re-encode them.
type Value interface {
	Type() Type
	isValue()
}

// KeyValue is the subset of Value permitted as a Map key. The wire
// format restricts keys to scalars; making that a narrower interface
// means a Map holding a container key cannot be constructed at all.
type KeyValue interface {
	Value
	isMapKey()
}

// As downcasts v to a concrete value type, like a checked type
// assertion: As[U32](v).
func As[T Value](v Value) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

type (
	None   struct{}
	Bool   bool
	S8     int8
	U8     uint8
	S16    int16
	U16    uint16
	S32    int32
	U32    uint32
	S64    int64
	U64    uint64
	Float  float32
	Vec2   [2]float32
	Vec3   [3]float32
	Vec4   [4]float32
	Matrix [4][4]float32 // row-major
	Color  [4]uint8      // RGBA
	String string
	Hash   binhash.ValueHash
	Path   binhash.PathHash
	Link   binhash.EntryHash

	// Flag is a boolean that the format tags distinctly from Bool.
	Flag bool
)

// List is a homogeneous sequence: every element is of the declared
// Elem type.
type List struct {
	Elem  Type
	Items []Value
}

// Struct is a named record. Class 0 is the distinguished null struct,
// always empty; it is a valid value, not an absence marker (Option
// covers absence).
type Struct struct {
	Class  binhash.ClassHash
	Fields []Field
}

// Embed has the same layout and decoding as Struct; the source engine
// embeds it by value rather than referencing it.
type Embed struct {
	Class  binhash.ClassHash
	Fields []Field
}

// Option holds zero or one value of the declared Elem type. Value is
// nil when absent.
type Option struct {
	Elem  Type
	Value Value
}

// Map is an ordered pair sequence with fixed declared key and value
// types.
type Map struct {
	Key   Type
	Elem  Type
	Items []MapPair
}

type MapPair struct {
	Key   KeyValue
	Value Value
}

// Field is one named slot of a Struct, Embed or Entry. Names are
// unique within their record.
type Field struct {
	Name  binhash.FieldHash
	Value Value
}

func (None) Type() Type    { return TypeNone }
func (Bool) Type() Type    { return TypeBool }
func (S8) Type() Type      { return TypeS8 }
func (U8) Type() Type      { return TypeU8 }
func (S16) Type() Type     { return TypeS16 }
func (U16) Type() Type     { return TypeU16 }
func (S32) Type() Type     { return TypeS32 }
func (U32) Type() Type     { return TypeU32 }
func (S64) Type() Type     { return TypeS64 }
func (U64) Type() Type     { return TypeU64 }
func (Float) Type() Type   { return TypeFloat }
func (Vec2) Type() Type    { return TypeVec2 }
func (Vec3) Type() Type    { return TypeVec3 }
func (Vec4) Type() Type    { return TypeVec4 }
func (Matrix) Type() Type  { return TypeMatrix }
func (Color) Type() Type   { return TypeColor }
func (String) Type() Type  { return TypeString }
func (Hash) Type() Type    { return TypeHash }
func (Path) Type() Type    { return TypePath }
func (Link) Type() Type    { return TypeLink }
func (Flag) Type() Type    { return TypeFlag }
func (*List) Type() Type   { return TypeList }
func (*Struct) Type() Type { return TypeStruct }
func (*Embed) Type() Type  { return TypeEmbed }
func (*Option) Type() Type { return TypeOption }
func (*Map) Type() Type    { return TypeMap }

func (None) isValue()    {}
func (Bool) isValue()    {}
func (S8) isValue()      {}
func (U8) isValue()      {}
func (S16) isValue()     {}
func (U16) isValue()     {}
func (S32) isValue()     {}
func (U32) isValue()     {}
func (S64) isValue()     {}
func (U64) isValue()     {}
func (Float) isValue()   {}
func (Vec2) isValue()    {}
func (Vec3) isValue()    {}
func (Vec4) isValue()    {}
func (Matrix) isValue()  {}
func (Color) isValue()   {}
func (String) isValue()  {}
func (Hash) isValue()    {}
func (Path) isValue()    {}
func (Link) isValue()    {}
func (Flag) isValue()    {}
func (*List) isValue()   {}
func (*Struct) isValue() {}
func (*Embed) isValue()  {}
func (*Option) isValue() {}
func (*Map) isValue()    {}

func (S8) isMapKey()     {}
func (U8) isMapKey()     {}
func (S16) isMapKey()    {}
func (U16) isMapKey()    {}
func (S32) isMapKey()    {}
func (U32) isMapKey()    {}
func (S64) isMapKey()    {}
func (U64) isMapKey()    {}
func (Float) isMapKey()  {}
func (String) isMapKey() {}
func (Hash) isMapKey()   {}
