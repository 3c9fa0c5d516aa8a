package propbin

import "github.com/deverenn/propbin/binhash"

// Visitor observes a read-only walk over decoded values.
//
// VisitType is a static gate, consulted with the declared type of a
// value before it is even dispatched; returning false prunes whole
// subtrees cheaply when only some leaf types matter. The container
// methods additionally return a per-instance recurse decision,
// independent of the static gate. Leaf methods are terminal.
//
// The engine keeps no state between calls; any accumulation lives in
// the visitor.
type Visitor interface {
	VisitType(t Type) bool

	VisitEntry(e *Entry) bool
	VisitField(name binhash.FieldHash) bool
	VisitList(l *List) bool
	VisitStruct(v *Struct) bool
	VisitEmbed(v *Embed) bool
	VisitOption(o *Option) bool
	VisitMap(m *Map) bool

	VisitNone()
	VisitBool(v bool)
	VisitFlag(v bool)
	VisitS8(v int8)
	VisitU8(v uint8)
	VisitS16(v int16)
	VisitU16(v uint16)
	VisitS32(v int32)
	VisitU32(v uint32)
	VisitS64(v int64)
	VisitU64(v uint64)
	VisitFloat(v float32)
	VisitVec2(v Vec2)
	VisitVec3(v Vec3)
	VisitVec4(v Vec4)
	VisitMatrix(v Matrix)
	VisitColor(v Color)
	VisitString(v string)
	VisitHash(v binhash.ValueHash)
	VisitPath(v binhash.PathHash)
	VisitLink(v binhash.EntryHash)
}

// NopVisitor descends everywhere and observes nothing. Embed it and
// override the handful of methods a concrete visitor cares about.
type NopVisitor struct{}

func (NopVisitor) VisitType(Type) bool              { return true }
func (NopVisitor) VisitEntry(*Entry) bool           { return true }
func (NopVisitor) VisitField(binhash.FieldHash) bool { return true }
func (NopVisitor) VisitList(*List) bool             { return true }
func (NopVisitor) VisitStruct(*Struct) bool         { return true }
func (NopVisitor) VisitEmbed(*Embed) bool           { return true }
func (NopVisitor) VisitOption(*Option) bool         { return true }
func (NopVisitor) VisitMap(*Map) bool               { return true }
func (NopVisitor) VisitNone()                       {}
func (NopVisitor) VisitBool(bool)                   {}
func (NopVisitor) VisitFlag(bool)                   {}
func (NopVisitor) VisitS8(int8)                     {}
func (NopVisitor) VisitU8(uint8)                    {}
func (NopVisitor) VisitS16(int16)                   {}
func (NopVisitor) VisitU16(uint16)                  {}
func (NopVisitor) VisitS32(int32)                   {}
func (NopVisitor) VisitU32(uint32)                  {}
func (NopVisitor) VisitS64(int64)                   {}
func (NopVisitor) VisitU64(uint64)                  {}
func (NopVisitor) VisitFloat(float32)               {}
func (NopVisitor) VisitVec2(Vec2)                   {}
func (NopVisitor) VisitVec3(Vec3)                   {}
func (NopVisitor) VisitVec4(Vec4)                   {}
func (NopVisitor) VisitMatrix(Matrix)               {}
func (NopVisitor) VisitColor(Color)                 {}
func (NopVisitor) VisitString(string)               {}
func (NopVisitor) VisitHash(binhash.ValueHash)      {}
func (NopVisitor) VisitPath(binhash.PathHash)       {}
func (NopVisitor) VisitLink(binhash.EntryHash)      {}

// Traverse walks every entry of doc in document order.
func Traverse(doc *Document, v Visitor) {
	for i := range doc.Entries {
		TraverseEntry(&doc.Entries[i], v)
	}
}

// TraverseEntry walks one entry: the entry itself, then each field's
// name followed by its value, in on-disk order.
func TraverseEntry(e *Entry, v Visitor) {
	if !v.VisitEntry(e) {
		return
	}
	traverseFields(e.Fields, v)
}

func traverseFields(fields []Field, v Visitor) {
	for _, f := range fields {
		if !v.VisitField(f.Name) {
			continue
		}
		TraverseValue(f.Value, v)
	}
}

// TraverseValue type-dispatches one value, honoring the static type
// gate before dispatch.
func TraverseValue(val Value, v Visitor) {
	if !v.VisitType(val.Type()) {
		return
	}
	switch val := val.(type) {
	case None:
		v.VisitNone()
	case Bool:
		v.VisitBool(bool(val))
	case Flag:
		v.VisitFlag(bool(val))
	case S8:
		v.VisitS8(int8(val))
	case U8:
		v.VisitU8(uint8(val))
	case S16:
		v.VisitS16(int16(val))
	case U16:
		v.VisitU16(uint16(val))
	case S32:
		v.VisitS32(int32(val))
	case U32:
		v.VisitU32(uint32(val))
	case S64:
		v.VisitS64(int64(val))
	case U64:
		v.VisitU64(uint64(val))
	case Float:
		v.VisitFloat(float32(val))
	case Vec2:
		v.VisitVec2(val)
	case Vec3:
		v.VisitVec3(val)
	case Vec4:
		v.VisitVec4(val)
	case Matrix:
		v.VisitMatrix(val)
	case Color:
		v.VisitColor(val)
	case String:
		v.VisitString(string(val))
	case Hash:
		v.VisitHash(binhash.ValueHash(val))
	case Path:
		v.VisitPath(binhash.PathHash(val))
	case Link:
		v.VisitLink(binhash.EntryHash(val))
	case *List:
		if !v.VisitList(val) {
			return
		}
		// One gate check on the declared element type prunes the whole
		// item loop for large homogeneous lists.
		if !v.VisitType(val.Elem) {
			return
		}
		for _, item := range val.Items {
			traverseDispatched(item, v)
		}
	case *Struct:
		if !v.VisitStruct(val) {
			return
		}
		traverseFields(val.Fields, v)
	case *Embed:
		if !v.VisitEmbed(val) {
			return
		}
		traverseFields(val.Fields, v)
	case *Option:
		if !v.VisitOption(val) {
			return
		}
		if val.Value != nil {
			TraverseValue(val.Value, v)
		}
	case *Map:
		if !v.VisitMap(val) {
			return
		}
		keyGate, valGate := v.VisitType(val.Key), v.VisitType(val.Elem)
		if !keyGate && !valGate {
			return
		}
		for _, p := range val.Items {
			if keyGate {
				traverseDispatched(p.Key, v)
			}
			if valGate {
				traverseDispatched(p.Value, v)
			}
		}
	default:
		panic("propbin: value outside the closed union")
	}
}

// traverseDispatched is TraverseValue minus the gate, for items whose
// declared type was already gated once at the container level.
func traverseDispatched(item Value, v Visitor) {
	switch item.(type) {
	case *List, *Struct, *Embed, *Option, *Map:
		TraverseValue(item, v)
	default:
		// scalar: dispatch without re-gating
		traverseScalar(item, v)
	}
}

func traverseScalar(val Value, v Visitor) {
	switch val := val.(type) {
	case None:
		v.VisitNone()
	case Bool:
		v.VisitBool(bool(val))
	case Flag:
		v.VisitFlag(bool(val))
	case S8:
		v.VisitS8(int8(val))
	case U8:
		v.VisitU8(uint8(val))
	case S16:
		v.VisitS16(int16(val))
	case U16:
		v.VisitU16(uint16(val))
	case S32:
		v.VisitS32(int32(val))
	case U32:
		v.VisitU32(uint32(val))
	case S64:
		v.VisitS64(int64(val))
	case U64:
		v.VisitU64(uint64(val))
	case Float:
		v.VisitFloat(float32(val))
	case Vec2:
		v.VisitVec2(val)
	case Vec3:
		v.VisitVec3(val)
	case Vec4:
		v.VisitVec4(val)
	case Matrix:
		v.VisitMatrix(val)
	case Color:
		v.VisitColor(val)
	case String:
		v.VisitString(string(val))
	case Hash:
		v.VisitHash(binhash.ValueHash(val))
	case Path:
		v.VisitPath(binhash.PathHash(val))
	case Link:
		v.VisitLink(binhash.EntryHash(val))
	}
}

// HashCollector gathers every hash identifier a walk encounters into
// per-domain sets: entry paths, class names (entry-level and nested
// records), field names, hash-valued leaves, links (entry-path
// domain), and path values.
type HashCollector struct {
	NopVisitor
	Sets *binhash.Sets
}

func NewHashCollector() *HashCollector {
	return &HashCollector{Sets: binhash.NewSets()}
}

func (c *HashCollector) VisitEntry(e *Entry) bool {
	c.Sets.Entries[e.Path] = struct{}{}
	c.Sets.Classes[e.Class] = struct{}{}
	return true
}

func (c *HashCollector) VisitField(name binhash.FieldHash) bool {
	c.Sets.Fields[name] = struct{}{}
	return true
}

func (c *HashCollector) VisitStruct(v *Struct) bool {
	if v.Class != 0 {
		c.Sets.Classes[v.Class] = struct{}{}
	}
	return true
}

func (c *HashCollector) VisitEmbed(v *Embed) bool {
	if v.Class != 0 {
		c.Sets.Classes[v.Class] = struct{}{}
	}
	return true
}

func (c *HashCollector) VisitHash(v binhash.ValueHash) {
	c.Sets.Values[v] = struct{}{}
}

func (c *HashCollector) VisitLink(v binhash.EntryHash) {
	c.Sets.Entries[v] = struct{}{}
}

func (c *HashCollector) VisitPath(v binhash.PathHash) {
	c.Sets.Paths[v] = struct{}{}
}
