package propbin

import "github.com/deverenn/propbin/binhash"

// Sink receives one call per value kind plus entry-level bracketing.
// The walk over values (the encoding contract) lives in WriteDocument
// and friends; a sink only formats. All sinks share the same call
// sequence, so every backend renders structurally identical output.
type Sink interface {
	// BeginEntries/EndEntries bracket a whole document. Use
	// WriteScanner to stream documents too large to buffer.
	BeginEntries() error
	EndEntries() error

	BeginEntry(path binhash.EntryHash, class binhash.ClassHash) error
	EndEntry() error

	// FieldName precedes the value of each entry/struct/embed field.
	FieldName(name binhash.FieldHash) error

	None() error
	Bool(v bool) error
	Flag(v bool) error
	S8(v int8) error
	U8(v uint8) error
	S16(v int16) error
	U16(v uint16) error
	S32(v int32) error
	U32(v uint32) error
	S64(v int64) error
	U64(v uint64) error
	Float(v float32) error
	Vec2(v Vec2) error
	Vec3(v Vec3) error
	Vec4(v Vec4) error
	Matrix(v Matrix) error
	Color(v Color) error
	String(v string) error
	Hash(v binhash.ValueHash) error
	Path(v binhash.PathHash) error
	Link(v binhash.EntryHash) error

	BeginList(elem Type, n int) error
	EndList() error
	// BeginStruct covers Embed too (embed flag); n is the field count,
	// 0 both for the null record and a genuinely empty one — sinks
	// must render those identically.
	BeginStruct(class binhash.ClassHash, embed bool, n int) error
	EndStruct() error
	BeginOption(elem Type, present bool) error
	EndOption() error
	BeginMap(key, elem Type, n int) error
	MapKey(k KeyValue) error
	EndMap() error
}

// WriteDocument encodes a buffered document through the sink.
func WriteDocument(s Sink, doc *Document) error {
	if err := s.BeginEntries(); err != nil {
		return err
	}
	for i := range doc.Entries {
		if err := writeEntryBody(s, &doc.Entries[i]); err != nil {
			return err
		}
	}
	return s.EndEntries()
}

// WriteScanner streams every entry the scanner emits through the sink
// without buffering the document. The scanner must decode entries
// (full or filtered mode).
func WriteScanner(s Sink, sc *Scanner) error {
	if err := s.BeginEntries(); err != nil {
		return err
	}
	for sc.Next() {
		e := sc.Entry()
		if e == nil {
			continue
		}
		if err := writeEntryBody(s, e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return s.EndEntries()
}

// WriteEntry encodes a single already-decoded entry.
func WriteEntry(s Sink, e *Entry) error {
	return writeEntryBody(s, e)
}

func writeEntryBody(s Sink, e *Entry) error {
	if err := s.BeginEntry(e.Path, e.Class); err != nil {
		return err
	}
	if err := writeFields(s, e.Fields); err != nil {
		return err
	}
	return s.EndEntry()
}

func writeFields(s Sink, fields []Field) error {
	for _, f := range fields {
		if err := s.FieldName(f.Name); err != nil {
			return err
		}
		if err := writeValue(s, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// writeValue dispatches exhaustively over the value union.
func writeValue(s Sink, v Value) error {
	switch v := v.(type) {
	case None:
		return s.None()
	case Bool:
		return s.Bool(bool(v))
	case Flag:
		return s.Flag(bool(v))
	case S8:
		return s.S8(int8(v))
	case U8:
		return s.U8(uint8(v))
	case S16:
		return s.S16(int16(v))
	case U16:
		return s.U16(uint16(v))
	case S32:
		return s.S32(int32(v))
	case U32:
		return s.U32(uint32(v))
	case S64:
		return s.S64(int64(v))
	case U64:
		return s.U64(uint64(v))
	case Float:
		return s.Float(float32(v))
	case Vec2:
		return s.Vec2(v)
	case Vec3:
		return s.Vec3(v)
	case Vec4:
		return s.Vec4(v)
	case Matrix:
		return s.Matrix(v)
	case Color:
		return s.Color(v)
	case String:
		return s.String(string(v))
	case Hash:
		return s.Hash(binhash.ValueHash(v))
	case Path:
		return s.Path(binhash.PathHash(v))
	case Link:
		return s.Link(binhash.EntryHash(v))
	case *List:
		if err := s.BeginList(v.Elem, len(v.Items)); err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := writeValue(s, item); err != nil {
				return err
			}
		}
		return s.EndList()
	case *Struct:
		if err := s.BeginStruct(v.Class, false, len(v.Fields)); err != nil {
			return err
		}
		if err := writeFields(s, v.Fields); err != nil {
			return err
		}
		return s.EndStruct()
	case *Embed:
		if err := s.BeginStruct(v.Class, true, len(v.Fields)); err != nil {
			return err
		}
		if err := writeFields(s, v.Fields); err != nil {
			return err
		}
		return s.EndStruct()
	case *Option:
		if err := s.BeginOption(v.Elem, v.Value != nil); err != nil {
			return err
		}
		if v.Value != nil {
			if err := writeValue(s, v.Value); err != nil {
				return err
			}
		}
		return s.EndOption()
	case *Map:
		if err := s.BeginMap(v.Key, v.Elem, len(v.Items)); err != nil {
			return err
		}
		for _, p := range v.Items {
			if err := s.MapKey(p.Key); err != nil {
				return err
			}
			if err := writeValue(s, p.Value); err != nil {
				return err
			}
		}
		return s.EndMap()
	default:
		panic("propbin: value outside the closed union")
	}
}
