package propbin

import (
	"io"

	"github.com/deverenn/propbin/binhash"
)

// Filter selects which entries a filtered scan fully decodes. The scan
// byte-skips the rest but still advances past every entry.
type Filter func(h EntryHeader) bool

type scanMode int

const (
	scanHeaders scanMode = iota
	scanFull
	scanFiltered
)

// Scanner is a forward-only cursor over the entries of one bin
// stream. The header (magic, version, linked files, class list) is
// parsed by the constructor; entries are decoded lazily as Next
// advances. A Scanner is finite, not restartable, and not safe for
// concurrent use; after Err returns a malformed-input error the
// stream position is undefined and iteration stops.
type Scanner struct {
	d       *binReader
	version uint32
	isPatch bool
	linked  []string
	classes []binhash.ClassHash
	idx     int
	mode    scanMode
	keep    Filter
	hdr     EntryHeader
	entry   *Entry
	err     error
	done    bool
}

// NewScanner returns a full-parse scanner: every entry's fields are
// decoded.
func NewScanner(r io.Reader) (*Scanner, error) {
	return newScanner(r, scanFull, nil)
}

// NewHeaderScanner decodes only (path, class) per entry, byte-skipping
// the field blocks. Use it to build indexes without paying full decode
// cost; Entry returns nil in this mode.
func NewHeaderScanner(r io.Reader) (*Scanner, error) {
	return newScanner(r, scanHeaders, nil)
}

// NewFilteredScanner fully decodes only the entries keep matches,
// byte-skipping the rest. The cursor always consumes the entire
// stream's entries regardless of matches.
func NewFilteredScanner(r io.Reader, keep Filter) (*Scanner, error) {
	return newScanner(r, scanFiltered, keep)
}

func newScanner(r io.Reader, mode scanMode, keep Filter) (*Scanner, error) {
	s := &Scanner{d: newBinReader(r), mode: mode, keep: keep}
	if err := s.readHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scanner) Version() uint32 { return s.version }
func (s *Scanner) IsPatch() bool   { return s.isPatch }

// Linked returns the linked-file paths (version ≥ 2 only).
func (s *Scanner) Linked() []string { return s.linked }

// Count is the total number of entries in the stream, known from the
// header before any entry is decoded.
func (s *Scanner) Count() int { return len(s.classes) }

// readHeader parses through the positional class-name list. The magic
// is either "PROP", or "PTCH" followed by the (1, 0) patch marker and
// then the regular "PROP" header.
func (s *Scanner) readHeader() error {
	d := s.d
	b, err := d.read(4)
	if err != nil {
		return err
	}
	switch string(b) {
	case "PTCH":
		s.isPatch = true
		m1, err := d.u32()
		if err != nil {
			return err
		}
		m2, err := d.u32()
		if err != nil {
			return err
		}
		if m1 != 1 || m2 != 0 {
			return formatErrf(d.off-8, nil, "unsupported patch marker (%d, %d), wanted (1, 0)", m1, m2)
		}
		if err := d.magic("PROP"); err != nil {
			return err
		}
	case "PROP":
	default:
		return formatErrf(d.off-4, nil, "bad magic %q, wanted \"PROP\" or \"PTCH\"", b)
	}

	s.version, err = d.u32()
	if err != nil {
		return err
	}
	if s.version == 0 {
		return formatErrf(d.off-4, nil, "unsupported version 0")
	}

	if s.version >= 2 {
		n, err := d.u32()
		if err != nil {
			return err
		}
		s.linked = make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			p, err := d.str16()
			if err != nil {
				return err
			}
			s.linked = append(s.linked, p)
		}
	}

	// The class list length is the entry count; the i-th class hash
	// belongs to the i-th entry.
	n, err := d.u32()
	if err != nil {
		return err
	}
	s.classes = make([]binhash.ClassHash, 0, n)
	for i := uint32(0); i < n; i++ {
		c, err := d.u32()
		if err != nil {
			return err
		}
		s.classes = append(s.classes, binhash.ClassHash(c))
	}
	return nil
}

// Next advances to the next emitted entry. In header mode every entry
// is emitted; in filtered mode only matches are. It returns false at
// the end of the stream or on error; check Err afterwards.
func (s *Scanner) Next() bool {
	if s.err != nil || s.done {
		return false
	}
	for s.idx < len(s.classes) {
		emitted, err := s.step()
		if err != nil {
			s.err = err
			s.done = true
			return false
		}
		if emitted {
			return true
		}
	}
	s.done = true
	return false
}

// step consumes one entry, returning whether it was emitted.
func (s *Scanner) step() (bool, error) {
	d := s.d
	bodyLen, err := d.u32()
	if err != nil {
		return false, err
	}
	if bodyLen < 4 {
		return false, formatErrf(d.off-4, nil, "entry body length %d too small to hold the path hash", bodyLen)
	}
	path, err := d.u32()
	if err != nil {
		return false, err
	}
	s.hdr = EntryHeader{binhash.EntryHash(path), s.classes[s.idx]}
	s.idx++
	rest := int64(bodyLen) - 4

	decode := false
	switch s.mode {
	case scanFull:
		decode = true
	case scanFiltered:
		decode = s.keep(s.hdr)
	}
	if !decode {
		if err := d.skip(rest); err != nil {
			return false, err
		}
		s.entry = nil
		return s.mode == scanHeaders, nil
	}

	start := d.off
	fields, err := s.readFields()
	if err != nil {
		return false, err
	}
	if used := d.off - start; used != rest {
		return false, formatErrf(d.off, nil, "entry %v: field block used %d bytes of %d declared", s.hdr.Path, used, rest)
	}
	s.entry = &Entry{Path: s.hdr.Path, Class: s.hdr.Class, Fields: fields}
	return true, nil
}

// Header is valid after every successful Next, in every mode.
func (s *Scanner) Header() EntryHeader { return s.hdr }

// Entry is the fully decoded entry, or nil in header-only mode.
func (s *Scanner) Entry() *Entry { return s.entry }

func (s *Scanner) Err() error { return s.err }

func (s *Scanner) readFields() ([]Field, error) {
	n, err := s.d.u16()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, n)
	for i := uint16(0); i < n; i++ {
		f, err := s.readField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (s *Scanner) readField() (Field, error) {
	d := s.d
	name, err := d.u32()
	if err != nil {
		return Field{}, err
	}
	t, err := s.readType()
	if err != nil {
		return Field{}, err
	}
	v, err := s.readValue(t)
	if err != nil {
		return Field{}, err
	}
	return Field{Name: binhash.FieldHash(name), Value: v}, nil
}

func (s *Scanner) readType() (Type, error) {
	b, err := s.d.u8()
	if err != nil {
		return 0, err
	}
	t, err := typeFromWire(b)
	if err != nil {
		return 0, formatErrf(s.d.off-1, err, "bad field type")
	}
	return t, nil
}

func (s *Scanner) readValue(t Type) (Value, error) {
	d := s.d
	switch t {
	case TypeNone:
		return None{}, nil
	case TypeBool:
		v, err := d.u8()
		return Bool(v != 0), err
	case TypeFlag:
		v, err := d.u8()
		return Flag(v != 0), err
	case TypeS8:
		v, err := d.u8()
		return S8(v), err
	case TypeU8:
		v, err := d.u8()
		return U8(v), err
	case TypeS16:
		v, err := d.u16()
		return S16(v), err
	case TypeU16:
		v, err := d.u16()
		return U16(v), err
	case TypeS32:
		v, err := d.u32()
		return S32(v), err
	case TypeU32:
		v, err := d.u32()
		return U32(v), err
	case TypeS64:
		v, err := d.u64()
		return S64(v), err
	case TypeU64:
		v, err := d.u64()
		return U64(v), err
	case TypeFloat:
		v, err := d.f32()
		return Float(v), err
	case TypeVec2:
		var v Vec2
		err := s.readF32s(v[:])
		return v, err
	case TypeVec3:
		var v Vec3
		err := s.readF32s(v[:])
		return v, err
	case TypeVec4:
		var v Vec4
		err := s.readF32s(v[:])
		return v, err
	case TypeMatrix:
		var v Matrix
		for i := range v {
			if err := s.readF32s(v[i][:]); err != nil {
				return nil, err
			}
		}
		return v, nil
	case TypeColor:
		b, err := d.read(4)
		if err != nil {
			return nil, err
		}
		return Color{b[0], b[1], b[2], b[3]}, nil
	case TypeString:
		v, err := d.str16()
		return String(v), err
	case TypeHash:
		v, err := d.u32()
		return Hash(v), err
	case TypePath:
		v, err := d.u64()
		return Path(v), err
	case TypeLink:
		v, err := d.u32()
		return Link(v), err
	case TypeList:
		return s.readList()
	case TypeStruct:
		cls, fields, err := s.readRecord()
		if err != nil {
			return nil, err
		}
		return &Struct{Class: cls, Fields: fields}, nil
	case TypeEmbed:
		cls, fields, err := s.readRecord()
		if err != nil {
			return nil, err
		}
		return &Embed{Class: cls, Fields: fields}, nil
	case TypeOption:
		return s.readOption()
	case TypeMap:
		return s.readMap()
	default:
		return nil, formatErrf(d.off, nil, "no decoder for type tag %d", t)
	}
}

func (s *Scanner) readF32s(dst []float32) error {
	for i := range dst {
		v, err := s.d.f32()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func (s *Scanner) readList() (*List, error) {
	d := s.d
	elem, err := s.readType()
	if err != nil {
		return nil, err
	}
	if _, err := d.u32(); err != nil { // reserved byte size
		return nil, err
	}
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	l := &List{Elem: elem, Items: make([]Value, 0, min(int(n), 4096))}
	for i := uint32(0); i < n; i++ {
		v, err := s.readValue(elem)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, v)
	}
	return l, nil
}

// readRecord decodes the shared Struct/Embed payload. Class hash 0 is
// the null record and uses the short wire form with no field block.
func (s *Scanner) readRecord() (binhash.ClassHash, []Field, error) {
	d := s.d
	cls, err := d.u32()
	if err != nil {
		return 0, nil, err
	}
	if cls == 0 {
		return 0, nil, nil
	}
	if _, err := d.u32(); err != nil { // reserved byte size
		return 0, nil, err
	}
	fields, err := s.readFields()
	if err != nil {
		return 0, nil, err
	}
	return binhash.ClassHash(cls), fields, nil
}

func (s *Scanner) readOption() (*Option, error) {
	d := s.d
	elem, err := s.readType()
	if err != nil {
		return nil, err
	}
	n, err := d.u8()
	if err != nil {
		return nil, err
	}
	if n > 1 {
		return nil, formatErrf(d.off-1, nil, "option count %d, wanted 0 or 1", n)
	}
	o := &Option{Elem: elem}
	if n == 1 {
		o.Value, err = s.readValue(elem)
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *Scanner) readMap() (*Map, error) {
	d := s.d
	key, err := s.readType()
	if err != nil {
		return nil, err
	}
	if !key.IsKeyable() {
		return nil, formatErrf(d.off-1, nil, "type %v cannot key a map", key)
	}
	elem, err := s.readType()
	if err != nil {
		return nil, err
	}
	if _, err := d.u32(); err != nil { // reserved byte size
		return nil, err
	}
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	m := &Map{Key: key, Elem: elem, Items: make([]MapPair, 0, min(int(n), 4096))}
	for i := uint32(0); i < n; i++ {
		k, err := s.readKey(key)
		if err != nil {
			return nil, err
		}
		v, err := s.readValue(elem)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, MapPair{Key: k, Value: v})
	}
	return m, nil
}

// readKey decodes a map key. Keyable types are scalars, so the value
// always satisfies KeyValue; the type switch makes that explicit
// instead of asserting.
func (s *Scanner) readKey(t Type) (KeyValue, error) {
	v, err := s.readValue(t)
	if err != nil {
		return nil, err
	}
	k, ok := v.(KeyValue)
	if !ok {
		return nil, formatErrf(s.d.off, nil, "type %v cannot key a map", t)
	}
	return k, nil
}

// DecodeAll fully decodes one bin stream into a Document.
func DecodeAll(r io.Reader) (*Document, error) {
	s, err := NewScanner(r)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Version: s.Version(),
		IsPatch: s.IsPatch(),
		Linked:  s.Linked(),
		Entries: make([]Entry, 0, s.Count()),
	}
	for s.Next() {
		doc.Entries = append(doc.Entries, *s.Entry())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
