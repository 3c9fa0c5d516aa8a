package propbin

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/deverenn/propbin/binhash"
)

// JSONSink renders a document as one JSON object keyed by entry path.
// Entries are objects keyed by field name; keys fall back to bare
// fixed-width hex when the dictionary cannot resolve them, while
// hash-typed values fall back to the braced {hex} placeholder. Map
// keys are always JSON strings, quoted numerals included — the object
// shape dictates string keys regardless of the native key type.
type JSONSink struct {
	w     *bufio.Writer
	names *binhash.Table
	stack []jsonFrame
}

type jsonFrameKind int

const (
	jsonInObject jsonFrameKind = iota // values follow keys, keys manage commas
	jsonInArray                       // values manage their own commas
	jsonInOption                      // single value, no separators
)

type jsonFrame struct {
	kind jsonFrameKind
	n    int
}

func NewJSONSink(w io.Writer, names *binhash.Table) *JSONSink {
	if names == nil {
		names = binhash.NewTable()
	}
	return &JSONSink{w: bufio.NewWriter(w), names: names}
}

// Flush forces buffered output to the underlying writer. EndEntries
// flushes automatically; call this after standalone WriteEntry use.
func (s *JSONSink) Flush() error {
	return s.w.Flush()
}

func (s *JSONSink) push(kind jsonFrameKind) {
	s.stack = append(s.stack, jsonFrame{kind: kind})
}

func (s *JSONSink) pop() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *JSONSink) top() *jsonFrame {
	return &s.stack[len(s.stack)-1]
}

// elem separates values in array context. In object context the key
// already wrote the separator; in option context there is none.
func (s *JSONSink) elem() {
	f := s.top()
	if f.kind == jsonInArray {
		if f.n > 0 {
			s.w.WriteByte(',')
		}
		f.n++
	}
}

func (s *JSONSink) key(name string) {
	f := s.top()
	if f.n > 0 {
		s.w.WriteByte(',')
	}
	f.n++
	s.quoted(name)
	s.w.WriteByte(':')
}

// quoted writes a JSON string with the format's exact escape table.
func (s *JSONSink) quoted(v string) {
	w := s.w
	w.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case '\b':
			w.WriteString(`\b`)
		case '\t':
			w.WriteString(`\t`)
		case '\n':
			w.WriteString(`\n`)
		case '\f':
			w.WriteString(`\f`)
		case '\r':
			w.WriteString(`\r`)
		case '"':
			w.WriteString(`\"`)
		case '\\':
			w.WriteString(`\\`)
		default:
			if c < 0x20 {
				const hexUpper = "0123456789ABCDEF"
				w.WriteString(`\u00`)
				w.WriteByte(hexUpper[c>>4])
				w.WriteByte(hexUpper[c&0xF])
			} else {
				w.WriteByte(c)
			}
		}
	}
	w.WriteByte('"')
}

func (s *JSONSink) int(v int64) error {
	s.elem()
	_, err := s.w.WriteString(strconv.FormatInt(v, 10))
	return err
}

func (s *JSONSink) uint(v uint64) error {
	s.elem()
	_, err := s.w.WriteString(strconv.FormatUint(v, 10))
	return err
}

func (s *JSONSink) float(v float32) error {
	s.elem()
	_, err := s.w.WriteString(jsonF32(v))
	return err
}

func (s *JSONSink) BeginEntries() error {
	err := s.w.WriteByte('{')
	s.push(jsonInObject)
	return err
}

func (s *JSONSink) EndEntries() error {
	s.pop()
	s.w.WriteByte('}')
	return s.w.Flush()
}

func (s *JSONSink) BeginEntry(path binhash.EntryHash, class binhash.ClassHash) error {
	if len(s.stack) > 0 {
		s.key(entryKeyName(s.names, path))
	} else {
		// standalone entry, no surrounding document
		s.push(jsonInOption)
	}
	err := s.w.WriteByte('{')
	s.push(jsonInObject)
	return err
}

func (s *JSONSink) EndEntry() error {
	s.pop()
	err := s.w.WriteByte('}')
	if len(s.stack) == 1 && s.top().kind == jsonInOption {
		s.pop()
	}
	return err
}

func (s *JSONSink) FieldName(name binhash.FieldHash) error {
	s.key(fieldKeyName(s.names, name))
	return nil
}

func (s *JSONSink) None() error {
	s.elem()
	_, err := s.w.WriteString("null")
	return err
}

func (s *JSONSink) boolean(v bool) error {
	s.elem()
	var err error
	if v {
		_, err = s.w.WriteString("true")
	} else {
		_, err = s.w.WriteString("false")
	}
	return err
}

func (s *JSONSink) Bool(v bool) error { return s.boolean(v) }
func (s *JSONSink) Flag(v bool) error { return s.boolean(v) }

func (s *JSONSink) S8(v int8) error      { return s.int(int64(v)) }
func (s *JSONSink) U8(v uint8) error     { return s.uint(uint64(v)) }
func (s *JSONSink) S16(v int16) error    { return s.int(int64(v)) }
func (s *JSONSink) U16(v uint16) error   { return s.uint(uint64(v)) }
func (s *JSONSink) S32(v int32) error    { return s.int(int64(v)) }
func (s *JSONSink) U32(v uint32) error   { return s.uint(uint64(v)) }
func (s *JSONSink) S64(v int64) error    { return s.int(v) }
func (s *JSONSink) U64(v uint64) error   { return s.uint(v) }
func (s *JSONSink) Float(v float32) error { return s.float(v) }

func (s *JSONSink) floats(vs []float32) error {
	s.elem()
	s.w.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			s.w.WriteByte(',')
		}
		s.w.WriteString(jsonF32(v))
	}
	return s.w.WriteByte(']')
}

func (s *JSONSink) Vec2(v Vec2) error { return s.floats(v[:]) }
func (s *JSONSink) Vec3(v Vec3) error { return s.floats(v[:]) }
func (s *JSONSink) Vec4(v Vec4) error { return s.floats(v[:]) }

func (s *JSONSink) Matrix(v Matrix) error {
	s.elem()
	s.w.WriteByte('[')
	for i := range v {
		if i > 0 {
			s.w.WriteByte(',')
		}
		s.w.WriteByte('[')
		for j, f := range v[i] {
			if j > 0 {
				s.w.WriteByte(',')
			}
			s.w.WriteString(jsonF32(f))
		}
		s.w.WriteByte(']')
	}
	return s.w.WriteByte(']')
}

func (s *JSONSink) Color(v Color) error {
	s.elem()
	s.w.WriteByte('[')
	for i, c := range v {
		if i > 0 {
			s.w.WriteByte(',')
		}
		s.w.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return s.w.WriteByte(']')
}

func (s *JSONSink) String(v string) error {
	s.elem()
	s.quoted(v)
	return nil
}

func (s *JSONSink) Hash(v binhash.ValueHash) error {
	s.elem()
	s.quoted(s.names.Values.Seek(v))
	return nil
}

func (s *JSONSink) Path(v binhash.PathHash) error {
	s.elem()
	s.quoted(s.names.Paths.Seek(v))
	return nil
}

func (s *JSONSink) Link(v binhash.EntryHash) error {
	s.elem()
	s.quoted(s.names.Entries.Seek(v))
	return nil
}

func (s *JSONSink) BeginList(elem Type, n int) error {
	s.elem()
	err := s.w.WriteByte('[')
	s.push(jsonInArray)
	return err
}

func (s *JSONSink) EndList() error {
	s.pop()
	return s.w.WriteByte(']')
}

func (s *JSONSink) BeginStruct(class binhash.ClassHash, embed bool, n int) error {
	s.elem()
	err := s.w.WriteByte('{')
	s.push(jsonInObject)
	return err
}

func (s *JSONSink) EndStruct() error {
	s.pop()
	return s.w.WriteByte('}')
}

func (s *JSONSink) BeginOption(elem Type, present bool) error {
	// Separate from the enclosing frame here, not when the inner value
	// writes: inside the option frame elem is a no-op.
	s.elem()
	var err error
	if !present {
		_, err = s.w.WriteString("null")
	}
	s.push(jsonInOption)
	return err
}

func (s *JSONSink) EndOption() error {
	s.pop()
	return nil
}

func (s *JSONSink) BeginMap(key, elem Type, n int) error {
	s.elem()
	err := s.w.WriteByte('{')
	s.push(jsonInObject)
	return err
}

func (s *JSONSink) MapKey(k KeyValue) error {
	s.key(mapKeyName(s.names, k))
	return nil
}

func (s *JSONSink) EndMap() error {
	s.pop()
	return s.w.WriteByte('}')
}

func formatF32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// jsonF32 renders non-finite floats as null; JSON has no NaN or Inf
// tokens. The bit patterns still decode — only this backend flattens
// them.
func jsonF32(v float32) string {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return "null"
	}
	return formatF32(v)
}

var _ Sink = (*JSONSink)(nil)
