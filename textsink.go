package propbin

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/deverenn/propbin/binhash"
)

// TextSink renders a document as a human-readable indented tree. Each
// entry opens a `BinEntry <path> <class>` block; nested values carry a
// type annotation (LIST(T), STRUCT name, EMBED name, OPTION(T),
// MAP(K,V)), scalars render bare, strings single-quoted, hash-typed
// identifiers resolved through the dictionary or shown as the braced
// {hex} placeholder. Nesting indents two spaces per level.
type TextSink struct {
	w       *bufio.Writer
	names   *binhash.Table
	indent  int
	pending textPos
	empties []bool // per open container: rendered inline as {} / []
}

type textPos int

const (
	posItem textPos = iota // own line inside a list/option
	posField               // after "name: ", annotate even scalars
	posMapVal              // after "key = "
)

func NewTextSink(w io.Writer, names *binhash.Table) *TextSink {
	if names == nil {
		names = binhash.NewTable()
	}
	return &TextSink{w: bufio.NewWriter(w), names: names}
}

func (s *TextSink) Flush() error {
	return s.w.Flush()
}

func (s *TextSink) line() {
	for i := 0; i < s.indent; i++ {
		s.w.WriteString("  ")
	}
}

// scalar places one leaf token according to the pending position.
func (s *TextSink) scalar(tname, token string) error {
	switch s.pending {
	case posField:
		s.w.WriteString(tname)
		s.w.WriteString(" = ")
	case posMapVal:
	default:
		s.line()
	}
	s.pending = posItem
	s.w.WriteString(token)
	return s.w.WriteByte('\n')
}

// open places a container with its annotation. Empty containers close
// inline; the matching end call then emits nothing.
func (s *TextSink) open(annot string, bracket byte, empty bool) error {
	switch s.pending {
	case posField, posMapVal:
	default:
		s.line()
	}
	s.pending = posItem
	s.w.WriteString(annot)
	s.w.WriteString(" = ")
	s.w.WriteByte(bracket)
	s.empties = append(s.empties, empty)
	if empty {
		if bracket == '[' {
			s.w.WriteByte(']')
		} else {
			s.w.WriteByte('}')
		}
		return s.w.WriteByte('\n')
	}
	s.indent++
	return s.w.WriteByte('\n')
}

func (s *TextSink) close(bracket byte) error {
	empty := s.empties[len(s.empties)-1]
	s.empties = s.empties[:len(s.empties)-1]
	if empty {
		return nil
	}
	s.indent--
	s.line()
	s.w.WriteByte(bracket)
	return s.w.WriteByte('\n')
}

func (s *TextSink) BeginEntries() error { return nil }

func (s *TextSink) EndEntries() error {
	return s.w.Flush()
}

func (s *TextSink) BeginEntry(path binhash.EntryHash, class binhash.ClassHash) error {
	s.w.WriteString("BinEntry ")
	s.w.WriteString(s.names.Entries.Seek(path))
	s.w.WriteByte(' ')
	s.w.WriteString(s.names.Classes.Seek(class))
	s.w.WriteString(" {\n")
	s.indent++
	return nil
}

func (s *TextSink) EndEntry() error {
	s.indent--
	_, err := s.w.WriteString("}\n")
	return err
}

func (s *TextSink) FieldName(name binhash.FieldHash) error {
	s.line()
	s.w.WriteString(s.names.Fields.Seek(name))
	_, err := s.w.WriteString(": ")
	s.pending = posField
	return err
}

func (s *TextSink) None() error         { return s.scalar("NONE", "null") }
func (s *TextSink) Bool(v bool) error   { return s.scalar("BOOL", formatBool(v)) }
func (s *TextSink) Flag(v bool) error   { return s.scalar("FLAG", formatBool(v)) }
func (s *TextSink) S8(v int8) error     { return s.scalar("S8", strconv.FormatInt(int64(v), 10)) }
func (s *TextSink) U8(v uint8) error    { return s.scalar("U8", strconv.FormatUint(uint64(v), 10)) }
func (s *TextSink) S16(v int16) error   { return s.scalar("S16", strconv.FormatInt(int64(v), 10)) }
func (s *TextSink) U16(v uint16) error  { return s.scalar("U16", strconv.FormatUint(uint64(v), 10)) }
func (s *TextSink) S32(v int32) error   { return s.scalar("S32", strconv.FormatInt(int64(v), 10)) }
func (s *TextSink) U32(v uint32) error  { return s.scalar("U32", strconv.FormatUint(uint64(v), 10)) }
func (s *TextSink) S64(v int64) error   { return s.scalar("S64", strconv.FormatInt(v, 10)) }
func (s *TextSink) U64(v uint64) error  { return s.scalar("U64", strconv.FormatUint(v, 10)) }
func (s *TextSink) Float(v float32) error { return s.scalar("FLOAT", formatF32(v)) }

func (s *TextSink) Vec2(v Vec2) error { return s.scalar("VEC2", formatFloats(v[:])) }
func (s *TextSink) Vec3(v Vec3) error { return s.scalar("VEC3", formatFloats(v[:])) }
func (s *TextSink) Vec4(v Vec4) error { return s.scalar("VEC4", formatFloats(v[:])) }

func (s *TextSink) Matrix(v Matrix) error {
	var b strings.Builder
	b.WriteByte('[')
	for i := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatFloats(v[i][:]))
	}
	b.WriteByte(']')
	return s.scalar("MATRIX", b.String())
}

func (s *TextSink) Color(v Color) error {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	b.WriteByte(']')
	return s.scalar("COLOR", b.String())
}

func (s *TextSink) String(v string) error {
	return s.scalar("STRING", quoteSingle(v))
}

func (s *TextSink) Hash(v binhash.ValueHash) error {
	return s.scalar("HASH", s.names.Values.Seek(v))
}

func (s *TextSink) Path(v binhash.PathHash) error {
	return s.scalar("PATH", s.names.Paths.Seek(v))
}

func (s *TextSink) Link(v binhash.EntryHash) error {
	return s.scalar("LINK", s.names.Entries.Seek(v))
}

func (s *TextSink) BeginList(elem Type, n int) error {
	return s.open("LIST("+elem.String()+")", '[', n == 0)
}

func (s *TextSink) EndList() error {
	return s.close(']')
}

func (s *TextSink) BeginStruct(class binhash.ClassHash, embed bool, n int) error {
	kw := "STRUCT "
	if embed {
		kw = "EMBED "
	}
	return s.open(kw+s.names.Classes.Seek(class), '{', n == 0)
}

func (s *TextSink) EndStruct() error {
	return s.close('}')
}

func (s *TextSink) BeginOption(elem Type, present bool) error {
	return s.open("OPTION("+elem.String()+")", '{', !present)
}

func (s *TextSink) EndOption() error {
	return s.close('}')
}

func (s *TextSink) BeginMap(key, elem Type, n int) error {
	return s.open("MAP("+key.String()+","+elem.String()+")", '{', n == 0)
}

func (s *TextSink) MapKey(k KeyValue) error {
	s.line()
	s.w.WriteString(s.mapKeyToken(k))
	_, err := s.w.WriteString(" = ")
	s.pending = posMapVal
	return err
}

func (s *TextSink) mapKeyToken(k KeyValue) string {
	switch k := k.(type) {
	case S8:
		return strconv.FormatInt(int64(k), 10)
	case U8:
		return strconv.FormatUint(uint64(k), 10)
	case S16:
		return strconv.FormatInt(int64(k), 10)
	case U16:
		return strconv.FormatUint(uint64(k), 10)
	case S32:
		return strconv.FormatInt(int64(k), 10)
	case U32:
		return strconv.FormatUint(uint64(k), 10)
	case S64:
		return strconv.FormatInt(int64(k), 10)
	case U64:
		return strconv.FormatUint(uint64(k), 10)
	case Float:
		return formatF32(float32(k))
	case String:
		return quoteSingle(string(k))
	case Hash:
		return s.names.Values.Seek(binhash.ValueHash(k))
	default:
		panic("propbin: map key outside the keyable union")
	}
}

func (s *TextSink) EndMap() error {
	return s.close('}')
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func formatFloats(vs []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatF32(v))
	}
	b.WriteByte(']')
	return b.String()
}

func quoteSingle(v string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(v); i++ {
		switch c := v[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

var _ Sink = (*TextSink)(nil)
