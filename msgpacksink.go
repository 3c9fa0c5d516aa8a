package propbin

import (
	"io"
	"strconv"

	"github.com/deverenn/propbin/binhash"

	"github.com/vmihailenco/msgpack/v5"
)

// entryKeyName, fieldKeyName and mapKeyName resolve object keys the
// same way in every keyed sink: the dictionary name when known, bare
// fixed-width hex otherwise, and quoted numerals for numeric map keys.
func entryKeyName(t *binhash.Table, h binhash.EntryHash) string {
	if n, ok := t.Entries.Get(h); ok {
		return n
	}
	return h.Hex()
}

func fieldKeyName(t *binhash.Table, h binhash.FieldHash) string {
	if n, ok := t.Fields.Get(h); ok {
		return n
	}
	return h.Hex()
}

func mapKeyName(t *binhash.Table, k KeyValue) string {
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
		return string(k)
	case Hash:
		h := binhash.ValueHash(k)
		if n, ok := t.Values.Get(h); ok {
			return n
		}
		return h.Hex()
	default:
		panic("propbin: map key outside the keyable union")
	}
}

// MsgpackSink transcodes entries to msgpack with the same shape as the
// JSON sink: one single-pair map per entry, keyed by entry path, with
// maps for structs and arrays for lists. Entries are emitted to the
// stream as they complete, so the sink streams per entry even though
// msgpack's length-prefixed maps force buffering within one entry.
type MsgpackSink struct {
	enc   *msgpack.Encoder
	names *binhash.Table
	stack []*mpPairs
	lists [][]any // parallel to frames holding arrays
	frame []mpFrameKind
	key   []string // pending field/map key per pairs frame
	paths []string // open entry keys, separate from pending keys
}

type mpFrameKind int

const (
	mpPairsFrame mpFrameKind = iota
	mpListFrame
	mpOptionFrame
)

// mpPairs is an order-preserving string-keyed map node.
type mpPairs struct {
	keys []string
	vals []any
}

func NewMsgpackSink(w io.Writer, names *binhash.Table) *MsgpackSink {
	if names == nil {
		names = binhash.NewTable()
	}
	return &MsgpackSink{enc: msgpack.NewEncoder(w), names: names}
}

func (s *MsgpackSink) BeginEntries() error { return nil }
func (s *MsgpackSink) EndEntries() error   { return nil }

func (s *MsgpackSink) BeginEntry(path binhash.EntryHash, class binhash.ClassHash) error {
	s.stack = append(s.stack, &mpPairs{})
	s.frame = append(s.frame, mpPairsFrame)
	s.key = append(s.key, "")
	s.paths = append(s.paths, entryKeyName(s.names, path))
	return nil
}

func (s *MsgpackSink) EndEntry() error {
	p := s.stack[len(s.stack)-1]
	path := s.paths[len(s.paths)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.frame = s.frame[:len(s.frame)-1]
	s.key = s.key[:len(s.key)-1]
	s.paths = s.paths[:len(s.paths)-1]
	if err := s.enc.EncodeMapLen(1); err != nil {
		return err
	}
	if err := s.enc.EncodeString(path); err != nil {
		return err
	}
	return s.encodeNode(p)
}

func (s *MsgpackSink) FieldName(name binhash.FieldHash) error {
	s.key[len(s.key)-1] = fieldKeyName(s.names, name)
	return nil
}

// add attaches a completed node to the innermost open container.
func (s *MsgpackSink) add(v any) error {
	switch s.frame[len(s.frame)-1] {
	case mpPairsFrame:
		p := s.stack[len(s.stack)-1]
		p.keys = append(p.keys, s.key[len(s.key)-1])
		p.vals = append(p.vals, v)
	case mpListFrame:
		i := len(s.lists) - 1
		s.lists[i] = append(s.lists[i], v)
	case mpOptionFrame:
		i := len(s.lists) - 1
		s.lists[i] = append(s.lists[i], v)
	}
	return nil
}

func (s *MsgpackSink) None() error          { return s.add(nil) }
func (s *MsgpackSink) Bool(v bool) error    { return s.add(v) }
func (s *MsgpackSink) Flag(v bool) error    { return s.add(v) }
func (s *MsgpackSink) S8(v int8) error      { return s.add(int64(v)) }
func (s *MsgpackSink) U8(v uint8) error     { return s.add(uint64(v)) }
func (s *MsgpackSink) S16(v int16) error    { return s.add(int64(v)) }
func (s *MsgpackSink) U16(v uint16) error   { return s.add(uint64(v)) }
func (s *MsgpackSink) S32(v int32) error    { return s.add(int64(v)) }
func (s *MsgpackSink) U32(v uint32) error   { return s.add(uint64(v)) }
func (s *MsgpackSink) S64(v int64) error    { return s.add(v) }
func (s *MsgpackSink) U64(v uint64) error   { return s.add(v) }
func (s *MsgpackSink) Float(v float32) error { return s.add(v) }

func (s *MsgpackSink) Vec2(v Vec2) error { return s.addFloats(v[:]) }
func (s *MsgpackSink) Vec3(v Vec3) error { return s.addFloats(v[:]) }
func (s *MsgpackSink) Vec4(v Vec4) error { return s.addFloats(v[:]) }

func (s *MsgpackSink) addFloats(vs []float32) error {
	arr := make([]any, len(vs))
	for i, v := range vs {
		arr[i] = v
	}
	return s.add(arr)
}

func (s *MsgpackSink) Matrix(v Matrix) error {
	rows := make([]any, len(v))
	for i := range v {
		row := make([]any, len(v[i]))
		for j, f := range v[i] {
			row[j] = f
		}
		rows[i] = row
	}
	return s.add(rows)
}

func (s *MsgpackSink) Color(v Color) error {
	arr := make([]any, len(v))
	for i, c := range v {
		arr[i] = uint64(c)
	}
	return s.add(arr)
}

func (s *MsgpackSink) String(v string) error {
	return s.add(v)
}

func (s *MsgpackSink) Hash(v binhash.ValueHash) error {
	return s.add(s.names.Values.Seek(v))
}

func (s *MsgpackSink) Path(v binhash.PathHash) error {
	return s.add(s.names.Paths.Seek(v))
}

func (s *MsgpackSink) Link(v binhash.EntryHash) error {
	return s.add(s.names.Entries.Seek(v))
}

func (s *MsgpackSink) BeginList(elem Type, n int) error {
	s.frame = append(s.frame, mpListFrame)
	s.lists = append(s.lists, make([]any, 0, n))
	return nil
}

func (s *MsgpackSink) EndList() error {
	arr := s.lists[len(s.lists)-1]
	s.lists = s.lists[:len(s.lists)-1]
	s.frame = s.frame[:len(s.frame)-1]
	return s.add(arr)
}

func (s *MsgpackSink) BeginStruct(class binhash.ClassHash, embed bool, n int) error {
	s.stack = append(s.stack, &mpPairs{})
	s.frame = append(s.frame, mpPairsFrame)
	s.key = append(s.key, "")
	return nil
}

func (s *MsgpackSink) EndStruct() error {
	p := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.frame = s.frame[:len(s.frame)-1]
	s.key = s.key[:len(s.key)-1]
	return s.add(p)
}

func (s *MsgpackSink) BeginOption(elem Type, present bool) error {
	s.frame = append(s.frame, mpOptionFrame)
	s.lists = append(s.lists, nil)
	return nil
}

func (s *MsgpackSink) EndOption() error {
	inner := s.lists[len(s.lists)-1]
	s.lists = s.lists[:len(s.lists)-1]
	s.frame = s.frame[:len(s.frame)-1]
	if len(inner) == 0 {
		return s.add(nil)
	}
	return s.add(inner[0])
}

func (s *MsgpackSink) BeginMap(key, elem Type, n int) error {
	s.stack = append(s.stack, &mpPairs{})
	s.frame = append(s.frame, mpPairsFrame)
	s.key = append(s.key, "")
	return nil
}

func (s *MsgpackSink) MapKey(k KeyValue) error {
	s.key[len(s.key)-1] = mapKeyName(s.names, k)
	return nil
}

func (s *MsgpackSink) EndMap() error {
	return s.EndStruct()
}

func (s *MsgpackSink) encodeNode(v any) error {
	switch v := v.(type) {
	case *mpPairs:
		if err := s.enc.EncodeMapLen(len(v.keys)); err != nil {
			return err
		}
		for i, k := range v.keys {
			if err := s.enc.EncodeString(k); err != nil {
				return err
			}
			if err := s.encodeNode(v.vals[i]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if err := s.enc.EncodeArrayLen(len(v)); err != nil {
			return err
		}
		for _, item := range v {
			if err := s.encodeNode(item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return s.enc.EncodeNil()
	case bool:
		return s.enc.EncodeBool(v)
	case int64:
		return s.enc.EncodeInt(v)
	case uint64:
		return s.enc.EncodeUint(v)
	case float32:
		return s.enc.EncodeFloat32(v)
	case string:
		return s.enc.EncodeString(v)
	default:
		panic("propbin: unexpected msgpack node")
	}
}

var _ Sink = (*MsgpackSink)(nil)
