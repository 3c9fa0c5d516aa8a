package propbin

import (
	"testing"

	"github.com/deverenn/propbin/binhash"
)

// countingVisitor tallies dispatched visits per kind.
type countingVisitor struct {
	NopVisitor
	typeGate func(Type) bool

	entries, fields int
	lists, structs  int
	u32s            []uint32
	strings         []string
}

func (c *countingVisitor) VisitType(t Type) bool {
	if c.typeGate != nil {
		return c.typeGate(t)
	}
	return true
}

func (c *countingVisitor) VisitEntry(*Entry) bool            { c.entries++; return true }
func (c *countingVisitor) VisitField(binhash.FieldHash) bool { c.fields++; return true }
func (c *countingVisitor) VisitList(l *List) bool            { c.lists++; return true }
func (c *countingVisitor) VisitStruct(*Struct) bool          { c.structs++; return true }

func (c *countingVisitor) VisitU32(v uint32)    { c.u32s = append(c.u32s, v) }
func (c *countingVisitor) VisitString(v string) { c.strings = append(c.strings, v) }

func TestHashCollectorExample(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{Name: 0x3, Value: U32(42)}}},
	}}
	c := NewHashCollector()
	Traverse(doc, c)
	if len(c.Sets.Entries) != 1 || !hasKey(c.Sets.Entries, binhash.EntryHash(0x1)) {
		t.Errorf("entry set = %v, wanted {00000001}", c.Sets.Entries)
	}
	if len(c.Sets.Classes) != 1 || !hasKey(c.Sets.Classes, binhash.ClassHash(0x2)) {
		t.Errorf("class set = %v, wanted {00000002}", c.Sets.Classes)
	}
	if len(c.Sets.Fields) != 1 || !hasKey(c.Sets.Fields, binhash.FieldHash(0x3)) {
		t.Errorf("field set = %v, wanted {00000003}", c.Sets.Fields)
	}
	if len(c.Sets.Values) != 0 || len(c.Sets.Paths) != 0 {
		t.Errorf("value/path sets not empty: %v %v", c.Sets.Values, c.Sets.Paths)
	}
}

func hasKey[H comparable](set map[H]struct{}, h H) bool {
	_, ok := set[h]
	return ok
}

func TestHashCollectorAllDomains(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: Hash(0xaa)},
			{Name: 0x4, Value: Link(0xbb)},
			{Name: 0x5, Value: Path(0xcc)},
			{Name: 0x6, Value: &Struct{Class: 0xdd, Fields: []Field{
				{0x7, &Embed{Class: 0xee}},
			}}},
			{Name: 0x8, Value: &Struct{}}, // null record: class 0 is not a hash
		}},
	}}
	c := NewHashCollector()
	Traverse(doc, c)
	if !hasKey(c.Sets.Values, binhash.ValueHash(0xaa)) {
		t.Error("hash leaf not collected")
	}
	if !hasKey(c.Sets.Entries, binhash.EntryHash(0xbb)) {
		t.Error("link not collected into the entry domain")
	}
	if !hasKey(c.Sets.Paths, binhash.PathHash(0xcc)) {
		t.Error("path leaf not collected")
	}
	if !hasKey(c.Sets.Classes, binhash.ClassHash(0xdd)) || !hasKey(c.Sets.Classes, binhash.ClassHash(0xee)) {
		t.Error("nested record classes not collected")
	}
	if hasKey(c.Sets.Classes, binhash.ClassHash(0)) {
		t.Error("null record class 0 was collected")
	}
	if len(c.Sets.Fields) != 6 {
		t.Errorf("collected %d field names, wanted 6", len(c.Sets.Fields))
	}
}

func TestTraverseTypeGatePrunesSubtrees(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: &List{Elem: TypeU32, Items: []Value{U32(1), U32(2)}}},
			{Name: 0x4, Value: U32(7)},
			{Name: 0x5, Value: String("skipped")},
		}},
	}}
	c := &countingVisitor{typeGate: func(t Type) bool { return t != TypeString }}
	Traverse(doc, c)
	if c.lists != 1 {
		t.Errorf("visited %d lists, wanted 1", c.lists)
	}
	if len(c.strings) != 0 {
		t.Errorf("visited strings %v despite the type gate", c.strings)
	}
	if c.fields != 3 {
		t.Errorf("visited %d field names, wanted 3 (gating is below the name)", c.fields)
	}

	// Gate out lists entirely: the items must not be dispatched either.
	c = &countingVisitor{typeGate: func(t Type) bool { return t != TypeList }}
	Traverse(doc, c)
	if c.lists != 0 || len(c.u32s) != 1 {
		t.Errorf("lists=%d u32s=%v, wanted the list and its items pruned", c.lists, c.u32s)
	}
}

func TestTraversePerInstancePruning(t *testing.T) {
	big := &Struct{Class: 0x10, Fields: []Field{{0x11, U32(1)}, {0x12, U32(2)}}}
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{Name: 0x3, Value: big}}},
	}}
	v := &pruningVisitor{prune: big}
	Traverse(doc, v)
	if v.inner != 0 {
		t.Fatalf("visited %d leaves inside a pruned struct", v.inner)
	}
}

type pruningVisitor struct {
	NopVisitor
	prune *Struct
	inner int
}

func (v *pruningVisitor) VisitStruct(s *Struct) bool { return s != v.prune }
func (v *pruningVisitor) VisitU32(uint32)            { v.inner++ }

func TestTraverseEntryPruning(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{Name: 0x3, Value: U32(1)}}},
		{Path: 0x4, Class: 0x5, Fields: []Field{{Name: 0x6, Value: U32(2)}}},
	}}
	v := &entrySkipVisitor{skip: 0x1}
	Traverse(doc, v)
	if len(v.seen) != 1 || v.seen[0] != 2 {
		t.Fatalf("visited leaves %v, wanted only the second entry's", v.seen)
	}
}

type entrySkipVisitor struct {
	NopVisitor
	skip binhash.EntryHash
	seen []uint32
}

func (v *entrySkipVisitor) VisitEntry(e *Entry) bool { return e.Path != v.skip }
func (v *entrySkipVisitor) VisitU32(u uint32)        { v.seen = append(v.seen, u) }

func TestTraverseKitchenSinkTouchesEveryLeaf(t *testing.T) {
	c := NewHashCollector()
	Traverse(kitchenSinkDoc(), c)
	if c.Sets.Len() == 0 {
		t.Fatal("collector saw nothing")
	}
	if len(c.Sets.Entries) < 2 {
		t.Errorf("collected %d entry hashes, wanted at least the 2 entry paths", len(c.Sets.Entries))
	}
}

func TestTraverseMapGates(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: &Map{Key: TypeString, Elem: TypeU32, Items: []MapPair{
				{String("a"), U32(1)},
				{String("b"), U32(2)},
			}}},
		}},
	}}
	// Gate out the key type: only values dispatch.
	v := &mapGateVisitor{gate: func(t Type) bool { return t != TypeString }}
	Traverse(doc, v)
	if v.keys != 0 || v.vals != 2 {
		t.Errorf("keys=%d vals=%d, wanted 0 keys and 2 values", v.keys, v.vals)
	}
	// Gate out both sides: the pair loop is skipped entirely.
	v = &mapGateVisitor{gate: func(t Type) bool { return t != TypeString && t != TypeU32 }}
	Traverse(doc, v)
	if v.keys != 0 || v.vals != 0 {
		t.Errorf("keys=%d vals=%d, wanted the map body pruned", v.keys, v.vals)
	}
}

type mapGateVisitor struct {
	NopVisitor
	gate func(Type) bool
	keys int
	vals int
}

func (v *mapGateVisitor) VisitType(t Type) bool { return v.gate(t) }
func (v *mapGateVisitor) VisitString(string)    { v.keys++ }
func (v *mapGateVisitor) VisitU32(uint32)       { v.vals++ }
