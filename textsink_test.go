package propbin

import (
	"strings"
	"testing"

	"github.com/deverenn/propbin/binhash"
)

func textOf(t *testing.T, doc *Document, names *binhash.Table) string {
	t.Helper()
	var sb strings.Builder
	sink := NewTextSink(&sb, names)
	if err := WriteDocument(sink, doc); err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}
	return sb.String()
}

func TestTextGolden(t *testing.T) {
	doc := &Document{Version: 3, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: U32(42)},
			{Name: 0x4, Value: String("hi 'there'")},
			{Name: 0x5, Value: &List{Elem: TypeU32, Items: []Value{U32(1), U32(2)}}},
			{Name: 0x6, Value: &Struct{Class: 0x7, Fields: []Field{{0x8, Bool(true)}}}},
			{Name: 0x9, Value: &Option{Elem: TypeString}},
			{Name: 0xa, Value: &Map{Key: TypeString, Elem: TypeU32, Items: []MapPair{
				{String("k"), U32(5)},
			}}},
		}},
	}}
	want := `BinEntry {00000001} {00000002} {
  {00000003}: U32 = 42
  {00000004}: STRING = 'hi \'there\''
  {00000005}: LIST(U32) = [
    1
    2
  ]
  {00000006}: STRUCT {00000007} = {
    {00000008}: BOOL = true
  }
  {00000009}: OPTION(STRING) = {}
  {0000000a}: MAP(STRING,U32) = {
    'k' = 5
  }
}
`
	if got := textOf(t, doc, nil); got != want {
		t.Fatalf("tree output:\n%s\nwanted:\n%s", got, want)
	}
}

func TestTextResolvedNames(t *testing.T) {
	names := binhash.NewTable()
	names.Entries.Insert(binhash.HashEntry("skins/annie"), "skins/annie")
	names.Classes.Insert(binhash.HashClass("SkinCharacterDataProperties"), "SkinCharacterDataProperties")
	names.Fields.Insert(binhash.HashField("mHealth"), "mHealth")
	doc := &Document{Version: 1, Entries: []Entry{
		{
			Path:  binhash.HashEntry("skins/annie"),
			Class: binhash.HashClass("SkinCharacterDataProperties"),
			Fields: []Field{
				{Name: binhash.HashField("mHealth"), Value: Float(525.5)},
			},
		},
	}}
	want := `BinEntry skins/annie SkinCharacterDataProperties {
  mHealth: FLOAT = 525.5
}
`
	if got := textOf(t, doc, names); got != want {
		t.Fatalf("tree output:\n%s\nwanted:\n%s", got, want)
	}
}

func TestTextNestedContainers(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: &List{Elem: TypeEmbed, Items: []Value{
				&Embed{Class: 0x4, Fields: []Field{
					{0x5, &Option{Elem: TypeU8, Value: U8(7)}},
				}},
				&Embed{},
			}}},
		}},
	}}
	want := `BinEntry {00000001} {00000002} {
  {00000003}: LIST(EMBED) = [
    EMBED {00000004} = {
      {00000005}: OPTION(U8) = {
        7
      }
    }
    EMBED {00000000} = {}
  ]
}
`
	if got := textOf(t, doc, nil); got != want {
		t.Fatalf("tree output:\n%s\nwanted:\n%s", got, want)
	}
}

func TestTextNullStructEqualsEmptyStruct(t *testing.T) {
	null := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{Name: 0x3, Value: &Struct{}}}},
	}}
	empty := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{Name: 0x3, Value: &Struct{Class: 0, Fields: []Field{}}}}},
	}}
	if a, b := textOf(t, null, nil), textOf(t, empty, nil); a != b {
		t.Fatalf("null struct (%s) and empty struct (%s) render differently", a, b)
	}
}

func TestTextHashKindsUsePlaceholders(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: Hash(0xdeadbeef)},
			{Name: 0x4, Value: Link(0x33333333)},
			{Name: 0x5, Value: Path(0x1122334455667788)},
		}},
	}}
	got := textOf(t, doc, nil)
	for _, frag := range []string{
		"{00000003}: HASH = {deadbeef}",
		"{00000004}: LINK = {33333333}",
		"{00000005}: PATH = {1122334455667788}",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("output missing %q:\n%s", frag, got)
		}
	}
}

func TestTextMapKeyKinds(t *testing.T) {
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{
			{Name: 0x3, Value: &Map{Key: TypeHash, Elem: TypeU32, Items: []MapPair{
				{Hash(0xcafe), U32(1)},
			}}},
			{Name: 0x4, Value: &Map{Key: TypeFloat, Elem: TypeBool, Items: []MapPair{
				{Float(2.5), Bool(false)},
			}}},
		}},
	}}
	got := textOf(t, doc, nil)
	for _, frag := range []string{
		"{0000cafe} = 1",
		"2.5 = false",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("output missing %q:\n%s", frag, got)
		}
	}
}

func TestQuoteSingle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "'plain'"},
		{"it's", `'it\'s'`},
		{`a\b`, `'a\\b'`},
		{"two\nlines", `'two\nlines'`},
	}
	for _, test := range tests {
		if got := quoteSingle(test.in); got != test.want {
			t.Errorf("quoteSingle(%q) = %s, wanted %s", test.in, got, test.want)
		}
	}
}
