package propbin

import "testing"

func TestOverlayReplacesAndAppends(t *testing.T) {
	base := &Document{Version: 3, Linked: []string{"data/other.bin"}, Entries: []Entry{
		{Path: 0x1, Class: 0x10, Fields: []Field{{0x100, U32(1)}}},
		{Path: 0x2, Class: 0x20, Fields: []Field{{0x200, U32(2)}}},
		{Path: 0x3, Class: 0x30, Fields: []Field{{0x300, U32(3)}}},
	}}
	patch := &Document{Version: 3, IsPatch: true, Entries: []Entry{
		{Path: 0x2, Class: 0x20, Fields: []Field{{0x200, U32(22)}}},
		{Path: 0x9, Class: 0x90, Fields: []Field{{0x900, U32(9)}}},
	}}

	out := base.Overlay(patch)

	if len(out.Entries) != 4 {
		t.Fatalf("overlay has %d entries, wanted 4", len(out.Entries))
	}
	paths := make([]uint32, len(out.Entries))
	for i, e := range out.Entries {
		paths[i] = uint32(e.Path)
	}
	want := []uint32{0x1, 0x2, 0x3, 0x9}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("entry order = %v, wanted %v", paths, want)
		}
	}
	if v, _ := As[U32](out.Entries[1].Fields[0].Value); v != 22 {
		t.Errorf("replaced entry value = %v, wanted 22", out.Entries[1].Fields[0].Value)
	}
	if out.Version != 3 || out.IsPatch || len(out.Linked) != 1 {
		t.Errorf("overlay header = %+v, wanted the base document's", out)
	}

	// Neither input is modified.
	if v, _ := As[U32](base.Entries[1].Fields[0].Value); v != 2 {
		t.Errorf("base was modified: %v", base.Entries[1].Fields[0].Value)
	}
	if len(base.Entries) != 3 || len(patch.Entries) != 2 {
		t.Errorf("input entry counts changed: %d, %d", len(base.Entries), len(patch.Entries))
	}
}

func TestOverlayEmptyPatch(t *testing.T) {
	base := &Document{Version: 2, Entries: []Entry{{Path: 0x1, Class: 0x2}}}
	out := base.Overlay(&Document{Version: 2, IsPatch: true})
	if len(out.Entries) != 1 || out.Entries[0].Path != 0x1 {
		t.Fatalf("overlay with empty patch changed entries: %+v", out.Entries)
	}
}

func TestOverlayDuplicatePatchPaths(t *testing.T) {
	base := &Document{Version: 2, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{0x3, U32(1)}}},
	}}
	patch := &Document{Version: 2, IsPatch: true, Entries: []Entry{
		{Path: 0x1, Class: 0x2, Fields: []Field{{0x3, U32(2)}}},
		{Path: 0x1, Class: 0x2, Fields: []Field{{0x3, U32(3)}}},
	}}
	out := base.Overlay(patch)
	if len(out.Entries) != 1 {
		t.Fatalf("overlay has %d entries, wanted 1", len(out.Entries))
	}
	if v, _ := As[U32](out.Entries[0].Fields[0].Value); v != 3 {
		t.Fatalf("later patch entry did not win: %v", out.Entries[0].Fields[0].Value)
	}
}
