package propbin

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/deverenn/propbin/binhash"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "test.idx"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndexAddFileAndLookup(t *testing.T) {
	ix := openTestIndex(t)
	if err := ix.AddFile("characters.bin", bytes.NewReader(encFile(kitchenSinkDoc()))); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}

	doc := kitchenSinkDoc()
	n, err := ix.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(doc.Entries) {
		t.Fatalf("Count = %d, wanted %d", n, len(doc.Entries))
	}
	for _, e := range doc.Entries {
		rec, ok, err := ix.Lookup(e.Path)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("entry %v not indexed", e.Path)
		}
		if rec.File != "characters.bin" || rec.Class != uint32(e.Class) {
			t.Fatalf("Lookup(%v) = %+v", e.Path, rec)
		}
	}

	if _, ok, err := ix.Lookup(binhash.EntryHash(0xfeedface)); err != nil || ok {
		t.Fatalf("absent lookup = ok=%v err=%v", ok, err)
	}
}

func TestIndexPathsAreOrdered(t *testing.T) {
	ix := openTestIndex(t)
	doc := &Document{Version: 1, Entries: []Entry{
		{Path: 0xffff0000, Class: 0x1},
		{Path: 0x00000002, Class: 0x2},
		{Path: 0x7f000000, Class: 0x3},
	}}
	if err := ix.AddFile("x.bin", bytes.NewReader(encFile(doc))); err != nil {
		t.Fatal(err)
	}
	paths, err := ix.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("Paths returned %d hashes, wanted 3", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Fatalf("paths out of order: %v", paths)
		}
	}
}

func TestIndexAddCorpusSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(good, encFile(kitchenSinkDoc()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("not a bin file"), 0o644); err != nil {
		t.Fatal(err)
	}

	ix := openTestIndex(t)
	indexed, failed := ix.AddCorpus([]string{good, bad, filepath.Join(dir, "missing.bin")})
	if indexed != 1 || failed != 2 {
		t.Fatalf("AddCorpus = (%d indexed, %d failed), wanted (1, 2)", indexed, failed)
	}
	n, err := ix.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(kitchenSinkDoc().Entries) {
		t.Fatalf("Count = %d after corpus with one good file", n)
	}
}

func TestIndexLastWriterWins(t *testing.T) {
	ix := openTestIndex(t)
	doc := &Document{Version: 1, Entries: []Entry{{Path: 0x1, Class: 0x2}}}
	if err := ix.AddFile("a.bin", bytes.NewReader(encFile(doc))); err != nil {
		t.Fatal(err)
	}
	if err := ix.AddFile("b.bin", bytes.NewReader(encFile(doc))); err != nil {
		t.Fatal(err)
	}
	rec, ok, err := ix.Lookup(0x1)
	if err != nil || !ok {
		t.Fatalf("Lookup = ok=%v err=%v", ok, err)
	}
	if rec.File != "b.bin" {
		t.Fatalf("record points at %s, wanted the last writer b.bin", rec.File)
	}
}
