package propbin

import "github.com/deverenn/propbin/binhash"

// Entry is one top-level record of a document, keyed by its path hash.
// Field names are unique within an entry.
type Entry struct {
	Path   binhash.EntryHash
	Class  binhash.ClassHash
	Fields []Field
}

// EntryHeader is the part of an entry a header-only scan materializes.
type EntryHeader struct {
	Path  binhash.EntryHash
	Class binhash.ClassHash
}

// Document is one fully decoded bin file. Linked is only present for
// version ≥ 2 files. IsPatch marks a patch document, which overlays a
// subset of entries onto another document and is structurally
// identical otherwise.
type Document struct {
	Version uint32
	IsPatch bool
	Linked  []string
	Entries []Entry
}

// Overlay applies a patch document on top of doc, producing a new
// document. Patch entries replace same-path entries in place;
// previously unseen paths are appended in patch order. Neither input
// is modified.
func (doc *Document) Overlay(patch *Document) *Document {
	out := &Document{
		Version: doc.Version,
		IsPatch: doc.IsPatch,
		Linked:  doc.Linked,
		Entries: make([]Entry, len(doc.Entries), len(doc.Entries)+len(patch.Entries)),
	}
	copy(out.Entries, doc.Entries)
	byPath := make(map[binhash.EntryHash]int, len(out.Entries))
	for i := range out.Entries {
		byPath[out.Entries[i].Path] = i
	}
	for _, e := range patch.Entries {
		if i, ok := byPath[e.Path]; ok {
			out.Entries[i] = e
		} else {
			byPath[e.Path] = len(out.Entries)
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}
