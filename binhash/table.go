package binhash

// Domain enumerates the identifier domains of the format. The four
// 32-bit domains hash case-insensitively; DomainPath is the 64-bit
// case-sensitive one.
type Domain int

const (
	DomainEntry Domain = iota
	DomainClass
	DomainField
	DomainValue
	DomainPath

	domainCount
)

var domainNames = [domainCount]string{"entry", "class", "field", "value", "path"}

func (d Domain) String() string {
	if d < 0 || d >= domainCount {
		return "domain?"
	}
	return domainNames[d]
}

// Compute hashes s in the given domain, widened to uint64 for the
// 32-bit domains.
func Compute(d Domain, s string) uint64 {
	if d == DomainPath {
		return uint64(HashPath(s))
	}
	return uint64(fnv1aLower(s))
}

// DomainFile pairs a domain with its conventional dictionary filename.
type DomainFile struct {
	Domain Domain
	File   string
}

// DefaultFiles is the conventional on-disk layout of side-loaded
// dictionaries, one flat text file per domain. It is plain data;
// callers pass the table (or their own) explicitly.
var DefaultFiles = []DomainFile{
	{DomainEntry, "hashes.binentries.txt"},
	{DomainClass, "hashes.bintypes.txt"},
	{DomainField, "hashes.binfields.txt"},
	{DomainValue, "hashes.binhashes.txt"},
	{DomainPath, "hashes.game.txt"},
}

// Table groups one mapper per domain so callers hold a single handle
// and index by domain.
type Table struct {
	Entries *Mapper[EntryHash]
	Classes *Mapper[ClassHash]
	Fields  *Mapper[FieldHash]
	Values  *Mapper[ValueHash]
	Paths   *Mapper[PathHash]
}

func NewTable() *Table {
	return &Table{
		Entries: NewMapper[EntryHash](),
		Classes: NewMapper[ClassHash](),
		Fields:  NewMapper[FieldHash](),
		Values:  NewMapper[ValueHash](),
		Paths:   NewMapper[PathHash](),
	}
}

// Load reads the dictionary for one domain from path. A missing or
// malformed file is the caller's problem; decoding never needs a
// dictionary.
func (t *Table) Load(d Domain, path string) error {
	switch d {
	case DomainEntry:
		return t.Entries.Load(path)
	case DomainClass:
		return t.Classes.Load(path)
	case DomainField:
		return t.Fields.Load(path)
	case DomainValue:
		return t.Values.Load(path)
	case DomainPath:
		return t.Paths.Load(path)
	default:
		panic("unknown hash domain")
	}
}

func (t *Table) Save(d Domain, path string) error {
	switch d {
	case DomainEntry:
		return t.Entries.Save(path)
	case DomainClass:
		return t.Classes.Save(path)
	case DomainField:
		return t.Fields.Save(path)
	case DomainValue:
		return t.Values.Save(path)
	case DomainPath:
		return t.Paths.Save(path)
	default:
		panic("unknown hash domain")
	}
}

// Sets accumulates hashes seen in decoded data, per domain. A hash
// collection pass fills one of these; guessing then tests candidate
// strings against it.
type Sets struct {
	Entries map[EntryHash]struct{}
	Classes map[ClassHash]struct{}
	Fields  map[FieldHash]struct{}
	Values  map[ValueHash]struct{}
	Paths   map[PathHash]struct{}
}

func NewSets() *Sets {
	return &Sets{
		Entries: make(map[EntryHash]struct{}),
		Classes: make(map[ClassHash]struct{}),
		Fields:  make(map[FieldHash]struct{}),
		Values:  make(map[ValueHash]struct{}),
		Paths:   make(map[PathHash]struct{}),
	}
}

func (s *Sets) Len() int {
	return len(s.Entries) + len(s.Classes) + len(s.Fields) + len(s.Values) + len(s.Paths)
}

// Unknown returns the subset of s that t cannot resolve.
func (s *Sets) Unknown(t *Table) *Sets {
	u := NewSets()
	for h := range s.Entries {
		if !t.Entries.IsKnown(h) {
			u.Entries[h] = struct{}{}
		}
	}
	for h := range s.Classes {
		if !t.Classes.IsKnown(h) {
			u.Classes[h] = struct{}{}
		}
	}
	for h := range s.Fields {
		if !t.Fields.IsKnown(h) {
			u.Fields[h] = struct{}{}
		}
	}
	for h := range s.Values {
		if !t.Values.IsKnown(h) {
			u.Values[h] = struct{}{}
		}
	}
	for h := range s.Paths {
		if !t.Paths.IsKnown(h) {
			u.Paths[h] = struct{}{}
		}
	}
	return u
}

// Check tests candidate against every domain set and records it in the
// table's mappers on a match. This is the hook hash-guessing
// generators feed; it is single-writer like Insert. Returns the number
// of domains the candidate resolved.
func (t *Table) Check(wanted *Sets, candidate string) int {
	var hits int
	h32 := fnv1aLower(candidate)
	if _, ok := wanted.Entries[EntryHash(h32)]; ok && !t.Entries.IsKnown(EntryHash(h32)) {
		t.Entries.Insert(EntryHash(h32), candidate)
		hits++
	}
	if _, ok := wanted.Classes[ClassHash(h32)]; ok && !t.Classes.IsKnown(ClassHash(h32)) {
		t.Classes.Insert(ClassHash(h32), candidate)
		hits++
	}
	if _, ok := wanted.Fields[FieldHash(h32)]; ok && !t.Fields.IsKnown(FieldHash(h32)) {
		t.Fields.Insert(FieldHash(h32), candidate)
		hits++
	}
	if _, ok := wanted.Values[ValueHash(h32)]; ok && !t.Values.IsKnown(ValueHash(h32)) {
		t.Values.Insert(ValueHash(h32), candidate)
		hits++
	}
	h64 := HashPath(candidate)
	if _, ok := wanted.Paths[h64]; ok && !t.Paths.IsKnown(h64) {
		t.Paths.Insert(h64, candidate)
		hits++
	}
	return hits
}
