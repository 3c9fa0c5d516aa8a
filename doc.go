/*
Package propbin decodes and re-encodes the PROP ("bin") container
format: a schema-less binary format holding nested, dynamically typed
game data. Values are self-describing — every field carries its own
type tag — and all identifiers (entry paths, class names, field names,
auxiliary hash values) are stored as 32-bit hashes, never as strings.
Human-readable names only exist in optional side-loaded dictionaries
(see the binhash subpackage).

We implement:

1. A closed value union over the format's ~20 type tags, with a
compile-time-checked subset for map-key-eligible types.

2. A streaming decoder with three consumption strategies over one
grammar: header-only scans, predicate-filtered parses, and full
parses, all exposed as a forward-only cursor.

3. A serialization framework: one shared walk, three sinks (JSON,
indented text tree, msgpack), identical rendering of hash identifiers
everywhere.

4. A prunable read-only traversal engine, used by the hash collection
and guessing tooling.

# Wire format

All integers are little-endian.

**Header**: optional "PTCH" magic + u32 pair (1, 0) marking a patch
file, then "PROP" magic + u32 version. Version ≥ 2 adds a u32-counted
list of linked-file paths (u16 byte length + UTF-8 bytes each). Then a
u32-counted list of class-name hashes: its length is the entry count
and its order is positional.

**Entry**: u32 body length (counting the path field), u32 entry-path
hash, then u16 field count and that many fields.

**Field**: u32 name hash, u8 type tag (bytes ≥ 0x80 are the legacy
container numbering, remapped by subtracting 0x80 into the range
starting at LIST), then the tag-specific payload. Containers recurse:
structs/embeds carry a class hash (0 is the short-form null record)
plus a sized field list; lists and maps carry declared element types,
a reserved size, and a count; options carry an element type and a 0/1
count.

Decoding never needs a dictionary; name resolution is display-only.
*/
package propbin
