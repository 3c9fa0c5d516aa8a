package propbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/deverenn/propbin/binhash"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

// Index is a persistent map from entry-path hash to the file (and
// class) holding that entry, built with header-only scans so indexing
// a corpus never pays full decode cost. Keys are big-endian so bbolt
// iterates them in numeric order.
type Index struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// IndexRecord locates one entry within an indexed corpus.
type IndexRecord struct {
	File  string `msgpack:"f"`
	Class uint32 `msgpack:"c"`
}

var indexEntriesBucket = []byte("entries")

func OpenIndex(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(indexEntriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db, logger: logger}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// AddFile header-scans one bin stream and records every entry under
// the given corpus-relative name.
func (ix *Index) AddFile(name string, r io.Reader) error {
	sc, err := NewHeaderScanner(r)
	if err != nil {
		return err
	}
	return ix.db.Update(func(tx *bbolt.Tx) error {
		buck := tx.Bucket(indexEntriesBucket)
		var key [4]byte
		for sc.Next() {
			h := sc.Header()
			binary.BigEndian.PutUint32(key[:], uint32(h.Path))
			raw, err := msgpack.Marshal(IndexRecord{File: name, Class: uint32(h.Class)})
			if err != nil {
				return err
			}
			if err := buck.Put(key[:], raw); err != nil {
				return err
			}
		}
		return sc.Err()
	})
}

// AddCorpus indexes many files, applying the batch policy: a file
// that fails to open or decode is logged and skipped, and indexing
// continues with the next one. Returns how many files were indexed
// and how many failed.
func (ix *Index) AddCorpus(files []string) (indexed, failed int) {
	for _, path := range files {
		err := ix.addPath(path)
		if err != nil {
			failed++
			ix.logger.Error("failed to index bin file", "file", path, "err", err)
			continue
		}
		indexed++
	}
	return indexed, failed
}

func (ix *Index) addPath(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := OpenRaw(f)
	if err != nil {
		return err
	}
	defer r.Close()
	return ix.AddFile(path, r)
}

// Lookup finds the file holding the entry with the given path hash.
func (ix *Index) Lookup(path binhash.EntryHash) (rec IndexRecord, ok bool, err error) {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], uint32(path))
	err = ix.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(indexEntriesBucket).Get(key[:])
		if raw == nil {
			return nil
		}
		if err := msgpack.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("corrupt index record for %v: %w", path, err)
		}
		ok = true
		return nil
	})
	return rec, ok, err
}

// Count returns the number of indexed entries.
func (ix *Index) Count() (n int, err error) {
	err = ix.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(indexEntriesBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Paths returns every indexed entry-path hash in numeric order.
func (ix *Index) Paths() (paths []binhash.EntryHash, err error) {
	err = ix.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(indexEntriesBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if len(k) == 4 {
				paths = append(paths, binhash.EntryHash(binary.BigEndian.Uint32(k)))
			}
		}
		return nil
	})
	return paths, err
}
