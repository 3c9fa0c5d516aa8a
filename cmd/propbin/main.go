// Command propbin transcodes PROP/bin files and maintains the hash
// tooling around them: dump as JSON/text/msgpack, collect unknown
// hashes, build and query a corpus index.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/deverenn/propbin"
	"github.com/deverenn/propbin/binhash"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "dump":
		err = cmdDump(os.Args[2:])
	case "hashes":
		err = cmdHashes(os.Args[2:])
	case "index":
		err = cmdIndex(os.Args[2:])
	case "lookup":
		err = cmdLookup(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  propbin dump [-format json|tree|msgpack] [-hashdir DIR] [-config FILE] FILE...
  propbin hashes [-hashdir DIR] [-config FILE] FILE...
  propbin index [-db FILE] FILE...
  propbin lookup [-db FILE] [-hashdir DIR] PATH...`)
}

// hashConfig optionally remaps dictionary files per domain, e.g.:
//
//	[hashes]
//	entry = "my.binentries.txt"
//	path = "my.game.txt"
type hashConfig struct {
	Hashes map[string]string `toml:"hashes"`
}

// loadTable loads every dictionary it can find under dir. Missing
// files are fine (decoding never depends on names); malformed ones
// are not.
func loadTable(dir, configPath string) (*binhash.Table, error) {
	files := binhash.DefaultFiles
	if configPath != "" {
		var cfg hashConfig
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			return nil, err
		}
		files = overrideFiles(files, cfg)
	}
	t := binhash.NewTable()
	for _, df := range files {
		path := df.File
		if dir != "" {
			path = filepath.Join(dir, path)
		}
		err := t.Load(df.Domain, path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
	}
	return t, nil
}

func overrideFiles(files []binhash.DomainFile, cfg hashConfig) []binhash.DomainFile {
	out := make([]binhash.DomainFile, len(files))
	copy(out, files)
	for i := range out {
		if f, ok := cfg.Hashes[out[i].Domain.String()]; ok {
			out[i].File = f
		}
	}
	return out
}

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	format := fs.String("format", "tree", "output format: json, tree or msgpack")
	hashdir := fs.String("hashdir", "", "directory holding hash dictionaries")
	config := fs.String("config", "", "TOML file remapping dictionary filenames")
	fs.Parse(args)

	names, err := loadTable(*hashdir, *config)
	if err != nil {
		return err
	}
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	var failed int
	for _, path := range fs.Args() {
		if err := dumpFile(path, *format, names, out); err != nil {
			failed++
			logger.Error("failed to dump bin file", "file", path, "err", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(fs.Args()))
	}
	return nil
}

func dumpFile(path, format string, names *binhash.Table, out *bufio.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := propbin.OpenRaw(f)
	if err != nil {
		return err
	}
	defer r.Close()

	sc, err := propbin.NewScanner(r)
	if err != nil {
		return err
	}
	var sink propbin.Sink
	switch format {
	case "json":
		sink = propbin.NewJSONSink(out, names)
	case "tree":
		sink = propbin.NewTextSink(out, names)
	case "msgpack":
		sink = propbin.NewMsgpackSink(out, names)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err := propbin.WriteScanner(sink, sc); err != nil {
		return err
	}
	return out.Flush()
}

func cmdHashes(args []string) error {
	fs := flag.NewFlagSet("hashes", flag.ExitOnError)
	hashdir := fs.String("hashdir", "", "directory holding hash dictionaries")
	config := fs.String("config", "", "TOML file remapping dictionary filenames")
	fs.Parse(args)

	names, err := loadTable(*hashdir, *config)
	if err != nil {
		return err
	}
	collector := propbin.NewHashCollector()
	var failed int
	for _, path := range fs.Args() {
		if err := collectFile(path, collector); err != nil {
			failed++
			logger.Error("failed to scan bin file", "file", path, "err", err)
		}
	}
	unknown := collector.Sets.Unknown(names)
	printHashSet(hashKeys32(unknown.Entries), "entry")
	printHashSet(hashKeys32(unknown.Classes), "class")
	printHashSet(hashKeys32(unknown.Fields), "field")
	printHashSet(hashKeys32(unknown.Values), "value")
	printHashSet(hashKeys64(unknown.Paths), "path")
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(fs.Args()))
	}
	return nil
}

func collectFile(path string, collector *propbin.HashCollector) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := propbin.OpenRaw(f)
	if err != nil {
		return err
	}
	defer r.Close()
	doc, err := propbin.DecodeAll(r)
	if err != nil {
		return err
	}
	propbin.Traverse(doc, collector)
	return nil
}

func hashKeys32[H ~uint32](set map[H]struct{}) []string {
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, fmt.Sprintf("%08x", uint32(h)))
	}
	return out
}

func hashKeys64[H ~uint64](set map[H]struct{}) []string {
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, fmt.Sprintf("%016x", uint64(h)))
	}
	return out
}

func printHashSet(hashes []string, domain string) {
	sort.Strings(hashes)
	for _, h := range hashes {
		fmt.Printf("%s %s\n", domain, h)
	}
}

func cmdIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	dbPath := fs.String("db", "propbin.idx", "index database file")
	fs.Parse(args)

	ix, err := propbin.OpenIndex(*dbPath, logger)
	if err != nil {
		return err
	}
	defer ix.Close()
	indexed, failed := ix.AddCorpus(fs.Args())
	n, err := ix.Count()
	if err != nil {
		return err
	}
	logger.Info("indexed corpus", "files", indexed, "failed", failed, "entries", n)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, indexed+failed)
	}
	return nil
}

func cmdLookup(args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	dbPath := fs.String("db", "propbin.idx", "index database file")
	hashdir := fs.String("hashdir", "", "directory holding hash dictionaries")
	fs.Parse(args)

	names, err := loadTable(*hashdir, "")
	if err != nil {
		return err
	}
	ix, err := propbin.OpenIndex(*dbPath, logger)
	if err != nil {
		return err
	}
	defer ix.Close()
	for _, token := range fs.Args() {
		h := binhash.MakeEntry(token)
		rec, ok, err := ix.Lookup(h)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%s: not indexed\n", names.Entries.Seek(h))
			continue
		}
		fmt.Printf("%s: %s (class %s)\n", names.Entries.Seek(h), rec.File,
			names.Classes.Seek(binhash.ClassHash(rec.Class)))
	}
	return nil
}
