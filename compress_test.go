package propbin

import (
	"bytes"
	"io"
	"testing"

	"github.com/DataDog/zstd"
)

func TestOpenRawPassthrough(t *testing.T) {
	raw := encFile(kitchenSinkDoc())
	r, err := OpenRaw(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatal("plain stream was not passed through byte for byte")
	}
}

func TestOpenRawZstd(t *testing.T) {
	raw := encFile(kitchenSinkDoc())
	compressed, err := zstd.Compress(nil, raw)
	if err != nil {
		t.Fatal(err)
	}
	r, err := OpenRaw(bytes.NewReader(compressed))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	doc, err := DecodeAll(r)
	if err != nil {
		t.Fatalf("decoding through the zstd filter: %v", err)
	}
	if len(doc.Entries) != len(kitchenSinkDoc().Entries) {
		t.Fatalf("decoded %d entries, wanted %d", len(doc.Entries), len(kitchenSinkDoc().Entries))
	}
}

func TestOpenRawShortStream(t *testing.T) {
	for _, in := range [][]byte{nil, {0x28}, {0x28, 0xB5, 0x2F}} {
		r, err := OpenRaw(bytes.NewReader(in))
		if err != nil {
			t.Fatalf("OpenRaw(%d bytes) failed: %v", len(in), err)
		}
		got, err := io.ReadAll(r)
		r.Close()
		if err != nil || !bytes.Equal(got, in) {
			t.Fatalf("short stream %v read back as %v (err %v)", in, got, err)
		}
	}
}
