package propbin

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// binReader pulls little-endian primitives off a forward-only byte
// stream, tracking the absolute offset for error reporting. Not
// re-seekable and not safe for concurrent use.
type binReader struct {
	r   io.Reader
	off int64
	tmp [64]byte
}

func newBinReader(r io.Reader) *binReader {
	return &binReader{r: r}
}

// read fills tmp with exactly n bytes. Short reads are truncation, a
// malformed-input condition; any other failure is the reader's own
// error, passed through untouched.
func (d *binReader) read(n int) ([]byte, error) {
	b := d.tmp[:n]
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, d.readErr(err, n)
	}
	d.off += int64(n)
	return b, nil
}

func (d *binReader) readErr(err error, wanted int) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatErrf(d.off, nil, "truncated: %d more bytes expected", wanted)
	}
	return err
}

func (d *binReader) u8() (uint8, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *binReader) u16() (uint16, error) {
	b, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *binReader) u32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *binReader) u64() (uint64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *binReader) f32() (float32, error) {
	v, err := d.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// bytes allocates; use for payloads longer than tmp.
func (d *binReader) bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, d.readErr(err, n)
	}
	d.off += int64(n)
	return b, nil
}

// str16 reads the u16-length-prefixed UTF-8 string form used by both
// string values and linked-file paths.
func (d *binReader) str16() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := d.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *binReader) skip(n int64) error {
	if n == 0 {
		return nil
	}
	m, err := io.CopyN(io.Discard, d.r, n)
	d.off += m
	if err != nil {
		if errors.Is(err, io.EOF) {
			return formatErrf(d.off, nil, "truncated: %d more bytes expected", n-m)
		}
		return err
	}
	return nil
}

// magic consumes len(want) bytes and checks them.
func (d *binReader) magic(want string) error {
	b, err := d.read(len(want))
	if err != nil {
		return err
	}
	if string(b) != want {
		return formatErrf(d.off-int64(len(want)), nil, "bad magic %q, wanted %q", b, want)
	}
	return nil
}
