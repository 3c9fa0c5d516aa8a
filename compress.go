package propbin

import (
	"bufio"
	"io"

	"github.com/DataDog/zstd"
)

var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

// OpenRaw sniffs r and interposes a zstd decompressor when the stream
// starts with a zstd frame, passing plain bin bytes through untouched.
// Collaborators feeding compressed buffers use this as a synchronous
// streaming filter in front of the decoder. Close the returned reader
// when done.
func OpenRaw(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(head) == 4 && [4]byte(head) == zstdMagic {
		return zstd.NewReader(br), nil
	}
	return io.NopCloser(br), nil
}
