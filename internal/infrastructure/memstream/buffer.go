// ABOUTME: Growable in-memory stream that is seekable while being filled
// ABOUTME: Materializes forward-only downloads into random-access media streams
package memstream

import (
	"errors"
	"io"
	"sync"
)

var ErrTooLarge = errors.New("memstream: buffer limit exceeded")

// Buffer appends on Write and reads from an independent cursor.
type Buffer struct {
	buf   []byte
	r     int64 // read position
	limit int   // 0 means unbounded
	mu    sync.Mutex
}

func New(limit int) *Buffer {
	return &Buffer{limit: limit}
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit > 0 && len(b.buf)+len(p) > b.limit {
		n := b.limit - len(b.buf)
		b.buf = append(b.buf, p[:n]...)
		return n, ErrTooLarge
	}

	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.r >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.r:])
	b.r += int64(n)
	return n, nil
}

func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if off < 0 {
		return 0, errors.New("memstream: negative offset")
	}
	if off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.r + offset
	case io.SeekEnd:
		abs = int64(len(b.buf)) + offset
	default:
		return 0, errors.New("memstream: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memstream: negative position")
	}

	b.r = abs
	return abs, nil
}

// Size is the number of bytes written so far.
func (b *Buffer) Size() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.buf))
}

// Bytes returns a copy of the contents.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// Close is a no-op so a Buffer can be handed out as an io.ReadCloser.
func (b *Buffer) Close() error {
	return nil
}
