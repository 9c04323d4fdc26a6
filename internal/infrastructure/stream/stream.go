// ABOUTME: Capability inspection for borrowed byte streams
// ABOUTME: Answers seekability, total length, and position without taking ownership
package stream

import (
	"io"

	"github.com/harper/stream-media-source/internal/domain"
)

type seekabler interface {
	CanSeek() bool
}

type sizer interface {
	Size() int64
}

// CanSeek reports whether r can be repositioned. A seeker that declares
// CanSeek() false, or whose current-position probe fails (pipes, sockets),
// counts as forward-only.
func CanSeek(r io.Reader) bool {
	s, ok := r.(io.Seeker)
	if !ok {
		return false
	}
	if c, ok := r.(seekabler); ok && !c.CanSeek() {
		return false
	}
	_, err := s.Seek(0, io.SeekCurrent)
	return err == nil
}

// Length returns the total length of r, or domain.LengthUnset.
func Length(r io.Reader) int64 {
	if s, ok := r.(sizer); ok {
		return s.Size()
	}
	if !CanSeek(r) {
		return domain.LengthUnset
	}

	s := r.(io.Seeker)
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return domain.LengthUnset
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return domain.LengthUnset
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return domain.LengthUnset
	}
	return end
}

// Position returns the current offset of a seekable stream.
func Position(r io.Reader) (int64, error) {
	s, ok := r.(io.Seeker)
	if !ok {
		return 0, domain.ErrSeekUnsupported
	}
	return s.Seek(0, io.SeekCurrent)
}

// SeekTo moves r to an absolute offset.
func SeekTo(r io.Reader, offset int64) error {
	if !CanSeek(r) {
		return domain.ErrSeekUnsupported
	}
	_, err := r.(io.Seeker).Seek(offset, io.SeekStart)
	return err
}
