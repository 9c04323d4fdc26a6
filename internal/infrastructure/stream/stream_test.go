// ABOUTME: Tests for stream capability inspection
// ABOUTME: Covers seekable, forward-only, and probe-failing streams
package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stream-media-source/internal/domain"
)

type forwardOnly struct {
	r io.Reader
}

func (f *forwardOnly) Read(p []byte) (int, error) { return f.r.Read(p) }

// pipeLike implements io.Seeker but every seek fails.
type pipeLike struct {
	forwardOnly
}

func (p *pipeLike) Seek(int64, int) (int64, error) {
	return 0, errors.New("illegal seek")
}

// declined is seekable in shape but declares itself forward-only.
type declined struct {
	*bytes.Reader
}

func (declined) CanSeek() bool { return false }

// unsized hides bytes.Reader.Size so Length has to seek.
type unsized struct {
	rs io.ReadSeeker
}

func (u *unsized) Read(p []byte) (int, error)                 { return u.rs.Read(p) }
func (u *unsized) Seek(off int64, whence int) (int64, error) { return u.rs.Seek(off, whence) }

func TestCanSeek(t *testing.T) {
	assert.True(t, CanSeek(bytes.NewReader([]byte("abc"))))
	assert.False(t, CanSeek(&forwardOnly{r: bytes.NewReader(nil)}))
	assert.False(t, CanSeek(&pipeLike{}))
	assert.False(t, CanSeek(declined{bytes.NewReader([]byte("abc"))}))
}

func TestLength(t *testing.T) {
	assert.Equal(t, int64(3), Length(bytes.NewReader([]byte("abc"))))
	assert.Equal(t, domain.LengthUnset, Length(&forwardOnly{r: bytes.NewReader([]byte("abc"))}))
}

func TestLength_SeekRestoresPosition(t *testing.T) {
	r := &unsized{rs: bytes.NewReader(make([]byte, 100))}
	_, err := r.Seek(40, io.SeekStart)
	require.NoError(t, err)

	assert.Equal(t, int64(100), Length(r))

	pos, err := Position(r)
	require.NoError(t, err)
	assert.Equal(t, int64(40), pos)
}

func TestSeekTo(t *testing.T) {
	r := bytes.NewReader([]byte("abcdef"))
	require.NoError(t, SeekTo(r, 4))

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(rest))

	err = SeekTo(&forwardOnly{r: r}, 1)
	assert.ErrorIs(t, err, domain.ErrSeekUnsupported)
}
