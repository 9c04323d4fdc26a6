// ABOUTME: Tests for the in-memory seekable stream
// ABOUTME: Verifies append, seek, read-at, and limit behaviour
package memstream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stream-media-source/internal/infrastructure/stream"
)

func TestNew(t *testing.T) {
	buf := New(0)
	require.NotNil(t, buf)
	assert.Empty(t, buf.Bytes())
	assert.Zero(t, buf.Size())

	n, err := buf.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteThenRead(t *testing.T) {
	buf := New(0)
	_, err := buf.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = buf.Write([]byte("world"))
	require.NoError(t, err)

	got, err := io.ReadAll(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestSeek(t *testing.T) {
	buf := New(0)
	_, err := buf.Write([]byte("0123456789"))
	require.NoError(t, err)

	pos, err := buf.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	got, err := io.ReadAll(buf)
	require.NoError(t, err)
	assert.Equal(t, "789", string(got))

	_, err = buf.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestReadAt(t *testing.T) {
	buf := New(0)
	_, err := buf.Write([]byte("abcdef"))
	require.NoError(t, err)

	p := make([]byte, 4)
	n, err := buf.ReadAt(p, 4)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "ef", string(p[:n]))
}

func TestWrite_Limit(t *testing.T) {
	buf := New(8)

	n, err := buf.Write(make([]byte, 12))
	assert.Equal(t, 8, n)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, int64(8), buf.Size())
}

func TestInspectable(t *testing.T) {
	buf := New(0)
	_, err := buf.Write(make([]byte, 150))
	require.NoError(t, err)

	assert.True(t, stream.CanSeek(buf))
	assert.Equal(t, int64(150), stream.Length(buf))
}
