// ABOUTME: Tests for media item lifecycle
// ABOUTME: Verifies loading, adapter lending, and stream ownership
package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/infrastructure/datasource"
	"github.com/harper/stream-media-source/internal/infrastructure/resourceloader"
)

type trackedStream struct {
	*bytes.Reader
	closes int
}

func (s *trackedStream) Close() error {
	s.closes++
	return nil
}

type fakeProvider struct {
	stream *trackedStream
	opens  int
	err    error
}

func (p *fakeProvider) Open(context.Context) (io.ReadCloser, error) {
	p.opens++
	if p.err != nil {
		return nil, p.err
	}
	return p.stream, nil
}

func newProvider(data string) *fakeProvider {
	return &fakeProvider{stream: &trackedStream{Reader: bytes.NewReader([]byte(data))}}
}

func TestNew(t *testing.T) {
	it := New(Config{ID: "test"}, nil, zerolog.Nop())

	assert.Equal(t, "test", it.ID())
	assert.True(t, strings.HasPrefix(it.URI(), "streamsource://"))
	assert.False(t, it.Loaded())
	assert.Equal(t, domain.LengthUnset, it.Length())
}

func TestLoad(t *testing.T) {
	p := newProvider("0123456789")
	it := New(Config{ID: "clip"}, p, zerolog.Nop())

	require.NoError(t, it.Load(context.Background()))
	require.NoError(t, it.Load(context.Background()))

	assert.Equal(t, 1, p.opens)
	assert.True(t, it.Seekable())
	assert.Equal(t, int64(10), it.Length())
	assert.Equal(t, "application/octet-stream", it.ContentType())
}

func TestLoad_ProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("no such file")}
	it := New(Config{ID: "clip", ContentType: "video/mp4"}, p, zerolog.Nop())

	err := it.Load(context.Background())
	assert.ErrorContains(t, err, "no such file")
	assert.False(t, it.Loaded())

	err = it.WithPull(func(*datasource.Source) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestWithPullAndLoader(t *testing.T) {
	p := newProvider("0123456789")
	it := New(Config{ID: "clip", ContentType: "video/mp4"}, p, zerolog.Nop())
	require.NoError(t, it.Load(context.Background()))

	err := it.WithPull(func(src *datasource.Source) error {
		n, err := src.Open(&domain.DataSpec{URI: it.URI(), Position: 4, Length: domain.LengthUnset})
		require.NoError(t, err)
		assert.Equal(t, int64(6), n)
		return nil
	})
	require.NoError(t, err)

	err = it.WithLoader(func(l *resourceloader.Loader) error {
		info := &domain.ContentInfo{}
		l.FillContentInfo(info)
		assert.Equal(t, "video/mp4", info.ContentType)
		assert.Equal(t, int64(10), info.ContentLength)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), it.Sessions())
	assert.Zero(t, p.stream.closes)

	it.AddBytesServed(6)
	assert.Equal(t, int64(6), it.BytesServed())
}

func TestClose_ClosesOwnedStream(t *testing.T) {
	p := newProvider("abc")
	it := New(Config{ID: "clip"}, p, zerolog.Nop())
	require.NoError(t, it.Load(context.Background()))

	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
	assert.Equal(t, 1, p.stream.closes)
	assert.False(t, it.Loaded())
}
