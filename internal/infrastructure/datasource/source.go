// ABOUTME: Pull-model data source serving byte ranges from a borrowed stream
// ABOUTME: Open/Read/Close lifecycle with bounded and open-ended sessions
package datasource

import (
	"fmt"
	"io"

	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/infrastructure/stream"
)

// Source adapts a caller-owned stream to domain.PullDataSource.
// It is not safe for concurrent use; hosts serialize Open/Read/Close.
// The stream is never closed by Source.
type Source struct {
	r        io.Reader
	seekable bool
	length   int64

	uri       string
	remaining int64
	released  bool
}

var _ domain.PullDataSource = (*Source)(nil)

// New wraps r without taking ownership of it.
func New(r io.Reader) (*Source, error) {
	if r == nil {
		return nil, fmt.Errorf("new data source: nil stream: %w", domain.ErrInvalidArgument)
	}

	seekable := stream.CanSeek(r)
	length := domain.LengthUnset
	if seekable {
		length = stream.Length(r)
	}

	return &Source{
		r:        r,
		seekable: seekable,
		length:   length,
	}, nil
}

// Open starts a session for spec and returns the number of bytes it will
// serve, or domain.LengthUnset.
func (s *Source) Open(spec *domain.DataSpec) (int64, error) {
	if spec == nil {
		return 0, fmt.Errorf("open: nil data spec: %w", domain.ErrInvalidArgument)
	}
	if s.released {
		return 0, domain.ErrReleased
	}
	if spec.Position < 0 {
		return 0, fmt.Errorf("open: negative position %d: %w", spec.Position, domain.ErrInvalidArgument)
	}
	if spec.Length < 0 && spec.Length != domain.LengthUnset {
		return 0, fmt.Errorf("open: invalid length %d: %w", spec.Length, domain.ErrInvalidArgument)
	}

	s.uri = spec.URI
	s.remaining = 0

	if err := s.seek(spec.Position); err != nil {
		return 0, err
	}

	switch {
	case spec.Length != domain.LengthUnset:
		s.remaining = spec.Length
	case s.length != domain.LengthUnset:
		s.remaining = max(s.length-spec.Position, 0)
	default:
		s.remaining = domain.LengthUnset
	}

	return s.remaining, nil
}

// seek positions a seekable stream at pos. A previous session may have
// left it elsewhere, so offset 0 is honoured too; forward-only streams
// only accept 0.
func (s *Source) seek(pos int64) error {
	if !s.seekable {
		if pos > 0 {
			return fmt.Errorf("open at %d: %w", pos, domain.ErrSeekUnsupported)
		}
		return nil
	}

	cur, err := stream.Position(s.r)
	if err != nil {
		return fmt.Errorf("stream position: %w", err)
	}
	if cur == pos {
		return nil
	}
	if err := stream.SeekTo(s.r, pos); err != nil {
		return fmt.Errorf("seek to %d: %w", pos, err)
	}
	return nil
}

// Read copies up to length bytes into buf[offset:]. It returns io.EOF when
// the session is exhausted; a zero length request returns 0 without
// touching the stream.
func (s *Source) Read(buf []byte, offset, length int) (int, error) {
	if buf == nil {
		return 0, fmt.Errorf("read: nil buffer: %w", domain.ErrInvalidArgument)
	}
	if offset < 0 || length < 0 || offset+length > len(buf) {
		return 0, fmt.Errorf("read: range [%d:%d] outside buffer of %d: %w",
			offset, offset+length, len(buf), domain.ErrInvalidArgument)
	}
	if length == 0 {
		return 0, nil
	}
	if s.remaining == 0 {
		return 0, io.EOF
	}

	toRead := length
	if s.remaining != domain.LengthUnset && s.remaining < int64(length) {
		toRead = int(s.remaining)
	}

	n, err := s.r.Read(buf[offset : offset+toRead])
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("read stream: %w", err)
		}
		return 0, io.EOF
	}

	if s.remaining != domain.LengthUnset {
		s.remaining -= int64(n)
	}

	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Close ends the session. The stream stays open and the source may be
// reopened.
func (s *Source) Close() error {
	s.uri = ""
	s.remaining = 0
	return nil
}

// Release disposes the adapter. Later Opens fail with domain.ErrReleased.
func (s *Source) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	return s.Close()
}

// AddTransferListener is accepted but stream sources report no progress.
func (s *Source) AddTransferListener(domain.TransferListener) {}

// URI is the URI of the open session, empty when closed.
func (s *Source) URI() string {
	return s.uri
}

// ResponseHeaders is always nil; streams carry no protocol metadata.
func (s *Source) ResponseHeaders() map[string][]string {
	return nil
}

// Factory mints a fresh Source over the same borrowed stream for every
// host request.
type Factory struct {
	r io.Reader
}

// NewFactory returns a factory lending r to every source it creates.
func NewFactory(r io.Reader) (*Factory, error) {
	if r == nil {
		return nil, fmt.Errorf("new factory: nil stream: %w", domain.ErrInvalidArgument)
	}
	return &Factory{r: r}, nil
}

// CreateDataSource returns a new, unopened Source.
func (f *Factory) CreateDataSource() (*Source, error) {
	return New(f.r)
}
