// ABOUTME: Push-model resource loader filling host content-info and data requests
// ABOUTME: Read failures are logged and absorbed at the host callback boundary
package resourceloader

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/infrastructure/stream"
)

const (
	DefaultContentType = "video/mp4"
	DefaultMaxFill     = 1 << 20
)

// ReadError wraps a stream failure hit while filling a data request.
type ReadError struct {
	Offset int64
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read at %d: %v", e.Offset, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

type Option func(*Loader)

// WithContentType sets the content type reported in content-info requests.
func WithContentType(ct string) Option {
	return func(l *Loader) {
		if ct != "" {
			l.contentType = ct
		}
	}
}

// WithLogger sets the logger used for absorbed read failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithMaxFill caps how many bytes a single data fill delivers. Larger
// requests are completed over several host resume cycles.
func WithMaxFill(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxFill = n
		}
	}
}

// Loader adapts a caller-owned stream to domain.PushDataSource.
// Hosts serialize calls; the stream is never closed by Loader.
type Loader struct {
	r           io.Reader
	contentType string
	maxFill     int64
	logger      zerolog.Logger

	seekable bool
	length   int64
	pos      int64 // tracked only for forward-only streams
	released bool
}

var _ domain.PushDataSource = (*Loader)(nil)

// New wraps r without taking ownership of it.
func New(r io.Reader, opts ...Option) (*Loader, error) {
	if r == nil {
		return nil, fmt.Errorf("new resource loader: nil stream: %w", domain.ErrInvalidArgument)
	}

	l := &Loader{
		r:           r,
		contentType: DefaultContentType,
		maxFill:     DefaultMaxFill,
		logger:      log.Logger,
		seekable:    stream.CanSeek(r),
		length:      domain.LengthUnset,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.seekable {
		l.length = stream.Length(r)
	}
	return l, nil
}

// ShouldWaitForLoading fills whatever parts req carries and finishes it.
// Nothing raised while reading escapes to the host.
func (l *Loader) ShouldWaitForLoading(req domain.LoadingRequest) bool {
	if req == nil || l.released {
		return false
	}

	if info := req.ContentInformationRequest(); info != nil {
		l.FillContentInfo(info)
	}

	if dr := req.DataRequest(); dr != nil {
		if err := l.FillDataRequest(dr); err != nil {
			var rerr *ReadError
			if errors.As(err, &rerr) {
				l.logger.Warn().Err(rerr.Err).
					Int64("offset", rerr.Offset).
					Msg("error reading stream data")
			} else {
				l.logger.Error().Err(err).
					Int64("requested_offset", dr.RequestedOffset()).
					Int64("current_offset", dr.CurrentOffset()).
					Msg("data request rejected")
				req.FinishLoadingWithError(err)
				return true
			}
		}
	}

	req.FinishLoading()
	return true
}

// FillContentInfo reports type, length and range support for the stream.
func (l *Loader) FillContentInfo(info *domain.ContentInfo) {
	if info == nil {
		return
	}
	info.ContentType = l.contentType
	info.ContentLength = domain.LengthUnset
	if l.seekable {
		info.ContentLength = l.length
	}
	info.ByteRangeAccessSupported = l.seekable
}

// FillDataRequest reads the next slice of req and hands it to Respond.
// A nonzero CurrentOffset means the host is resuming a partial fill.
func (l *Loader) FillDataRequest(req domain.DataRequest) (err error) {
	if req == nil {
		return fmt.Errorf("fill data: nil request: %w", domain.ErrInvalidArgument)
	}

	target := req.RequestedOffset()
	if cur := req.CurrentOffset(); cur != 0 {
		target = cur
	}

	defer func() {
		if p := recover(); p != nil {
			err = &ReadError{Offset: target, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	want := l.wanted(req, target)
	if want <= 0 {
		return nil
	}

	if err := l.seek(target); err != nil {
		return err
	}

	buf := make([]byte, want)
	n, rerr := io.ReadFull(l.r, buf)
	if !l.seekable {
		l.pos += int64(n)
	}
	if n > 0 {
		req.Respond(buf[:n])
	}

	if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
		return &ReadError{Offset: target + int64(n), Err: rerr}
	}
	return nil
}

// Release disposes the loader without touching the stream.
func (l *Loader) Release() {
	l.released = true
}

func (l *Loader) wanted(req domain.DataRequest, target int64) int64 {
	end := req.RequestedOffset() + req.RequestedLength()
	if req.RequestsAllDataToEnd() && l.length != domain.LengthUnset {
		end = l.length
	}
	if l.length != domain.LengthUnset && end > l.length {
		end = l.length
	}
	return min(end-target, l.maxFill)
}

func (l *Loader) seek(target int64) error {
	if !l.seekable {
		if l.pos != target {
			return fmt.Errorf("fill data at %d from %d: %w", target, l.pos, domain.ErrSeekUnsupported)
		}
		return nil
	}

	pos, err := stream.Position(l.r)
	if err != nil {
		return fmt.Errorf("stream position: %w", err)
	}
	if pos == target {
		return nil
	}
	if err := stream.SeekTo(l.r, target); err != nil {
		return fmt.Errorf("seek to %d: %w", target, err)
	}
	return nil
}
