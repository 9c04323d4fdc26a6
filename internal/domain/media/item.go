// ABOUTME: Media item owning one provider's stream and lending it to adapters
// ABOUTME: Serializes host access so each adapter sees single-reader discipline
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/infrastructure/datasource"
	"github.com/harper/stream-media-source/internal/infrastructure/mimetype"
	"github.com/harper/stream-media-source/internal/infrastructure/resourceloader"
	"github.com/harper/stream-media-source/internal/infrastructure/stream"
)

// URIScheme is the custom scheme handed to hosts so they route requests
// back to the item instead of the network.
const URIScheme = "streamsource"

var ErrNotLoaded = errors.New("media item not loaded")

type Config struct {
	ID          string
	ContentType string
	MaxFill     int64
}

type Item struct {
	id          string
	uri         string
	contentType string
	maxFill     int64

	provider domain.StreamProvider
	logger   zerolog.Logger

	mu       sync.Mutex // held for the duration of every host call
	stream   io.ReadCloser
	seekable bool
	length   int64

	sessions    atomic.Int64
	bytesServed atomic.Int64
}

func New(cfg Config, provider domain.StreamProvider, logger zerolog.Logger) *Item {
	return &Item{
		id:          cfg.ID,
		uri:         fmt.Sprintf("%s://%s", URIScheme, uuid.NewString()),
		contentType: cfg.ContentType,
		maxFill:     cfg.MaxFill,
		provider:    provider,
		logger:      logger.With().Str("media", cfg.ID).Logger(),
		length:      domain.LengthUnset,
	}
}

func (it *Item) ID() string {
	return it.id
}

func (it *Item) URI() string {
	return it.uri
}

// Load opens the provider's stream once. Later calls are no-ops.
func (it *Item) Load(ctx context.Context) error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.stream != nil {
		return nil
	}

	rc, err := it.provider.Open(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", it.id, err)
	}

	if it.contentType == "" {
		ct, err := mimetype.ForStream(rc)
		if err != nil {
			rc.Close()
			return fmt.Errorf("load %s: %w", it.id, err)
		}
		it.contentType = ct
	}

	it.stream = rc
	it.seekable = stream.CanSeek(rc)
	if it.seekable {
		it.length = stream.Length(rc)
	}
	return nil
}

func (it *Item) Loaded() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.stream != nil
}

func (it *Item) ContentType() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.contentType
}

// Length is the stream length, or domain.LengthUnset.
func (it *Item) Length() int64 {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.length
}

func (it *Item) Seekable() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.seekable
}

// WithPull runs fn with a fresh pull data source over the item's stream.
// The source is released when fn returns.
func (it *Item) WithPull(fn func(src *datasource.Source) error) error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.stream == nil {
		return ErrNotLoaded
	}

	src, err := datasource.New(it.stream)
	if err != nil {
		return err
	}
	defer src.Release()

	it.sessions.Add(1)
	return fn(src)
}

// WithLoader runs fn with a fresh resource loader over the item's stream.
func (it *Item) WithLoader(fn func(l *resourceloader.Loader) error) error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.stream == nil {
		return ErrNotLoaded
	}

	l, err := resourceloader.New(it.stream,
		resourceloader.WithContentType(it.contentType),
		resourceloader.WithMaxFill(it.maxFill),
		resourceloader.WithLogger(it.logger),
	)
	if err != nil {
		return err
	}
	defer l.Release()

	it.sessions.Add(1)
	return fn(l)
}

func (it *Item) AddBytesServed(n int64) {
	it.bytesServed.Add(n)
}

func (it *Item) BytesServed() int64 {
	return it.bytesServed.Load()
}

func (it *Item) Sessions() int64 {
	return it.sessions.Load()
}

// Close releases the stream the item owns.
func (it *Item) Close() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.stream == nil {
		return nil
	}
	err := it.stream.Close()
	it.stream = nil
	return err
}
