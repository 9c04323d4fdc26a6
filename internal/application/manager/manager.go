// ABOUTME: Media manager for lifecycle and lookup
// ABOUTME: Creates media items from config, loads them concurrently, and owns their streams
package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/harper/stream-media-source/internal/application/config"
	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/domain/media"
	"github.com/harper/stream-media-source/internal/infrastructure/source"
)

type Option func(*Manager)

// WithFs sets the filesystem used by file sources.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) {
		m.fs = fs
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

type Manager struct {
	items  map[string]*media.Item
	mu     sync.RWMutex
	fs     afero.Fs
	logger zerolog.Logger
}

func NewFromConfig(cfg *config.Config, opts ...Option) (*Manager, error) {
	mgr := &Manager{
		items:  make(map[string]*media.Item),
		fs:     afero.NewOsFs(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(mgr)
	}

	for _, mCfg := range cfg.Media {
		provider, err := mgr.provider(mCfg.Source)
		if err != nil {
			return nil, fmt.Errorf("media %q: %w", mCfg.ID, err)
		}

		itemCfg := media.Config{
			ID:          mCfg.ID,
			ContentType: mCfg.ContentType,
			MaxFill:     int64(mCfg.MaxFillKB) * 1024,
		}
		mgr.items[mCfg.ID] = media.New(itemCfg, provider, mgr.logger)
	}

	return mgr, nil
}

func (m *Manager) provider(cfg config.SourceConfig) (domain.StreamProvider, error) {
	switch cfg.Type {
	case config.SourceFile, "":
		return source.NewFile(m.fs, cfg.Path), nil
	case config.SourceHTTP:
		return source.NewHTTP(source.HTTPConfig{
			URL:            cfg.URL,
			ConnectTimeout: time.Duration(cfg.ConnectTimeoutMs) * time.Millisecond,
			Headers:        cfg.RequestHeaders,
			Buffer:         cfg.Buffer,
			MaxBytes:       cfg.MaxBytes,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

// Add registers an item built outside the configuration.
func (m *Manager) Add(it *media.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID()] = it
}

func (m *Manager) Get(id string) *media.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id]
}

// List returns items ordered by id.
func (m *Manager) List() []*media.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*media.Item, 0, len(m.items))
	for _, it := range m.items {
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Load opens every item's stream concurrently. Items that fail stay
// registered but unloaded; the joined error reports each failure.
// Live streams stay bound to ctx, so it must outlive serving.
func (m *Manager) Load(ctx context.Context) error {
	items := m.List()
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(4)
	for i, it := range items {
		g.Go(func() error {
			if err := it.Load(ctx); err != nil {
				m.logger.Warn().Err(err).Str("media", it.ID()).Msg("media unavailable")
				errs[i] = err
				return nil
			}

			size := "unknown size"
			if n := it.Length(); n != domain.LengthUnset {
				size = humanize.IBytes(uint64(n))
			}
			m.logger.Info().
				Str("media", it.ID()).
				Str("uri", it.URI()).
				Str("content_type", it.ContentType()).
				Bool("seekable", it.Seekable()).
				Msgf("media loaded (%s)", size)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (m *Manager) Shutdown() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, it := range m.items {
		if err := it.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", it.ID(), err))
		}
	}
	return errors.Join(errs...)
}
