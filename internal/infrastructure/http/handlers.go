// ABOUTME: HTTP handlers acting as the media host for catalog items
// ABOUTME: Plain GETs use the pull data source, Range GETs and HEADs the resource loader
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/harper/stream-media-source/internal/application/manager"
	"github.com/harper/stream-media-source/internal/domain"
	"github.com/harper/stream-media-source/internal/domain/media"
	"github.com/harper/stream-media-source/internal/infrastructure/datasource"
	"github.com/harper/stream-media-source/internal/infrastructure/resourceloader"
)

const readChunk = 32 * 1024

var errUnsatisfiable = errors.New("range not satisfiable")

// NewRouter wires the media host routes.
func NewRouter(mgr *manager.Manager, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", HealthzHandler)
	r.Method(http.MethodGet, "/media", NewMediaListHandler(mgr))

	mh := NewMediaHandler(mgr, logger)
	r.Method(http.MethodGet, "/media/{id}", mh)
	r.Method(http.MethodHead, "/media/{id}", mh)
	return r
}

type MediaHandler struct {
	mgr    *manager.Manager
	logger zerolog.Logger
}

func NewMediaHandler(mgr *manager.Manager, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{mgr: mgr, logger: logger}
}

func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	it := h.mgr.Get(chi.URLParam(r, "id"))
	if it == nil {
		http.NotFound(w, r)
		return
	}
	if !it.Loaded() {
		http.Error(w, "media unavailable", http.StatusServiceUnavailable)
		return
	}

	logger := h.logger.With().Str("media", it.ID()).Str("method", r.Method).Logger()

	if r.Method == http.MethodHead {
		h.serveHead(w, it, logger)
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" || !it.Seekable() {
		h.servePull(w, r, it, logger)
		return
	}

	size := it.Length()
	start, end, err := parseRange(rangeHeader, size)
	switch {
	case errors.Is(err, errUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, err.Error(), http.StatusRequestedRangeNotSatisfiable)
		return
	case err != nil:
		// Malformed or multi-range headers are ignored.
		h.servePull(w, r, it, logger)
		return
	}

	h.serveRange(w, r, it, start, end, logger)
}

func (h *MediaHandler) serveHead(w http.ResponseWriter, it *media.Item, logger zerolog.Logger) {
	info := &domain.ContentInfo{}
	var failed error

	err := it.WithLoader(func(l *resourceloader.Loader) error {
		req := &loadingRequest{info: info}
		l.ShouldWaitForLoading(req)
		failed = req.err
		return nil
	})
	if err == nil {
		err = failed
	}
	if err != nil {
		logger.Error().Err(err).Msg("content info failed")
		http.Error(w, "content info failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", info.ContentType)
	if info.ContentLength != domain.LengthUnset {
		w.Header().Set("Content-Length", strconv.FormatInt(info.ContentLength, 10))
	}
	if info.ByteRangeAccessSupported {
		w.Header().Set("Accept-Ranges", "bytes")
	}
	w.WriteHeader(http.StatusOK)
}

// servePull drives the pull data source the way a player's read loop does.
func (h *MediaHandler) servePull(w http.ResponseWriter, r *http.Request, it *media.Item, logger zerolog.Logger) {
	contentType := it.ContentType()
	seekable := it.Seekable()
	var written int64

	err := it.WithPull(func(src *datasource.Source) error {
		n, err := src.Open(&domain.DataSpec{URI: it.URI(), Length: domain.LengthUnset})
		if err != nil {
			return err
		}
		defer src.Close()

		w.Header().Set("Content-Type", contentType)
		if n != domain.LengthUnset {
			w.Header().Set("Content-Length", strconv.FormatInt(n, 10))
		}
		if seekable {
			w.Header().Set("Accept-Ranges", "bytes")
		}
		w.WriteHeader(http.StatusOK)

		buf := make([]byte, readChunk)
		for r.Context().Err() == nil {
			got, err := src.Read(buf, 0, len(buf))
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if _, err := w.Write(buf[:got]); err != nil {
				return nil
			}
			written += int64(got)
		}
		return nil
	})
	it.AddBytesServed(written)

	if err != nil {
		logger.Error().Err(err).Int64("written", written).Msg("pull read failed")
		if written == 0 {
			http.Error(w, "read failed", http.StatusInternalServerError)
		}
		return
	}
	logger.Debug().Int64("written", written).Msg("served")
}

// serveRange issues data requests until the range is satisfied or a fill
// makes no progress, resuming each time at the tracked current offset.
func (h *MediaHandler) serveRange(w http.ResponseWriter, r *http.Request, it *media.Item, start, end int64, logger zerolog.Logger) {
	size := it.Length()
	length := end - start + 1

	w.Header().Set("Content-Type", it.ContentType())
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusPartialContent)

	dr := newDataRequest(w, start, length)
	fills := 0

	_ = it.WithLoader(func(l *resourceloader.Loader) error {
		for !dr.done() && dr.writeErr == nil && r.Context().Err() == nil {
			before := dr.current
			req := &loadingRequest{data: dr}
			l.ShouldWaitForLoading(req)
			fills++

			if req.err != nil || dr.current == before {
				break
			}
		}
		return nil
	})
	it.AddBytesServed(dr.delivered())

	if !dr.done() {
		logger.Warn().
			Int64("start", start).
			Int64("delivered", dr.delivered()).
			Int64("requested", length).
			Msg("incomplete range")
		return
	}
	logger.Debug().Int64("start", start).Int64("end", end).Int("fills", fills).Msg("served range")
}

// parseRange handles a single "bytes=" range against size.
func parseRange(header string, size int64) (int64, int64, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return 0, 0, fmt.Errorf("unsupported range %q", header)
	}

	first, last, ok := strings.Cut(strings.TrimSpace(spec), "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed range %q", header)
	}

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("malformed range %q", header)
		}
		if n == 0 || size == 0 {
			return 0, 0, errUnsatisfiable
		}
		return max(size-n, 0), size - 1, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("malformed range %q", header)
	}
	if start >= size {
		return 0, 0, errUnsatisfiable
	}

	end := size - 1
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return 0, 0, fmt.Errorf("malformed range %q", header)
		}
		end = min(end, size-1)
	}
	return start, end, nil
}

type MediaListHandler struct {
	mgr *manager.Manager
}

func NewMediaListHandler(mgr *manager.Manager) *MediaListHandler {
	return &MediaListHandler{mgr: mgr}
}

func (h *MediaListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type mediaInfo struct {
		ID          string `json:"id"`
		URI         string `json:"uri"`
		URL         string `json:"url"`
		ContentType string `json:"content_type,omitempty"`
		Length      *int64 `json:"length,omitempty"`
		Seekable    bool   `json:"seekable"`
		Loaded      bool   `json:"loaded"`
		Sessions    int64  `json:"sessions"`
		BytesServed string `json:"bytes_served"`
	}

	items := h.mgr.List()
	result := make([]mediaInfo, 0, len(items))

	for _, it := range items {
		info := mediaInfo{
			ID:          it.ID(),
			URI:         it.URI(),
			URL:         fmt.Sprintf("/media/%s", it.ID()),
			ContentType: it.ContentType(),
			Seekable:    it.Seekable(),
			Loaded:      it.Loaded(),
			Sessions:    it.Sessions(),
			BytesServed: humanize.IBytes(uint64(it.BytesServed())),
		}
		if n := it.Length(); n != domain.LengthUnset {
			info.Length = &n
		}
		result = append(result, info)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		OK bool `json:"ok"`
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response{OK: true})
}
