// Package server exposes the tile pipeline over HTTP: the tileset
// descriptor, encoded tile payloads, shaded previews, and a health probe.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/arpentry/relief/internal/pipeline"
	"github.com/arpentry/relief/internal/preview"
)

// Options configures a server. Pipeline is required.
type Options struct {
	Pipeline       *pipeline.Pipeline
	Log            *zap.Logger // nil for a no-op logger
	CacheBytes     int64       // encoded payload cache budget, 0 disables
	PreviewEnabled bool
	Preview        preview.Options
}

// Server serves one dataset's tiles. Handlers are safe for concurrent use.
type Server struct {
	pipe        *pipeline.Pipeline
	log         *zap.Logger
	cache       *ristretto.Cache[string, []byte]
	previews    bool
	previewOpts preview.Options
	tilesetDoc  []byte
}

// New prepares a server around a pipeline. The tileset descriptor is
// rendered once up front; tile payloads are cached by request path with
// the encoded body length as cost.
func New(opts Options) (*Server, error) {
	if opts.Pipeline == nil {
		return nil, errors.New("server needs a pipeline")
	}

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	doc, err := opts.Pipeline.Tileset().Encode()
	if err != nil {
		return nil, err
	}

	s := &Server{
		pipe:        opts.Pipeline,
		log:         log,
		previews:    opts.PreviewEnabled,
		previewOpts: opts.Preview,
		tilesetDoc:  doc,
	}

	if opts.CacheBytes > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
			NumCounters: 1e6,
			MaxCost:     opts.CacheBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("creating payload cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Handler returns the route table. Tile content routes carry the
// pipeline's payload extension so they match the descriptor URIs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tileset.json", s.handleTileset)
	mux.HandleFunc("GET /tiles/{level}/{column}/{row}/tile."+s.pipe.Format(), s.handleTile)
	mux.HandleFunc("GET /tiles/{level}/{column}/{row}/preview.png", s.handlePreview)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run serves until ctx is canceled, then drains in-flight requests for
// at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Close releases the payload cache.
func (s *Server) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func (s *Server) cached(key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Server) store(key string, body []byte) {
	if s.cache == nil {
		return
	}
	s.cache.Set(key, body, int64(len(body)))
}
