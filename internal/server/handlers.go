package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/arpentry/relief/internal/dem"
	"github.com/arpentry/relief/internal/pipeline"
	"github.com/arpentry/relief/internal/tileset"
)

func (s *Server) handleTileset(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)
	serveBody(w, "application/json", s.tilesetDoc)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)

	addr, err := parseAddress(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if body, ok := s.cached(r.URL.Path); ok {
		s.log.Debug("tile served from cache", zap.String("tile", addr.String()))
		serveBody(w, s.pipe.ContentType(), body)
		return
	}

	res, err := s.pipe.BuildTile(addr)
	if err != nil {
		s.fail(w, addr, err)
		return
	}

	s.store(r.URL.Path, res.Data)
	s.log.Debug("tile built",
		zap.String("tile", addr.String()),
		zap.Int("vertices", res.Vertices),
		zap.Int("triangles", res.Triangles),
		zap.Int("bytes", len(res.Data)),
		zap.Duration("elapsed", res.Elapsed))
	serveBody(w, res.ContentType, res.Data)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	corsHeaders(w)

	if !s.previews {
		http.Error(w, "previews disabled", http.StatusNotFound)
		return
	}

	addr, err := parseAddress(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if body, ok := s.cached(r.URL.Path); ok {
		serveBody(w, "image/png", body)
		return
	}

	img, err := s.pipe.BuildPreview(addr, s.previewOpts)
	if err != nil {
		s.fail(w, addr, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.log.Error("encoding preview failed", zap.String("tile", addr.String()), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	body := buf.Bytes()
	s.store(r.URL.Path, body)
	serveBody(w, "image/png", body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	serveBody(w, "text/plain", []byte("ok\n"))
}

// fail maps pipeline errors to HTTP statuses. Tiles that exist in the
// tree but yield nothing report 404 with a distinct body so clients can
// tell an empty tile from a wrong address.
func (s *Server) fail(w http.ResponseWriter, addr tileset.Address, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidTile):
		http.Error(w, "tile out of range", http.StatusNotFound)
	case errors.Is(err, dem.ErrNoData):
		http.Error(w, "no elevation data", http.StatusNotFound)
	case errors.Is(err, pipeline.ErrNoValidGeometry):
		http.Error(w, "no valid geometry", http.StatusNotFound)
	default:
		s.log.Error("tile build failed", zap.String("tile", addr.String()), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseAddress(r *http.Request) (tileset.Address, error) {
	level, err := strconv.ParseUint(r.PathValue("level"), 10, 32)
	if err != nil {
		return tileset.Address{}, fmt.Errorf("bad level %q", r.PathValue("level"))
	}
	column, err := strconv.ParseUint(r.PathValue("column"), 10, 32)
	if err != nil {
		return tileset.Address{}, fmt.Errorf("bad column %q", r.PathValue("column"))
	}
	row, err := strconv.ParseUint(r.PathValue("row"), 10, 32)
	if err != nil {
		return tileset.Address{}, fmt.Errorf("bad row %q", r.PathValue("row"))
	}
	return tileset.Address{Level: uint32(level), Column: uint32(column), Row: uint32(row)}, nil
}

// corsHeaders lets browser viewers on other origins load tiles.
func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func serveBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Write(body)
}
