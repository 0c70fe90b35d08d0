package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/arpentry/relief/internal/dem"
	"github.com/arpentry/relief/internal/geo"
	"github.com/arpentry/relief/internal/pipeline"
	"github.com/arpentry/relief/internal/preview"
)

const testNoData = -9999

type gridSource struct {
	meta  dem.Metadata
	calls int
	fill  func(g *dem.HeightGrid, tileSize int)
	err   error
}

func (s *gridSource) Metadata() dem.Metadata { return s.meta }

func (s *gridSource) Read(bounds geo.PlanarBounds, tileSize int) (*dem.HeightGrid, geo.PlanarBounds, error) {
	s.calls++
	if s.err != nil {
		return nil, geo.PlanarBounds{}, s.err
	}
	g := dem.NewHeightGrid(tileSize+1, testNoData)
	s.fill(g, tileSize)
	return g, bounds, nil
}

func flatFill(g *dem.HeightGrid, tileSize int) {
	for y := 0; y <= tileSize; y++ {
		for x := 0; x <= tileSize; x++ {
			g.Set(x, y, 300)
		}
	}
}

func testSource() *gridSource {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4096, 4096}}
	return &gridSource{
		meta: dem.Metadata{
			Bounds:       b,
			SquareBounds: b,
			Width:        512,
			Height:       512,
			MinElevation: 300,
			MaxElevation: 300,
			NoData:       testNoData,
			Projection:   "EPSG:3857",
		},
		fill: flatFill,
	}
}

func testPipeline(t *testing.T, src dem.Source, format string) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{
		Source:   src,
		TileSize: 4,
		MaxLevel: 2,
		Format:   format,
	})
	if err != nil {
		t.Fatalf("pipeline.New failed: %v", err)
	}
	return p
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Pipeline == nil {
		opts.Pipeline = testPipeline(t, testSource(), "")
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresPipeline(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New accepted empty options")
	}
}

func TestTilesetEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s.Handler(), "/tileset.json")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	var doc struct {
		Asset struct {
			Version string `json:"version"`
		} `json:"asset"`
		Root struct {
			Content struct {
				URI string `json:"uri"`
			} `json:"content"`
		} `json:"root"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("descriptor is not JSON: %v", err)
	}
	if doc.Asset.Version != "1.0" {
		t.Errorf("asset version = %q, want 1.0", doc.Asset.Version)
	}
	if doc.Root.Content.URI != "tiles/0/0/0/tile.glb" {
		t.Errorf("root content = %q", doc.Root.Content.URI)
	}
}

func TestTileEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s.Handler(), "/tiles/0/0/0/tile.glb")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "model/gltf-binary" {
		t.Errorf("content type = %q, want model/gltf-binary", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("glTF")) {
		t.Error("payload does not start with the glTF magic")
	}
}

func TestTileEndpoint_BadParams(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	for _, path := range []string{
		"/tiles/abc/0/0/tile.glb",
		"/tiles/1/-1/0/tile.glb",
		"/tiles/1/0/1.5/tile.glb",
	} {
		if rec := get(t, h, path); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestTileEndpoint_OutOfRange(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s.Handler(), "/tiles/9/0/0/tile.glb")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "out of range") {
		t.Errorf("body = %q, want out of range notice", rec.Body.String())
	}
}

func TestTileEndpoint_NoData(t *testing.T) {
	src := testSource()
	src.err = dem.ErrNoData
	s := newTestServer(t, Options{Pipeline: testPipeline(t, src, "")})

	rec := get(t, s.Handler(), "/tiles/0/0/0/tile.glb")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no elevation data") {
		t.Errorf("body = %q, want no elevation data notice", rec.Body.String())
	}
}

func TestTileEndpoint_NoValidGeometry(t *testing.T) {
	src := testSource()
	src.fill = func(g *dem.HeightGrid, tileSize int) {
		g.Set(0, 0, 300)
	}
	s := newTestServer(t, Options{Pipeline: testPipeline(t, src, "")})

	rec := get(t, s.Handler(), "/tiles/0/0/0/tile.glb")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no valid geometry") {
		t.Errorf("body = %q, want no valid geometry notice", rec.Body.String())
	}
}

func TestTileCacheAvoidsRebuild(t *testing.T) {
	src := testSource()
	s := newTestServer(t, Options{
		Pipeline:   testPipeline(t, src, ""),
		CacheBytes: 1 << 20,
	})
	h := s.Handler()

	if rec := get(t, h, "/tiles/0/0/0/tile.glb"); rec.Code != http.StatusOK {
		t.Fatalf("first request failed: %d", rec.Code)
	}
	if src.calls != 1 {
		t.Fatalf("source reads = %d, want 1", src.calls)
	}

	s.cache.Wait()

	if rec := get(t, h, "/tiles/0/0/0/tile.glb"); rec.Code != http.StatusOK {
		t.Fatalf("second request failed: %d", rec.Code)
	}
	if src.calls != 1 {
		t.Errorf("source reads after cache hit = %d, want 1", src.calls)
	}
}

func TestNoCacheRebuilds(t *testing.T) {
	src := testSource()
	s := newTestServer(t, Options{Pipeline: testPipeline(t, src, "")})
	h := s.Handler()

	get(t, h, "/tiles/0/0/0/tile.glb")
	get(t, h, "/tiles/0/0/0/tile.glb")
	if src.calls != 2 {
		t.Errorf("source reads = %d, want 2 without a cache", src.calls)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	s := newTestServer(t, Options{
		PreviewEnabled: true,
		Preview:        preview.Options{Size: 32, Supersample: 1},
	})

	rec := get(t, s.Handler(), "/tiles/0/0/0/preview.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("body is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
		t.Errorf("preview bounds = %v, want 32x32", img.Bounds())
	}
}

func TestPreviewDisabled(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s.Handler(), "/tiles/0/0/0/preview.png")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := get(t, s.Handler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok\n" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestWrongMethod(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/tileset.json", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestTileRouteMatchesFormat(t *testing.T) {
	s := newTestServer(t, Options{Pipeline: testPipeline(t, testSource(), "b3dm")})
	h := s.Handler()

	rec := get(t, h, "/tiles/0/0/0/tile.b3dm")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("b3dm")) {
		t.Error("payload does not start with the b3dm magic")
	}

	if rec := get(t, h, "/tiles/0/0/0/tile.glb"); rec.Code != http.StatusNotFound {
		t.Errorf("glb route on a b3dm server = %d, want 404", rec.Code)
	}
}
