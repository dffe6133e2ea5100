package downloader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brendan-ward/tilemosaic/config"
	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/fetch"
	"github.com/brendan-ward/tilemosaic/mosaic"
	"github.com/brendan-ward/tilemosaic/providers"
	"github.com/brendan-ward/tilemosaic/tiles"
)

var bbox = tiles.NewBoundingBox(37.74, 41.88, 113.78, 119.16)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"TILEMOSAIC_FETCH_RETRY_DELAY": "1ms",
		"TILEMOSAIC_FETCH_MAX_ATTEMPTS": "2",
		"TILEMOSAIC_USER_AGENT":         "tilemosaic-test",
	})
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func tilePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 255
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		t.Fatal(err)
	}
	return buffer.Bytes()
}

type tileServer struct {
	*httptest.Server
	requests  atomic.Int32
	userAgent atomic.Value
}

// newTileServer serves a solid tile for every request except those where
// missing returns true
func newTileServer(t *testing.T, missing func(path string) bool) *tileServer {
	t.Helper()
	data := tilePNG(t)
	s := &tileServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.userAgent.Store(r.Header.Get("User-Agent"))
		if missing != nil && missing(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func testProvider(t *testing.T, server *tileServer) *providers.Provider {
	t.Helper()
	provider, err := providers.Template(server.URL + "/{z}/{x}/{y}.png")
	if err != nil {
		t.Fatal(err)
	}
	return provider
}

func readOutput(t *testing.T, path string) (image.Image, *mosaic.Metadata) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	text, err := encoding.ReadText(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	metadata, err := mosaic.ParseMetadata(text)
	if err != nil {
		t.Fatal(err)
	}
	return img, metadata
}

func TestRun(t *testing.T) {
	// middle column is missing
	server := newTileServer(t, func(path string) bool {
		return strings.HasPrefix(path, "/7/105/")
	})
	dir := t.TempDir()
	req := &Request{
		Provider: testProvider(t, server),
		Bounds:   bbox,
		Zoom:     7,
		Output:   filepath.Join(dir, "out.png"),
		Crop:     true,
		Size:     ProviderSize,
		TilesDir: filepath.Join(dir, "tiles"),
		MBTiles:  filepath.Join(dir, "tiles.mbtiles"),
	}
	var planned int
	var completed atomic.Int32
	req.OnPlan = func(set *tiles.TileSet) { planned = set.Len() }
	req.OnTile = func(task *fetch.Task) { completed.Add(1) }

	result, err := New(testConfig(t), server.Client(), nil).Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if planned != 9 || completed.Load() != 9 {
		t.Errorf("planned %v, completed %v: expected 9 tiles", planned, completed.Load())
	}
	if result.Fetch.Total != 9 || result.Fetch.Succeeded != 6 || result.Fetch.Failed != 3 {
		t.Errorf("%+v is not expected fetch result", result.Fetch)
	}
	if result.MBTiles != 6 {
		t.Errorf("exported %v tiles, expected 6", result.MBTiles)
	}
	if ua, _ := server.userAgent.Load().(string); ua != "tilemosaic-test" {
		t.Errorf("User-Agent %q was not sent", ua)
	}

	for _, name := range []string{"tile_104_47.png", "tile_106_49.png"} {
		if _, err := os.Stat(filepath.Join(req.TilesDir, name)); err != nil {
			t.Errorf("%v was not kept: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(req.TilesDir, "tile_105_48.png")); !os.IsNotExist(err) {
		t.Errorf("failed tile should not be written")
	}

	img, metadata := readOutput(t, req.Output)
	if img.Bounds() != result.Mosaic.Image.Bounds() {
		t.Errorf("output %v does not match mosaic %v", img.Bounds(), result.Mosaic.Image.Bounds())
	}
	if metadata.LatBounds != [2]float64{bbox.LatMin, bbox.LatMax} || metadata.LngBounds != [2]float64{bbox.LonMin, bbox.LonMax} {
		t.Errorf("%v, %v are not the requested bounds", metadata.LatBounds, metadata.LngBounds)
	}
	if metadata.MyBounds == nil || metadata.MxBounds == nil {
		t.Errorf("cropped output is missing mercator bounds")
	}
	if metadata.Zoom != 7 || metadata.Projection != mosaic.Projection {
		t.Errorf("%+v is not expected zoom or projection", metadata)
	}

	// pixels from the missing column are transparent, others are opaque
	bounds := img.Bounds()
	_, _, _, left := img.At(bounds.Min.X+1, bounds.Min.Y+1).RGBA()
	if left == 0 {
		t.Errorf("left edge should come from a downloaded tile")
	}
	mid := color.NRGBAModel.Convert(img.At(bounds.Min.X+bounds.Dx()/2, bounds.Min.Y+bounds.Dy()/2)).(color.NRGBA)
	if mid.A != 0 {
		t.Errorf("center should be transparent, got %v", mid)
	}
}

func TestRunResize(t *testing.T) {
	server := newTileServer(t, nil)
	provider := testProvider(t, server)
	provider.OutputSize = providers.WeatherOutputSize

	tests := []struct {
		name     string
		crop     bool
		size     int
		expected image.Rectangle
	}{
		{"provider size", true, ProviderSize, image.Rect(0, 0, 670, 670)},
		{"fixed size", true, 300, image.Rect(0, 0, 300, 300)},
		{"uncropped canvas", false, 0, image.Rect(0, 0, 768, 768)},
	}

	for _, tc := range tests {
		output := filepath.Join(t.TempDir(), "out.png")
		_, err := New(testConfig(t), server.Client(), nil).Run(context.Background(), &Request{
			Provider: provider,
			Bounds:   bbox,
			Zoom:     7,
			Output:   output,
			Crop:     tc.crop,
			Size:     tc.size,
		})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		img, metadata := readOutput(t, output)
		if img.Bounds() != tc.expected {
			t.Errorf("%s: %v is not expected size %v", tc.name, img.Bounds(), tc.expected)
		}
		if !tc.crop && metadata.MyBounds != nil {
			t.Errorf("%s: uncropped output should not have mercator bounds", tc.name)
		}
	}
}

func TestRunInvalidRequest(t *testing.T) {
	server := newTileServer(t, nil)
	provider := testProvider(t, server)
	output := filepath.Join(t.TempDir(), "out.png")

	tests := []struct {
		name     string
		req      *Request
		expected error
	}{
		{"no provider", &Request{Bounds: bbox, Zoom: 7, Output: output}, ErrInvalidRequest},
		{"zoom", &Request{Provider: provider, Bounds: bbox, Zoom: 25, Output: output}, ErrInvalidRequest},
		{"no output", &Request{Provider: provider, Bounds: bbox, Zoom: 7}, ErrInvalidRequest},
		{"bounds", &Request{Provider: provider, Bounds: tiles.BoundingBox{LatMin: 10, LatMax: 89, LonMin: 0, LonMax: 1}, Zoom: 7, Output: output}, tiles.ErrInvalidBoundingBox},
	}

	for _, tc := range tests {
		_, err := New(testConfig(t), server.Client(), nil).Run(context.Background(), tc.req)
		if !errors.Is(err, tc.expected) {
			t.Errorf("%s: expected %v, got: %v", tc.name, tc.expected, err)
		}
	}
	if n := server.requests.Load(); n != 0 {
		t.Errorf("invalid requests made %v tile requests", n)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output should not be written for invalid requests")
	}
}

func TestRunNoTiles(t *testing.T) {
	server := newTileServer(t, func(string) bool { return true })
	output := filepath.Join(t.TempDir(), "out.png")
	result, err := New(testConfig(t), server.Client(), nil).Run(context.Background(), &Request{
		Provider: testProvider(t, server),
		Bounds:   bbox,
		Zoom:     7,
		Output:   output,
		Crop:     true,
		Size:     ProviderSize,
	})
	if !errors.Is(err, mosaic.ErrNoTiles) {
		t.Errorf("expected ErrNoTiles, got: %v", err)
	}
	if result == nil || result.Fetch.Failed != 9 {
		t.Errorf("%v should report 9 failed tiles", result)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output should not be written when no tiles are downloaded")
	}
}

func TestRunCanceled(t *testing.T) {
	server := newTileServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(t), server.Client(), nil).Run(ctx, &Request{
		Provider: testProvider(t, server),
		Bounds:   bbox,
		Zoom:     7,
		Output:   filepath.Join(t.TempDir(), "out.png"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestRunTooManyTiles(t *testing.T) {
	server := newTileServer(t, nil)
	output := filepath.Join(t.TempDir(), "out.png")

	tests := []struct {
		name     string
		maxTiles int
		bounds   tiles.BoundingBox
		zoom     uint8
	}{
		{"limit", 4, bbox, 7},
		{"near world at deepest zoom", 0, tiles.NewBoundingBox(-85, 85, -179.9, 179.9), tiles.MaxZoom},
	}

	for _, tc := range tests {
		cfg := testConfig(t)
		if tc.maxTiles > 0 {
			cfg.MaxTiles = tc.maxTiles
		}
		_, err := New(cfg, server.Client(), nil).Run(context.Background(), &Request{
			Provider: testProvider(t, server),
			Bounds:   tc.bounds,
			Zoom:     tc.zoom,
			Output:   output,
		})
		if !errors.Is(err, tiles.ErrTooManyTiles) {
			t.Errorf("%s: expected ErrTooManyTiles, got: %v", tc.name, err)
		}
	}
	if n := server.requests.Load(); n != 0 {
		t.Errorf("made %v tile requests for oversized tile sets", n)
	}
}
