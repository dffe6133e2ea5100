package cmd

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/mosaic"
)

func writeMosaic(t *testing.T, metadata mosaic.Metadata) string {
	t.Helper()
	text, err := metadata.Text()
	if err != nil {
		t.Fatal(err)
	}
	var buffer bytes.Buffer
	if err := encoding.EncodePNG(&buffer, image.NewNRGBA(image.Rect(0, 0, 4, 4)), text); err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "mosaic.png")
	if err := os.WriteFile(filename, buffer.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestInfo(t *testing.T) {
	filename := writeMosaic(t, mosaic.Metadata{
		LatBounds:  [2]float64{37.74, 41.88},
		LngBounds:  [2]float64{113.78, 119.16},
		MyBounds:   &[2]float64{4543147.5, 5143147.5},
		MxBounds:   &[2]float64{12665713.5, 13265713.5},
		Zoom:       7,
		Projection: mosaic.Projection,
	})

	var out bytes.Buffer
	if err := info(&out, filename, false); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"lat_bounds: [37.74, 41.88]",
		"lng_bounds: [113.78, 119.16]",
		"my_bounds: [",
		"mx_bounds: [",
		"zoom: 7",
		"projection: EPSG:3857",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output is missing %q:\n%v", line, out.String())
		}
	}
}

func TestInfoGeoJSON(t *testing.T) {
	filename := writeMosaic(t, mosaic.Metadata{
		LatBounds:  [2]float64{37.74, 41.88},
		LngBounds:  [2]float64{113.78, 119.16},
		Zoom:       7,
		Projection: mosaic.Projection,
	})

	var out bytes.Buffer
	if err := info(&out, filename, true); err != nil {
		t.Fatal(err)
	}
	feature, err := geojson.UnmarshalFeature(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	polygon, ok := feature.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("%T is not a polygon", feature.Geometry)
	}
	bound := polygon.Bound()
	if !closeEnough(bound.Min.Lon(), 113.78, 1e-9) || !closeEnough(bound.Min.Lat(), 37.74, 1e-9) ||
		!closeEnough(bound.Max.Lon(), 119.16, 1e-9) || !closeEnough(bound.Max.Lat(), 41.88, 1e-9) {
		t.Errorf("%v is not expected footprint", bound)
	}
	if zoom, _ := feature.Properties["zoom"].(float64); zoom != 7 {
		t.Errorf("zoom %v is not expected value: 7", feature.Properties["zoom"])
	}
	if _, found := feature.Properties["my_bounds"]; found {
		t.Errorf("uncropped mosaic should not have my_bounds")
	}
}

func TestInfoNotPNG(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "mosaic.png")
	if err := os.WriteFile(filename, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := info(&bytes.Buffer{}, filename, false); err == nil {
		t.Errorf("expected error for a file that is not a PNG")
	}
}
