package encoding

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestEncodePNGText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 2, color.NRGBA{1, 2, 3, 255})

	text := []Text{
		{Key: "zoom", Value: "7"},
		{Key: "lat_bounds", Value: "[37.7, 41.9]"},
		{Key: "projection", Value: `"EPSG:3857"`},
	}

	var buffer bytes.Buffer
	if err := EncodePNG(&buffer, img, text); err != nil {
		t.Fatal(err)
	}

	// still a valid PNG
	decoded, err := png.Decode(bytes.NewReader(buffer.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("%v is not expected size %v", decoded.Bounds(), img.Bounds())
	}
	r, g, b, _ := decoded.At(1, 2).RGBA()
	if r>>8 != 1 || g>>8 != 2 || b>>8 != 3 {
		t.Errorf("pixel (1, 2) was not preserved")
	}

	out, err := ReadText(bytes.NewReader(buffer.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(text) {
		t.Fatalf("%v is not expected value: %v", out, text)
	}
	for i := range text {
		if out[i] != text[i] {
			t.Errorf("%v is not expected value: %v", out[i], text[i])
		}
	}
}

func TestEncodePNGInvalidKey(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	for _, key := range []string{"", strings.Repeat("k", 80), "a\x00b"} {
		if err := EncodePNG(&bytes.Buffer{}, img, []Text{{Key: key, Value: "v"}}); err == nil {
			t.Errorf("key %q should be invalid", key)
		}
	}
}

func TestReadTextNone(t *testing.T) {
	data, err := encodePNG(image.NewGray(image.Rect(0, 0, 1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	text, err := ReadText(bytes.NewReader(data))
	if err != nil || len(text) != 0 {
		t.Errorf("expected no text, got: %v, %v", text, err)
	}
}

func TestReadTextNotPNG(t *testing.T) {
	_, err := ReadText(strings.NewReader("GIF89a not a png"))
	if !errors.Is(err, ErrNotPNG) {
		t.Errorf("expected ErrNotPNG, got: %v", err)
	}
}
