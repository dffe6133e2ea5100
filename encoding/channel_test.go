package encoding

import (
	"image"
	"image/color"
	"testing"
)

func TestExtractChannel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 255})
	img.SetNRGBA(1, 0, color.NRGBA{10, 20, 30, 0})

	tests := []struct {
		channel  Channel
		expected uint8
	}{
		{Red, 10},
		{Green, 20},
		{Blue, 30},
		{Alpha, 255},
	}

	for _, tc := range tests {
		gray := ExtractChannel(img, tc.channel)
		if v := gray.GrayAt(0, 0).Y; v != tc.expected {
			t.Errorf("%v: %v does not match expected value %v", tc.channel, v, tc.expected)
		}
		if v := gray.GrayAt(1, 0).Y; v != 0 {
			t.Errorf("%v: transparent pixel should be 0, got %v", tc.channel, v)
		}
	}
}

func TestExtractChannelOffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(3, 3, color.NRGBA{42, 0, 0, 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	gray := ExtractChannel(sub, Red)
	if gray.Bounds() != sub.Bounds() {
		t.Errorf("%v does not match source bounds %v", gray.Bounds(), sub.Bounds())
	}
	if v := gray.GrayAt(3, 3).Y; v != 42 {
		t.Errorf("%v does not match expected value 42", v)
	}
}

func TestParseChannel(t *testing.T) {
	for name, expected := range map[string]Channel{"r": Red, "Green": Green, "b": Blue, "alpha": Alpha} {
		channel, err := ParseChannel(name)
		if err != nil || channel != expected {
			t.Errorf("%q: %v, %v is not expected value %v", name, channel, err, expected)
		}
	}
	if _, err := ParseChannel("purple"); err == nil {
		t.Errorf("purple should not be a channel")
	}
}
