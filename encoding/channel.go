package encoding

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Channel of an RGBA image
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

func ParseChannel(name string) (Channel, error) {
	switch strings.ToLower(name) {
	case "r", "red":
		return Red, nil
	case "g", "green":
		return Green, nil
	case "b", "blue":
		return Blue, nil
	case "a", "alpha":
		return Alpha, nil
	}
	return Red, fmt.Errorf("unknown channel %q", name)
}

func (c Channel) String() string {
	return [...]string{"red", "green", "blue", "alpha"}[c]
}

// ExtractChannel copies the raw (non-premultiplied) values of one channel into
// a grayscale image with the same bounds as img. Fully transparent pixels
// become 0.
func ExtractChannel(img image.Image, channel Channel) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	var value uint8
	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for col := bounds.Min.X; col < bounds.Max.X; col++ {
			c := color.NRGBAModel.Convert(img.At(col, row)).(color.NRGBA)
			switch {
			case c.A == 0:
				value = 0
			case channel == Red:
				value = c.R
			case channel == Green:
				value = c.G
			case channel == Blue:
				value = c.B
			default:
				value = c.A
			}
			gray.Pix[gray.PixOffset(col, row)] = value
		}
	}
	return gray
}
