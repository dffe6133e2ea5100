package mosaic

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/tiles"
)

// Half of a tile that stacks two images vertically
type Half int

const (
	Top Half = iota
	Bottom
)

// SplitHook keeps one half of tiles that carry two images stacked vertically
func SplitHook(half Half) TileHook {
	return func(tile tiles.TileID, img image.Image) (image.Image, error) {
		bounds := img.Bounds()
		if bounds.Dy() < 2 {
			return nil, fmt.Errorf("tile %v is too small to split: %v", &tile, bounds)
		}
		mid := bounds.Min.Y + bounds.Dy()/2
		rect := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, mid)
		if half == Bottom {
			rect = image.Rect(bounds.Min.X, mid, bounds.Max.X, bounds.Max.Y)
		}

		out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
		draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
		return out, nil
	}
}

// ChannelHook replaces each tile with the raw values of one channel
func ChannelHook(channel encoding.Channel) TileHook {
	return func(tile tiles.TileID, img image.Image) (image.Image, error) {
		return encoding.ExtractChannel(img, channel), nil
	}
}

// RampHook maps the canvas values through ramp. Values are read from the
// red channel, where grayscale tiles are stored on the canvas. Areas without
// tiles stay transparent.
func RampHook(ramp *encoding.Ramp) CanvasHook {
	return func(canvas *image.NRGBA) (image.Image, error) {
		out := ramp.Apply(encoding.ExtractChannel(canvas, encoding.Red))
		clearTransparent(out, canvas)
		return out, nil
	}
}

// ColormapHook maps the canvas values of channel through colormap. Areas
// without tiles stay transparent.
func ColormapHook(colormap *encoding.Colormap, channel encoding.Channel) CanvasHook {
	return func(canvas *image.NRGBA) (image.Image, error) {
		out := colormap.Apply(encoding.ExtractChannel(canvas, channel))
		clearTransparent(out, canvas)
		return out, nil
	}
}

// clearTransparent sets pixels of img to transparent where canvas is
func clearTransparent(img draw.Image, canvas *image.NRGBA) {
	bounds := canvas.Bounds()
	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for col := bounds.Min.X; col < bounds.Max.X; col++ {
			if canvas.Pix[canvas.PixOffset(col, row)+3] == 0 {
				img.Set(col, row, color.Transparent)
			}
		}
	}
}
