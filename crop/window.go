package crop

import (
	"fmt"
	"image"
	"math"

	"github.com/brendan-ward/tilemosaic/affine"
)

// Window is a pixel area of a raster, possibly fractional
type Window struct {
	XOffset float64
	YOffset float64
	Width   float64
	Height  float64
}

// Calculate Window based on transform and bounds
func WindowFromBounds(transform *affine.Affine, bounds *affine.Bounds) *Window {
	invTransform := transform.Invert()

	xmin := math.Inf(1)
	ymin := math.Inf(1)
	xmax := math.Inf(-1)
	ymax := math.Inf(-1)

	corners := [4][2]float64{
		{bounds.Xmin, bounds.Ymin},
		{bounds.Xmin, bounds.Ymax},
		{bounds.Xmax, bounds.Ymin},
		{bounds.Xmax, bounds.Ymax},
	}
	for _, corner := range corners {
		x, y := invTransform.Multiply(corner[0], corner[1])
		xmin = math.Min(xmin, x)
		ymin = math.Min(ymin, y)
		xmax = math.Max(xmax, x)
		ymax = math.Max(ymax, y)
	}

	return &Window{
		XOffset: xmin,
		YOffset: ymin,
		Width:   xmax - xmin,
		Height:  ymax - ymin,
	}
}

// Transform returns the transform of the window's upper left pixel
func (w *Window) Transform(transform *affine.Affine) *affine.Affine {
	return transform.Translate(w.XOffset, w.YOffset)
}

// Rect snaps the window to whole pixels, rounding each edge to the nearest
// pixel boundary.
func (w *Window) Rect() image.Rectangle {
	x0 := int(math.Round(w.XOffset))
	y0 := int(math.Round(w.YOffset))
	x1 := int(math.Round(w.XOffset + w.Width))
	y1 := int(math.Round(w.YOffset + w.Height))
	return image.Rect(x0, y0, x1, y1)
}

func (w *Window) String() string {
	return fmt.Sprintf("Window(xoff: %v, yoff: %v, width: %v, height: %v)", w.XOffset, w.YOffset, w.Width, w.Height)
}
