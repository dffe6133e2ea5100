// Package crop cuts a georeferenced image down to a smaller Web Mercator
// extent.
package crop

import (
	"image"
	"image/draw"
	"math"

	"github.com/brendan-ward/tilemosaic/affine"
)

// Result of cropping an image
type Result struct {
	Image *image.NRGBA
	// Bounds is the extent actually covered by Image: the target clamped to
	// the source.
	Bounds *affine.Bounds
	// Rect is the pixel area of the source image that was kept
	Rect image.Rectangle
	// Transform maps pixels of Image to the coordinates of the bounds
	Transform *affine.Affine
}

// Crop returns the part of img, which covers source, that falls within
// target. Resolution is linear along each axis and rows are counted down from
// source.Ymax. A target that only partially overlaps source is clamped to it.
// A target smaller than a pixel keeps the pixel that contains it.
// Returns nil if target does not overlap source.
func Crop(img image.Image, source *affine.Bounds, target *affine.Bounds) *Result {
	clamped := source.Intersection(target)
	if clamped == nil || clamped.Width() <= 0 || clamped.Height() <= 0 {
		return nil
	}

	imgBounds := img.Bounds()
	if imgBounds.Empty() {
		return nil
	}
	transform := affine.FromBounds(source, imgBounds.Dx(), imgBounds.Dy())
	window := WindowFromBounds(transform, clamped)
	rect := window.Rect()
	if rect.Dx() == 0 {
		rect.Min.X = max(min(int(math.Floor(window.XOffset)), imgBounds.Dx()-1), 0)
		rect.Max.X = rect.Min.X + 1
	}
	if rect.Dy() == 0 {
		rect.Min.Y = max(min(int(math.Floor(window.YOffset)), imgBounds.Dy()-1), 0)
		rect.Max.Y = rect.Min.Y + 1
	}
	kept := &Window{
		XOffset: float64(rect.Min.X),
		YOffset: float64(rect.Min.Y),
		Width:   float64(rect.Dx()),
		Height:  float64(rect.Dy()),
	}

	rect = rect.Add(imgBounds.Min).Intersect(imgBounds)
	if rect.Empty() {
		return nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)

	return &Result{
		Image:     out,
		Bounds:    clamped,
		Rect:      rect,
		Transform: kept.Transform(transform),
	}
}
