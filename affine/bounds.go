package affine

import (
	"fmt"
	"math"
)

// Bounds in projected (Web Mercator meters) or geographic coordinates.
// X is easting / longitude, Y is northing / latitude.
type Bounds struct {
	Xmin float64
	Ymin float64
	Xmax float64
	Ymax float64
}

func (b *Bounds) Width() float64 {
	return b.Xmax - b.Xmin
}

func (b *Bounds) Height() float64 {
	return b.Ymax - b.Ymin
}

// Intersects returns true if the two bounds overlap on both axes.
// Bounds that only touch along an edge count as overlapping.
func (b *Bounds) Intersects(other *Bounds) bool {
	return !(other.Xmin > b.Xmax || other.Xmax < b.Xmin || other.Ymin > b.Ymax || other.Ymax < b.Ymin)
}

// Contains returns true if other lies completely within b
func (b *Bounds) Contains(other *Bounds) bool {
	return other.Xmin >= b.Xmin && other.Xmax <= b.Xmax && other.Ymin >= b.Ymin && other.Ymax <= b.Ymax
}

// Intersection returns the overlapping area, or nil if the bounds do not
// intersect
func (b *Bounds) Intersection(other *Bounds) *Bounds {
	if !b.Intersects(other) {
		return nil
	}
	return &Bounds{
		Xmin: math.Max(b.Xmin, other.Xmin),
		Ymin: math.Max(b.Ymin, other.Ymin),
		Xmax: math.Min(b.Xmax, other.Xmax),
		Ymax: math.Min(b.Ymax, other.Ymax),
	}
}

func (b *Bounds) String() string {
	return fmt.Sprintf("Bounds(xmin: %v, ymin: %v, xmax: %v, ymax: %v)", b.Xmin, b.Ymin, b.Xmax, b.Ymax)
}
