package tiles

import (
	"errors"
	"fmt"
	"math"

	"github.com/brendan-ward/tilemosaic/affine"
)

var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// GeoPoint is a WGS84 latitude, longitude in degrees
type GeoPoint struct {
	Lat float64
	Lng float64
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(lat: %v, lng: %v)", p.Lat, p.Lng)
}

// BoundingBox in WGS84 degrees; upper left is (LatMax, LonMin)
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// NewBoundingBox creates a BoundingBox, swapping values as needed so that
// min <= max on both axes.
func NewBoundingBox(lat1 float64, lat2 float64, lon1 float64, lon2 float64) BoundingBox {
	return BoundingBox{
		LatMin: math.Min(lat1, lat2),
		LatMax: math.Max(lat1, lat2),
		LonMin: math.Min(lon1, lon2),
		LonMax: math.Max(lon1, lon2),
	}
}

// BoundingBoxFromCenter offsets center by radius meters along both Web
// Mercator axes and projects the result back to degrees.
func BoundingBoxFromCenter(center GeoPoint, radius float64) BoundingBox {
	x, y := GeoToMercator(center.Lng, center.Lat)
	lonMin, latMin := MercatorToGeo(x-radius, y-radius)
	lonMax, latMax := MercatorToGeo(x+radius, y+radius)
	return NewBoundingBox(latMin, latMax, lonMin, lonMax)
}

func (b BoundingBox) TopLeft() GeoPoint {
	return GeoPoint{Lat: b.LatMax, Lng: b.LonMin}
}

func (b BoundingBox) BottomRight() GeoPoint {
	return GeoPoint{Lat: b.LatMin, Lng: b.LonMax}
}

// MercatorBounds of the box: X is easting, Y is northing
func (b BoundingBox) MercatorBounds() *affine.Bounds {
	xmin, ymin := GeoToMercator(b.LonMin, b.LatMin)
	xmax, ymax := GeoToMercator(b.LonMax, b.LatMax)
	return &affine.Bounds{Xmin: xmin, Ymin: ymin, Xmax: xmax, Ymax: ymax}
}

// Validate returns an error wrapping ErrInvalidBoundingBox if the box is
// empty, inverted, or not within the Web Mercator world.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.LatMin, b.LatMax, b.LonMin, b.LonMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v has non-finite values", ErrInvalidBoundingBox, b)
		}
	}
	if b.LatMin > b.LatMax || b.LonMin > b.LonMax {
		return fmt.Errorf("%w: %v is inverted", ErrInvalidBoundingBox, b)
	}
	if b.LatMin == b.LatMax || b.LonMin == b.LonMax {
		return fmt.Errorf("%w: %v is empty", ErrInvalidBoundingBox, b)
	}
	if b.LatMin < -MaxLat || b.LatMax > MaxLat {
		return fmt.Errorf("%w: latitude must be within +/- %v, got %v", ErrInvalidBoundingBox, MaxLat, b)
	}
	if b.LonMin < -180 || b.LonMax > 180 {
		return fmt.Errorf("%w: longitude must be within +/- 180, got %v", ErrInvalidBoundingBox, b)
	}
	return nil
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("BoundingBox(lat: [%v, %v], lon: [%v, %v])", b.LatMin, b.LatMax, b.LonMin, b.LonMax)
}
