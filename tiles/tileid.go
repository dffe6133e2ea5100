package tiles

import (
	"fmt"
	"math"

	"github.com/brendan-ward/tilemosaic/affine"
)

var RE float64 = 6378137.0
var ORIGIN = RE * math.Pi
var CE float64 = 2.0 * ORIGIN
var DEG2RAD float64 = math.Pi / 180.0

// MaxLat is the northern (and negated, southern) limit of Web Mercator
const MaxLat = 85.0511287798

// MaxZoom is the deepest zoom level accepted for a request
const MaxZoom uint8 = 24

// WebMercator tile, numbered starting from upper left.
// X and Y are signed so that coordinates outside of the world stay visible
// to the caller instead of wrapping around.
type TileID struct {
	Zoom uint8
	X    int
	Y    int
}

func NewTileID(zoom uint8, x int, y int) *TileID {
	return &TileID{zoom, x, y}
}

// GeoToMercator projects longitude, latitude to Web Mercator (EPSG:3857) meters
func GeoToMercator(lon float64, lat float64) (x float64, y float64) {
	// truncate incoming values to world bounds
	lon = math.Min(math.Max(lon, -180), 180)
	lat = math.Min(math.Max(lat, -MaxLat), MaxLat)

	x = lon * ORIGIN / 180.0
	y = RE * math.Log(math.Tan((math.Pi*0.25)+(0.5*DEG2RAD*lat)))
	return
}

// MercatorToGeo is the inverse of GeoToMercator
func MercatorToGeo(x float64, y float64) (lon float64, lat float64) {
	lon = x * 180.0 / ORIGIN
	lat = (2.0*math.Atan(math.Exp(y/RE)) - math.Pi*0.5) / DEG2RAD
	return
}

func (t *TileID) String() string {
	return fmt.Sprintf("Tile(zoom: %v, x: %v, y:%v)", t.Zoom, t.X, t.Y)
}

// GeoBounds of the tile: X is longitude, Y is latitude
func (t *TileID) GeoBounds() *affine.Bounds {
	z2 := 1 << t.Zoom
	zoomFactor := (float64)(z2)
	x := (float64)(t.X)
	y := (float64)(t.Y)
	bounds := &affine.Bounds{Xmin: 0, Ymin: 0, Xmax: 0, Ymax: 0}
	bounds.Xmin = x/zoomFactor*360.0 - 180.0
	bounds.Ymin = math.Atan(math.Sinh(math.Pi*(1.0-2.0*((y+1.0)/zoomFactor)))) * (180.0 / math.Pi)
	bounds.Xmax = (x+1.0)/zoomFactor*360.0 - 180.0
	bounds.Ymax = math.Atan(math.Sinh(math.Pi*(1.0-2.0*y/zoomFactor))) * (180.0 / math.Pi)
	return bounds
}

func (t *TileID) MercatorBounds() *affine.Bounds {
	z2 := 1 << t.Zoom
	bounds := &affine.Bounds{Xmin: 0, Ymin: 0, Xmax: 0, Ymax: 0}
	tileSize := CE / (float64)(z2)
	bounds.Xmin = (float64)(t.X)*tileSize - CE/2.0
	bounds.Xmax = bounds.Xmin + tileSize
	bounds.Ymax = CE/2 - (float64)(t.Y)*tileSize
	bounds.Ymin = bounds.Ymax - tileSize
	return bounds
}
