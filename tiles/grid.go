package tiles

import "math"

// Grid converts between geographic coordinates and slippy map tile indexes
// at a single zoom level.
type Grid struct {
	Zoom uint8
}

func NewGrid(zoom uint8) *Grid {
	return &Grid{Zoom: zoom}
}

// NumTiles is the number of tiles along each axis at the grid's zoom level
func (g *Grid) NumTiles() int {
	return 1 << g.Zoom
}

// TileIndex calculates the x, y index of the tile containing lat, lng.
// Latitudes outside of +/- MaxLat produce a y outside of [0, NumTiles()).
func (g *Grid) TileIndex(lat float64, lng float64) (int, int) {
	n := float64(g.NumTiles())
	x := math.Floor((lng + 180.0) * n / 360.0)
	y := math.Floor((1.0 - math.Asinh(math.Tan(lat*DEG2RAD))/math.Pi) * n / 2.0)
	return int(x), int(y)
}

// Tile returns the tile containing lat, lng
func (g *Grid) Tile(lat float64, lng float64) TileID {
	x, y := g.TileIndex(lat, lng)
	return TileID{Zoom: g.Zoom, X: x, Y: y}
}

// TileCorner returns the latitude, longitude of the upper left corner of tile x, y.
// x, y may equal NumTiles() to address the far edge of the last tile.
func (g *Grid) TileCorner(x int, y int) (float64, float64) {
	n := float64(g.NumTiles())
	lat := math.Atan(math.Sinh(math.Pi*(1.0-2.0*float64(y)/n))) / DEG2RAD
	lng := float64(x)/n*360.0 - 180.0
	return lat, lng
}

// MercatorMeters projects lat, lng to Web Mercator northing, easting
func (g *Grid) MercatorMeters(lat float64, lng float64) (my float64, mx float64) {
	mx, my = GeoToMercator(lng, lat)
	return my, mx
}

// TileRange returns the tiles containing the upper left and lower right
// corners of bbox. The range is not checked: a bbox that is inverted or off
// the world yields an empty or out of range result.
func (g *Grid) TileRange(bbox BoundingBox) (TileID, TileID) {
	topLeft := bbox.TopLeft()
	bottomRight := bbox.BottomRight()
	return g.Tile(topLeft.Lat, topLeft.Lng), g.Tile(bottomRight.Lat, bottomRight.Lng)
}
