package tiles

import (
	"errors"
	"fmt"
	"image"

	"github.com/brendan-ward/tilemosaic/affine"
)

// DefaultMaxTiles is the largest tile set Plan will create
const DefaultMaxTiles = 4096

var ErrEmptyTileSet = errors.New("no tiles cover the bounding box")
var ErrTooManyTiles = errors.New("too many tiles")

// TileSet is the ordered set of tiles covering a bounding box at one zoom
// level, plus the size of the mosaic canvas in tiles.
type TileSet struct {
	Zoom    uint8
	Min     TileID
	Max     TileID
	Columns int
	Rows    int
	// row-major: y outer, x inner
	Tiles []TileID
}

// Plan enumerates the tiles covering bbox on grid, up to DefaultMaxTiles.
func Plan(grid *Grid, bbox BoundingBox) (*TileSet, error) {
	return PlanLimit(grid, bbox, DefaultMaxTiles)
}

// PlanLimit enumerates the tiles covering bbox on grid.
// Ranges that are inverted or entirely off the world return ErrEmptyTileSet;
// ranges that partially leave the world are clamped to it. Sets of more than
// maxTiles tiles return ErrTooManyTiles; maxTiles <= 0 uses DefaultMaxTiles.
func PlanLimit(grid *Grid, bbox BoundingBox, maxTiles int) (*TileSet, error) {
	if maxTiles <= 0 {
		maxTiles = DefaultMaxTiles
	}
	minTile, maxTile := grid.TileRange(bbox)
	last := grid.NumTiles() - 1

	if minTile.X > maxTile.X || minTile.Y > maxTile.Y {
		return nil, fmt.Errorf("%w: inverted tile range %v to %v", ErrEmptyTileSet, &minTile, &maxTile)
	}
	if maxTile.X < 0 || maxTile.Y < 0 || minTile.X > last || minTile.Y > last {
		return nil, fmt.Errorf("%w: tile range %v to %v is outside of zoom %v", ErrEmptyTileSet, &minTile, &maxTile, grid.Zoom)
	}

	minTile.X = clamp(minTile.X, 0, last)
	minTile.Y = clamp(minTile.Y, 0, last)
	maxTile.X = clamp(maxTile.X, 0, last)
	maxTile.Y = clamp(maxTile.Y, 0, last)

	set := &TileSet{
		Zoom:    grid.Zoom,
		Min:     minTile,
		Max:     maxTile,
		Columns: maxTile.X - minTile.X + 1,
		Rows:    maxTile.Y - minTile.Y + 1,
	}
	// at most 2^24 on each axis, so this cannot overflow
	if count := int64(set.Columns) * int64(set.Rows); count > int64(maxTiles) {
		return nil, fmt.Errorf("%w: %vx%v tiles at zoom %v is more than %v, use a lower zoom or a smaller area", ErrTooManyTiles, set.Columns, set.Rows, grid.Zoom, maxTiles)
	}
	set.Tiles = make([]TileID, 0, set.Columns*set.Rows)
	for y := minTile.Y; y <= maxTile.Y; y++ {
		for x := minTile.X; x <= maxTile.X; x++ {
			set.Tiles = append(set.Tiles, TileID{Zoom: grid.Zoom, X: x, Y: y})
		}
	}

	return set, nil
}

func (s *TileSet) Len() int {
	return len(s.Tiles)
}

// Width of the mosaic canvas in pixels
func (s *TileSet) Width(tileSize int) int {
	return s.Columns * tileSize
}

// Height of the mosaic canvas in pixels
func (s *TileSet) Height(tileSize int) int {
	return s.Rows * tileSize
}

// Offset returns the pixel position of the upper left corner of tile within
// the mosaic canvas
func (s *TileSet) Offset(tile TileID, tileSize int) image.Point {
	return image.Pt((tile.X-s.Min.X)*tileSize, (tile.Y-s.Min.Y)*tileSize)
}

// Contains returns true if tile is part of the set
func (s *TileSet) Contains(tile TileID) bool {
	return tile.Zoom == s.Zoom && tile.X >= s.Min.X && tile.X <= s.Max.X && tile.Y >= s.Min.Y && tile.Y <= s.Max.Y
}

// GeoBounds returns the tile-aligned footprint of the set in degrees
// (X is longitude, Y is latitude)
func (s *TileSet) GeoBounds() *affine.Bounds {
	upperLeft := s.Min.GeoBounds()
	lowerRight := s.Max.GeoBounds()
	return &affine.Bounds{
		Xmin: upperLeft.Xmin,
		Ymin: lowerRight.Ymin,
		Xmax: lowerRight.Xmax,
		Ymax: upperLeft.Ymax,
	}
}

// MercatorBounds returns the tile-aligned footprint of the set in meters
func (s *TileSet) MercatorBounds() *affine.Bounds {
	upperLeft := s.Min.MercatorBounds()
	lowerRight := s.Max.MercatorBounds()
	return &affine.Bounds{
		Xmin: upperLeft.Xmin,
		Ymin: lowerRight.Ymin,
		Xmax: lowerRight.Xmax,
		Ymax: upperLeft.Ymax,
	}
}

func (s *TileSet) String() string {
	return fmt.Sprintf("TileSet(zoom: %v, x: [%v, %v], y: [%v, %v], %vx%v tiles)", s.Zoom, s.Min.X, s.Max.X, s.Min.Y, s.Max.Y, s.Columns, s.Rows)
}

func clamp(v int, lo int, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
