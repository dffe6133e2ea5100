// Package mosaic stitches downloaded tiles into a single georeferenced image.
package mosaic

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/brendan-ward/tilemosaic/affine"
	"github.com/brendan-ward/tilemosaic/crop"
	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/fetch"
	"github.com/brendan-ward/tilemosaic/tiles"
)

const DefaultTileSize = 256

// MaxPixels is the largest canvas or output Assemble will allocate
const MaxPixels = 1 << 28

var (
	ErrNoTiles         = errors.New("no tiles could be placed")
	ErrCropOutOfBounds = errors.New("requested bounds are outside of the fetched tiles")
	ErrImageTooLarge   = errors.New("image is too large")
)

// TileHook transforms a decoded tile before it is placed
type TileHook func(tile tiles.TileID, img image.Image) (image.Image, error)

// CanvasHook transforms the whole canvas after every tile is placed
type CanvasHook func(canvas *image.NRGBA) (image.Image, error)

type Options struct {
	// TileSize in pixels on the canvas; tiles of a different size are scaled
	TileSize   int
	TileHook   TileHook
	CanvasHook CanvasHook
	// Crop to Bounds instead of keeping the full tile-aligned canvas
	Crop   bool
	Bounds tiles.BoundingBox
	// Width and Height of the output; 0 keeps the canvas size
	Width  int
	Height int
	Logger *slog.Logger
}

type Mosaic struct {
	Image    image.Image
	Metadata Metadata
	// Placed is the number of tiles drawn on the canvas, Skipped is the number
	// that were missing or could not be decoded
	Placed  int
	Skipped int
	Cropped bool
	// Transform maps pixels of Image to Web Mercator meters
	Transform *affine.Affine
}

// Assemble draws every downloaded task onto a transparent canvas covering set,
// then applies the canvas hook, crop and resize in that order.
func Assemble(set *tiles.TileSet, tasks []*fetch.Task, opts Options) (*Mosaic, error) {
	tileSize := opts.TileSize
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "mosaic")

	width, height := set.Width(tileSize), set.Height(tileSize)
	if err := checkSize(width, height); err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	if opts.Width > 0 && opts.Height > 0 {
		if err := checkSize(opts.Width, opts.Height); err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	m := &Mosaic{}

	for _, task := range tasks {
		if !task.Succeeded() {
			m.Skipped++
			continue
		}
		if !set.Contains(task.Tile) {
			logger.Warn("tile is not part of the tile set", "tile", task.Tile.String())
			m.Skipped++
			continue
		}

		img, err := decodeTile(task)
		if err == nil && opts.TileHook != nil {
			img, err = opts.TileHook(task.Tile, img)
		}
		if err != nil {
			logger.Warn("skipping tile", "tile", task.Tile.String(), "error", err)
			m.Skipped++
			continue
		}

		offset := set.Offset(task.Tile, tileSize)
		place(canvas, image.Rect(offset.X, offset.Y, offset.X+tileSize, offset.Y+tileSize), img)
		m.Placed++
	}

	if m.Placed == 0 {
		return nil, fmt.Errorf("%w: %v of %v tiles were skipped", ErrNoTiles, m.Skipped, len(tasks))
	}

	var out image.Image = canvas
	if opts.CanvasHook != nil {
		var err error
		if out, err = opts.CanvasHook(canvas); err != nil {
			return nil, fmt.Errorf("process canvas: %w", err)
		}
	}

	m.Transform = affine.FromBounds(set.MercatorBounds(), out.Bounds().Dx(), out.Bounds().Dy())

	geo := set.GeoBounds()
	m.Metadata = Metadata{
		LatBounds:  [2]float64{geo.Ymin, geo.Ymax},
		LngBounds:  [2]float64{geo.Xmin, geo.Xmax},
		Zoom:       set.Zoom,
		Projection: Projection,
	}

	if opts.Crop {
		source := set.MercatorBounds()
		target := opts.Bounds.MercatorBounds()
		result := crop.Crop(out, source, target)
		if result == nil {
			return nil, fmt.Errorf("%w: %v is outside of %v", ErrCropOutOfBounds, target, source)
		}
		out = result.Image
		m.Cropped = true
		m.Transform = result.Transform

		if source.Contains(target) {
			m.Metadata.LatBounds = [2]float64{opts.Bounds.LatMin, opts.Bounds.LatMax}
			m.Metadata.LngBounds = [2]float64{opts.Bounds.LonMin, opts.Bounds.LonMax}
		} else {
			logger.Warn("requested bounds clamped to fetched tiles", "requested", target.String(), "clamped", result.Bounds.String())
			lonMin, latMin := tiles.MercatorToGeo(result.Bounds.Xmin, result.Bounds.Ymin)
			lonMax, latMax := tiles.MercatorToGeo(result.Bounds.Xmax, result.Bounds.Ymax)
			m.Metadata.LatBounds = [2]float64{latMin, latMax}
			m.Metadata.LngBounds = [2]float64{lonMin, lonMax}
		}
		m.Metadata.MyBounds = &[2]float64{result.Bounds.Ymin, result.Bounds.Ymax}
		m.Metadata.MxBounds = &[2]float64{result.Bounds.Xmin, result.Bounds.Xmax}
	}

	if opts.Width > 0 && opts.Height > 0 {
		bounds := out.Bounds()
		m.Transform = m.Transform.Scale(float64(bounds.Dx())/float64(opts.Width), float64(bounds.Dy())/float64(opts.Height))
		out = Resize(out, opts.Width, opts.Height)
	}

	m.Image = out
	xres, yres := m.Transform.Resolution()
	logger.Debug("assembled mosaic",
		"placed", m.Placed,
		"skipped", m.Skipped,
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy(),
		"cropped", m.Cropped,
		"xres", xres,
		"yres", yres,
	)
	return m, nil
}

func checkSize(width int, height int) error {
	if int64(width)*int64(height) > MaxPixels {
		return fmt.Errorf("%w: %vx%v pixels is more than %v", ErrImageTooLarge, width, height, MaxPixels)
	}
	return nil
}

func decodeTile(task *fetch.Task) (image.Image, error) {
	data, err := task.Bytes()
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

// place draws img into rect of canvas, scaling it if it is not the same size
func place(canvas *image.NRGBA, rect image.Rectangle, img image.Image) {
	if img.Bounds().Size() == rect.Size() {
		draw.Draw(canvas, rect, img, img.Bounds().Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(canvas, rect, img, img.Bounds(), xdraw.Src, nil)
}

// Resize scales img to width x height
func Resize(img image.Image, width int, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// WritePNG encodes the mosaic as PNG with its metadata
func (m *Mosaic) WritePNG(w io.Writer) error {
	text, err := m.Metadata.Text()
	if err != nil {
		return err
	}
	return encoding.EncodePNG(w, m.Image, text)
}

// Save writes the mosaic to a PNG file at path
func (m *Mosaic) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	return m.WritePNG(f)
}
