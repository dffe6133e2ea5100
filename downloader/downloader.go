// Package downloader runs one mosaic download: plan the tiles, fetch them,
// assemble the mosaic and write the outputs.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brendan-ward/tilemosaic/config"
	"github.com/brendan-ward/tilemosaic/fetch"
	"github.com/brendan-ward/tilemosaic/mbtiles"
	"github.com/brendan-ward/tilemosaic/mosaic"
	"github.com/brendan-ward/tilemosaic/providers"
	"github.com/brendan-ward/tilemosaic/tiles"
)

// ProviderSize uses the provider's output size
const ProviderSize = -1

var ErrInvalidRequest = errors.New("invalid request")

type Request struct {
	Provider *providers.Provider
	Bounds   tiles.BoundingBox
	Zoom     uint8
	// Output PNG path
	Output string
	Crop   bool
	// Size is the output width and height: ProviderSize uses the provider
	// default, 0 keeps the mosaic size
	Size int
	// TilesDir keeps downloaded tiles; when empty a temporary directory is
	// used and removed at the end of the run
	TilesDir string
	// MBTiles path to export downloaded tiles to, optional
	MBTiles string

	// OnPlan is called once the tiles are known, before any are fetched
	OnPlan func(set *tiles.TileSet)
	// OnTile is called as each tile completes, possibly concurrently
	OnTile func(task *fetch.Task)
}

// Validate checks the request before anything is downloaded
func (r *Request) Validate() error {
	if r.Provider == nil {
		return fmt.Errorf("%w: provider is required", ErrInvalidRequest)
	}
	if err := r.Bounds.Validate(); err != nil {
		return err
	}
	if r.Zoom > tiles.MaxZoom {
		return fmt.Errorf("%w: zoom must be no greater than %v, got %v", ErrInvalidRequest, tiles.MaxZoom, r.Zoom)
	}
	if r.Output == "" {
		return fmt.Errorf("%w: output is required", ErrInvalidRequest)
	}
	return nil
}

func (r *Request) outputSize() int {
	if r.Size < 0 {
		return r.Provider.OutputSize
	}
	return r.Size
}

type Result struct {
	TileSet *tiles.TileSet
	Fetch   fetch.Result
	Mosaic  *mosaic.Mosaic
	// MBTiles is the number of tiles exported
	MBTiles int
}

type Downloader struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
}

func New(cfg *config.Config, client *http.Client, logger *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Downloader{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Run downloads and writes one mosaic. Tiles that cannot be fetched leave
// transparent areas in the output; the run only fails outright if none can
// be placed.
func (d *Downloader) Run(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := d.logger.With("component", "downloader", "provider", req.Provider.Name)
	start := time.Now()

	set, err := tiles.PlanLimit(tiles.NewGrid(req.Zoom), req.Bounds, d.cfg.MaxTiles)
	if err != nil {
		return nil, err
	}
	logger.Debug("planned tiles", "tiles", set.String())
	if req.OnPlan != nil {
		req.OnPlan(set)
	}

	dir := req.TilesDir
	if dir == "" {
		if dir, err = os.MkdirTemp("", "tilemosaic-*"); err != nil {
			return nil, fmt.Errorf("create tiles directory: %w", err)
		}
		defer os.RemoveAll(dir)
	} else if err = os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create tiles directory: %w", err)
	}

	tasks := fetch.NewTasks(set, req.Provider.URL, dir, req.Provider.Format)

	headers := http.Header{}
	if d.cfg.UserAgent != "" {
		headers.Set("User-Agent", d.cfg.UserAgent)
	}
	fetcher := fetch.New(d.client, fetch.Options{
		Concurrency: d.cfg.FetchConcurrency,
		MaxAttempts: d.cfg.FetchMaxAttempts,
		RetryDelay:  d.cfg.FetchRetryDelay,
		Timeout:     d.cfg.FetchTimeout,
		Headers:     headers,
		OnComplete:  req.OnTile,
	}, d.logger)

	result := &Result{TileSet: set}
	result.Fetch = fetcher.Fetch(ctx, tasks)
	logger.Info("fetched tiles",
		"succeeded", result.Fetch.Succeeded,
		"total", result.Fetch.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if err = ctx.Err(); err != nil {
		return result, err
	}

	if req.MBTiles != "" && result.Fetch.Succeeded > 0 {
		result.MBTiles, err = mbtiles.Export(ctx, req.MBTiles, set, tasks, mbtiles.Metadata{
			Name:   req.Provider.Name,
			Format: req.Provider.Format,
		}, d.logger)
		if err != nil {
			return result, fmt.Errorf("export mbtiles: %w", err)
		}
		logger.Info("exported tiles", "path", req.MBTiles, "count", result.MBTiles)
	}

	size := req.outputSize()
	m, err := mosaic.Assemble(set, tasks, mosaic.Options{
		TileSize:   d.cfg.TileSize,
		TileHook:   req.Provider.TileHook,
		CanvasHook: req.Provider.CanvasHook,
		Crop:       req.Crop,
		Bounds:     req.Bounds,
		Width:      size,
		Height:     size,
		Logger:     d.logger,
	})
	if err != nil {
		return result, err
	}
	result.Mosaic = m

	if err = m.Save(req.Output); err != nil {
		return result, err
	}
	logger.Info("wrote mosaic",
		"output", req.Output,
		"width", m.Image.Bounds().Dx(),
		"height", m.Image.Bounds().Dy(),
		"cropped", m.Cropped,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
