package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/config"
	"github.com/brendan-ward/tilemosaic/downloader"
)

var VERSION = "0.1.0"

// global flags
var latBounds string
var lonBounds string
var center string
var radius float64
var zoom uint8
var output string
var crop bool
var size int
var tilesDir string
var mbtilesPath string
var numWorkers int
var date string
var profileMode string

// set up before every command runs
var cfg *config.Config
var logger *slog.Logger
var profiler interface{ Stop() }

var rootCmd = &cobra.Command{
	Use:     "tilemosaic",
	Short:   "Download slippy map tiles for an area and merge them into a single PNG",
	Version: VERSION,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logger = config.NewLogger(cfg, os.Stderr)

		switch profileMode {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
		default:
			return fmt.Errorf("unknown profile %q: must be cpu or mem", profileMode)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
	SilenceUsage: true,
}

// Execute executes the root command, canceling downloads on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&latBounds, "lat-bounds", "", "latitude bounds: min,max")
	flags.StringVar(&lonBounds, "lon-bounds", "", "longitude bounds: min,max")
	flags.StringVar(&center, "center", "", "center of the area: lat,lng; used with --radius instead of bounds")
	flags.Float64Var(&radius, "radius", 50000, "distance from center to each edge of the area in meters")
	flags.Uint8VarP(&zoom, "zoom", "z", 7, "zoom level")
	flags.StringVarP(&output, "output", "o", "", "output PNG filename (default depends on the command)")
	flags.BoolVar(&crop, "crop", true, "crop the mosaic to the requested area")
	flags.IntVarP(&size, "size", "s", downloader.ProviderSize, "output width and height in pixels; 0 keeps the mosaic size (default depends on the command)")
	flags.StringVar(&tilesDir, "tiles-dir", "", "directory to keep downloaded tiles in (default is a temporary directory)")
	flags.StringVar(&mbtilesPath, "mbtiles", "", "also write downloaded tiles to this mbtiles file")
	flags.IntVarP(&numWorkers, "workers", "w", 0, "number of concurrent downloads (default from TILEMOSAIC_FETCH_CONCURRENCY)")
	flags.StringVar(&date, "date", "", "time of the data for time based sources, e.g. 2024-06-01T12:30:00Z (default is the latest available)")
	flags.StringVar(&profileMode, "profile", "", "write a cpu or mem profile to the current directory")
	flags.MarkHidden("profile")

	rootCmd.AddCommand(tileCmd)
	rootCmd.AddCommand(radarCmd)
	rootCmd.AddCommand(sateCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(infoCmd)
}
