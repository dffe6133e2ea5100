package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gosuri/uiprogress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/downloader"
	"github.com/brendan-ward/tilemosaic/fetch"
	"github.com/brendan-ward/tilemosaic/providers"
	"github.com/brendan-ward/tilemosaic/tiles"
)

// download runs provider for the area given by the global flags and writes
// the output
func download(cmd *cobra.Command, provider *providers.Provider) error {
	bbox, err := areaBounds(latBounds, lonBounds, center, radius)
	if err != nil {
		return err
	}
	if numWorkers > 0 {
		cfg.FetchConcurrency = numWorkers
	}
	if output == "" {
		output = provider.DefaultOutput(zoom)
	}

	req := &downloader.Request{
		Provider: provider,
		Bounds:   bbox,
		Zoom:     zoom,
		Output:   output,
		Crop:     crop,
		Size:     size,
		TilesDir: tilesDir,
		MBTiles:  mbtilesPath,
	}

	stopProgress := func() {}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		var bar *uiprogress.Bar
		req.OnPlan = func(set *tiles.TileSet) {
			uiprogress.Start()
			count := set.Len()
			bar = uiprogress.AddBar(count).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return fmt.Sprintf("zoom %2v (%5v/%5v)", zoom, b.Current(), count)
			})
		}
		req.OnTile = func(*fetch.Task) {
			bar.Incr()
		}
		stopProgress = func() {
			if bar != nil {
				uiprogress.Stop()
			}
		}
	}

	result, err := downloader.New(cfg, &http.Client{}, logger).Run(cmd.Context(), req)
	stopProgress()
	if err != nil {
		return err
	}
	if result.Fetch.Failed > 0 {
		logger.Warn("some tiles could not be downloaded and are left blank", "failed", result.Fetch.Failed, "total", result.Fetch.Total)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
