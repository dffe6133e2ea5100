package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/providers"
)

var radarProduct int

var radarCmd = &cobra.Command{
	Use:   "radar",
	Short: "Download weather radar",
}

var windyRadarCmd = &cobra.Command{
	Use:   "windy",
	Short: "Download Windy composite radar reflectivity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := dataTime(date, time.Now(), providers.WindyRadarDelay, providers.WindyRadarStep)
		if err != nil {
			return err
		}
		provider, err := providers.WindyRadar(at, radarProduct)
		if err != nil {
			return err
		}
		return download(cmd, provider)
	},
}

var rainViewerCmd = &cobra.Command{
	Use:   "rainviewer",
	Short: "Download RainViewer radar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := dataTime(date, time.Now(), providers.RainViewerDelay, providers.RainViewerStep)
		if err != nil {
			return err
		}
		provider, err := providers.RainViewer(cmd.Context(), &http.Client{Timeout: cfg.FetchTimeout}, cfg.RainViewerAPI, at)
		if err != nil {
			return err
		}
		logger.Debug("found radar frame", "time", provider.Time.Format(time.RFC3339))
		return download(cmd, provider)
	},
}

func init() {
	windyRadarCmd.Flags().IntVar(&radarProduct, "num", 1, "Windy radar composite product number")

	radarCmd.AddCommand(windyRadarCmd)
	radarCmd.AddCommand(rainViewerCmd)
}
