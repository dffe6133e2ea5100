package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/providers"
)

var mapStyle map[string]string

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Download basemap imagery",
}

var googleMapCmd = &cobra.Command{
	Use:   "google",
	Short: "Download Google satellite imagery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return download(cmd, providers.GoogleSatellite(mapStyle))
	},
}

func init() {
	googleMapCmd.Flags().StringToStringVar(&mapStyle, "style", nil, "extra query parameters for the tile URL, e.g. hl=en")

	mapCmd.AddCommand(googleMapCmd)
}
