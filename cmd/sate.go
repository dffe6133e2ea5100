package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/providers"
)

var satelliteType string

var sateCmd = &cobra.Command{
	Use:   "sate",
	Short: "Download satellite imagery",
}

var windySatelliteCmd = &cobra.Command{
	Use:   "windy",
	Short: "Download Windy satellite imagery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, err := providers.ParseSatelliteChannel(satelliteType)
		if err != nil {
			return err
		}
		at, err := dataTime(date, time.Now(), providers.WindySatelliteDelay, providers.WindySatelliteStep)
		if err != nil {
			return err
		}
		provider, err := providers.WindySatellite(at, channel)
		if err != nil {
			return err
		}
		return download(cmd, provider)
	},
}

func init() {
	windySatelliteCmd.Flags().StringVarP(&satelliteType, "type", "t", "", "satellite image: infra or vis")
	windySatelliteCmd.MarkFlagRequired("type")

	sateCmd.AddCommand(windySatelliteCmd)
}
