package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/mosaic"
	"github.com/brendan-ward/tilemosaic/providers"
)

// tile servers are usually more detailed than weather sources
const tileZoom = 10

var urlTemplate string
var colormap string
var colormapChannel string

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Download tiles from any XYZ tile server",
	Long: `Download tiles from any XYZ tile server, given a URL template with {z}, {x} and {y} placeholders:

  tilemosaic tile --url-template "https://tile.openstreetmap.org/{z}/{x}/{y}.png" --center 51.5,-0.12 --radius 5000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := providers.Template(urlTemplate)
		if err != nil {
			return err
		}
		if colormap != "" {
			cm, err := encoding.NewColormap(colormap)
			if err != nil {
				return err
			}
			channel, err := encoding.ParseChannel(colormapChannel)
			if err != nil {
				return err
			}
			provider.CanvasHook = mosaic.ColormapHook(cm, channel)
		}
		if !cmd.Flags().Changed("zoom") {
			zoom = tileZoom
		}
		return download(cmd, provider)
	},
}

func init() {
	tileCmd.Flags().StringVarP(&urlTemplate, "url-template", "u", "", "tile URL with {z}, {x} and {y} placeholders")
	tileCmd.Flags().StringVarP(&colormap, "colormap", "c", "", "colormap to apply to single band tiles, e.g. 1:#686868,2:#fbb4b9")
	tileCmd.Flags().StringVar(&colormapChannel, "colormap-channel", "red", "channel of the tiles the colormap is applied to")
	tileCmd.MarkFlagRequired("url-template")
}
