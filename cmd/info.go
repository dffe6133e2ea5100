package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/mosaic"
)

var asGeoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info [FILE.png]",
	Short: "Print the geographic metadata stored in a mosaic",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("a PNG filename is required")
		}
		if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("input file '%s' does not exist", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return info(cmd.OutOrStdout(), args[0], asGeoJSON)
	},
}

func init() {
	infoCmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "print the footprint as a GeoJSON feature")
}

func readMetadata(filename string) (*mosaic.Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := encoding.ReadText(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return mosaic.ParseMetadata(text)
}

func info(w io.Writer, filename string, asGeoJSON bool) error {
	metadata, err := readMetadata(filename)
	if err != nil {
		return err
	}

	if asGeoJSON {
		bound := orb.Bound{
			Min: orb.Point{metadata.LngBounds[0], metadata.LatBounds[0]},
			Max: orb.Point{metadata.LngBounds[1], metadata.LatBounds[1]},
		}
		feature := geojson.NewFeature(bound.ToPolygon())
		feature.BBox = geojson.NewBBox(bound)
		feature.Properties["zoom"] = metadata.Zoom
		feature.Properties["projection"] = metadata.Projection
		if metadata.MyBounds != nil && metadata.MxBounds != nil {
			feature.Properties["my_bounds"] = metadata.MyBounds
			feature.Properties["mx_bounds"] = metadata.MxBounds
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(feature)
	}

	fmt.Fprintf(w, "lat_bounds: [%v, %v]\n", metadata.LatBounds[0], metadata.LatBounds[1])
	fmt.Fprintf(w, "lng_bounds: [%v, %v]\n", metadata.LngBounds[0], metadata.LngBounds[1])
	if metadata.MyBounds != nil && metadata.MxBounds != nil {
		fmt.Fprintf(w, "my_bounds: [%v, %v]\n", metadata.MyBounds[0], metadata.MyBounds[1])
		fmt.Fprintf(w, "mx_bounds: [%v, %v]\n", metadata.MxBounds[0], metadata.MxBounds[1])
	}
	fmt.Fprintf(w, "zoom: %v\n", metadata.Zoom)
	fmt.Fprintf(w, "projection: %v\n", metadata.Projection)
	return nil
}
