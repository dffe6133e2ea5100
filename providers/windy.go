package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/brendan-ward/tilemosaic/encoding"
	"github.com/brendan-ward/tilemosaic/mosaic"
)

// RadarRamp colors radar reflectivity. Thresholds are dBZ stored as
// 2 * (dBZ + 32): 5 dBZ through 70 dBZ in steps of 5.
const RadarRamp = "74:#04E9E7,84:#019FF4,94:#0300F4,104:#02FD02,114:#01C501,124:#008E00," +
	"134:#FDF802,144:#E5BC00,154:#FD9500,164:#FD0000,174:#D40000,184:#BC0000,194:#F800FD,204:#9854C6"

// RadarChannel holds reflectivity in Windy multichannel radar tiles
const RadarChannel = encoding.Red

// default time offsets and steps (minutes) when no date is given
const (
	WindyRadarDelay     = 5 * time.Minute
	WindyRadarStep      = 5
	WindySatelliteDelay = 15 * time.Minute
	WindySatelliteStep  = 10
)

// WindyRadar composite reflectivity at time at; num is the composite product
// number
func WindyRadar(at time.Time, num int) (*Provider, error) {
	ramp, err := encoding.NewRamp(RadarRamp)
	if err != nil {
		return nil, err
	}

	at = at.UTC()
	tmpl := fmt.Sprintf("https://rdr.windy.com/radar2/composite/%s/%d/{z}/{x}/{y}/reflectivity.png?multichannel=true&maxt=%s",
		at.Format("2006/01/02"), num, at.Format("20060102150405"))

	return &Provider{
		Name:       "windy_radar",
		Format:     "png",
		Time:       at,
		URL:        templateURL(tmpl),
		TileHook:   mosaic.ChannelHook(RadarChannel),
		CanvasHook: mosaic.RampHook(ramp),
		OutputSize: WeatherOutputSize,
	}, nil
}

// SatelliteChannel selects one image of a Windy satellite tile, which stacks
// the visible image above the infrared one
type SatelliteChannel string

const (
	Visible  SatelliteChannel = "vis"
	Infrared SatelliteChannel = "infra"
)

func ParseSatelliteChannel(name string) (SatelliteChannel, error) {
	switch SatelliteChannel(strings.ToLower(name)) {
	case Visible:
		return Visible, nil
	case Infrared:
		return Infrared, nil
	}
	return "", fmt.Errorf("unknown satellite type %q: must be one of %s, %s", name, Infrared, Visible)
}

// WindySatellite imagery at time at
func WindySatellite(at time.Time, channel SatelliteChannel) (*Provider, error) {
	half := mosaic.Top
	switch channel {
	case Visible:
	case Infrared:
		half = mosaic.Bottom
	default:
		return nil, fmt.Errorf("unknown satellite type %q", channel)
	}

	tmpl := fmt.Sprintf("https://sat.windy.com/satellite/tile/deg140e/%s/{z}/{x}/{y}/visir.jpg?mosaic=true",
		at.UTC().Format("200601021504"))

	return &Provider{
		Name:       "windy_sate-" + string(channel),
		Format:     "jpg",
		Time:       at.UTC(),
		URL:        templateURL(tmpl),
		TileHook:   mosaic.SplitHook(half),
		OutputSize: WeatherOutputSize,
	}, nil
}
