// Package providers describes the tile servers that mosaics can be built from.
package providers

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brendan-ward/tilemosaic/mosaic"
	"github.com/brendan-ward/tilemosaic/tiles"
)

// WeatherOutputSize is the default width and height of weather mosaics
const WeatherOutputSize = 670

var ErrMissingTemplate = errors.New("missing tile URL template")

// Provider describes how to fetch and process tiles from one tile server.
// Providers are built per run and not modified afterwards.
type Provider struct {
	Name   string
	Format string
	URL    func(tiles.TileID) string

	// Time of the data, zero for providers that are not time based
	Time time.Time

	// TileHook and CanvasHook are optional
	TileHook   mosaic.TileHook
	CanvasHook mosaic.CanvasHook
	// OutputSize is the default width and height of the output in pixels;
	// 0 keeps the canvas size
	OutputSize int

	// zoom is part of the default output name
	zoomOutput bool
}

var formatPattern = regexp.MustCompile(`(?i)\.(png|webp|jpg|jpeg)$`)

// Template creates a provider from a URL with {z}, {x} and {y} placeholders.
// The tile format is taken from the extension of the URL path.
func Template(tmpl string) (*Provider, error) {
	tmpl = strings.TrimSpace(tmpl)
	if tmpl == "" {
		return nil, ErrMissingTemplate
	}
	for _, placeholder := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(tmpl, placeholder) {
			return nil, fmt.Errorf("%w: %q does not contain %s", ErrMissingTemplate, tmpl, placeholder)
		}
	}

	return &Provider{
		Name:       "download_map",
		Format:     templateFormat(tmpl),
		URL:        templateURL(tmpl),
		zoomOutput: true,
	}, nil
}

func templateFormat(tmpl string) string {
	p := tmpl
	if u, err := url.Parse(tmpl); err == nil && u.Path != "" {
		p = u.Path
	}
	match := formatPattern.FindStringSubmatch(path.Base(p))
	if match == nil {
		return "png"
	}
	return strings.ToLower(match[1])
}

func templateURL(tmpl string) func(tiles.TileID) string {
	return func(tile tiles.TileID) string {
		return strings.NewReplacer(
			"{z}", strconv.Itoa(int(tile.Zoom)),
			"{x}", strconv.Itoa(tile.X),
			"{y}", strconv.Itoa(tile.Y),
		).Replace(tmpl)
	}
}

// GoogleSatellite imagery; style entries are appended as extra query
// parameters in key order.
func GoogleSatellite(style map[string]string) *Provider {
	keys := make([]string, 0, len(style))
	for key := range style {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "&%s=%s", url.QueryEscape(key), url.QueryEscape(style[key]))
	}

	return &Provider{
		Name:   "google_satellite_map",
		Format: "jpg",
		URL:    templateURL("https://mt0.google.com/vt/lyrs=s" + b.String() + "&x={x}&y={y}&z={z}"),
	}
}

// DefaultOutput is the output file name used when none is given
func (p *Provider) DefaultOutput(zoom uint8) string {
	switch {
	case !p.Time.IsZero():
		return fmt.Sprintf("%s_%s.png", p.Name, p.Time.UTC().Format("20060102150405"))
	case p.zoomOutput:
		return fmt.Sprintf("%s-zoom%d.png", p.Name, zoom)
	}
	return p.Name + ".png"
}

// FloorTime truncates t to the minute, then down to a multiple of step
// minutes, in UTC
func FloorTime(t time.Time, step int) time.Time {
	t = t.UTC().Truncate(time.Minute)
	if step <= 1 {
		return t
	}
	return t.Add(-time.Duration(t.Minute()%step) * time.Minute)
}
