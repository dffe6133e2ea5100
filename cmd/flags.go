package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brendan-ward/tilemosaic/providers"
	"github.com/brendan-ward/tilemosaic/tiles"
)

// accepted --date layouts; values without a zone are UTC
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"20060102150405",
	"200601021504",
	"2006-01-02",
}

// parsePair parses "a,b" into two floats
func parsePair(value string, name string) (float64, float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--%s must be two comma separated numbers, got %q", name, value)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--%s: %w", name, err)
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--%s: %w", name, err)
	}
	return a, b, nil
}

// areaBounds returns the area to download, from a center and radius when
// center is given, otherwise from the latitude and longitude bounds
func areaBounds(latBounds string, lonBounds string, center string, radius float64) (tiles.BoundingBox, error) {
	if center != "" {
		lat, lng, err := parsePair(center, "center")
		if err != nil {
			return tiles.BoundingBox{}, err
		}
		if radius <= 0 {
			return tiles.BoundingBox{}, fmt.Errorf("--radius must be positive, got %v", radius)
		}
		return tiles.BoundingBoxFromCenter(tiles.GeoPoint{Lat: lat, Lng: lng}, radius), nil
	}

	if latBounds == "" || lonBounds == "" {
		return tiles.BoundingBox{}, errors.New("either --center or both --lat-bounds and --lon-bounds are required")
	}
	lat1, lat2, err := parsePair(latBounds, "lat-bounds")
	if err != nil {
		return tiles.BoundingBox{}, err
	}
	lon1, lon2, err := parsePair(lonBounds, "lon-bounds")
	if err != nil {
		return tiles.BoundingBox{}, err
	}
	return tiles.NewBoundingBox(lat1, lat2, lon1, lon2), nil
}

// dataTime returns the time to request from a time based source: value if
// given, otherwise delay before now, floored to step minutes
func dataTime(value string, now time.Time, delay time.Duration, step int) (time.Time, error) {
	if value == "" {
		return providers.FloorTime(now.Add(-delay), step), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return providers.FloorTime(t, step), nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse --date %q, use a format like 2006-01-02T15:04:05Z", value)
}
