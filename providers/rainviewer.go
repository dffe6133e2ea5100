package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	RainViewerAPI   = "https://api.rainviewer.com/public/weather-maps.json"
	RainViewerDelay = 5 * time.Minute
	RainViewerStep  = 10
)

var ErrNoFrame = errors.New("no radar frame available")

type rainViewerFrame struct {
	Time int64  `json:"time"`
	Path string `json:"path"`
}

type rainViewerMaps struct {
	Host  string `json:"host"`
	Radar struct {
		Past    []rainViewerFrame `json:"past"`
		Nowcast []rainViewerFrame `json:"nowcast"`
	} `json:"radar"`
}

// RainViewer radar for the newest frame at or before at. The frame is
// discovered from the weather maps listing at apiURL.
func RainViewer(ctx context.Context, client *http.Client, apiURL string, at time.Time) (*Provider, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get weather maps: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get weather maps: unexpected status: %d", resp.StatusCode)
	}

	var maps rainViewerMaps
	if err := json.NewDecoder(resp.Body).Decode(&maps); err != nil {
		return nil, fmt.Errorf("decode weather maps: %w", err)
	}

	var frame *rainViewerFrame
	for _, frames := range [][]rainViewerFrame{maps.Radar.Past, maps.Radar.Nowcast} {
		for i := range frames {
			f := &frames[i]
			if f.Time <= at.Unix() && (frame == nil || f.Time > frame.Time) {
				frame = f
			}
		}
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: at or before %v", ErrNoFrame, at.UTC().Format(time.RFC3339))
	}

	prefix := strings.TrimRight(maps.Host, "/") + frame.Path
	return &Provider{
		Name:       "rainviewer_radar",
		Format:     "webp",
		Time:       time.Unix(frame.Time, 0).UTC(),
		URL:        templateURL(prefix + "/256/{z}/{x}/{y}/255/1_1_1_0.webp"),
		OutputSize: WeatherOutputSize,
	}, nil
}
