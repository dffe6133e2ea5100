package mosaic

import (
	"encoding/json"
	"fmt"

	"github.com/brendan-ward/tilemosaic/encoding"
)

const Projection = "EPSG:3857"

// Metadata describes the geographic footprint of a mosaic. It is written
// to the output PNG as tEXt entries with JSON encoded values.
type Metadata struct {
	// [min, max] in degrees
	LatBounds [2]float64
	LngBounds [2]float64
	// [min, max] in Web Mercator meters, only present when cropped
	MyBounds   *[2]float64
	MxBounds   *[2]float64
	Zoom       uint8
	Projection string
}

// Text returns the metadata as PNG text entries
func (m *Metadata) Text() ([]encoding.Text, error) {
	text := make([]encoding.Text, 0, 6)
	add := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		text = append(text, encoding.Text{Key: key, Value: string(encoded)})
		return nil
	}

	if err := add("lat_bounds", m.LatBounds); err != nil {
		return nil, err
	}
	if err := add("lng_bounds", m.LngBounds); err != nil {
		return nil, err
	}
	if m.MyBounds != nil {
		if err := add("my_bounds", *m.MyBounds); err != nil {
			return nil, err
		}
	}
	if m.MxBounds != nil {
		if err := add("mx_bounds", *m.MxBounds); err != nil {
			return nil, err
		}
	}
	if err := add("zoom", m.Zoom); err != nil {
		return nil, err
	}
	if err := add("projection", m.Projection); err != nil {
		return nil, err
	}
	return text, nil
}

// ParseMetadata reads Metadata from PNG text entries; unknown keys are
// ignored.
func ParseMetadata(text []encoding.Text) (*Metadata, error) {
	m := &Metadata{}
	found := false
	for _, entry := range text {
		var target any
		switch entry.Key {
		case "lat_bounds":
			target = &m.LatBounds
		case "lng_bounds":
			target = &m.LngBounds
		case "my_bounds":
			m.MyBounds = &[2]float64{}
			target = m.MyBounds
		case "mx_bounds":
			m.MxBounds = &[2]float64{}
			target = m.MxBounds
		case "zoom":
			target = &m.Zoom
		case "projection":
			target = &m.Projection
		default:
			continue
		}
		if err := json.Unmarshal([]byte(entry.Value), target); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Key, err)
		}
		found = true
	}
	if !found {
		return nil, fmt.Errorf("no mosaic metadata found")
	}
	return m, nil
}
