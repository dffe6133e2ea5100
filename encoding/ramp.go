package encoding

import (
	"fmt"
	"image"
	"image/color"
	"sort"
)

// Ramp maps values onto colors by threshold: each value takes the color of
// the highest threshold that does not exceed it. Values below the lowest
// threshold are transparent.
type Ramp struct {
	thresholds []uint8
	colors     []color.NRGBA
	lookup     [256]color.NRGBA
}

// NewRamp parses a comma-delimited set of <threshold>:<hex> entries,
// e.g., "10:#00ECEC,20:#01A0F6"
func NewRamp(ramp string) (*Ramp, error) {
	entries, err := parseEntries(ramp)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].value < entries[j].value })

	r := &Ramp{
		thresholds: make([]uint8, len(entries)),
		colors:     make([]color.NRGBA, len(entries)),
	}
	for i, e := range entries {
		if i > 0 && e.value == entries[i-1].value {
			return nil, fmt.Errorf("duplicate ramp threshold %v", e.value)
		}
		r.thresholds[i] = e.value
		r.colors[i] = e.color
	}

	next := 0
	var current color.NRGBA
	for v := 0; v < 256; v++ {
		for next < len(r.thresholds) && int(r.thresholds[next]) <= v {
			current = r.colors[next]
			next++
		}
		r.lookup[v] = current
	}

	return r, nil
}

// Color of value
func (r *Ramp) Color(value uint8) color.NRGBA {
	return r.lookup[value]
}

// Apply maps every value of gray through the ramp
func (r *Ramp) Apply(gray *image.Gray) *image.NRGBA {
	bounds := gray.Bounds()
	img := image.NewNRGBA(bounds)

	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for col := bounds.Min.X; col < bounds.Max.X; col++ {
			img.SetNRGBA(col, row, r.lookup[gray.GrayAt(col, row).Y])
		}
	}

	return img
}
