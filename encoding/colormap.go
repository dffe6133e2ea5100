package encoding

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

type Colormap struct {
	values  map[uint8]uint8 // map of value to index in palette
	palette color.Palette
}

// Returns palette index of value
// any values not in original colormap are set to transparent
func (c *Colormap) GetIndex(value uint8) uint8 {
	if index, ok := c.values[value]; ok {
		return index
	}
	return uint8(len(c.palette) - 1)
}

func (c *Colormap) Palette() color.Palette {
	return c.palette
}

// Create new colormap by parsing colormap string, which is a comma-delimited
// set of <value>:<hex> entries, e.g., "1:#AABBCC,2:#DDEEFF"
func NewColormap(colormap string) (*Colormap, error) {
	entries, err := parseEntries(colormap)
	if err != nil {
		return nil, err
	}
	if len(entries) > 255 {
		return nil, fmt.Errorf("colormap has %v entries, at most 255 are supported", len(entries))
	}

	palette := make([]color.Color, len(entries)+1)
	values := make(map[uint8]uint8, len(entries))
	for i, entry := range entries {
		values[entry.value] = uint8(i)
		palette[i] = entry.color
	}
	palette[len(entries)] = color.Transparent

	return &Colormap{
		values:  values,
		palette: palette,
	}, nil
}

type entry struct {
	value uint8
	color color.NRGBA
}

// parse a comma-delimited set of <value>:<hex> entries
func parseEntries(str string) ([]entry, error) {
	parts := strings.Split(strings.ReplaceAll(str, " ", ""), ",")
	entries := make([]entry, 0, len(parts))
	for _, part := range parts {
		value, hex, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("invalid entry %q: expected <value>:<hex>", part)
		}
		v, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", part, err)
		}
		c, err := parseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", part, err)
		}
		entries = append(entries, entry{value: uint8(v), color: c})
	}
	return entries, nil
}

// from: https://stackoverflow.com/a/54200713/2740575
func parseHex(hex string) (c color.NRGBA, err error) {
	c.A = 0xff

	if len(hex) == 0 || hex[0] != '#' {
		return c, fmt.Errorf("Invalid hex color format")
	}

	hexToByte := func(b byte) byte {
		switch {
		case b >= '0' && b <= '9':
			return b - '0'
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10
		}
		err = fmt.Errorf("Invalid hex color format")
		return 0
	}

	switch len(hex) {
	case 7:
		c.R = hexToByte(hex[1])<<4 + hexToByte(hex[2])
		c.G = hexToByte(hex[3])<<4 + hexToByte(hex[4])
		c.B = hexToByte(hex[5])<<4 + hexToByte(hex[6])
	case 4:
		c.R = hexToByte(hex[1]) * 17
		c.G = hexToByte(hex[2]) * 17
		c.B = hexToByte(hex[3]) * 17
	default:
		err = fmt.Errorf("Invalid hex color format")
	}
	return c, err
}

// Apply maps every value of gray to its colormap entry
func (c *Colormap) Apply(gray *image.Gray) *image.Paletted {
	bounds := gray.Bounds()
	img := image.NewPaletted(bounds, c.palette)

	var value uint8
	for row := bounds.Min.Y; row < bounds.Max.Y; row++ {
		for col := bounds.Min.X; col < bounds.Max.X; col++ {
			value = gray.GrayAt(col, row).Y
			img.SetColorIndex(col, row, c.GetIndex(value))
		}
	}

	return img
}
