package palette

import (
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

var presets = map[string][]string{
	"rainbow":       {"#e62937", "#ffa100", "#fdf900", "#00e430", "#0079f1", "#c87aff", "#ff6dc2", "#e62937"},
	"ice":           {"#ffffff", "#ffffff", "#ffffff", "#ffffff", "#ffffff", "#00afff", "#0052ac", "#0052ac", "#0052ac", "#00afff", "#ffffff"},
	"wpb":           {"#ffffff", "#ff6dc2", "#00afff", "#ff6dc2", "#ffffff"},
	"main":          {"#ffffff", "#0052ac", "#0079f1", "#4c3f2f", "#7f6a4f", "#ffa100", "#fdf900", "#e62937", "#ff6dc2", "#ffffff"},
	"earth-and-sky": {"#ffffff", "#fdf900", "#e62937", "#0052ac", "#0079f1", "#ffffff"},
	"midnight":      {"#ffffff", "#0079f1", "#000000", "#ff6dc2", "#ffffff"},
	"cherry":        {"#ffffff", "#ffffff", "#ffffff", "#ffffff", "#ff6dc2", "#e62937", "#ff6dc2", "#ffffff"},
	"champagne":     {"#092b38", "#9c5773", "#ffffff", "#9c5773", "#092b38"},
	"royal":         {"#000000", "#d59c50", "#ffffff", "#477dff", "#000000"},
}

// PresetNames lists the built in palettes, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset builds a fresh, evenly spaced copy of a built in palette.
func Preset(name string, mapping Mapping, lengthPercent, offsetPercent float64) (*Palette, error) {
	hexes, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette preset %q", name)
	}
	colours, err := ParseHexColours(hexes)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return NewEven(colours, mapping, lengthPercent, offsetPercent)
}

// ParseHexColours parses "#rrggbb" (or "#rgb") strings.
func ParseHexColours(hexes []string) ([]colorful.Color, error) {
	colours := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colour %d: %w", i, err)
		}
		colours[i] = c
	}
	return colours, nil
}
