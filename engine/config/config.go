package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/framebox/common"
	"github.com/Carmen-Shannon/framebox/engine/camera"
)

// ErrInvalidColor indicates a bar color string that is not a parsable hex color.
var ErrInvalidColor = errors.New("invalid hex color")

// ErrInvalidRatio indicates an aspect ratio string that is not in "W:H" form.
var ErrInvalidRatio = errors.New("invalid aspect ratio")

// FramingConfig holds the externally tunable framing parameters for an
// aspect controller: the forced aspect ratio, the blend factor, and the
// bar color. Zero values fall back to the controller defaults when applied.
type FramingConfig struct {
	// AspectRatio is the forced aspect ratio in "W:H" form, e.g. "21:9".
	AspectRatio string `yaml:"aspect_ratio"`

	// Blend interpolates between the unframed full-screen viewport (0) and
	// the fully framed viewport (1). Nil keeps the controller's current value.
	Blend *float32 `yaml:"blend"`

	// BarColor is the letterbox/pillarbox bar color as a hex string,
	// e.g. "#000000" or "#101018ff".
	BarColor string `yaml:"bar_color"`
}

// Config is the root of the engine configuration file.
type Config struct {
	Framing FramingConfig `yaml:"framing"`
}

// Load reads and parses a YAML configuration file.
//
// Parameters:
//   - path: filesystem path to the YAML file
//
// Returns:
//   - *Config: the parsed configuration
//   - error: read or parse failure
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Apply pushes the framing settings onto an aspect controller. Empty or nil
// fields keep the controller's current values; parse failures are returned
// without partially applying the failing field.
//
// Parameters:
//   - ac: the aspect controller to configure
//
// Returns:
//   - error: the first parse failure, or nil
func (c *Config) Apply(ac camera.AspectController) error {
	f := c.Framing

	if f.AspectRatio != "" {
		ratio, err := ParseAspectRatio(f.AspectRatio)
		if err != nil {
			return err
		}
		ac.SetForceAspectRatio(ratio)
	}

	if f.Blend != nil {
		ac.SetBlend(*f.Blend)
	}

	if f.BarColor != "" {
		col, err := ParseHexColor(f.BarColor)
		if err != nil {
			return err
		}
		ac.SetBarColor(col)
	}

	return nil
}

// ParseAspectRatio parses a "W:H" ratio string such as "21:9" or "2.39:1".
// An empty string yields the default ratio.
//
// Parameters:
//   - s: the ratio string
//
// Returns:
//   - common.AspectRatio: the parsed ratio
//   - error: ErrInvalidRatio when the string is malformed or non-positive
func ParseAspectRatio(s string) (common.AspectRatio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.DefaultAspectRatio, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return common.AspectRatio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}

	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return common.AspectRatio{}, fmt.Errorf("%w: %q", ErrInvalidRatio, s)
	}

	return common.AspectRatio{Width: float32(w), Height: float32(h)}, nil
}

// ParseHexColor parses "#RGB", "#RRGGBB", or "#RRGGBBAA" hex color strings
// into a normalized color. The leading '#' is optional. Alpha defaults to 1.
//
// Parameters:
//   - s: the hex color string
//
// Returns:
//   - common.Color: the parsed color with components in [0,1]
//   - error: ErrInvalidColor when the string is malformed
func ParseHexColor(s string) (common.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var r, g, b, a uint64
	var err error
	a = 0xff

	switch len(hex) {
	case 3:
		var v uint64
		v, err = strconv.ParseUint(hex, 16, 16)
		r = (v >> 8 & 0xf) * 0x11
		g = (v >> 4 & 0xf) * 0x11
		b = (v & 0xf) * 0x11
	case 6:
		var v uint64
		v, err = strconv.ParseUint(hex, 16, 32)
		r = v >> 16 & 0xff
		g = v >> 8 & 0xff
		b = v & 0xff
	case 8:
		var v uint64
		v, err = strconv.ParseUint(hex, 16, 64)
		r = v >> 24 & 0xff
		g = v >> 16 & 0xff
		b = v >> 8 & 0xff
		a = v & 0xff
	default:
		return common.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if err != nil {
		return common.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return common.Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, nil
}
