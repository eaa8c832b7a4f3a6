package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/framebox/common"
	"github.com/Carmen-Shannon/framebox/engine/camera"
)

func colorsClose(a, b common.Color) bool {
	close := func(x, y float32) bool { return math.Abs(float64(x-y)) <= 1e-3 }
	return close(a.R, b.R) && close(a.G, b.G) && close(a.B, b.B) && close(a.A, b.A)
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    common.AspectRatio
		wantErr bool
	}{
		{"cinematic", "21:9", common.AspectRatio{Width: 21, Height: 9}, false},
		{"fractional", "2.39:1", common.AspectRatio{Width: 2.39, Height: 1}, false},
		{"spaces", " 16 : 9 ", common.AspectRatio{Width: 16, Height: 9}, false},
		{"empty uses default", "", common.DefaultAspectRatio, false},
		{"missing separator", "16x9", common.AspectRatio{}, true},
		{"too many parts", "16:9:4", common.AspectRatio{}, true},
		{"zero component", "0:9", common.AspectRatio{}, true},
		{"negative component", "16:-9", common.AspectRatio{}, true},
		{"not a number", "wide:9", common.AspectRatio{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAspectRatio(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRatio) {
					t.Fatalf("error = %v, want ErrInvalidRatio", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    common.Color
		wantErr bool
	}{
		{"black", "#000000", common.Color{A: 1}, false},
		{"white", "#ffffff", common.Color{R: 1, G: 1, B: 1, A: 1}, false},
		{"short form", "#f80", common.Color{R: 1, G: 0x88 / 255.0, B: 0, A: 1}, false},
		{"with alpha", "#00000080", common.Color{A: 0x80 / 255.0}, false},
		{"no hash", "336699", common.Color{R: 0x33 / 255.0, G: 0x66 / 255.0, B: 0x99 / 255.0, A: 1}, false},
		{"bad length", "#ff", common.Color{}, true},
		{"bad digits", "#zzzzzz", common.Color{}, true},
		{"empty", "", common.Color{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHexColor(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Fatalf("error = %v, want ErrInvalidColor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !colorsClose(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framing.yaml")
	body := []byte("framing:\n  aspect_ratio: \"4:3\"\n  blend: 0.5\n  bar_color: \"#102030\"\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	ac := camera.NewAspectController()
	if err := cfg.Apply(ac); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if got := ac.ForceAspectRatio(); got != (common.AspectRatio{Width: 4, Height: 3}) {
		t.Errorf("force ratio = %+v, want 4:3", got)
	}
	if got := ac.Blend(); got != 0.5 {
		t.Errorf("blend = %v, want 0.5", got)
	}
	want := common.Color{R: 0x10 / 255.0, G: 0x20 / 255.0, B: 0x30 / 255.0, A: 1}
	if got := ac.BarColor(); !colorsClose(got, want) {
		t.Errorf("bar color = %+v, want %+v", got, want)
	}
}

func TestApplyKeepsUnsetFields(t *testing.T) {
	ac := camera.NewAspectController(
		camera.WithForceAspectRatio(common.AspectRatio{Width: 16, Height: 9}),
		camera.WithBlend(0.75),
	)

	cfg := &Config{Framing: FramingConfig{BarColor: "#ffffff"}}
	if err := cfg.Apply(ac); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if got := ac.ForceAspectRatio(); got != (common.AspectRatio{Width: 16, Height: 9}) {
		t.Errorf("unset ratio overwrote controller value: %+v", got)
	}
	if got := ac.Blend(); got != 0.75 {
		t.Errorf("unset blend overwrote controller value: %v", got)
	}
	if got := ac.BarColor(); !colorsClose(got, common.Color{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("bar color = %+v, want white", got)
	}
}

func TestApplyRejectsBadValues(t *testing.T) {
	ac := camera.NewAspectController()

	cfg := &Config{Framing: FramingConfig{AspectRatio: "garbage"}}
	if err := cfg.Apply(ac); !errors.Is(err, ErrInvalidRatio) {
		t.Errorf("Apply error = %v, want ErrInvalidRatio", err)
	}

	cfg = &Config{Framing: FramingConfig{BarColor: "#nope"}}
	if err := cfg.Apply(ac); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("Apply error = %v, want ErrInvalidColor", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Load of missing file must fail")
	}
}
