package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/framebox/common"
)

const testTolerance = 1e-4

func viewportsClose(a, b common.Viewport) bool {
	close := func(x, y float32) bool {
		return math.Abs(float64(x-y)) <= testTolerance
	}
	return close(a.X, b.X) && close(a.Y, b.Y) && close(a.W, b.W) && close(a.H, b.H)
}

func TestComputeViewport(t *testing.T) {
	cinematic := common.AspectRatio{Width: 21, Height: 9}

	tests := []struct {
		name    string
		screenW int
		screenH int
		force   common.AspectRatio
		blend   float32
		want    common.Viewport
	}{
		{
			name:    "letterbox 16:9 into 21:9",
			screenW: 1920, screenH: 1080,
			force: cinematic, blend: 1,
			// content height shrinks to (16/9)/(21/9) = 16/21
			want: common.Viewport{X: 0, Y: (1 - 16.0/21.0) / 2, W: 1, H: 16.0 / 21.0},
		},
		{
			name:    "pillarbox 32:9 into 21:9",
			screenW: 3840, screenH: 1080,
			force: cinematic, blend: 1,
			// content width shrinks to (21/9)/(32/9) = 21/32
			want: common.Viewport{X: (1 - 21.0/32.0) / 2, Y: 0, W: 21.0 / 32.0, H: 1},
		},
		{
			name:    "portrait surface letterboxes",
			screenW: 1080, screenH: 1920,
			force: common.AspectRatio{Width: 16, Height: 9}, blend: 1,
			want: common.Viewport{X: 0, Y: (1 - (1080.0/1920.0)/(16.0/9.0)) / 2, W: 1, H: (1080.0 / 1920.0) / (16.0 / 9.0)},
		},
		{
			name:    "square force on widescreen",
			screenW: 1920, screenH: 1080,
			force: common.AspectRatio{Width: 1, Height: 1}, blend: 1,
			want: common.Viewport{X: (1 - 1080.0/1920.0) / 2, Y: 0, W: 1080.0 / 1920.0, H: 1},
		},
		{
			name:    "matching ratio yields full surface",
			screenW: 2520, screenH: 1080,
			force: cinematic, blend: 1,
			want: common.FullViewport(),
		},
		{
			name:    "half blend splits the difference",
			screenW: 1920, screenH: 1080,
			force: cinematic, blend: 0.5,
			want: common.Viewport{X: 0, Y: (1 - 16.0/21.0) / 4, W: 1, H: 0.5 + 16.0/21.0/2},
		},
		{
			name:    "blend above one clamps to one",
			screenW: 1920, screenH: 1080,
			force: cinematic, blend: 3,
			want: common.Viewport{X: 0, Y: (1 - 16.0/21.0) / 2, W: 1, H: 16.0 / 21.0},
		},
		{
			name:    "negative blend clamps to zero",
			screenW: 1920, screenH: 1080,
			force: cinematic, blend: -1,
			want: common.FullViewport(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeViewport(tc.screenW, tc.screenH, tc.force, tc.blend)
			if err != nil {
				t.Fatalf("ComputeViewport returned error: %v", err)
			}
			if !viewportsClose(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestComputeViewportZeroBlendIsExactlyFullSurface(t *testing.T) {
	got, err := ComputeViewport(1234, 771, common.AspectRatio{Width: 21, Height: 9}, 0)
	if err != nil {
		t.Fatalf("ComputeViewport returned error: %v", err)
	}
	if got != common.FullViewport() {
		t.Errorf("blend 0 must return the exact full-surface viewport, got %+v", got)
	}
}

func TestComputeViewportErrors(t *testing.T) {
	tests := []struct {
		name    string
		screenW int
		screenH int
		force   common.AspectRatio
		wantErr error
	}{
		{"zero width", 0, 1080, common.DefaultAspectRatio, ErrInvalidScreenSize},
		{"zero height", 1920, 0, common.DefaultAspectRatio, ErrInvalidScreenSize},
		{"negative width", -640, 480, common.DefaultAspectRatio, ErrInvalidScreenSize},
		{"zero ratio height", 1920, 1080, common.AspectRatio{Width: 21, Height: 0}, ErrInvalidAspectRatio},
		{"negative ratio width", 1920, 1080, common.AspectRatio{Width: -21, Height: 9}, ErrInvalidAspectRatio},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeViewport(tc.screenW, tc.screenH, tc.force, 1)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestComputeViewportStaysNormalized(t *testing.T) {
	ratios := []common.AspectRatio{
		{Width: 21, Height: 9},
		{Width: 16, Height: 9},
		{Width: 4, Height: 3},
		{Width: 1, Height: 1},
		{Width: 9, Height: 32},
	}
	sizes := [][2]int{{320, 240}, {1920, 1080}, {1080, 1920}, {5120, 1440}, {800, 800}, {1, 1}}
	blends := []float32{0, 0.25, 0.5, 0.75, 1}

	for _, r := range ratios {
		for _, sz := range sizes {
			for _, b := range blends {
				v, err := ComputeViewport(sz[0], sz[1], r, b)
				if err != nil {
					t.Fatalf("ComputeViewport(%v, %v, %v): %v", sz, r, b, err)
				}
				for _, c := range []float32{v.X, v.Y, v.W, v.H} {
					if c < 0 || c > 1 {
						t.Fatalf("component out of [0,1]: %+v for size %v ratio %v blend %v", v, sz, r, b)
					}
				}
				if v.X+v.W > 1+testTolerance || v.Y+v.H > 1+testTolerance {
					t.Fatalf("viewport exceeds surface: %+v for size %v ratio %v blend %v", v, sz, r, b)
				}
			}
		}
	}
}

func TestComputeViewportIsPure(t *testing.T) {
	force := common.AspectRatio{Width: 21, Height: 9}
	first, err := ComputeViewport(1366, 768, force, 0.8)
	if err != nil {
		t.Fatalf("ComputeViewport returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := ComputeViewport(1366, 768, force, 0.8)
		if err != nil {
			t.Fatalf("ComputeViewport returned error: %v", err)
		}
		if again != first {
			t.Fatalf("repeated call diverged: %+v vs %+v", again, first)
		}
	}
}

func TestComputeViewportCenteredBars(t *testing.T) {
	v, err := ComputeViewport(1920, 1080, common.AspectRatio{Width: 21, Height: 9}, 1)
	if err != nil {
		t.Fatalf("ComputeViewport returned error: %v", err)
	}
	topBar := v.Y
	bottomBar := 1 - (v.Y + v.H)
	if math.Abs(float64(topBar-bottomBar)) > testTolerance {
		t.Errorf("bars not centered: top %v bottom %v", topBar, bottomBar)
	}
}
