package common

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"below range", -0.5, 0},
		{"zero", 0, 0},
		{"inside range", 0.42, 0.42},
		{"one", 1, 1},
		{"above range", 1.5, 1},
		{"far above", 1000, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clamp01(tc.in); got != tc.want {
				t.Errorf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		name    string
		a, b, t float32
		want    float32
	}{
		{"start", 2, 8, 0, 2},
		{"end", 2, 8, 1, 8},
		{"midpoint", 2, 8, 0.5, 5},
		{"descending", 1, 0, 0.25, 0.75},
		{"unclamped above", 0, 10, 1.5, 15},
		{"unclamped below", 0, 10, -0.5, -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Lerp(tc.a, tc.b, tc.t); got != tc.want {
				t.Errorf("Lerp(%v, %v, %v) = %v, want %v", tc.a, tc.b, tc.t, got, tc.want)
			}
		})
	}
}

func TestLerpStartIsExact(t *testing.T) {
	// The a + (b-a)*t form must return the start bit-exactly so a zero
	// blend reproduces the full-surface viewport without drift.
	a, b := float32(0.1192053), float32(0.7619047)
	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(a, b, 0) = %v, want exactly %v", got, a)
	}
	if got := Lerp(a, b, 1); math.Abs(float64(got-b)) > 1e-6 {
		t.Errorf("Lerp(a, b, 1) = %v, want %v", got, b)
	}
}

func TestNearlyEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b float32
		eps  float32
		want bool
	}{
		{"identical", 2.3333333, 2.3333333, 1e-5, true},
		{"both zero", 0, 0, 1e-5, true},
		{"within relative tolerance", 1000, 1000.001, 1e-5, true},
		{"outside relative tolerance", 1000, 1000.1, 1e-5, false},
		{"small values within", 1e-7, 1.0000001e-7, 1e-5, true},
		{"clearly different", 1.777, 2.333, 1e-5, false},
		{"negative pair within", -4.5, -4.500001, 1e-5, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NearlyEqual(tc.a, tc.b, tc.eps); got != tc.want {
				t.Errorf("NearlyEqual(%v, %v, %v) = %v, want %v", tc.a, tc.b, tc.eps, got, tc.want)
			}
		})
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 3); got != 7 {
		t.Errorf("Coalesce(0, 0, 7, 3) = %v, want 7", got)
	}
	if got := Coalesce("", "fallback"); got != "fallback" {
		t.Errorf("Coalesce(\"\", \"fallback\") = %q, want \"fallback\"", got)
	}
	if got := Coalesce(0.0, 0.0); got != 0.0 {
		t.Errorf("Coalesce of all zeros = %v, want 0", got)
	}
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i) * 0.5
	}

	Mul4(out[:], id[:], m[:])
	if out != m {
		t.Errorf("identity * m != m: got %v", out)
	}

	Mul4(out[:], m[:], id[:])
	if out != m {
		t.Errorf("m * identity != m: got %v", out)
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	var view, inv, out [16]float32
	LookAt(view[:], 3, 4, 5, 0, 0, 0, 0, 1, 0)

	if !Invert4(inv[:], view[:]) {
		t.Fatalf("view matrix reported singular")
	}
	Mul4(out[:], view[:], inv[:])

	var id [16]float32
	Identity(id[:])
	for i := range out {
		if math.Abs(float64(out[i]-id[i])) > 1e-5 {
			t.Fatalf("m * m^-1 not identity at %d: got %v", i, out[i])
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	if Invert4(out[:], zero[:]) {
		t.Errorf("zero matrix must report singular")
	}
}
