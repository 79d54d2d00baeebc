package abi

import (
	"math"
	"testing"
)

func TestSafeMulU32(t *testing.T) {
	tests := []struct {
		a, b   uint32
		result uint32
		ok     bool
	}{
		{0, 0, 0, true},
		{1, 0, 0, true},
		{0, 1, 0, true},
		{100, 100, 10000, true},
		{1 << 16, 1 << 16, 0, false},
		{math.MaxUint32, 2, 0, false},
		{math.MaxUint32, 1, math.MaxUint32, true},
	}

	for _, tc := range tests {
		result, ok := SafeMulU32(tc.a, tc.b)
		if ok != tc.ok {
			t.Errorf("SafeMulU32(%d, %d): got ok=%v, want %v", tc.a, tc.b, ok, tc.ok)
		}
		if ok && result != tc.result {
			t.Errorf("SafeMulU32(%d, %d): got %d, want %d", tc.a, tc.b, result, tc.result)
		}
	}
}

func TestSafeAddU32(t *testing.T) {
	if _, ok := SafeAddU32(math.MaxUint32, 1); ok {
		t.Error("SafeAddU32(MaxUint32, 1) should overflow")
	}
	if v, ok := SafeAddU32(math.MaxUint32-1, 1); !ok || v != math.MaxUint32 {
		t.Errorf("SafeAddU32(MaxUint32-1, 1) = %d, %v", v, ok)
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct {
		offset, align, want uint32
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 8, 8},
		{7, 1, 7},
		{9, 0, 9},
	}
	for _, tc := range tests {
		if got := AlignTo(tc.offset, tc.align); got != tc.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tc.offset, tc.align, got, tc.want)
		}
	}
}

func TestIsNaN(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		nan  bool
	}{
		{"zero", 0, false},
		{"negative zero", math.Copysign(0, -1), false},
		{"inf", math.Inf(1), false},
		{"-inf", math.Inf(-1), false},
		{"max", math.MaxFloat64, false},
		{"smallest", math.SmallestNonzeroFloat64, false},
		{"nan", math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNaN64(math.Float64bits(tt.f)); got != tt.nan {
				t.Errorf("IsNaN64(%v) = %v, want %v", tt.f, got, tt.nan)
			}
			if got := IsNaN32(math.Float32bits(float32(tt.f))); got != tt.nan {
				t.Errorf("IsNaN32(%v) = %v, want %v", tt.f, got, tt.nan)
			}
		})
	}

	if !IsNaN32(0xffc00001) {
		t.Error("negative signalling NaN pattern not detected")
	}
	if !IsNaN64(0x7ff0000000000001) {
		t.Error("smallest NaN payload not detected")
	}
}
