package errors

import (
	"math"
	"testing"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantErr    bool
	}{
		{"1x1", 1, 1, false},
		{"wide", 1, 640, false},
		{"zero rows", 0, 4, true},
		{"zero cols", 4, 0, true},
		{"negative", -1, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.rows, tt.cols)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.rows, tt.cols, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidParameter) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidParameter)
			}
		})
	}
}

func TestValidateTargetSize(t *testing.T) {
	tests := []struct {
		width, height int
		wantErr       bool
	}{
		{1, 1, false},
		{320, 200, false},
		{0, 10, true},
		{10, 0, true},
		{-5, -5, true},
	}

	for _, tt := range tests {
		err := ValidateTargetSize(tt.width, tt.height)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTargetSize(%d, %d) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeDimensionMismatch) {
			t.Errorf("code = %v, want %v", GetCode(err), ErrCodeDimensionMismatch)
		}
	}
}

func TestValidateSteps(t *testing.T) {
	for _, n := range []int{1, 2, 100} {
		if err := ValidateSteps(n); err != nil {
			t.Errorf("ValidateSteps(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{0, -1} {
		err := ValidateSteps(n)
		if !Is(err, ErrCodeInvalidParameter) {
			t.Errorf("ValidateSteps(%d) = %v, want %s", n, err, ErrCodeInvalidParameter)
		}
	}
}

func TestValidateAlpha(t *testing.T) {
	valid := []float64{0, 0.5, 1, -0.25, 1.5}
	for _, a := range valid {
		if err := ValidateAlpha(a); err != nil {
			t.Errorf("ValidateAlpha(%v) = %v, want nil", a, err)
		}
	}

	invalid := []float64{math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, a := range invalid {
		if err := ValidateAlpha(a); !Is(err, ErrCodeInvalidParameter) {
			t.Errorf("ValidateAlpha(%v) = %v, want %s", a, err, ErrCodeInvalidParameter)
		}
	}
}
