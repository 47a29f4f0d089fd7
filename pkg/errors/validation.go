package errors

import "math"

// ValidateDimensions checks that a grid shape is usable.
// Both rows and cols must be at least 1.
func ValidateDimensions(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return New(ErrCodeInvalidParameter, "grid dimensions must be positive, got %dx%d", rows, cols)
	}
	return nil
}

// ValidateTargetSize checks the output size requested from a resample.
// A non-positive width or height cannot be resampled into and is reported
// as a dimension mismatch.
func ValidateTargetSize(width, height int) error {
	if width < 1 || height < 1 {
		return New(ErrCodeDimensionMismatch, "scale target must be at least 1x1, got %dx%d", width, height)
	}
	return nil
}

// ValidateSteps checks a morph step count. Zero steps would divide by zero
// in the alpha schedule.
func ValidateSteps(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidParameter, "morph steps must be at least 1, got %d", n)
	}
	return nil
}

// ValidateAlpha rejects blend weights that cannot be computed.
// Finite values outside [0,1] are accepted; their results are clamped.
func ValidateAlpha(alpha float64) error {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return New(ErrCodeInvalidParameter, "alpha must be a finite number, got %v", alpha)
	}
	return nil
}
