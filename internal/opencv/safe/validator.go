package safe

import "fmt"

// Largest edge OpenCV is asked to allocate.
const maxDimension = 1 << 16

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}
	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}
	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}
	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}
	if width > maxDimension || height > maxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}
	return nil
}

// ValidateBlobShape checks an NCHW network output against the expected
// single-image geometry.
func ValidateBlobShape(shape []int, channels, height, width int) error {
	if len(shape) != 4 {
		return fmt.Errorf("output blob has %d dimensions, expected 4", len(shape))
	}
	if shape[0] != 1 || shape[1] != channels || shape[2] != height || shape[3] != width {
		return fmt.Errorf("output blob shape %v, expected [1 %d %d %d]", shape, channels, height, width)
	}
	return nil
}
