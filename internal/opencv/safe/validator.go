package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

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

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateMaskPair checks that mask can select pixels of src: same
// dimensions, single channel.
func ValidateMaskPair(src, mask *Mat, operation string) error {
	if err := ValidateMatForOperation(src, operation); err != nil {
		return err
	}

	if err := ValidateMatForOperation(mask, operation); err != nil {
		return err
	}

	if mask.Channels() != 1 {
		return fmt.Errorf("mask must be single-channel, got %d channels for operation: %s",
			mask.Channels(), operation)
	}

	if src.Rows() != mask.Rows() || src.Cols() != mask.Cols() {
		return fmt.Errorf("mask size %dx%d does not match image size %dx%d for operation: %s",
			mask.Cols(), mask.Rows(), src.Cols(), src.Rows(), operation)
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > 32768 || height > 32768 {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

func ValidateMatType(matType gocv.MatType, operation string) error {
	switch matType {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return nil
	case gocv.MatTypeCV16UC1, gocv.MatTypeCV16UC3, gocv.MatTypeCV16UC4:
		return nil
	case gocv.MatTypeCV32FC1, gocv.MatTypeCV32FC3, gocv.MatTypeCV32FC4:
		return nil
	default:
		return fmt.Errorf("unsupported MatType %d for operation: %s", int(matType), operation)
	}
}

func ValidateCoordinates(row, col, rows, cols int, operation string) error {
	if row < 0 || row >= rows {
		return fmt.Errorf("row %d out of bounds [0, %d) for operation: %s", row, rows, operation)
	}

	if col < 0 || col >= cols {
		return fmt.Errorf("col %d out of bounds [0, %d) for operation: %s", col, cols, operation)
	}

	return nil
}
