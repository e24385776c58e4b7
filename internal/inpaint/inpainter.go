package inpaint

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"blotch-banisher/internal/opencv/safe"
)

var (
	ErrInvalidRadius  = errors.New("invalid inpaint radius")
	ErrMaskMismatch   = errors.New("mask does not match source")
	ErrUnsupportedMat = errors.New("unsupported mat type for inpainting")
)

// Logger is the subset of the debug logger the inpainter uses.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
}

// TimingTracker measures how long each restoration takes.
type TimingTracker interface {
	StartTiming(operation string) context.Context
	EndTiming(ctx context.Context)
}

// Inpainter reconstructs masked image regions with OpenCV's photo
// module. One instance serves the whole session; it holds no per-call
// state.
type Inpainter struct {
	mats       MatProvider
	memTracker safe.MemoryTracker
	logger     Logger
	timing     TimingTracker
}

func NewInpainter(mats MatProvider, memTracker safe.MemoryTracker, logger Logger, timing TimingTracker) *Inpainter {
	return &Inpainter{
		mats:       mats,
		memTracker: memTracker,
		logger:     logger,
		timing:     timing,
	}
}

// Restore inpaints a circular region around the clicked point and
// returns the result as a new mat the caller owns. The click is
// clamped onto the image; the returned point is the actual circle
// center. The source is never modified.
func (ip *Inpainter) Restore(src *safe.Mat, click image.Point, radius int, method Method) (*safe.Mat, image.Point, error) {
	if src == nil || !src.IsValid() {
		return nil, image.Point{}, fmt.Errorf("invalid source mat")
	}

	mask, center, err := NewClickMask(ip.mats, src.Cols(), src.Rows(), click, radius)
	if err != nil {
		return nil, image.Point{}, err
	}
	defer ip.mats.ReleaseMat(mask)

	dst, err := ip.RestoreWithMask(src, mask, radius, method)
	if err != nil {
		return nil, image.Point{}, err
	}

	ip.logger.Debug("inpainter", "Region restored", map[string]interface{}{
		"x":      center.X,
		"y":      center.Y,
		"radius": radius,
		"method": method.String(),
	})

	return dst, center, nil
}

// RestoreWithMask inpaints every nonzero mask pixel. The mask must be
// single-channel and match the source dimensions; the source must be
// 8-bit with one or three channels, which is what the photo module
// accepts. The radius doubles as the algorithm's neighborhood radius.
func (ip *Inpainter) RestoreWithMask(src, mask *safe.Mat, radius int, method Method) (*safe.Mat, error) {
	if radius < MinRadius || radius > MaxRadius {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRadius, radius, MinRadius, MaxRadius)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
	if err := safe.ValidateMaskPair(src, mask, "inpaint"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskMismatch, err)
	}
	if t := src.Type(); t != gocv.MatTypeCV8UC1 && t != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMat, t)
	}

	ctx := ip.timing.StartTiming("inpaint_restore")
	defer ip.timing.EndTiming(ctx)

	srcRaw := src.GetMat()
	maskRaw := mask.GetMat()

	result := gocv.NewMat()
	defer result.Close()

	gocv.Inpaint(srcRaw, maskRaw, &result, float32(radius), method.Flag())

	if result.Empty() {
		return nil, fmt.Errorf("inpainting produced empty result")
	}

	dst, err := safe.NewMatFromMatWithTracker(result, ip.memTracker, "inpaint_result")
	if err != nil {
		return nil, fmt.Errorf("failed to wrap inpaint result: %w", err)
	}

	return dst, nil
}
