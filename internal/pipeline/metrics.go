package pipeline

import (
	"fmt"

	"gocv.io/x/gocv"

	"blotch-banisher/internal/opencv/safe"
)

// PatchStats quantifies what one patch did to the image.
type PatchStats struct {
	ChangedPixels int
	TotalPixels   int
	MeanAbsDiff   float64
}

// ChangedShare returns the changed fraction of the image in [0, 1].
func (s PatchStats) ChangedShare() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.ChangedPixels) / float64(s.TotalPixels)
}

func (s PatchStats) String() string {
	return fmt.Sprintf("%d/%d px changed (%.2f%%), mean diff %.2f",
		s.ChangedPixels, s.TotalPixels, s.ChangedShare()*100, s.MeanAbsDiff)
}

// CalculatePatchStats compares the image before and after a patch. A
// pixel counts as changed when any of its channels differs.
func CalculatePatchStats(before, after *safe.Mat) (PatchStats, error) {
	if err := safe.ValidateMatForOperation(before, "patch stats"); err != nil {
		return PatchStats{}, err
	}
	if err := safe.ValidateMatForOperation(after, "patch stats"); err != nil {
		return PatchStats{}, err
	}
	if before.Rows() != after.Rows() || before.Cols() != after.Cols() {
		return PatchStats{}, fmt.Errorf("image dimensions must match: before %dx%d, after %dx%d",
			before.Cols(), before.Rows(), after.Cols(), after.Rows())
	}
	if before.Channels() != after.Channels() {
		return PatchStats{}, fmt.Errorf("channel counts must match: before %d, after %d",
			before.Channels(), after.Channels())
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(before.GetMat(), after.GetMat(), &diff)

	stats := PatchStats{
		TotalPixels: before.Rows() * before.Cols(),
	}

	if diff.Channels() == 1 {
		stats.ChangedPixels = gocv.CountNonZero(diff)
		stats.MeanAbsDiff = diff.Mean().Val1
		return stats, nil
	}

	// Union the per-channel differences so a one-channel change still
	// marks the pixel. Converting to gray instead would round away
	// small blue differences.
	channels := gocv.Split(diff)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	union := gocv.NewMat()
	defer union.Close()
	channels[0].CopyTo(&union)
	for _, ch := range channels[1:] {
		gocv.BitwiseOr(union, ch, &union)
	}
	stats.ChangedPixels = gocv.CountNonZero(union)

	mean := diff.Mean()
	stats.MeanAbsDiff = (mean.Val1 + mean.Val2 + mean.Val3) / 3

	return stats, nil
}
