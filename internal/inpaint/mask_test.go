package inpaint

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"blotch-banisher/internal/opencv/safe"
)

// testProvider allocates fresh mats instead of pooling. With dirty set
// it pre-fills every mat, mimicking a pooled mat that still carries the
// previous click's circle.
type testProvider struct {
	dirty    bool
	gets     int
	releases int
}

func (p *testProvider) GetMat(rows, cols int, matType gocv.MatType, tag string) (*safe.Mat, error) {
	mat, err := safe.NewMat(rows, cols, matType)
	if err != nil {
		return nil, err
	}
	if p.dirty {
		if err := mat.SetTo(gocv.Scalar{Val1: 255, Val2: 255, Val3: 255, Val4: 255}); err != nil {
			mat.Close()
			return nil, err
		}
	}
	p.gets++
	return mat, nil
}

func (p *testProvider) ReleaseMat(mat *safe.Mat) {
	p.releases++
	mat.Close()
}

func maskValueAt(t *testing.T, mask *safe.Mat, x, y int) uint8 {
	t.Helper()
	value, err := mask.GetUCharAt(y, x)
	require.NoError(t, err)
	return value
}

func TestClampToBounds(t *testing.T) {
	cases := []struct {
		name    string
		pt      image.Point
		want    image.Point
		clamped bool
	}{
		{"inside", image.Pt(10, 20), image.Pt(10, 20), false},
		{"origin", image.Pt(0, 0), image.Pt(0, 0), false},
		{"negative", image.Pt(-5, -9), image.Pt(0, 0), true},
		{"past right edge", image.Pt(100, 20), image.Pt(99, 20), true},
		{"past bottom edge", image.Pt(10, 50), image.Pt(10, 49), true},
		{"far outside", image.Pt(-1, 999), image.Pt(0, 49), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, clamped := ClampToBounds(tc.pt, 100, 50)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.clamped, clamped)
		})
	}
}

func TestNewClickMaskMarksCircle(t *testing.T) {
	provider := &testProvider{}

	mask, center, err := NewClickMask(provider, 100, 100, image.Pt(50, 50), 10)
	require.NoError(t, err)
	defer provider.ReleaseMat(mask)

	assert.Equal(t, image.Pt(50, 50), center)
	assert.Equal(t, 100, mask.Rows())
	assert.Equal(t, 100, mask.Cols())
	assert.Equal(t, 1, mask.Channels())

	assert.EqualValues(t, 255, maskValueAt(t, mask, 50, 50))
	assert.EqualValues(t, 255, maskValueAt(t, mask, 50, 41))
	assert.EqualValues(t, 255, maskValueAt(t, mask, 59, 50))
	assert.Zero(t, maskValueAt(t, mask, 50, 65))
	assert.Zero(t, maskValueAt(t, mask, 0, 0))
	assert.Zero(t, maskValueAt(t, mask, 99, 99))

	nonzero := gocv.CountNonZero(mask.GetMat())
	assert.Greater(t, nonzero, 0)
	assert.Less(t, nonzero, 100*100)
}

func TestNewClickMaskClampsClick(t *testing.T) {
	provider := &testProvider{}

	clipped, center, err := NewClickMask(provider, 60, 40, image.Pt(-5, -9), 10)
	require.NoError(t, err)
	defer provider.ReleaseMat(clipped)

	assert.Equal(t, image.Pt(0, 0), center)
	assert.EqualValues(t, 255, maskValueAt(t, clipped, 0, 0))

	full, _, err := NewClickMask(provider, 60, 40, image.Pt(30, 20), 10)
	require.NoError(t, err)
	defer provider.ReleaseMat(full)

	clippedCount := gocv.CountNonZero(clipped.GetMat())
	fullCount := gocv.CountNonZero(full.GetMat())
	assert.Greater(t, clippedCount, 0)
	assert.Less(t, clippedCount, fullCount, "a circle at the corner keeps only its in-bounds quarter")
}

func TestNewClickMaskZeroesDirtyMat(t *testing.T) {
	provider := &testProvider{dirty: true}

	mask, _, err := NewClickMask(provider, 20, 20, image.Pt(5, 5), 1)
	require.NoError(t, err)
	defer provider.ReleaseMat(mask)

	assert.Zero(t, maskValueAt(t, mask, 19, 19), "prior contents must be cleared before drawing")
	assert.EqualValues(t, 255, maskValueAt(t, mask, 5, 5))
}

func TestNewClickMaskRejectsBadInput(t *testing.T) {
	provider := &testProvider{}

	_, _, err := NewClickMask(provider, 100, 100, image.Pt(50, 50), 0)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, _, err = NewClickMask(provider, 100, 100, image.Pt(50, 50), MaxRadius+1)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, _, err = NewClickMask(provider, 0, 100, image.Pt(0, 0), 10)
	assert.Error(t, err)

	assert.Zero(t, provider.gets, "rejected input must not allocate a mat")
}
