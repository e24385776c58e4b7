package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"gocv.io/x/gocv"
)

// MemoryTracker is the slice of the debug tracker this package needs.
// Declared locally to avoid an import cycle with internal/debug.
type MemoryTracker interface {
	TrackAllocation(ptr uintptr, size int64, tag string)
	TrackDeallocation(ptr uintptr, tag string)
}

// Mat wraps a gocv.Mat with validity checks, optional allocation
// tracking, and a finalizer backstop for native memory the Go heap
// profiler cannot see. Close is still the expected cleanup path; the
// finalizer only catches what slipped through.
type Mat struct {
	mat        gocv.Mat
	isValid    int32
	mu         sync.RWMutex
	id         uint64
	memTracker MemoryTracker
	tag        string
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	return NewMatWithTracker(rows, cols, matType, nil, "")
}

func NewMatWithTracker(rows, cols int, matType gocv.MatType, memTracker MemoryTracker, tag string) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat, memTracker, tag), nil
}

// NewMatFromMat clones src into a fresh tracked wrapper. The caller
// keeps ownership of src.
func NewMatFromMat(srcMat gocv.Mat) (*Mat, error) {
	return NewMatFromMatWithTracker(srcMat, nil, "")
}

func NewMatFromMatWithTracker(srcMat gocv.Mat, memTracker MemoryTracker, tag string) (*Mat, error) {
	if srcMat.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	if srcMat.Rows() <= 0 || srcMat.Cols() <= 0 {
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", srcMat.Cols(), srcMat.Rows())
	}

	clonedMat := srcMat.Clone()
	if clonedMat.Empty() {
		clonedMat.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(clonedMat, memTracker, tag), nil
}

func wrap(mat gocv.Mat, memTracker MemoryTracker, tag string) *Mat {
	safeMat := &Mat{
		mat:        mat,
		isValid:    1,
		id:         atomic.AddUint64(&nextMatID, 1),
		memTracker: memTracker,
		tag:        tag,
	}

	if memTracker != nil {
		size := int64(mat.Rows() * mat.Cols() * matTypeSize(mat.Type()))
		memTracker.TrackAllocation(safeMat.trackerPtr(), size, tag)
	}

	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat
}

// trackerPtr keys tracker entries. The wrapper address is stable for
// the Mat's lifetime, unlike the native buffer which OpenCV may move.
func (sm *Mat) trackerPtr() uintptr {
	return uintptr(unsafe.Pointer(sm))
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}

	if sm.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}

	return NewMatFromMatWithTracker(sm.mat, sm.memTracker, sm.tag+"_clone")
}

func (sm *Mat) CopyTo(dst *Mat) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return fmt.Errorf("source Mat is invalid")
	}

	if sm.mat.Empty() {
		return fmt.Errorf("source Mat is empty")
	}

	dst.mu.Lock()
	defer dst.mu.Unlock()

	if !dst.IsValid() {
		return fmt.Errorf("destination Mat is invalid")
	}

	sm.mat.CopyTo(&dst.mat)
	return nil
}

// SetTo fills every pixel with value. Used to zero pooled masks, which
// may carry the previous click's circle.
func (sm *Mat) SetTo(value gocv.Scalar) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.IsValid() {
		return fmt.Errorf("Mat is invalid")
	}

	sm.mat.SetTo(value)
	return nil
}

func (sm *Mat) GetUCharAt(row, col int) (uint8, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0, fmt.Errorf("Mat is invalid")
	}

	if row < 0 || row >= sm.mat.Rows() || col < 0 || col >= sm.mat.Cols() {
		return 0, fmt.Errorf("coordinates out of bounds: (%d,%d) for size %dx%d",
			col, row, sm.mat.Cols(), sm.mat.Rows())
	}

	return sm.mat.GetUCharAt(row, col), nil
}

func (sm *Mat) SetUCharAt(row, col int, value uint8) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.IsValid() {
		return fmt.Errorf("Mat is invalid")
	}

	if row < 0 || row >= sm.mat.Rows() || col < 0 || col >= sm.mat.Cols() {
		return fmt.Errorf("coordinates out of bounds: (%d,%d) for size %dx%d",
			col, row, sm.mat.Cols(), sm.mat.Rows())
	}

	sm.mat.SetUCharAt(row, col, value)
	return nil
}

// GetMat exposes the underlying gocv.Mat for OpenCV calls and raw
// pixel loops. The returned value shares native storage with the
// wrapper; callers must not Close it.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if sm.memTracker != nil {
			sm.memTracker.TrackDeallocation(sm.trackerPtr(), sm.tag)
		}

		if !sm.mat.Empty() {
			sm.mat.Close()
		}

		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is the GC backstop for Mats that were never closed.
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}

func matTypeSize(matType gocv.MatType) int {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return 1
	case gocv.MatTypeCV8UC3:
		return 3
	case gocv.MatTypeCV8UC4:
		return 4
	case gocv.MatTypeCV16UC1:
		return 2
	case gocv.MatTypeCV16UC3:
		return 6
	case gocv.MatTypeCV16UC4:
		return 8
	case gocv.MatTypeCV32FC1:
		return 4
	case gocv.MatTypeCV32FC3:
		return 12
	case gocv.MatTypeCV32FC4:
		return 16
	default:
		return 1
	}
}
