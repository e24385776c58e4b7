package memory

import (
	"fmt"
	"sync"

	"blotch-banisher/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Logger is the slice of the structured logger this package needs.
type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
}

// Budget for native Mat memory. The tool holds one image plus a short
// undo history, so anything near this limit is a leak.
const maxActiveBytes = 2 * 1024 * 1024 * 1024

type poolKey struct {
	Rows    int
	Cols    int
	MatType gocv.MatType
}

type Stats struct {
	Created     int64
	Reused      int64
	Pooled      int64
	Closed      int64
	ActiveMats  int64
	ActiveBytes int64
}

// Manager hands out safe Mats and recycles them through per-shape
// pools. Every click allocates a mask with the image's shape, so after
// the first click the pool serves every subsequent mask.
type Manager struct {
	pools      map[poolKey]*Pool
	mu         sync.Mutex
	stats      Stats
	logger     Logger
	memTracker safe.MemoryTracker
}

func NewManager(logger Logger, memTracker safe.MemoryTracker) *Manager {
	return &Manager{
		pools:      make(map[poolKey]*Pool),
		logger:     logger,
		memTracker: memTracker,
	}
}

// GetMat returns a Mat of the requested shape, reusing a pooled one
// when available. Pooled Mats keep their previous contents; callers
// that need zeroed pixels call SetTo themselves.
func (m *Manager) GetMat(rows, cols int, matType gocv.MatType, tag string) (*safe.Mat, error) {
	if err := safe.ValidateDimensions(cols, rows, "GetMat"); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatType(matType, "GetMat"); err != nil {
		return nil, err
	}

	key := poolKey{Rows: rows, Cols: cols, MatType: matType}

	m.mu.Lock()
	pool, exists := m.pools[key]
	if exists {
		if mat := pool.Get(); mat != nil {
			m.stats.Reused++
			m.stats.ActiveMats++
			m.mu.Unlock()

			m.logger.Debug("MemoryManager", "reused Mat from pool", map[string]interface{}{
				"rows": rows,
				"cols": cols,
				"tag":  tag,
			})
			return mat, nil
		}
	}

	if m.stats.ActiveBytes > maxActiveBytes {
		active := m.stats.ActiveBytes
		m.mu.Unlock()
		return nil, fmt.Errorf("memory limit exceeded: %d bytes active", active)
	}
	m.mu.Unlock()

	mat, err := safe.NewMatWithTracker(rows, cols, matType, m.memTracker, tag)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.stats.Created++
	m.stats.ActiveMats++
	m.stats.ActiveBytes += matBytes(mat)
	m.mu.Unlock()

	m.logger.Debug("MemoryManager", "created new Mat", map[string]interface{}{
		"rows": rows,
		"cols": cols,
		"tag":  tag,
	})
	return mat, nil
}

// ReleaseMat returns a Mat to its shape pool, closing it when the pool
// is full or the Mat is no longer usable.
func (m *Manager) ReleaseMat(mat *safe.Mat) {
	if mat == nil {
		return
	}

	if !mat.IsValid() || mat.Empty() {
		m.logger.Warning("MemoryManager", "released Mat already closed", nil)
		return
	}

	key := poolKey{Rows: mat.Rows(), Cols: mat.Cols(), MatType: mat.Type()}
	size := matBytes(mat)

	m.mu.Lock()
	defer m.mu.Unlock()

	pool, exists := m.pools[key]
	if !exists {
		pool = NewPool(maxPoolSize)
		m.pools[key] = pool
	}

	m.stats.ActiveMats--
	if pool.Put(mat) {
		m.stats.Pooled++
		return
	}

	mat.Close()
	m.stats.Closed++
	m.stats.ActiveBytes -= size
}

func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Cleanup closes every pooled Mat. Active Mats are owned by their
// holders (the pipeline coordinator closes its own on shutdown).
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	closed := 0
	for key, pool := range m.pools {
		closed += pool.Drain()
		delete(m.pools, key)
	}
	m.stats.Closed += int64(closed)

	m.logger.Debug("MemoryManager", "cleanup complete", map[string]interface{}{
		"pooled_mats_closed": closed,
	})
}

func matBytes(mat *safe.Mat) int64 {
	return int64(mat.Rows() * mat.Cols() * mat.Channels())
}
