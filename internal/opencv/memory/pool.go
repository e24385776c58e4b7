package memory

import (
	"sync"

	"blotch-banisher/internal/opencv/safe"
)

// Masks are built and released once per click, so a handful per shape
// is plenty.
const maxPoolSize = 5

// Pool holds released Mats of a single shape for reuse.
type Pool struct {
	mats    []*safe.Mat
	maxSize int
	mu      sync.Mutex
}

func NewPool(maxSize int) *Pool {
	return &Pool{
		mats:    make([]*safe.Mat, 0, maxSize),
		maxSize: maxSize,
	}
}

// Get pops a pooled Mat, discarding any that were closed while pooled.
func (p *Pool) Get() *safe.Mat {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.mats) > 0 {
		mat := p.mats[len(p.mats)-1]
		p.mats = p.mats[:len(p.mats)-1]

		if mat.IsValid() && !mat.Empty() {
			return mat
		}
	}

	return nil
}

func (p *Pool) Put(mat *safe.Mat) bool {
	if mat == nil || !mat.IsValid() || mat.Empty() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.mats) >= p.maxSize {
		return false
	}

	p.mats = append(p.mats, mat)
	return true
}

func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mats)
}

// Drain closes every pooled Mat and reports how many were closed.
func (p *Pool) Drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := len(p.mats)
	for _, mat := range p.mats {
		mat.Close()
	}
	p.mats = p.mats[:0]
	return count
}
