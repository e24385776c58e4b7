package session

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fogleman/gg"
)

// Click is one recorded restoration click.
type Click struct {
	X      int
	Y      int
	Radius int
	Method string
	At     time.Time
}

// Recorder keeps the ordered click history of a session and can render
// it as a trail overlay for later inspection of where patches landed.
type Recorder struct {
	mu     sync.Mutex
	clicks []Click
	dir    string
}

func NewRecorder(dir string) *Recorder {
	if dir == "" {
		dir = "."
	}
	return &Recorder{dir: dir}
}

func (r *Recorder) Record(x, y, radius int, method string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clicks = append(r.clicks, Click{
		X:      x,
		Y:      y,
		Radius: radius,
		Method: method,
		At:     time.Now(),
	})
}

func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clicks)
}

func (r *Recorder) Clicks() []Click {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Click, len(r.clicks))
	copy(out, r.clicks)
	return out
}

// Render draws the click trail over a copy of base: a ring per click at
// its patch radius, a center dot, connecting lines in click order, and
// the sequence number beside each click.
func (r *Recorder) Render(base image.Image) image.Image {
	clicks := r.Clicks()

	dc := gg.NewContextForImage(base)

	dc.SetRGBA255(255, 99, 71, 160)
	dc.SetLineWidth(1.5)
	for i := 1; i < len(clicks); i++ {
		dc.DrawLine(float64(clicks[i-1].X), float64(clicks[i-1].Y),
			float64(clicks[i].X), float64(clicks[i].Y))
		dc.Stroke()
	}

	for i, click := range clicks {
		cx := float64(click.X)
		cy := float64(click.Y)

		dc.SetRGBA255(255, 99, 71, 220)
		dc.SetLineWidth(2)
		dc.DrawCircle(cx, cy, float64(click.Radius))
		dc.Stroke()

		dc.DrawCircle(cx, cy, 2.5)
		dc.Fill()

		dc.SetRGBA255(255, 255, 255, 255)
		dc.DrawStringAnchored(strconv.Itoa(i+1), cx+float64(click.Radius)+4, cy, 0, 0.5)
	}

	return dc.Image()
}

// WriteTrail renders over base and writes a timestamped PNG into the
// recorder's directory. With no recorded clicks it writes nothing and
// returns an empty path.
func (r *Recorder) WriteTrail(base image.Image) (string, error) {
	if r.Count() == 0 {
		return "", nil
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create trail directory: %w", err)
	}

	rendered := r.Render(base)
	name := fmt.Sprintf("blotch-trail-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(r.dir, name)

	dc := gg.NewContextForImage(rendered)
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("failed to write trail image: %w", err)
	}

	return path, nil
}
