package inpaint

import (
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

var ErrUnknownMethod = errors.New("unknown inpainting method")

// Method selects which OpenCV restoration algorithm fills the masked
// region. The algorithms themselves live in OpenCV's photo module;
// this type only carries the choice.
type Method int

const (
	// MethodTelea is the fast-marching method (Telea 2004). Fills
	// from the mask boundary inward, prioritizing pixels nearest the
	// known edge. The default.
	MethodTelea Method = iota

	// MethodNavierStokes is the fluid-dynamics method (Bertalmio
	// 2001). Propagates isophotes by solving a PDE; better at
	// carrying edges across larger regions.
	MethodNavierStokes
)

func (m Method) Valid() bool {
	return m == MethodTelea || m == MethodNavierStokes
}

// String returns the canonical short name used in config files, flags,
// logs, and events.
func (m Method) String() string {
	switch m {
	case MethodTelea:
		return "telea"
	case MethodNavierStokes:
		return "ns"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// DisplayName returns the label shown in the method selector.
func (m Method) DisplayName() string {
	switch m {
	case MethodTelea:
		return "Telea (fast marching)"
	case MethodNavierStokes:
		return "Navier-Stokes (fluid)"
	default:
		return m.String()
	}
}

// Flag maps the method onto gocv's inpainting selector.
func (m Method) Flag() gocv.InpaintMethods {
	if m == MethodNavierStokes {
		return gocv.NS
	}
	return gocv.Telea
}

// ParseMethod accepts canonical names, common aliases, and the
// selector display labels, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "telea", "fast-marching", "fastmarching", "fmm",
		strings.ToLower(MethodTelea.DisplayName()):
		return MethodTelea, nil
	case "ns", "navier-stokes", "navierstokes", "fluid",
		strings.ToLower(MethodNavierStokes.DisplayName()):
		return MethodNavierStokes, nil
	default:
		return MethodTelea, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Methods lists the selectable methods in selector order.
func Methods() []Method {
	return []Method{MethodTelea, MethodNavierStokes}
}
