// Package dpi converts between logical and physical pixel coordinates under
// a fixed system scale factor.
package dpi

import (
	"fmt"
	"math"

	"github.com/winauto-dev/winrunner/pkg/core"
)

// Adapter converts coordinates for one scale factor (1.0, 1.25, 1.5, 2.0,
// ...). The factor is read once at construction; if the OS scale changes
// live the adapter is stale and the caller must construct a new one.
type Adapter struct {
	scale float64
}

// New creates an adapter for the given scale factor. Non-positive factors
// fall back to 1.0.
func New(scale float64) *Adapter {
	if scale <= 0 {
		scale = 1.0
	}
	return &Adapter{scale: scale}
}

// Scale returns the fixed scale factor.
func (a *Adapter) Scale() float64 {
	return a.scale
}

// LogicalToPhysical converts a logical coordinate to physical pixels.
// Rounding direction is floor.
func (a *Adapter) LogicalToPhysical(x, y int) (int, int) {
	return floor(float64(x) * a.scale), floor(float64(y) * a.scale)
}

// PhysicalToLogical converts a physical coordinate to logical pixels.
// Rounding direction is floor.
func (a *Adapter) PhysicalToLogical(x, y int) (int, int) {
	return floor(float64(x) / a.scale), floor(float64(y) / a.scale)
}

// LogicalToPhysicalSize converts a logical size to physical pixels.
func (a *Adapter) LogicalToPhysicalSize(w, h int) (int, int) {
	return a.LogicalToPhysical(w, h)
}

// PhysicalToLogicalSize converts a physical size to logical pixels.
func (a *Adapter) PhysicalToLogicalSize(w, h int) (int, int) {
	return a.PhysicalToLogical(w, h)
}

// LogicalToPhysicalRect converts a logical rectangle to physical pixels.
func (a *Adapter) LogicalToPhysicalRect(r core.Bounds) core.Bounds {
	x, y := a.LogicalToPhysical(r.X, r.Y)
	w, h := a.LogicalToPhysicalSize(r.Width, r.Height)
	return core.Bounds{X: x, Y: y, Width: w, Height: h}
}

// PhysicalToLogicalRect converts a physical rectangle to logical pixels.
func (a *Adapter) PhysicalToLogicalRect(r core.Bounds) core.Bounds {
	x, y := a.PhysicalToLogical(r.X, r.Y)
	w, h := a.PhysicalToLogicalSize(r.Width, r.Height)
	return core.Bounds{X: x, Y: y, Width: w, Height: h}
}

// IsHighDPI reports whether the scale factor exceeds 1.0.
func (a *Adapter) IsHighDPI() bool {
	return a.scale > 1.0
}

// Level renders the scale factor as a percentage label ("125%").
func (a *Adapter) Level() string {
	return fmt.Sprintf("%d%%", int(math.Round(a.scale*100)))
}

func floor(v float64) int {
	return int(math.Floor(v))
}
