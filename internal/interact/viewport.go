// Package interact holds the per-entity gesture state machines of the
// board: dragging, inline editing and the shared zoom.
package interact

import (
	"strconv"
)

const (
	MinZoom     = 50.0
	MaxZoom     = 150.0
	DefaultZoom = 100.0
	ZoomStep    = 10.0

	// wheelStep is the zoom change per unit of wheel delta.
	wheelStep = 0.1
)

// Scaler reports the current pointer-to-logical scale.
type Scaler interface {
	Scale() float64
}

type Viewport struct {
	zoom      float64
	listeners []func(float64)
}

func NewViewport() *Viewport {
	return &Viewport{zoom: DefaultZoom}
}

func (v *Viewport) Zoom() float64 { return v.zoom }

// SetZoom clamps z to [MinZoom, MaxZoom] and returns the applied value.
func (v *Viewport) SetZoom(z float64) float64 {
	z = clampZoom(z)
	if z == v.zoom {
		return z
	}
	v.zoom = z
	for _, fn := range v.listeners {
		fn(z)
	}
	return z
}

func (v *Viewport) ZoomIn() float64  { return v.SetZoom(v.zoom + ZoomStep) }
func (v *Viewport) ZoomOut() float64 { return v.SetZoom(v.zoom - ZoomStep) }

// Wheel handles a scroll or pinch gesture. Without a ctrl/meta modifier
// the event is left for the page and false is returned.
func (v *Viewport) Wheel(deltaY float64, modifier bool) bool {
	if !modifier {
		return false
	}
	v.SetZoom(v.zoom - deltaY*wheelStep)
	return true
}

func (v *Viewport) OnChange(fn func(zoom float64)) {
	v.listeners = append(v.listeners, fn)
}

func (v *Viewport) Scale() float64 { return v.zoom / 100 }

// ToLogical converts an on-screen displacement into board units.
func (v *Viewport) ToLogical(dx, dy float64) (float64, float64) {
	s := v.Scale()
	return dx / s, dy / s
}

func (v *Viewport) Transform() string {
	return "scale(" + strconv.FormatFloat(v.Scale(), 'f', -1, 64) + ")"
}

func (v *Viewport) Label() string {
	return strconv.Itoa(int(v.zoom+0.5)) + "%"
}

func clampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
