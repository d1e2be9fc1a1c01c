// Package camera animates a viewport toward the cursor with exponential
// friction.
package camera

import "math"

const (
	// Friction is the fraction of velocity left after one second.
	Friction = 0.0001
	// PreciseScrollSpeed is the rate at which a precise scroll target is
	// approached, per second.
	PreciseScrollSpeed = 50.0
	// MinVelocity is the speed below which the axis stops.
	MinVelocity = 0.5

	settleDistance = 0.05
)

// RecenterKind says why an axis is moving on its own.
type RecenterKind int

const (
	RecenterNone RecenterKind = iota
	// RecenterOnScrollBorder brings the target back inside the border.
	RecenterOnScrollBorder
	// RecenterOnCursor centres the view on the target.
	RecenterOnCursor
)

// Impulse returns the initial velocity that covers distance d under
// Friction: the integral of v*Friction^t over [0, inf) equals d.
func Impulse(d float64) float64 {
	return d * math.Log(Friction) / -1
}

// Axis is one dimension of the camera.
type Axis struct {
	Position float64
	Velocity float64
	Max      float64
	Recenter RecenterKind
	Locked   bool

	target    float64
	hasTarget bool

	lastFollow float64
	following  bool
}

// SetTarget starts a precise scroll to position p.
func (a *Axis) SetTarget(p float64) {
	a.target = clamp(p, 0, a.Max)
	a.hasTarget = true
	a.Velocity = 0
}

// Target returns the precise scroll target, if any.
func (a *Axis) Target() (float64, bool) { return a.target, a.hasTarget }

// Nudge adds velocity, as a scroll wheel does. It cancels a precise target.
func (a *Axis) Nudge(v float64) {
	a.hasTarget = false
	a.Recenter = RecenterNone
	a.Velocity += v
}

// Reset stops all motion.
func (a *Axis) Reset() {
	a.Velocity = 0
	a.hasTarget = false
	a.Recenter = RecenterNone
}

// IsMoving reports whether another Update would change Position.
func (a *Axis) IsMoving() bool {
	return a.Velocity != 0 || a.hasTarget || a.Recenter != RecenterNone
}

// Update advances the axis by dt seconds. target is the point that must stay
// visible; view is the visible extent and border the margin kept between
// target and the view edges. The border only pulls the view back when target
// moved since the previous frame, so wheel scrolling can leave it behind.
func (a *Axis) Update(dt, target, view, border float64) {
	if a.Locked {
		a.Reset()
		return
	}
	if border*2 > view {
		border = view / 2
	}
	moved := !a.following || target != a.lastFollow
	a.lastFollow, a.following = target, true

	lo, hi := a.Position+border, a.Position+view-border
	if moved && (target < lo || target > hi) {
		if a.Recenter == RecenterNone {
			a.Recenter = RecenterOnScrollBorder
		}
		a.hasTarget = false
	}

	switch a.Recenter {
	case RecenterOnScrollBorder:
		var d float64
		switch {
		case target < lo:
			d = target - lo
		case target > hi:
			d = target - hi
		}
		if math.Abs(d) < settleDistance {
			a.Recenter = RecenterNone
		} else {
			a.Velocity = Impulse(d)
		}
	case RecenterOnCursor:
		d := target - (a.Position + view/2)
		if math.Abs(d) < settleDistance {
			a.Recenter = RecenterNone
		} else {
			a.Velocity = Impulse(d)
		}
	}

	if a.hasTarget {
		diff := a.target - a.Position
		step := math.Min(1, PreciseScrollSpeed*dt)
		a.Position += diff * step
		if math.Abs(a.target-a.Position) < MinVelocity {
			a.Position = a.target
			a.hasTarget = false
		}
		a.Velocity = 0
	} else {
		a.Velocity *= math.Pow(Friction, dt)
		a.Position += a.Velocity * dt
	}

	if a.Position < 0 || a.Position > a.Max {
		a.Position = clamp(a.Position, 0, a.Max)
		a.Velocity = 0
		a.Recenter = RecenterNone
	}
	if math.Abs(a.Velocity) < MinVelocity {
		a.Velocity = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Point is a position in view units.
type Point struct {
	X float64
	Y float64
}

// Camera pairs a horizontal and a vertical axis.
type Camera struct {
	X Axis
	Y Axis
}

// Update advances both axes toward keeping target visible within view.
func (c *Camera) Update(dt float64, target, view, border Point) {
	c.X.Update(dt, target.X, view.X, border.X)
	c.Y.Update(dt, target.Y, view.Y, border.Y)
}

// SetMax sets the scrollable extent of both axes.
func (c *Camera) SetMax(maxX, maxY float64) {
	c.X.Max = math.Max(0, maxX)
	c.Y.Max = math.Max(0, maxY)
}

// Position returns the camera's top-left corner.
func (c *Camera) Position() Point { return Point{X: c.X.Position, Y: c.Y.Position} }

// ScrollBy nudges the camera by a wheel delta, in view units.
func (c *Camera) ScrollBy(dx, dy float64) {
	c.X.Nudge(Impulse(dx))
	c.Y.Nudge(Impulse(dy))
}

// ScrollTo starts a precise scroll to p.
func (c *Camera) ScrollTo(p Point) {
	c.X.SetTarget(p.X)
	c.Y.SetTarget(p.Y)
}

// Recenter centres the view on the target over the next frames.
func (c *Camera) Recenter() {
	c.X.Recenter = RecenterOnCursor
	c.Y.Recenter = RecenterOnCursor
	c.X.hasTarget, c.Y.hasTarget = false, false
}

// SetLocked stops the camera following the target.
func (c *Camera) SetLocked(locked bool) {
	c.X.Locked = locked
	c.Y.Locked = locked
}

// IsMoving reports whether either axis is animating.
func (c *Camera) IsMoving() bool { return c.X.IsMoving() || c.Y.IsMoving() }
