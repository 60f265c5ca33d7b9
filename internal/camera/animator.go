package camera

import (
	"math"
	"time"

	"refillmap/internal/geo"
)

// Target is where animation frames are applied
type Target interface {
	Viewport() geo.Viewport
	SetViewport(next geo.Viewport)
}

// Animator interpolates the viewport towards a target over a fixed duration
// with a cubic ease-out. Frames are pulled by Step from the UI tick.
type Animator struct {
	target   Target
	duration time.Duration

	from, to geo.Viewport
	start    time.Time
	active   bool
}

// NewAnimator creates an animator. A zero duration applies targets instantly.
func NewAnimator(target Target, duration time.Duration) *Animator {
	if duration < 0 {
		duration = 0
	}
	return &Animator{target: target, duration: duration}
}

// EaseOutCubic maps linear progress in [0,1] to eased progress
func EaseOutCubic(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	u := 1 - t
	return 1 - u*u*u
}

// Start begins a transition to to from the current viewport, abandoning any
// transition already in flight.
func (a *Animator) Start(to geo.Viewport, now time.Time) {
	a.from = a.target.Viewport()
	a.to = to
	a.start = now
	a.active = true

	if a.duration == 0 {
		a.finish()
	}
}

// Active reports whether a transition is in flight
func (a *Animator) Active() bool {
	return a.active
}

// Destination returns the target of the current or last transition
func (a *Animator) Destination() geo.Viewport {
	return a.to
}

// Cancel stops the transition where it is
func (a *Animator) Cancel() {
	a.active = false
}

// Step applies the frame for now. It returns true while the transition is
// still running.
func (a *Animator) Step(now time.Time) bool {
	if !a.active {
		return false
	}

	elapsed := now.Sub(a.start)
	if elapsed >= a.duration {
		a.finish()
		return false
	}

	a.target.SetViewport(Interpolate(a.from, a.to, EaseOutCubic(float64(elapsed)/float64(a.duration))))
	return true
}

func (a *Animator) finish() {
	a.active = false
	a.target.SetViewport(a.to)
}

// Interpolate blends two viewports. Scale moves geometrically so zooming
// feels even; translation moves linearly.
func Interpolate(from, to geo.Viewport, t float64) geo.Viewport {
	scale := to.Scale
	if from.Scale > 0 && to.Scale > 0 && from.Scale != to.Scale {
		scale = from.Scale * math.Pow(to.Scale/from.Scale, t)
	}
	return geo.Viewport{
		Translation: from.Translation.Add(to.Translation.Sub(from.Translation).Mul(t)),
		Scale:       scale,
	}
}
