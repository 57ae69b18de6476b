package animation

import (
	"context"
	"math"
	"time"

	"go.uber.org/atomic"
)

// Clock abstracts time so the rotator can be driven by tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time {
	return s.t.C
}

func (s systemTicker) Stop() {
	s.t.Stop()
}

func NewSystemClock() Clock {
	return systemClock{}
}

// DefaultInterval is how often Run advances the angle.
const DefaultInterval = time.Second / 60

// Rotator advances the quad rotation angle from its own goroutine. The
// render thread only reads Angle.
type Rotator struct {
	angle            atomic.Float32
	degreesPerSecond float64
	clock            Clock
	interval         time.Duration
}

func NewRotator(degreesPerSecond float64, clock Clock) *Rotator {
	if clock == nil {
		clock = systemClock{}
	}
	return &Rotator{
		degreesPerSecond: degreesPerSecond,
		clock:            clock,
		interval:         DefaultInterval,
	}
}

func (r *Rotator) Angle() float32 {
	return r.angle.Load()
}

func (r *Rotator) SetAngle(angle float32) {
	r.angle.Store(wrap(float64(angle)))
}

// Step advances the angle by the rotation accumulated over dt.
func (r *Rotator) Step(dt time.Duration) float32 {
	next := wrap(float64(r.angle.Load()) + r.degreesPerSecond*dt.Seconds())
	r.angle.Store(next)
	return next
}

// Run advances the angle on every tick until ctx is done. The advance is
// based on elapsed clock time so missed ticks do not slow the rotation.
func (r *Rotator) Run(ctx context.Context) {
	last := r.clock.Now()
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			r.Step(now.Sub(last))
			last = now
		}
	}
}

func wrap(angle float64) float32 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return float32(angle)
}
