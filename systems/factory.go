// Package systems provides the bat lifecycle systems: creation, spawn
// scheduling, lifespan reaping and hit testing.
package systems

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/policy"
)

// Bounds is the screen area bats may spawn in.
// EdgeMargin keeps spawns out of the top and bottom bands.
type Bounds struct {
	Width, Height float32
	EdgeMargin    float32
}

// BatFactory builds new bats from the active difficulty settings.
type BatFactory struct {
	rng         *rand.Rand
	policy      *policy.Policy
	bounds      Bounds
	lifespanMin time.Duration
	lifespanMax time.Duration
	nextSeq     uint64
}

// NewBatFactory creates a factory. Lifespans are drawn from [lifespanMin, lifespanMax).
func NewBatFactory(rng *rand.Rand, pol *policy.Policy, bounds Bounds, lifespanMin, lifespanMax time.Duration) *BatFactory {
	if pol == nil {
		pol = policy.Default()
	}
	return &BatFactory{
		rng:         rng,
		policy:      pol,
		bounds:      bounds,
		lifespanMin: lifespanMin,
		lifespanMax: lifespanMax,
	}
}

// Create builds the components of a new bat created at now.
// It only consumes random draws; the caller inserts the result into the world.
func (f *BatFactory) Create(s policy.Settings, now time.Time) (components.Position, components.Bat, components.Lifespan) {
	pos := components.Position{
		X: f.rng.Float32() * f.bounds.Width,
		Y: f.bounds.EdgeMargin + f.rng.Float32()*(f.bounds.Height-2*f.bounds.EdgeMargin),
		Z: s.DepthNear + f.rng.Float32()*(s.DepthFar-s.DepthNear),
	}

	batType := SampleBatType(s.TypeWeights, f.rng.Float64())
	traits := f.policy.Traits(batType)

	f.nextSeq++
	bat := components.Bat{
		ID:       f.newID(),
		Seq:      f.nextSeq,
		Type:     batType,
		Scale:    s.ScaleBase * DepthSizeFactor(pos.Z, s.DepthNear, s.DepthFar) * traits.Scale,
		Points:   traits.Points,
		Speed:    traits.Speed,
		Rotation: f.rng.Float32()*30 - 15,
	}

	life := components.Lifespan{
		CreatedAt: now,
		Duration:  f.lifespanMin,
	}
	if span := f.lifespanMax - f.lifespanMin; span > 0 {
		life.Duration += time.Duration(f.rng.Int63n(int64(span)))
	}

	return pos, bat, life
}

// newID draws a v4 UUID from the factory's rng so seeded runs are reproducible.
func (f *BatFactory) newID() string {
	id, err := uuid.NewRandomFromReader(f.rng)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SampleBatType picks a type by cumulative weight. draw is uniform in [0, 1).
// The first type whose cumulative weight exceeds draw wins; rounding at the
// top of the range falls through to the last type.
func SampleBatType(weights [components.BatTypeCount]float64, draw float64) components.BatType {
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if draw < cumulative {
			return components.BatType(i)
		}
	}
	return components.BatType(components.BatTypeCount - 1)
}

// DepthSizeFactor maps z in [near, far] linearly onto [1.0, 0.5]: closer is larger.
func DepthSizeFactor(z, near, far float32) float32 {
	if far <= near {
		return 1
	}
	t := (z - near) / (far - near)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return 1 - 0.5*t
}
