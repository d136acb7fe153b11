package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/policy"
)

// DefaultBaseRadius is the hit radius of a bat at scale 1.0 with multiplier 1.0.
const DefaultBaseRadius float32 = 40

// Hit is a successful hit test result.
type Hit struct {
	Removed
	Distance float32
}

// HitTester resolves taps against the live bats.
type HitTester struct {
	filter     *ecs.Filter3[components.Position, components.Bat, components.Lifespan]
	policy     *policy.Policy
	baseRadius float32
}

// NewHitTester creates a hit tester over the bat archetype of world.
func NewHitTester(world *ecs.World, pol *policy.Policy, baseRadius float32) *HitTester {
	if pol == nil {
		pol = policy.Default()
	}
	if baseRadius <= 0 {
		baseRadius = DefaultBaseRadius
	}
	return &HitTester{
		filter:     ecs.NewFilter3[components.Position, components.Bat, components.Lifespan](world),
		policy:     pol,
		baseRadius: baseRadius,
	}
}

// Radius returns the hit radius of bat.
func (h *HitTester) Radius(bat *components.Bat) float32 {
	return HitRadius(h.baseRadius, bat.Scale, h.policy.Traits(bat.Type).HitMultiplier)
}

// HitRadius is base × scale × type multiplier.
func HitRadius(base, scale, multiplier float32) float32 {
	return base * scale * multiplier
}

// Test finds the bat hit by a tap at (x, y) against canonical spawn positions.
// A bat is a candidate when its distance is strictly below its hit radius.
// Among candidates the earliest spawned wins. On a hit the bat is handed to
// remove once the query has finished. An empty world is never a hit.
func (h *HitTester) Test(x, y float32, remove func(Removed)) (Hit, bool) {
	var best Hit
	found := false

	query := h.filter.Query()
	for query.Next() {
		pos, bat, life := query.Get()
		if found && bat.Seq >= best.Bat.Seq {
			continue
		}

		dx := float64(pos.X - x)
		dy := float64(pos.Y - y)
		dist := float32(math.Sqrt(dx*dx + dy*dy))
		if dist >= h.Radius(bat) {
			continue
		}

		best = Hit{
			Removed: Removed{
				Entity: query.Entity(),
				Pos:    *pos,
				Bat:    *bat,
				Life:   *life,
			},
			Distance: dist,
		}
		found = true
	}

	if found && remove != nil {
		remove(best.Removed)
	}
	return best, found
}
