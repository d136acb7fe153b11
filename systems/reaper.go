package systems

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nightbats/components"
)

// Removed describes a bat taken out of the world.
type Removed struct {
	Entity ecs.Entity
	Pos    components.Position
	Bat    components.Bat
	Life   components.Lifespan
}

// LifespanReaper removes bats whose lifespan has elapsed.
type LifespanReaper struct {
	filter  *ecs.Filter3[components.Position, components.Bat, components.Lifespan]
	expired []Removed
}

// NewLifespanReaper creates a reaper over the bat archetype of world.
func NewLifespanReaper(world *ecs.World) *LifespanReaper {
	return &LifespanReaper{
		filter: ecs.NewFilter3[components.Position, components.Bat, components.Lifespan](world),
	}
}

// Sweep collects every bat expired at now, then hands each to remove after
// the query has finished. Returns the number of bats handed over.
func (r *LifespanReaper) Sweep(now time.Time, remove func(Removed)) int {
	// First pass: collect (structural changes are not allowed mid-query)
	r.expired = r.expired[:0]
	query := r.filter.Query()
	for query.Next() {
		pos, bat, life := query.Get()
		if life.Expired(now) {
			r.expired = append(r.expired, Removed{
				Entity: query.Entity(),
				Pos:    *pos,
				Bat:    *bat,
				Life:   *life,
			})
		}
	}

	// Second pass: remove
	for _, e := range r.expired {
		remove(e)
	}
	return len(r.expired)
}

// NextExpiry returns the earliest expiry among live bats.
func (r *LifespanReaper) NextExpiry() (time.Time, bool) {
	var earliest time.Time
	found := false
	query := r.filter.Query()
	for query.Next() {
		_, _, life := query.Get()
		at := life.ExpiresAt()
		if !found || at.Before(earliest) {
			earliest = at
			found = true
		}
	}
	return earliest, found
}
