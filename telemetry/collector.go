package telemetry

import (
	"time"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/policy"
)

// Collector accumulates events within simulated-time windows and produces WindowStats.
// All methods are safe on a nil receiver so callers can leave telemetry disabled.
type Collector struct {
	window      time.Duration
	origin      time.Time
	windowStart time.Time

	// Event counters for current window
	spawns   [components.BatTypeCount]int
	hits     [components.BatTypeCount]int
	skipped  int
	expired  int
	shots    int
	points   int
	distance []float64 // px from tap to bat centre, per hit
	ttk      []float64 // seconds from spawn to hit
	lifetime []float64 // seconds from spawn to expiry
}

// NewCollector creates a collector whose first window starts at start.
func NewCollector(window time.Duration, start time.Time) *Collector {
	if window <= 0 {
		window = 10 * time.Second
	}
	return &Collector{
		window:      window,
		origin:      start,
		windowStart: start,
	}
}

// RecordSpawn records a bat entering the scene.
func (c *Collector) RecordSpawn(t components.BatType) {
	if c == nil || int(t) >= len(c.spawns) {
		return
	}
	c.spawns[t]++
}

// RecordSkip records a spawn firing dropped at the population cap.
func (c *Collector) RecordSkip() {
	if c == nil {
		return
	}
	c.skipped++
}

// RecordExpiry records a bat reaped after its lifespan.
func (c *Collector) RecordExpiry(age time.Duration) {
	if c == nil {
		return
	}
	c.expired++
	c.lifetime = append(c.lifetime, age.Seconds())
}

// RecordShot records a tap or fire that reached the scene.
func (c *Collector) RecordShot() {
	if c == nil {
		return
	}
	c.shots++
}

// RecordHit records a successful hit.
func (c *Collector) RecordHit(t components.BatType, points int, distance float32, age time.Duration) {
	if c == nil || int(t) >= len(c.hits) {
		return
	}
	c.hits[t]++
	c.points += points
	c.distance = append(c.distance, float64(distance))
	c.ttk = append(c.ttk, age.Seconds())
}

// ShouldFlush returns true if the current window has run its full length.
func (c *Collector) ShouldFlush(now time.Time) bool {
	if c == nil {
		return false
	}
	return now.Sub(c.windowStart) >= c.window
}

// Window returns the window length.
func (c *Collector) Window() time.Duration {
	if c == nil {
		return 0
	}
	return c.window
}

// Flush produces a WindowStats and resets counters for the next window.
// live is the population at window end; d is the active difficulty.
func (c *Collector) Flush(now time.Time, live int, d policy.Difficulty) WindowStats {
	if c == nil {
		return WindowStats{}
	}

	var spawns, hits int
	for i := range c.spawns {
		spawns += c.spawns[i]
		hits += c.hits[i]
	}

	var hitRate float64
	if c.shots > 0 {
		hitRate = float64(hits) / float64(c.shots)
	}

	distMean, distP50, distP90 := ComputeStats(c.distance)
	ttkMean, ttkP50, ttkP90 := ComputeStats(c.ttk)
	lifeMean, _, _ := ComputeStats(c.lifetime)

	stats := WindowStats{
		WindowStart: c.windowStart.Sub(c.origin).Seconds(),
		SimTimeSec:  now.Sub(c.origin).Seconds(),
		Difficulty:  d.String(),
		LiveBats:    live,

		Spawns:      spawns,
		SmallSpawns: c.spawns[components.BatSmall],
		LargeSpawns: c.spawns[components.BatLarge],
		GhostSpawns: c.spawns[components.BatGhost],
		Skipped:     c.skipped,
		Expired:     c.expired,

		Shots:     c.shots,
		Hits:      hits,
		Misses:    c.shots - hits,
		HitRate:   hitRate,
		Points:    c.points,
		SmallHits: c.hits[components.BatSmall],
		LargeHits: c.hits[components.BatLarge],
		GhostHits: c.hits[components.BatGhost],

		HitDistMean: distMean,
		HitDistP50:  distP50,
		HitDistP90:  distP90,
		TTKMean:     ttkMean,
		TTKStd:      StdDev(c.ttk),
		TTKP50:      ttkP50,
		TTKP90:      ttkP90,

		ExpiredLifeMean: lifeMean,
	}

	// Reset for next window
	c.windowStart = now
	c.spawns = [components.BatTypeCount]int{}
	c.hits = [components.BatTypeCount]int{}
	c.skipped = 0
	c.expired = 0
	c.shots = 0
	c.points = 0
	c.distance = c.distance[:0]
	c.ttk = c.ttk[:0]
	c.lifetime = c.lifetime[:0]

	return stats
}
