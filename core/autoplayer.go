package core

import (
	"math/rand"
	"time"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/systems"
)

// Autoplayer shoots at live bats with Gaussian aim error. It drives headless
// runs so telemetry sees realistic hit and miss traffic.
type Autoplayer struct {
	rng        *rand.Rand
	bounds     systems.Bounds
	interval   time.Duration
	aimError   float64
	idleChance float64
	next       time.Time
}

// NewAutoplayer creates an autoplayer. A non-positive shot rate disables it.
func NewAutoplayer(cfg config.AutoplayerConfig, bounds systems.Bounds, rng *rand.Rand) *Autoplayer {
	var interval time.Duration
	if cfg.ShotsPerSec > 0 {
		interval = time.Duration(float64(time.Second) / cfg.ShotsPerSec)
	}
	return &Autoplayer{
		rng:        rng,
		bounds:     bounds,
		interval:   interval,
		aimError:   cfg.AimErrorPx,
		idleChance: cfg.IdleChance,
	}
}

// Aim returns where to shoot at now, if a shot is due. Shots are spaced by
// the configured rate; the first shot is due immediately.
func (a *Autoplayer) Aim(now time.Time, bats []components.BatView) (x, y float32, shoot bool) {
	if a.interval <= 0 || now.Before(a.next) {
		return 0, 0, false
	}
	a.next = now.Add(a.interval)

	if len(bats) == 0 || a.rng.Float64() < a.idleChance {
		return a.rng.Float32() * a.bounds.Width, a.rng.Float32() * a.bounds.Height, true
	}

	target := bats[a.rng.Intn(len(bats))]
	x = target.X + float32(a.rng.NormFloat64()*a.aimError)
	y = target.Y + float32(a.rng.NormFloat64()*a.aimError)
	return x, y, true
}
