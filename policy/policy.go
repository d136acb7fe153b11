// Package policy maps difficulty levels to spawn, size and type-weight
// parameters for the bat simulation.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/pthm-cable/nightbats/components"
)

// Difficulty selects a Settings profile.
type Difficulty uint8

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultyCount is the number of difficulty levels.
const DifficultyCount = 3

// AllDifficulties returns every level from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// String returns the display name for a Difficulty.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "EASY"
	case Hard:
		return "HARD"
	default:
		return "MEDIUM"
	}
}

// ParseDifficulty parses a difficulty name case-insensitively.
// Unrecognized input resolves to Medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EASY":
		return Easy
	case "HARD":
		return Hard
	default:
		return Medium
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (d *Difficulty) UnmarshalText(text []byte) error {
	*d = ParseDifficulty(string(text))
	return nil
}

// normalize folds out-of-range values onto Medium.
func (d Difficulty) normalize() Difficulty {
	if d > Hard {
		return Medium
	}
	return d
}

// Settings is the derived parameter set for one difficulty level.
// It is recomputed, never mutated, when the active difficulty changes.
type Settings struct {
	Difficulty       Difficulty
	SpawnIntervalMin time.Duration
	SpawnIntervalMax time.Duration
	MaxBats          int
	ScaleBase        float32
	DepthNear        float32
	DepthFar         float32
	TypeWeights      [components.BatTypeCount]float64 // sums to 1.0
	KillTarget       int
}

// Weight returns the spawn probability for a bat type.
func (s Settings) Weight(t components.BatType) float64 {
	if int(t) >= len(s.TypeWeights) {
		return 0
	}
	return s.TypeWeights[t]
}

// TypeTraits holds the fixed per-type gameplay table.
type TypeTraits struct {
	Scale         float32 // base size multiplier
	Points        int
	Speed         float32 // animation tempo multiplier
	HitMultiplier float32 // hit radius multiplier
}

// Policy is an immutable lookup of settings per difficulty and traits per type.
type Policy struct {
	levels [DifficultyCount]Settings
	traits [components.BatTypeCount]TypeTraits
}

// New builds a policy from explicit tables.
func New(levels [DifficultyCount]Settings, traits [components.BatTypeCount]TypeTraits) *Policy {
	p := &Policy{levels: levels, traits: traits}
	for i := range p.levels {
		p.levels[i].Difficulty = Difficulty(i)
	}
	return p
}

// SettingsFor returns the settings for d. Unrecognized levels get Medium.
func (p *Policy) SettingsFor(d Difficulty) Settings {
	return p.levels[d.normalize()]
}

// Traits returns the fixed table entry for a bat type.
func (p *Policy) Traits(t components.BatType) TypeTraits {
	if int(t) >= len(p.traits) {
		return p.traits[components.BatLarge]
	}
	return p.traits[t]
}

// Validate checks that a settings profile is usable by the scheduler and factory.
func (s Settings) Validate() error {
	if s.SpawnIntervalMin <= 0 || s.SpawnIntervalMax < s.SpawnIntervalMin {
		return fmt.Errorf("%s: spawn interval [%v, %v) is invalid", s.Difficulty, s.SpawnIntervalMin, s.SpawnIntervalMax)
	}
	if s.MaxBats < 0 {
		return fmt.Errorf("%s: max bats %d is negative", s.Difficulty, s.MaxBats)
	}
	if s.DepthFar <= s.DepthNear {
		return fmt.Errorf("%s: depth range %v-%v is empty", s.Difficulty, s.DepthNear, s.DepthFar)
	}
	var sum float64
	for _, w := range s.TypeWeights {
		if w < 0 {
			return fmt.Errorf("%s: negative type weight %v", s.Difficulty, w)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("%s: type weights sum to zero", s.Difficulty)
	}
	return nil
}

// defaultPolicy is the built-in calibration table.
var defaultPolicy = New(
	[DifficultyCount]Settings{
		Easy: {
			SpawnIntervalMin: 7000 * time.Millisecond,
			SpawnIntervalMax: 10000 * time.Millisecond,
			MaxBats:          6,
			ScaleBase:        1.2,
			DepthNear:        5,
			DepthFar:         10,
			TypeWeights:      [components.BatTypeCount]float64{0.70, 0.25, 0.05},
			KillTarget:       8,
		},
		Medium: {
			SpawnIntervalMin: 5000 * time.Millisecond,
			SpawnIntervalMax: 8000 * time.Millisecond,
			MaxBats:          7,
			ScaleBase:        1.0,
			DepthNear:        3,
			DepthFar:         12,
			TypeWeights:      [components.BatTypeCount]float64{0.60, 0.30, 0.10},
			KillTarget:       10,
		},
		Hard: {
			SpawnIntervalMin: 3000 * time.Millisecond,
			SpawnIntervalMax: 6000 * time.Millisecond,
			MaxBats:          8,
			ScaleBase:        0.9,
			DepthNear:        1,
			DepthFar:         15,
			TypeWeights:      [components.BatTypeCount]float64{0.40, 0.30, 0.30},
			KillTarget:       15,
		},
	},
	[components.BatTypeCount]TypeTraits{
		components.BatSmall: {Scale: 0.7, Points: 15, Speed: 1.3, HitMultiplier: 0.8},
		components.BatLarge: {Scale: 1.3, Points: 10, Speed: 0.8, HitMultiplier: 1.0},
		components.BatGhost: {Scale: 1.0, Points: 25, Speed: 1.5, HitMultiplier: 0.7},
	},
)

// Default returns the built-in calibration policy.
func Default() *Policy {
	return defaultPolicy
}

// SettingsFor looks up d in the built-in calibration table.
func SettingsFor(d Difficulty) Settings {
	return defaultPolicy.SettingsFor(d)
}
