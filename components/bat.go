// Package components defines ECS components for the bat simulation.
package components

import (
	"strings"
	"time"
)

// BatType selects a bat's point value, size and tempo.
type BatType uint8

const (
	BatSmall BatType = iota
	BatLarge
	BatGhost
)

// BatTypeCount is the number of bat types.
const BatTypeCount = 3

// AllBatTypes returns every bat type in weight-table order.
func AllBatTypes() []BatType {
	return []BatType{BatSmall, BatLarge, BatGhost}
}

// String returns the display name for a BatType.
func (t BatType) String() string {
	switch t {
	case BatSmall:
		return "SMALL"
	case BatLarge:
		return "LARGE"
	case BatGhost:
		return "GHOST"
	default:
		return "UNKNOWN"
	}
}

// ParseBatType parses a bat type name, case-insensitively.
func ParseBatType(s string) (BatType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SMALL":
		return BatSmall, true
	case "LARGE":
		return BatLarge, true
	case "GHOST":
		return BatGhost, true
	default:
		return BatSmall, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t BatType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Position is a bat's canonical spawn position.
// X and Y are screen pixels; Z is synthetic depth used for size only.
type Position struct {
	X, Y, Z float32
}

// Bat holds the immutable gameplay fields of a bat.
type Bat struct {
	ID       string
	Seq      uint64 // spawn order, used for hit tie-breaks
	Type     BatType
	Scale    float32
	Points   int
	Speed    float32 // animation tempo multiplier
	Rotation float32 // cosmetic, degrees
}

// Lifespan tracks when a bat was created and how long it lives unhit.
type Lifespan struct {
	CreatedAt time.Time
	Duration  time.Duration
}

// ExpiresAt returns the instant the bat becomes eligible for reaping.
func (l Lifespan) ExpiresAt() time.Time {
	return l.CreatedAt.Add(l.Duration)
}

// Expired reports whether now - CreatedAt >= Duration.
func (l Lifespan) Expired(now time.Time) bool {
	return now.Sub(l.CreatedAt) >= l.Duration
}

// BatView is a read-only copy of a live bat published to renderers and
// remote clients. Animation state is keyed by ID outside the core.
type BatView struct {
	ID        string        `json:"id"`
	Seq       uint64        `json:"seq"`
	X         float32       `json:"x"`
	Y         float32       `json:"y"`
	Z         float32       `json:"z"`
	Type      BatType       `json:"type"`
	Scale     float32       `json:"scale"`
	Points    int           `json:"points"`
	Speed     float32       `json:"speed"`
	Rotation  float32       `json:"rotation"`
	CreatedAt time.Time     `json:"created_at"`
	Lifespan  time.Duration `json:"lifespan_ns"`
}

// NewBatView assembles a view from a bat's components.
func NewBatView(pos *Position, bat *Bat, life *Lifespan) BatView {
	return BatView{
		ID:        bat.ID,
		Seq:       bat.Seq,
		X:         pos.X,
		Y:         pos.Y,
		Z:         pos.Z,
		Type:      bat.Type,
		Scale:     bat.Scale,
		Points:    bat.Points,
		Speed:     bat.Speed,
		Rotation:  bat.Rotation,
		CreatedAt: life.CreatedAt,
		Lifespan:  life.Duration,
	}
}

// Age returns how long the bat has been alive at now.
func (v BatView) Age(now time.Time) time.Duration {
	return now.Sub(v.CreatedAt)
}
