// Package anim computes how bats move on screen. Animation state lives here,
// keyed by bat id; the simulation only publishes canonical positions.
package anim

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/nightbats/components"
)

// FadeInDuration is how long a new bat takes to reach full opacity.
const FadeInDuration = 500 * time.Millisecond

// Motion is a bat's looping bob: a vertical and a horizontal swing, each
// going out to +Amp and back to -Amp.
type Motion struct {
	AmpX, AmpY float32
	// Duration of one swing (half a full cycle)
	SwingX, SwingY time.Duration
}

// amplitudes per type: vertical, horizontal (px)
var amplitudes = [components.BatTypeCount][2]float32{
	components.BatSmall: {15, 25},
	components.BatLarge: {8, 15},
	components.BatGhost: {20, 35},
}

// BaseMotion returns the un-jittered motion for a bat type moving at speed.
func BaseMotion(t components.BatType, speed float32) Motion {
	if speed <= 0 {
		speed = 1
	}
	amp := amplitudes[components.BatLarge]
	if int(t) < len(amplitudes) {
		amp = amplitudes[t]
	}
	return Motion{
		AmpY:   amp[0],
		AmpX:   amp[1],
		SwingY: time.Duration(float64(time.Second) / float64(speed)),
		SwingX: time.Duration(float64(2*time.Second) / float64(speed)),
	}
}

// Jitter randomizes a base motion so bats of one type don't move in lockstep.
// Amplitudes grow by up to 5px vertically and 10px horizontally, swings by up
// to 500ms and 1s.
func Jitter(m Motion, rng *rand.Rand) Motion {
	m.AmpY += rng.Float32() * 5
	m.AmpX += rng.Float32() * 10
	m.SwingY += time.Duration(rng.Int63n(int64(500 * time.Millisecond)))
	m.SwingX += time.Duration(rng.Int63n(int64(time.Second)))
	return m
}

// Offset returns the displacement from the canonical position after age.
// Each axis eases out to +Amp over one swing, then back through zero to -Amp.
func (m Motion) Offset(age time.Duration) (dx, dy float32) {
	return swing(m.AmpX, m.SwingX, age), swing(m.AmpY, m.SwingY, age)
}

func swing(amp float32, half time.Duration, age time.Duration) float32 {
	if half <= 0 || age <= 0 {
		return 0
	}
	phase := float64(age) / float64(2*half) * 2 * math.Pi
	return amp * float32(math.Sin(phase))
}

// FadeAlpha returns opacity in [0, 1] for a bat of the given age.
func FadeAlpha(age time.Duration) float32 {
	if age <= 0 {
		return 0
	}
	if age >= FadeInDuration {
		return 1
	}
	return float32(age) / float32(FadeInDuration)
}

// Pose is where and how a bat is drawn this frame.
type Pose struct {
	X, Y     float32
	Size     float32 // body radius in px
	Alpha    float32
	Rotation float32
}

// BodyRadius is the drawn radius of a bat at scale 1.
const BodyRadius = 24

// Animator keeps per-bat motion keyed by bat id.
type Animator struct {
	rng     *rand.Rand
	motions map[string]Motion
}

// NewAnimator creates an animator.
func NewAnimator(rng *rand.Rand) *Animator {
	return &Animator{
		rng:     rng,
		motions: make(map[string]Motion),
	}
}

// Sync adds motion for new bats and forgets bats no longer published.
func (a *Animator) Sync(bats []components.BatView) {
	seen := make(map[string]struct{}, len(bats))
	for _, b := range bats {
		seen[b.ID] = struct{}{}
		if _, ok := a.motions[b.ID]; !ok {
			a.motions[b.ID] = Jitter(BaseMotion(b.Type, b.Speed), a.rng)
		}
	}
	for id := range a.motions {
		if _, ok := seen[id]; !ok {
			delete(a.motions, id)
		}
	}
}

// Len returns the number of tracked bats.
func (a *Animator) Len() int {
	return len(a.motions)
}

// Pose computes the drawn pose of b at now. Bats not yet synced are drawn
// with their base motion.
func (a *Animator) Pose(b components.BatView, now time.Time) Pose {
	m, ok := a.motions[b.ID]
	if !ok {
		m = BaseMotion(b.Type, b.Speed)
	}
	age := b.Age(now)
	dx, dy := m.Offset(age)
	return Pose{
		X:        b.X + dx,
		Y:        b.Y + dy,
		Size:     BodyRadius * b.Scale,
		Alpha:    FadeAlpha(age),
		Rotation: b.Rotation,
	}
}
