package systems

import (
	"math"
	"math/rand"
)

// ParticleType identifies the kind of effect particle.
type ParticleType uint8

const (
	ParticleHit ParticleType = iota
	ParticleMiss
)

// EffectParticle is one frame-stepped shot feedback particle.
type EffectParticle struct {
	X, Y       float32
	VelX, VelY float32
	Life       int32
	MaxLife    int32
	Type       ParticleType
	Size       float32
}

// ParticleSystem holds shot feedback particles.
type ParticleSystem struct {
	Particles    []EffectParticle
	maxParticles int
	rng          *rand.Rand
}

// NewParticleSystem creates a particle system holding at most maxParticles.
func NewParticleSystem(maxParticles int, rng *rand.Rand) *ParticleSystem {
	return &ParticleSystem{
		Particles:    make([]EffectParticle, 0, maxParticles),
		maxParticles: maxParticles,
		rng:          rng,
	}
}

// Update steps every particle one frame and drops expired ones.
func (s *ParticleSystem) Update() {
	alive := 0
	for i := range s.Particles {
		p := &s.Particles[i]

		p.Life--
		if p.Life <= 0 {
			continue
		}

		if p.Type == ParticleHit {
			p.VelY += 0.08 // gravity
		}
		p.VelX *= 0.95
		p.VelY *= 0.95
		p.X += p.VelX
		p.Y += p.VelY

		s.Particles[alive] = s.Particles[i]
		alive++
	}
	s.Particles = s.Particles[:alive]
}

// EmitHit emits a radial burst of 8-14 particles.
func (s *ParticleSystem) EmitHit(x, y float32) {
	count := 8 + s.rng.Intn(7)
	for i := 0; i < count; i++ {
		angle := s.rng.Float32() * 2 * math.Pi
		speed := 2 + s.rng.Float32()*3
		s.emit(EffectParticle{
			X:    x,
			Y:    y,
			VelX: float32(math.Cos(float64(angle))) * speed,
			VelY: float32(math.Sin(float64(angle))) * speed,
			Life: int32(25 + s.rng.Intn(20)),
			Type: ParticleHit,
			Size: 2 + s.rng.Float32()*2,
		})
	}
}

// EmitMiss emits a single expanding puff at the shot point.
func (s *ParticleSystem) EmitMiss(x, y float32) {
	s.emit(EffectParticle{
		X:    x,
		Y:    y,
		Life: 20,
		Type: ParticleMiss,
		Size: 10,
	})
}

func (s *ParticleSystem) emit(p EffectParticle) {
	if len(s.Particles) >= s.maxParticles {
		return
	}
	p.MaxLife = p.Life
	s.Particles = append(s.Particles, p)
}

// Count returns the number of live particles.
func (s *ParticleSystem) Count() int {
	return len(s.Particles)
}
