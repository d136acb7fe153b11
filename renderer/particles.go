package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nightbats/systems"
)

// ParticleRenderer renders shot feedback particles.
type ParticleRenderer struct{}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// Draw renders all particles.
func (r *ParticleRenderer) Draw(particles []systems.EffectParticle) {
	for i := range particles {
		p := &particles[i]
		lifeRatio := float32(p.Life) / float32(p.MaxLife)

		switch p.Type {
		case systems.ParticleHit:
			// Amber sparks
			c := rl.Color{R: 255, G: 190, B: 60, A: uint8(lifeRatio * 230)}
			size := p.Size * lifeRatio
			if size < 0.5 {
				size = 0.5
			}
			rl.DrawCircle(int32(p.X), int32(p.Y), size, c)
		case systems.ParticleMiss:
			c := rl.Color{R: 200, G: 200, B: 200, A: uint8(lifeRatio * 120)}
			rl.DrawCircleLines(int32(p.X), int32(p.Y), p.Size*(2-lifeRatio), c)
		}
	}
}
