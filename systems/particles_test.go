package systems

import (
	"math/rand"
	"testing"
)

func TestParticleSystem_HitBurst(t *testing.T) {
	ps := NewParticleSystem(100, rand.New(rand.NewSource(1)))

	ps.EmitHit(50, 50)
	n := ps.Count()
	if n < 8 || n > 14 {
		t.Fatalf("burst size = %d, want 8-14", n)
	}
	for _, p := range ps.Particles {
		if p.Type != ParticleHit || p.MaxLife != p.Life {
			t.Errorf("unexpected particle %+v", p)
		}
	}

	// Longest hit life is 44 frames
	for i := 0; i < 45; i++ {
		ps.Update()
	}
	if ps.Count() != 0 {
		t.Errorf("Count() after expiry = %d, want 0", ps.Count())
	}
}

func TestParticleSystem_MissPuff(t *testing.T) {
	ps := NewParticleSystem(10, rand.New(rand.NewSource(1)))
	ps.EmitMiss(10, 20)

	ps.Update()
	if ps.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", ps.Count())
	}
	p := ps.Particles[0]
	if p.X != 10 || p.Y != 20 || p.Life != 19 {
		t.Errorf("miss puff moved or aged wrong: %+v", p)
	}
}

func TestParticleSystem_Cap(t *testing.T) {
	ps := NewParticleSystem(20, rand.New(rand.NewSource(1)))
	for i := 0; i < 10; i++ {
		ps.EmitHit(0, 0)
	}
	if ps.Count() != 20 {
		t.Errorf("Count() = %d, want cap 20", ps.Count())
	}
}
