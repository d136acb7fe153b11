package renderer

import (
	"math"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type star struct {
	x, y   float32
	size   float32
	phase  float32
	bright uint8
}

// BackgroundRenderer draws the night sky behind the bats.
type BackgroundRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color
	stars            []star
}

// NewBackgroundRenderer creates a sky with a fixed star field drawn from rng.
func NewBackgroundRenderer(screenW, screenH int32, starCount int, rng *rand.Rand) *BackgroundRenderer {
	b := &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     rl.Color{R: 8, G: 10, B: 30, A: 255},
		bottom:  rl.Color{R: 35, G: 25, B: 60, A: 255},
		stars:   make([]star, starCount),
	}
	for i := range b.stars {
		b.stars[i] = star{
			x:      rng.Float32() * float32(screenW),
			y:      rng.Float32() * float32(screenH) * 0.8,
			size:   0.5 + rng.Float32()*1.5,
			phase:  rng.Float32() * 2 * math.Pi,
			bright: uint8(120 + rng.Intn(136)),
		}
	}
	return b
}

// Resize updates the sky to new screen dimensions.
func (b *BackgroundRenderer) Resize(w, h int32) {
	b.screenW = w
	b.screenH = h
}

// Draw renders the gradient, twinkling stars and the moon. t is in seconds.
func (b *BackgroundRenderer) Draw(t float32) {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)

	for _, s := range b.stars {
		twinkle := 0.6 + 0.4*float32(math.Sin(float64(t*1.7+s.phase)))
		c := rl.Color{R: 255, G: 255, B: 240, A: uint8(float32(s.bright) * twinkle)}
		rl.DrawCircleV(rl.Vector2{X: s.x, Y: s.y}, s.size, c)
	}

	moonX := float32(b.screenW) * 0.82
	moonY := float32(b.screenH) * 0.18
	rl.DrawCircleV(rl.Vector2{X: moonX, Y: moonY}, 70, rl.Color{R: 255, G: 250, B: 220, A: 30})
	rl.DrawCircleV(rl.Vector2{X: moonX, Y: moonY}, 46, rl.Color{R: 250, G: 245, B: 215, A: 255})
	rl.DrawCircleV(rl.Vector2{X: moonX + 14, Y: moonY - 8}, 40, b.top)
}
