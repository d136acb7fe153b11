// Package renderer draws the bat scene with raylib.
package renderer

import (
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nightbats/anim"
	"github.com/pthm-cable/nightbats/components"
)

// batColors per type: body, wing.
var batColors = [components.BatTypeCount][2]rl.Color{
	components.BatSmall: {{R: 90, G: 60, B: 45, A: 255}, {R: 120, G: 80, B: 60, A: 255}},
	components.BatLarge: {{R: 40, G: 35, B: 45, A: 255}, {R: 70, G: 60, B: 80, A: 255}},
	components.BatGhost: {{R: 200, G: 215, B: 235, A: 200}, {R: 170, G: 190, B: 230, A: 160}},
}

// BatRenderer draws live bats.
type BatRenderer struct {
	animator *anim.Animator
}

// NewBatRenderer creates a bat renderer that poses bats with animator.
func NewBatRenderer(animator *anim.Animator) *BatRenderer {
	return &BatRenderer{animator: animator}
}

// Draw renders bats far to near so closer bats overlap farther ones.
// hitRadius, when non-nil, is drawn as an outline at the canonical position.
func (r *BatRenderer) Draw(bats []components.BatView, now time.Time, hitRadius func(components.BatView) float32) {
	r.animator.Sync(bats)

	order := make([]int, len(bats))
	for i := range order {
		order[i] = i
	}
	// Insertion sort by depth, descending; the live set is small
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && bats[order[j]].Z > bats[order[j-1]].Z; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	for _, i := range order {
		b := bats[i]
		pose := r.animator.Pose(b, now)
		drawBat(pose, b.Type, now)

		if hitRadius != nil {
			rl.DrawCircleLines(int32(b.X), int32(b.Y), hitRadius(b), rl.Color{R: 255, G: 80, B: 80, A: 160})
		}
	}
}

func drawBat(p anim.Pose, t components.BatType, now time.Time) {
	colors := batColors[components.BatLarge]
	if int(t) < len(batColors) {
		colors = batColors[t]
	}
	body := fade(colors[0], p.Alpha)
	wing := fade(colors[1], p.Alpha)

	// Wing flap
	flap := float32(math.Sin(float64(now.UnixMilli()%1000) / 1000 * 2 * math.Pi))
	span := p.Size * 2.2
	lift := p.Size * (0.4 + 0.5*flap)

	rot := float64(p.Rotation) * math.Pi / 180
	point := func(dx, dy float32) rl.Vector2 {
		c, s := float32(math.Cos(rot)), float32(math.Sin(rot))
		return rl.Vector2{X: p.X + dx*c - dy*s, Y: p.Y + dx*s + dy*c}
	}

	// Triangles are counter-clockwise for raylib
	rl.DrawTriangle(point(0, -p.Size*0.3), point(-span, -lift), point(-p.Size*0.6, p.Size*0.4), wing)
	rl.DrawTriangle(point(0, -p.Size*0.3), point(p.Size*0.6, p.Size*0.4), point(span, -lift), wing)
	rl.DrawCircleV(point(0, 0), p.Size*0.6, body)

	// Ears
	rl.DrawTriangle(point(-p.Size*0.35, -p.Size*0.45), point(-p.Size*0.45, -p.Size*0.9), point(-p.Size*0.1, -p.Size*0.55), body)
	rl.DrawTriangle(point(p.Size*0.1, -p.Size*0.55), point(p.Size*0.45, -p.Size*0.9), point(p.Size*0.35, -p.Size*0.45), body)

	eye := fade(rl.Color{R: 255, G: 220, B: 80, A: 255}, p.Alpha)
	rl.DrawCircleV(point(-p.Size*0.2, -p.Size*0.1), p.Size*0.1, eye)
	rl.DrawCircleV(point(p.Size*0.2, -p.Size*0.1), p.Size*0.1, eye)
}

func fade(c rl.Color, alpha float32) rl.Color {
	c.A = uint8(float32(c.A) * alpha)
	return c
}
