package server

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"wavesurf/surf"
)

func TestTankApplyMatchesSimulatorStep(t *testing.T) {
	for _, v := range []float64{-8, -3, 0, 2, 8} {
		for _, h := range []float64{-2.5, 0, 1.1, 3} {
			for desired := -3.0; desired < 3.1; desired += 0.45 {
				start := surf.State{Position: surf.Point{X: 400, Y: 300}, Heading: h, Velocity: v}
				want := start.Step(desired)

				tank := &Tank{State: start}
				tank.Apply(surf.BackAsFront(desired, h), 800, 600)

				assert.InDelta(t, want.Velocity, tank.Velocity, 1e-12)
				assert.InDelta(t, want.Heading, tank.Heading, 1e-12)
				assert.InDelta(t, want.Position.X, tank.Position.X, 1e-9)
				assert.InDelta(t, want.Position.Y, tank.Position.Y, 1e-9)
			}
		}
	}
}

func TestTankApplyBrakesAndClamps(t *testing.T) {
	tank := &Tank{State: surf.State{Position: surf.Point{X: 400, Y: 300}, Velocity: 3}}
	tank.Apply(surf.Drive{}, 800, 600)
	assert.Equal(t, 1.0, tank.Velocity)
	tank.Apply(surf.Drive{}, 800, 600)
	assert.Equal(t, 0.0, tank.Velocity)

	wall := &Tank{State: surf.State{Position: surf.Point{X: 20, Y: 300}, Heading: -math.Pi / 2, Velocity: 8}}
	hit := wall.Apply(surf.Drive{Ahead: 100}, 800, 600)
	assert.True(t, hit)
	assert.Equal(t, BodyHalf, wall.Position.X)
	assert.Zero(t, wall.Velocity)
}

func TestBulletDamage(t *testing.T) {
	assert.InDelta(t, 2.0, BulletDamage(0.5), 1e-12)
	assert.InDelta(t, 4.0, BulletDamage(1), 1e-12)
	assert.InDelta(t, 16.0, BulletDamage(3), 1e-12)
}

func TestLinearAimLeadsMovingTarget(t *testing.T) {
	shooter := surf.Point{X: 400, Y: 100}
	still := surf.State{Position: surf.Point{X: 400, Y: 400}}
	assert.InDelta(t, HeadOnAim(shooter, still.Position),
		LinearAim(shooter, still, 14, 800, 600), 1e-9)

	// 目标向东移动，预判角应偏向东（角度增大）
	moving := surf.State{Position: surf.Point{X: 400, Y: 400}, Heading: math.Pi / 2, Velocity: 8}
	assert.Greater(t, LinearAim(shooter, moving, 14, 800, 600), HeadOnAim(shooter, moving.Position))
}

func TestTankCovers(t *testing.T) {
	tank := &Tank{State: surf.State{Position: surf.Point{X: 100, Y: 100}}}
	assert.True(t, tank.Covers(surf.Point{X: 110, Y: 90}))
	assert.False(t, tank.Covers(surf.Point{X: 118, Y: 100}))
}
