package surf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSmoothKeepsLookAheadInside(t *testing.T) {
	s := NewWallSmoother(800, 600)
	for x := 19.0; x < 782; x += 37 {
		for y := 19.0; y < 582; y += 37 {
			p := Point{X: x, Y: y}
			for a := -math.Pi; a < math.Pi; a += 0.5 {
				for _, dir := range []Direction{Left, Right} {
					got := s.Smooth(p, a, dir)
					require.True(t, s.Field.Contains(Project(p, got, WallStick)),
						"pos=%v angle=%.2f dir=%v got=%.3f", p, a, dir, got)
				}
			}
		}
	}
}

func TestSmoothLeavesClearAngleUntouched(t *testing.T) {
	s := NewWallSmoother(800, 600)
	p := Point{X: 400, Y: 300}
	require.Equal(t, 1.0, s.Smooth(p, 1.0, Right))
}

func TestSmoothRotatesByOrientation(t *testing.T) {
	s := NewWallSmoother(800, 600)
	// 靠近上边界、朝正上方：Right 顺时针增大角度，Left 减小
	p := Point{X: 400, Y: 550}
	right := s.Smooth(p, 0, Right)
	left := s.Smooth(p, 0, Left)
	require.Greater(t, right, 0.0)
	require.Less(t, left, 0.0)
}

func TestSmoothGivesUpOutsideField(t *testing.T) {
	s := &WallSmoother{Field: Rect{X: 0, Y: 0, W: 10, H: 10}, Stick: WallStick, Step: SmoothStep}
	// 场地比前瞻距离还小，永远找不到出口，但必须返回
	got := s.Smooth(Point{X: 5, Y: 5}, 0, Right)
	require.InDelta(t, float64(maxSmoothSteps)*SmoothStep, got, 1e-9)
}
