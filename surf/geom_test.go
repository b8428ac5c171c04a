package surf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAngleRange(t *testing.T) {
	for a := -20.0; a <= 20.0; a += 0.37 {
		n := NormalizeAngle(a)
		assert.GreaterOrEqual(t, n, -math.Pi)
		assert.Less(t, n, math.Pi)
		assert.InDelta(t, math.Sin(a), math.Sin(n), 1e-9)
		assert.InDelta(t, math.Cos(a), math.Cos(n), 1e-9)
	}
}

func TestProjectAndBearingAgree(t *testing.T) {
	src := Point{X: 120, Y: 340}
	for _, angle := range []float64{0, 0.4, math.Pi / 2, 2.5, -1.2, -math.Pi / 2} {
		dst := Project(src, angle, 75)
		assert.InDelta(t, 75, src.Distance(dst), 1e-9)
		assert.InDelta(t, angle, AbsoluteBearing(src, dst), 1e-9)
	}
	// 0 弧度指向 +Y
	north := Project(Point{}, 0, 10)
	assert.InDelta(t, 0, north.X, 1e-9)
	assert.InDelta(t, 10, north.Y, 1e-9)
}

func TestMaxEscapeAngleClamp(t *testing.T) {
	assert.InDelta(t, math.Asin(8.0/11), MaxEscapeAngle(11), 1e-12)
	assert.Equal(t, math.Pi/2, MaxEscapeAngle(8))
	assert.Equal(t, math.Pi/2, MaxEscapeAngle(3))
	assert.Equal(t, math.Pi/2, MaxEscapeAngle(0))
	assert.False(t, math.IsNaN(MaxEscapeAngle(5)))
}

func TestRectContains(t *testing.T) {
	r := Rect{W: 800, H: 600}.Inset(WallInset)
	assert.Equal(t, Rect{X: 18, Y: 18, W: 764, H: 564}, r)
	assert.True(t, r.Contains(Point{X: 18, Y: 18}))
	assert.False(t, r.Contains(Point{X: 782, Y: 300}))
	assert.False(t, r.Contains(Point{X: 10, Y: 300}))
}
