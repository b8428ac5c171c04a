package surf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledHistory(n int) *History {
	h := NewHistory(16)
	for i := 0; i < n; i++ {
		dir := Right
		if i%2 == 1 {
			dir = Left
		}
		h.Push(Observation{Direction: dir, Bearing: float64(i) / 10})
	}
	return h
}

func TestAddWaveRejectsOutOfRangeEnergy(t *testing.T) {
	tr := NewWaveTracker(nil)
	h := filledHistory(5)
	for _, delta := range []float64{4.0, 3.01, 0.09, 0, -1.5} {
		_, ok := tr.AddWave(delta, h, 10, Point{X: 100, Y: 100})
		assert.False(t, ok, "delta %v", delta)
	}
	assert.Zero(t, tr.Len())
}

func TestAddWaveNeedsThreeObservations(t *testing.T) {
	tr := NewWaveTracker(nil)
	_, ok := tr.AddWave(1.0, filledHistory(2), 10, Point{})
	assert.False(t, ok)
	_, ok = tr.AddWave(1.0, nil, 10, Point{})
	assert.False(t, ok)
	_, ok = tr.AddWave(1.0, filledHistory(3), 10, Point{})
	assert.True(t, ok)
}

func TestAddWaveUsesLaggedObservation(t *testing.T) {
	tr := NewWaveTracker(nil)
	h := filledHistory(5) // 最新 i=4，lag 2 => i=2 (Right, 0.2)
	origin := Point{X: 250, Y: 410}
	w, ok := tr.AddWave(2.0, h, 40, origin)
	require.True(t, ok)

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, int64(39), w.FireTime)
	assert.Equal(t, 14.0, w.Velocity)
	assert.Equal(t, 14.0, w.DistanceTraveled)
	assert.Equal(t, Right, w.Direction)
	assert.InDelta(t, 0.2, w.ReferenceBearing, 1e-12)
	assert.Equal(t, origin, w.Origin)
}

func TestUpdateAdvancesMonotonically(t *testing.T) {
	tr := NewWaveTracker(nil)
	w, ok := tr.AddWave(1.0, filledHistory(3), 5, Point{X: 400, Y: 0})
	require.True(t, ok)
	self := Point{X: 400, Y: 5000}

	prev := w.DistanceTraveled
	for tick := int64(5); tick < 60; tick++ {
		tr.Update(tick, self)
		assert.InDelta(t, float64(tick-w.FireTime)*w.Velocity, w.DistanceTraveled, 1e-9)
		assert.GreaterOrEqual(t, w.DistanceTraveled, prev)
		prev = w.DistanceTraveled
	}
}

func TestUpdateExpiresPassedWaves(t *testing.T) {
	tr := NewWaveTracker(nil)
	self := Point{X: 400, Y: 300}
	near := &Wave{ID: "near", Origin: Point{X: 400, Y: 200}, FireTime: 0, Velocity: 14}
	far := &Wave{ID: "far", Origin: Point{X: 400, Y: 0}, FireTime: 0, Velocity: 14}
	tr.waves = []*Wave{near, far}

	// tick 11: near 154 > 100+50 -> 过期；far 154 < 350
	expired := tr.Update(11, self)
	require.Len(t, expired, 1)
	assert.Equal(t, "near", expired[0].ID)
	require.Equal(t, 1, tr.Len())
	assert.Equal(t, "far", tr.Waves()[0].ID)

	// 恰好等于距离+50 时保留
	tr.waves[0].Velocity = 10
	tr.Update(35, self)
	assert.Equal(t, 1, tr.Len())
	tr.Update(36, self)
	assert.Zero(t, tr.Len())
}

func TestNearestSurfable(t *testing.T) {
	tr := NewWaveTracker(nil)
	self := Point{X: 400, Y: 300}
	_, ok := tr.NearestSurfable(self)
	assert.False(t, ok)

	passed := &Wave{ID: "passed", Origin: Point{X: 400, Y: 100}, Velocity: 11, DistanceTraveled: 195}
	closest := &Wave{ID: "close", Origin: Point{X: 400, Y: 100}, Velocity: 11, DistanceTraveled: 150}
	tie := &Wave{ID: "tie", Origin: Point{X: 400, Y: 500}, Velocity: 11, DistanceTraveled: 150}
	far := &Wave{ID: "far", Origin: Point{X: 100, Y: 300}, Velocity: 11, DistanceTraveled: 20}
	tr.waves = []*Wave{passed, far, closest, tie}

	w, ok := tr.NearestSurfable(self)
	require.True(t, ok)
	assert.Equal(t, "close", w.ID)

	// 剩余距离恰好等于波速不可冲浪
	only := &Wave{ID: "edge", Origin: Point{X: 400, Y: 100}, Velocity: 10, DistanceTraveled: 190}
	tr.waves = []*Wave{only}
	_, ok = tr.NearestSurfable(self)
	assert.False(t, ok)
}

func TestMatchHitEarliestWins(t *testing.T) {
	tr := NewWaveTracker(nil)
	self := Point{X: 400, Y: 500}
	slow := &Wave{ID: "slow", Origin: Point{X: 400, Y: 300}, Velocity: 11, DistanceTraveled: 198}
	first := &Wave{ID: "first", Origin: Point{X: 400, Y: 300}, Velocity: 14, DistanceTraveled: 190}
	second := &Wave{ID: "second", Origin: Point{X: 400, Y: 300}, Velocity: 14, DistanceTraveled: 210}
	tr.waves = []*Wave{slow, first, second}

	w, ok := tr.MatchHit(BulletVelocity(2.0), self)
	require.True(t, ok)
	assert.Equal(t, "first", w.ID)

	rest := tr.Waves()
	require.Len(t, rest, 2)
	assert.Equal(t, "slow", rest[0].ID)
	assert.Equal(t, "second", rest[1].ID)
}

func TestMatchHitUnmatched(t *testing.T) {
	tr := NewWaveTracker(nil)
	self := Point{X: 400, Y: 500}
	_, ok := tr.MatchHit(14, self)
	assert.False(t, ok)

	tr.waves = []*Wave{
		{ID: "early", Origin: Point{X: 400, Y: 300}, Velocity: 14, DistanceTraveled: 100},
		{ID: "other", Origin: Point{X: 400, Y: 300}, Velocity: 11, DistanceTraveled: 200},
	}
	_, ok = tr.MatchHit(14, self)
	assert.False(t, ok)
	assert.Equal(t, 2, tr.Len())
}

func TestMatchHitCustomPolicy(t *testing.T) {
	tr := NewWaveTracker(nil)
	tr.waves = []*Wave{{ID: "a"}, {ID: "b"}}
	tr.Policy = func(ws []*Wave, _ float64, _ Point) int { return len(ws) - 1 }
	w, ok := tr.MatchHit(0, Point{})
	require.True(t, ok)
	assert.Equal(t, "b", w.ID)

	tr.Reset()
	assert.Zero(t, tr.Len())
}
