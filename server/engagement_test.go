package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wavesurf/surf"
)

// centerWave 以对手为波源、正对 agent 的波，agent 当前位置落在中心桶
func centerWave(e *Engagement) *surf.Wave {
	return &surf.Wave{
		Origin:           e.opponent.Position,
		Velocity:         14,
		Direction:        surf.Right,
		ReferenceBearing: surf.AbsoluteBearing(e.opponent.Position, e.agent.Position),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.FireInterval = 10
	return cfg
}

func TestEngagementSpawnsWavesFromShots(t *testing.T) {
	e := NewEngagement(testConfig(), zaptest.NewLogger(t))
	for i := 0; i < 400; i++ {
		e.Step()
	}
	snap := e.Metrics().Snapshot()
	shots := snap["shots_fired"].(int64)
	spawned := snap["waves_spawned"].(int64)
	hits := snap["hits_taken"].(int64)

	require.Greater(t, shots, int64(10))
	assert.Greater(t, spawned, int64(0))
	// 命中回能与开火同 tick 时会漏检，因此只要求不多于开火数
	assert.LessOrEqual(t, spawned, shots)
	assert.Equal(t, hits, snap["hits_attributed"].(int64)+snap["hits_unmatched"].(int64))
}

func TestEngagementWavesTrackRealBullets(t *testing.T) {
	e := NewEngagement(testConfig(), nil)
	// 第一发在 tick FireInterval+1 打出，同 tick 即被检测到
	for i := 0; i < testConfig().FireInterval+1; i++ {
		e.Step()
	}
	st := e.Snapshot()
	require.Len(t, st.Bullets, 1)
	require.Len(t, st.Waves, 1)

	b := e.bullets[0]
	w := st.Waves[0]
	assert.InDelta(t, b.Origin.X, w.Origin.X, 1e-9)
	assert.InDelta(t, b.Origin.Y, w.Origin.Y, 1e-9)
	assert.InDelta(t, b.Origin.Distance(b.Position), w.Radius, 1e-9)
	require.NotNil(t, st.Intent)
	assert.Equal(t, w.ID, st.Intent.WaveID)
}

func TestEngagementPauseResume(t *testing.T) {
	e := NewEngagement(testConfig(), nil)
	e.Step()
	require.Equal(t, int64(1), e.Tick())

	e.OnCommand(CmdPause)
	e.Step()
	e.Step()
	assert.Equal(t, int64(1), e.Tick())
	assert.True(t, e.Snapshot().Paused)

	e.OnCommand(CmdResume)
	e.Step()
	assert.Equal(t, int64(2), e.Tick())
}

func TestEngagementResetClearsHistogram(t *testing.T) {
	e := NewEngagement(testConfig(), nil)
	e.surfer.Histogram.Record(centerWave(e), e.agent.Position)
	require.NotZero(t, e.Histogram()[surf.MidBin])

	e.OnCommand(CmdRound)
	e.Step()
	assert.NotZero(t, e.Histogram()[surf.MidBin], "new round keeps learned stats")
	assert.Equal(t, int64(1), e.Metrics().Snapshot()["rounds"].(int64))

	e.Reset()
	assert.Zero(t, e.Tick())
	for _, v := range e.Histogram() {
		assert.Zero(t, v)
	}
}

func TestEngagementHistogramExportImport(t *testing.T) {
	src := NewEngagement(testConfig(), nil)
	for i := 0; i < 5; i++ {
		src.Step()
	}
	src.surfer.Histogram.Record(centerWave(src), src.agent.Position)
	b, err := src.ExportHistogram()
	require.NoError(t, err)

	dst := NewEngagement(testConfig(), nil)
	require.NoError(t, dst.ImportHistogram(b))
	assert.Equal(t, src.Histogram(), dst.Histogram())
	assert.Error(t, dst.ImportHistogram([]byte("not msgpack")))
}

func TestEngagementUpdateConfig(t *testing.T) {
	e := NewEngagement(testConfig(), nil)
	interval := 5
	aim := "LINEAR"
	cfg, err := e.UpdateConfig(ConfigPatch{FireInterval: &interval, Aim: &aim})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.FireInterval)
	assert.Equal(t, AimLinear, e.Config().Aim)

	bad := 7.0
	_, err = e.UpdateConfig(ConfigPatch{MaxPower: &bad})
	assert.Error(t, err)
	assert.Equal(t, 3.0, e.Config().MaxPower)
}

func TestEngagementCloseIsIdempotent(t *testing.T) {
	e := NewEngagement(testConfig(), nil)
	e.StartTicker()
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	// 停止后离开请求不会阻塞
	for i := 0; i < 100; i++ {
		e.RequestLeave("viewer_x")
	}
}
