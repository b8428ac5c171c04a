package server

import (
	"sync/atomic"
)

// EngagementMetrics 记录对局运行期的关键指标（用于监控与调试）
type EngagementMetrics struct {
	TickCount      int64 // 统计的 Tick 次数
	ShotsFired     int64 // 对手实际开火数
	WavesSpawned   int64 // agent 推断出的波数
	WavesExpired   int64 // 越过本机后丢弃的波数
	HitsTaken      int64 // 被击中次数
	HitsAttributed int64 // 成功归因到波的命中
	HitsUnmatched  int64 // 无法归因的命中（漏检）
	Rounds         int64 // 已结束的回合数
	ViewerDropped  int64 // 因观察端发送队列满被丢弃的帧
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
}

func (m *EngagementMetrics) IncShots() { atomic.AddInt64(&m.ShotsFired, 1) }
func (m *EngagementMetrics) IncSpawned() { atomic.AddInt64(&m.WavesSpawned, 1) }
func (m *EngagementMetrics) AddExpired(n int) { atomic.AddInt64(&m.WavesExpired, int64(n)) }
func (m *EngagementMetrics) IncHits() { atomic.AddInt64(&m.HitsTaken, 1) }
func (m *EngagementMetrics) IncAttributed() { atomic.AddInt64(&m.HitsAttributed, 1) }
func (m *EngagementMetrics) IncUnmatched() { atomic.AddInt64(&m.HitsUnmatched, 1) }
func (m *EngagementMetrics) IncRounds() { atomic.AddInt64(&m.Rounds, 1) }
func (m *EngagementMetrics) IncViewerDropped() { atomic.AddInt64(&m.ViewerDropped, 1) }
func (m *EngagementMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *EngagementMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"shots_fired":     atomic.LoadInt64(&m.ShotsFired),
		"waves_spawned":   atomic.LoadInt64(&m.WavesSpawned),
		"waves_expired":   atomic.LoadInt64(&m.WavesExpired),
		"hits_taken":      atomic.LoadInt64(&m.HitsTaken),
		"hits_attributed": atomic.LoadInt64(&m.HitsAttributed),
		"hits_unmatched":  atomic.LoadInt64(&m.HitsUnmatched),
		"rounds":          atomic.LoadInt64(&m.Rounds),
		"viewer_dropped":  atomic.LoadInt64(&m.ViewerDropped),
		"avg_tick_ms":     avgMs,
	}
}
