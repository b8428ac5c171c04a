package surf

import (
	"math"

	"go.uber.org/zap"
)

// HitPolicy 从候选波中挑选命中归属，返回下标；-1 表示无匹配
type HitPolicy func(waves []*Wave, hitVelocity float64, self Point) int

// EarliestMatch 取最早创建且同时满足距离与速度容差的波
func EarliestMatch(waves []*Wave, hitVelocity float64, self Point) int {
	for i, w := range waves {
		if math.Abs(w.DistanceTraveled-self.Distance(w.Origin)) < HitDistanceSlack &&
			math.Abs(hitVelocity-w.Velocity) < HitVelocitySlack {
			return i
		}
	}
	return -1
}

// WaveTracker 维护当前在途的敌方波（按创建顺序）
type WaveTracker struct {
	waves  []*Wave
	Policy HitPolicy
	log    *zap.Logger
}

// NewWaveTracker logger 可为 nil
func NewWaveTracker(logger *zap.Logger) *WaveTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaveTracker{Policy: EarliestMatch, log: logger}
}

// AddWave 根据敌方能量下降判断是否开火并创建波。
// origin 必须是上一 tick 的敌方位置（在本 tick 刷新敌方位置之前取得）。
func (t *WaveTracker) AddWave(energyDelta float64, history *History, tick int64, origin Point) (*Wave, bool) {
	if !(energyDelta > MinFirePower && energyDelta < MaxFirePower) {
		return nil, false
	}
	if history == nil || history.Len() <= FireLag {
		return nil, false
	}
	obs, _ := history.At(FireLag)
	v := BulletVelocity(energyDelta)
	w := &Wave{
		ID:               newWaveID(),
		Origin:           origin,
		FireTime:         tick - 1,
		Velocity:         v,
		Direction:        obs.Direction,
		ReferenceBearing: obs.Bearing,
		DistanceTraveled: v,
	}
	t.waves = append(t.waves, w)
	t.log.Debug("wave spawned",
		zap.String("wave", w.ID),
		zap.Float64("power", energyDelta),
		zap.Float64("velocity", v),
		zap.Int64("fireTime", w.FireTime),
		zap.Stringer("direction", w.Direction))
	return w, true
}

// Update 推进所有波，并移除已越过本机 50 以上的波；返回被移除的波
func (t *WaveTracker) Update(tick int64, self Point) []*Wave {
	var expired []*Wave
	kept := t.waves[:0]
	for _, w := range t.waves {
		w.Advance(tick)
		if w.DistanceTraveled > self.Distance(w.Origin)+ExpiryMargin {
			expired = append(expired, w)
			continue
		}
		kept = append(kept, w)
	}
	clearTail(t.waves, len(kept))
	t.waves = kept
	for _, w := range expired {
		t.log.Debug("wave expired", zap.String("wave", w.ID), zap.Float64("radius", w.DistanceTraveled))
	}
	return expired
}

// NearestSurfable 返回波前距离本机最近、且尚未到达（剩余距离 > 波速）的波
func (t *WaveTracker) NearestSurfable(self Point) (*Wave, bool) {
	var best *Wave
	bestGap := math.Inf(1)
	for _, w := range t.waves {
		gap := w.Gap(self)
		if gap > w.Velocity && gap < bestGap {
			best, bestGap = w, gap
		}
	}
	return best, best != nil
}

// MatchHit 将一次命中归因到某个波；匹配的波被移出跟踪
func (t *WaveTracker) MatchHit(hitVelocity float64, self Point) (*Wave, bool) {
	idx := t.Policy(t.waves, hitVelocity, self)
	if idx < 0 {
		t.log.Debug("hit unmatched", zap.Float64("velocity", hitVelocity), zap.Int("tracked", len(t.waves)))
		return nil, false
	}
	w := t.waves[idx]
	last := len(t.waves) - 1
	copy(t.waves[idx:], t.waves[idx+1:])
	t.waves[last] = nil
	t.waves = t.waves[:last]
	t.log.Debug("hit attributed", zap.String("wave", w.ID))
	return w, true
}

// Waves 当前在途波的快照（按创建顺序）
func (t *WaveTracker) Waves() []*Wave {
	out := make([]*Wave, len(t.waves))
	copy(out, t.waves)
	return out
}

// Len 在途波数量
func (t *WaveTracker) Len() int { return len(t.waves) }

// Reset 清空所有波
func (t *WaveTracker) Reset() {
	clearTail(t.waves, 0)
	t.waves = t.waves[:0]
}

// 释放被压缩掉的尾部指针
func clearTail(ws []*Wave, from int) {
	for i := from; i < len(ws); i++ {
		ws[i] = nil
	}
}
