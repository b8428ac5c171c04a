package surf

import (
	"math"

	"go.uber.org/zap"
)

// DriveDistance 每次下发的前进/后退距离，足够在下个 tick 重新决策前保持运动
const DriveDistance = 100.0

// Intent 规划输出：期望绝对角度与所选横向方向
type Intent struct {
	Angle       float64   `json:"angle"`
	Direction   Direction `json:"direction"`
	WaveID      string    `json:"wave"`
	DangerLeft  float64   `json:"dangerLeft"`
	DangerRight float64   `json:"dangerRight"`
}

// Drive 执行层命令：Turn 为正表示顺时针转；Ahead 为负表示倒车
type Drive struct {
	Turn  float64 `json:"turn"`
	Ahead float64 `json:"ahead"`
}

// BackAsFront 相对转角超过 90° 时转补角并倒车，使转向量最小。
// 与 State.Step 使用同一约定。
func BackAsFront(angle, heading float64) Drive {
	rel := NormalizeAngle(angle - heading)
	if math.Abs(rel) > math.Pi/2 {
		return Drive{Turn: NormalizeAngle(rel + math.Pi), Ahead: -DriveDistance}
	}
	return Drive{Turn: rel, Ahead: DriveDistance}
}

// Drive 以当前朝向换算执行命令
func (i Intent) Drive(heading float64) Drive {
	return BackAsFront(i.Angle, heading)
}

// Planner 每 tick 选择最近的可冲浪波，模拟左右两个方向并取危险度更低者
type Planner struct {
	Tracker   *WaveTracker
	Histogram *DangerHistogram
	Simulator *Simulator
	log       *zap.Logger
}

// NewPlanner logger 可为 nil
func NewPlanner(tracker *WaveTracker, histogram *DangerHistogram, sim *Simulator, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{Tracker: tracker, Histogram: histogram, Simulator: sim, log: logger}
}

// Danger 沿 dir 方向被 w 拦截时所在桶的危险度
func (p *Planner) Danger(w *Wave, self State, dir Direction) float64 {
	pred := p.Simulator.Predict(w, self, dir)
	return p.Histogram.Query(w, pred.Position)
}

// Decide 没有可冲浪波时 ok=false，调用方本 tick 不下发移动
func (p *Planner) Decide(self State) (Intent, bool) {
	w, ok := p.Tracker.NearestSurfable(self.Position)
	if !ok {
		return Intent{}, false
	}
	left := p.Danger(w, self, Left)
	right := p.Danger(w, self, Right)

	dir := Right
	if left < right {
		dir = Left
	}
	angle := p.Simulator.Smoother.Smooth(self.Position,
		AbsoluteBearing(w.Origin, self.Position)+dir.Sign()*(math.Pi/2), dir)

	if ce := p.log.Check(zap.DebugLevel, "surf decision"); ce != nil {
		ce.Write(zap.String("wave", w.ID), zap.Float64("left", left),
			zap.Float64("right", right), zap.Stringer("dir", dir))
	}
	return Intent{Angle: angle, Direction: dir, WaveID: w.ID, DangerLeft: left, DangerRight: right}, true
}
