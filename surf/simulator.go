package surf

import "math"

// State 本机运动学状态
type State struct {
	Position Point   `json:"position"`
	Heading  float64 `json:"heading"`
	Velocity float64 `json:"velocity"`
}

// Step 按"以后为前"的约定朝 desired 方向推进一个 tick：
// 相对转角超过 90° 时改为倒车，转角受速度相关的转向率限制，
// 速度与期望方向相反时先以 2/tick 减速，否则以 1/tick 加速，限幅 ±8。
func (s State) Step(desired float64) State {
	turn := NormalizeAngle(desired - s.Heading)
	moveDir := 1.0
	if math.Cos(turn) < 0 {
		turn = NormalizeAngle(turn + math.Pi)
		moveDir = -1
	}
	maxTurn := MaxTurnRate(s.Velocity)
	s.Heading = NormalizeAngle(s.Heading + limit(-maxTurn, turn, maxTurn))

	if s.Velocity*moveDir < 0 {
		s.Velocity += Decel * moveDir
	} else {
		s.Velocity += Accel * moveDir
	}
	s.Velocity = limit(-MaxSpeed, s.Velocity, MaxSpeed)
	s.Position = Project(s.Position, s.Heading, s.Velocity)
	return s
}

// Simulator 沿某一横向方向前向模拟，直到被波前拦截
type Simulator struct {
	Smoother *WallSmoother
	MaxTicks int
}

// NewSimulator MaxTicks 默认 500
func NewSimulator(smoother *WallSmoother) *Simulator {
	return &Simulator{Smoother: smoother, MaxTicks: MaxPredictTicks}
}

// Prediction 模拟结果
type Prediction struct {
	Position    Point
	Ticks       int
	Intercepted bool // false 表示达到步数上限
}

// Predict 逐 tick 模拟本机绕开火点沿 dir 方向移动，返回波前到达时的位置
func (sim *Simulator) Predict(w *Wave, start State, dir Direction) Prediction {
	s := start
	limitTicks := sim.MaxTicks
	if limitTicks <= 0 {
		limitTicks = MaxPredictTicks
	}
	for ticks := 1; ; ticks++ {
		desired := sim.Smoother.Smooth(s.Position,
			AbsoluteBearing(w.Origin, s.Position)+dir.Sign()*(math.Pi/2), dir)
		s = s.Step(desired)

		reach := w.DistanceTraveled + float64(ticks)*w.Velocity + w.Velocity
		if s.Position.Distance(w.Origin) < reach {
			return Prediction{Position: s.Position, Ticks: ticks, Intercepted: true}
		}
		if ticks >= limitTicks {
			return Prediction{Position: s.Position, Ticks: ticks}
		}
	}
}
