package surf

import (
	"math"

	"go.uber.org/zap"
)

// Scan 每 tick 从宿主环境得到的感知数据
type Scan struct {
	Tick     int64
	Self     State
	Bearing  float64 // 敌方相对本机车头的方位
	Distance float64
	Energy   float64
}

// Hit 本机被子弹击中
type Hit struct {
	Position Point
	Power    float64
}

// Config Surfer 的对局参数
type Config struct {
	Width, Height float64
	InitialEnergy float64 // 敌方初始能量基线
	HistorySize   int
}

// DefaultConfig 800x600 场地，敌方初始能量 100
func DefaultConfig() Config {
	return Config{Width: 800, Height: 600, InitialEnergy: 100, HistorySize: 64}
}

// TickReport 一次 Observe 的结果
type TickReport struct {
	Intent  Intent
	Surfing bool // false 时没有可冲浪波，本 tick 不移动
	Spawned *Wave
	Expired []*Wave
}

// Surfer 单个对局内的冲浪 agent，持有直方图与波跟踪器。非并发安全。
type Surfer struct {
	cfg       Config
	Tracker   *WaveTracker
	Histogram *DangerHistogram
	Planner   *Planner
	history   *History

	lastEnergy   float64
	opponent     Point
	haveOpponent bool
	self         State
	log          *zap.Logger
}

// NewSurfer 创建 agent；logger 可为 nil
func NewSurfer(cfg Config, logger *zap.Logger) *Surfer {
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := NewWaveTracker(logger)
	hist := NewDangerHistogram()
	sim := NewSimulator(NewWallSmoother(cfg.Width, cfg.Height))
	return &Surfer{
		cfg:        cfg,
		Tracker:    tracker,
		Histogram:  hist,
		Planner:    NewPlanner(tracker, hist, sim, logger),
		history:    NewHistory(cfg.HistorySize),
		lastEnergy: cfg.InitialEnergy,
		log:        logger,
	}
}

// Observe 处理一帧感知：记录历史 → 检测开火 → 刷新敌方位置 → 推进波 → 规划
func (s *Surfer) Observe(scan Scan) TickReport {
	s.self = scan.Self
	absBearing := scan.Bearing + scan.Self.Heading
	lateral := scan.Self.Velocity * math.Sin(scan.Bearing)
	s.history.Push(Observation{
		Direction: DirectionOf(lateral),
		Bearing:   absBearing + math.Pi,
	})

	var rep TickReport
	// 波源取上一 tick 的敌方位置，因此必须在刷新 s.opponent 之前创建
	if s.haveOpponent {
		if w, ok := s.Tracker.AddWave(s.lastEnergy-scan.Energy, s.history, scan.Tick, s.opponent); ok {
			rep.Spawned = w
		}
	}
	s.lastEnergy = scan.Energy
	s.opponent = Project(scan.Self.Position, absBearing, scan.Distance)
	s.haveOpponent = true

	rep.Expired = s.Tracker.Update(scan.Tick, scan.Self.Position)
	rep.Intent, rep.Surfing = s.Planner.Decide(scan.Self)
	return rep
}

// OnHit 将命中归因到波并更新直方图；无法归因时静默忽略
func (s *Surfer) OnHit(hit Hit) (*Wave, bool) {
	w, ok := s.Tracker.MatchHit(BulletVelocity(hit.Power), s.self.Position)
	if !ok {
		return nil, false
	}
	idx := s.Histogram.Record(w, hit.Position)
	s.log.Debug("hit logged", zap.String("wave", w.ID), zap.Int("bin", idx))
	return w, true
}

// Opponent 最近一次估算的敌方位置
func (s *Surfer) Opponent() (Point, bool) {
	return s.opponent, s.haveOpponent
}

// Waves 调试叠加层用的在途波视图
func (s *Surfer) Waves() []WaveView {
	ws := s.Tracker.Waves()
	out := make([]WaveView, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.View(s.self.Position))
	}
	return out
}

// NewRound 同一对局内开始新回合：清空波与历史，直方图保留
func (s *Surfer) NewRound() {
	s.Tracker.Reset()
	s.history.Reset()
	s.lastEnergy = s.cfg.InitialEnergy
	s.haveOpponent = false
}

// Reset 开始新对局：在 NewRound 基础上清空直方图
func (s *Surfer) Reset() {
	s.NewRound()
	s.Histogram.Reset()
}
