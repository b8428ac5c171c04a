package server

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wavesurf/surf"
)

// 对手每 tick 反转绕行方向的概率
const orbitFlipChance = 0.04

// 对手希望与 agent 保持的距离
const preferredRange = 320.0

// Engagement 一场对局：agent 冲浪躲避，脚本对手绕行开火。
// 世界状态只在 Tick 线程中推进；mu 保护 Tick 与管理接口之间的读写。
type Engagement struct {
	ID string

	mu       sync.Mutex
	cfg      Config
	tick     int64
	paused   bool
	agent    *Tank
	opponent *Tank
	surfer   *surf.Surfer
	intent   surf.Intent
	moving   bool
	bullets  []*Bullet
	gunHeat  int
	orbitDir surf.Direction
	oppWalls *surf.WallSmoother
	rng      *rand.Rand

	viewers   map[string]*ViewerConn
	cmdChan   chan Command
	leaveChan chan string

	metrics *EngagementMetrics
	log     *zap.SugaredLogger

	tickerStarted bool
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewEngagement 创建对局并摆好初始站位
func NewEngagement(cfg Config, logger *zap.Logger) *Engagement {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := fmt.Sprintf("eng_%s", uuid.NewString())
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	named := logger.With(zap.String("engagement", id))
	e := &Engagement{
		ID:        id,
		cfg:       cfg,
		surfer:    surf.NewSurfer(surferConfig(cfg), named.Named("surf")),
		oppWalls:  surf.NewWallSmoother(cfg.Width, cfg.Height),
		rng:       rand.New(rand.NewSource(seed)),
		viewers:   make(map[string]*ViewerConn),
		cmdChan:   make(chan Command, 16),
		leaveChan: make(chan string, 64),
		metrics:   &EngagementMetrics{},
		log:       named.Sugar(),
		stop:      make(chan struct{}),
	}
	e.placeTanks()
	return e
}

func surferConfig(cfg Config) surf.Config {
	sc := surf.DefaultConfig()
	sc.Width, sc.Height = cfg.Width, cfg.Height
	sc.InitialEnergy = cfg.InitialEnergy
	return sc
}

// placeTanks 回合开始：双方分站场地左右两侧
func (e *Engagement) placeTanks() {
	jitter := func() float64 { return (e.rng.Float64() - 0.5) * 80 }
	e.agent = &Tank{
		State:  surf.State{Position: surf.Point{X: e.cfg.Width*0.25 + jitter(), Y: e.cfg.Height*0.5 + jitter()}},
		Energy: e.cfg.InitialEnergy,
	}
	e.opponent = &Tank{
		State:  surf.State{Position: surf.Point{X: e.cfg.Width*0.75 + jitter(), Y: e.cfg.Height*0.5 + jitter()}},
		Energy: e.cfg.InitialEnergy,
	}
	e.bullets = nil
	e.gunHeat = e.cfg.FireInterval
	e.orbitDir = surf.Right
	e.intent = surf.Intent{}
	e.moving = false
}

// OnCommand 观察端命令（不阻塞，拥塞时丢弃）
func (e *Engagement) OnCommand(c Command) {
	select {
	case e.cmdChan <- c:
	default:
	}
}

// JoinViewer 注册观察端
func (e *Engagement) JoinViewer(id string, conn *ViewerConn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewers[id] = conn
	e.log.Infof("viewer joined: %s (%d total)", id, len(e.viewers))
}

// RequestLeave 请求在 Tick 线程中移除观察端；对局已停止时直接放弃
func (e *Engagement) RequestLeave(id string) {
	select {
	case e.leaveChan <- id:
	case <-e.stop:
	}
}

func (e *Engagement) removeViewer(id string) error {
	v, ok := e.viewers[id]
	if !ok {
		return nil
	}
	delete(e.viewers, id)
	e.log.Infof("viewer left: %s", id)
	if v != nil {
		return v.Close()
	}
	return nil
}

// Step 推进一个 Tick：命令 → 世界 → 广播
func (e *Engagement) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ProcessCommands()
	if !e.paused {
		e.UpdateWorld()
	}
	e.Broadcast()
}

// ProcessCommands 非阻塞 drain 所有待处理的命令与离开请求
func (e *Engagement) ProcessCommands() {
	for {
		select {
		case id := <-e.leaveChan:
			if err := e.removeViewer(id); err != nil {
				e.log.Debugf("close viewer %s: %v", id, err)
			}
		case c := <-e.cmdChan:
			e.apply(c)
		default:
			return
		}
	}
}

func (e *Engagement) apply(c Command) {
	switch c {
	case CmdPause:
		e.paused = true
	case CmdResume:
		e.paused = false
	case CmdRound:
		e.endRound("requested")
	case CmdReset:
		e.resetLocked()
	}
}

// UpdateWorld 按宿主环境的顺序推进：对手开火与移动 → agent 执行上一帧意图 →
// 子弹飞行与命中 → agent 感知并规划下一帧
func (e *Engagement) UpdateWorld() {
	e.tick++
	e.opponentFire()
	e.opponentMove()

	if e.moving {
		e.agent.Apply(e.intent.Drive(e.agent.Heading), e.cfg.Width, e.cfg.Height)
	} else {
		e.agent.Apply(surf.Drive{}, e.cfg.Width, e.cfg.Height)
	}

	e.moveBullets()
	if e.agent.Energy <= 0 {
		e.endRound("agent destroyed")
		return
	}
	if e.opponent.Energy <= e.cfg.MinPower {
		e.endRound("opponent exhausted")
		return
	}
	e.scan()
}

func (e *Engagement) opponentFire() {
	if e.gunHeat > 0 {
		e.gunHeat--
		return
	}
	power := e.cfg.MinPower + e.rng.Float64()*(e.cfg.MaxPower-e.cfg.MinPower)
	if e.opponent.Energy <= power {
		return
	}
	v := surf.BulletVelocity(power)
	var aim float64
	switch e.cfg.Aim {
	case AimLinear:
		aim = LinearAim(e.opponent.Position, e.agent.State, v, e.cfg.Width, e.cfg.Height)
	default:
		aim = HeadOnAim(e.opponent.Position, e.agent.Position)
	}
	e.bullets = append(e.bullets, &Bullet{
		Origin:   e.opponent.Position,
		Position: e.opponent.Position,
		Heading:  aim,
		Velocity: v,
		Power:    power,
		FiredAt:  e.tick,
	})
	e.opponent.Energy -= power
	e.gunHeat = e.cfg.FireInterval
	e.metrics.IncShots()
}

// opponentMove 绕 agent 横向移动，随机反向，过近时外偏、过远时内偏
func (e *Engagement) opponentMove() {
	if e.rng.Float64() < orbitFlipChance {
		e.orbitDir = e.orbitDir.Opposite()
	}
	away := surf.AbsoluteBearing(e.agent.Position, e.opponent.Position)
	lean := 0.3
	if e.agent.Position.Distance(e.opponent.Position) < preferredRange {
		lean = -0.3
	}
	desired := away + e.orbitDir.Sign()*(math.Pi/2+lean)
	desired = e.oppWalls.Smooth(e.opponent.Position, desired, e.orbitDir)
	e.opponent.Apply(surf.BackAsFront(desired, e.opponent.Heading), e.cfg.Width, e.cfg.Height)
}

func (e *Engagement) moveBullets() {
	kept := e.bullets[:0]
	for _, b := range e.bullets {
		b.Advance()
		if e.agent.Covers(b.Position) {
			e.onAgentHit(b)
			continue
		}
		if b.Position.X < 0 || b.Position.Y < 0 || b.Position.X > e.cfg.Width || b.Position.Y > e.cfg.Height {
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(e.bullets); i++ {
		e.bullets[i] = nil
	}
	e.bullets = kept
}

func (e *Engagement) onAgentHit(b *Bullet) {
	e.agent.Energy -= BulletDamage(b.Power)
	e.opponent.Energy += 3 * b.Power
	e.metrics.IncHits()
	if w, ok := e.surfer.OnHit(surf.Hit{Position: b.Position, Power: b.Power}); ok {
		e.metrics.IncAttributed()
		e.log.Debugf("hit attributed: wave=%s power=%.2f", w.ID, b.Power)
		return
	}
	e.metrics.IncUnmatched()
	e.log.Debugf("hit unmatched: power=%.2f fired=%d", b.Power, b.FiredAt)
}

// scan 构造 agent 的感知数据（相对车头的方位、距离、对手能量）
func (e *Engagement) scan() {
	abs := surf.AbsoluteBearing(e.agent.Position, e.opponent.Position)
	rep := e.surfer.Observe(surf.Scan{
		Tick:     e.tick,
		Self:     e.agent.State,
		Bearing:  surf.NormalizeAngle(abs - e.agent.Heading),
		Distance: e.agent.Position.Distance(e.opponent.Position),
		Energy:   e.opponent.Energy,
	})
	if rep.Spawned != nil {
		e.metrics.IncSpawned()
	}
	if len(rep.Expired) > 0 {
		e.metrics.AddExpired(len(rep.Expired))
	}
	// 没有可冲浪波时保持上一个意图继续运动
	if rep.Surfing {
		e.intent = rep.Intent
		e.moving = true
	}
}

func (e *Engagement) endRound(reason string) {
	e.metrics.IncRounds()
	e.log.Infof("round over at tick %d (%s): agent=%.1f opponent=%.1f",
		e.tick, reason, e.agent.Energy, e.opponent.Energy)
	e.placeTanks()
	e.surfer.NewRound()
}

// Reset 新对局：直方图清零，回合重开
func (e *Engagement) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engagement) resetLocked() {
	e.placeTanks()
	e.surfer.Reset()
	e.tick = 0
	e.log.Info("engagement reset")
}

// EngagementState 每帧广播给观察端的状态
type EngagementState struct {
	Type       string          `json:"type"`
	Engagement string          `json:"engagement"`
	Tick       int64           `json:"tick"`
	Paused     bool            `json:"paused"`
	Agent      TankState       `json:"agent"`
	Opponent   TankState       `json:"opponent"`
	Bullets    []BulletState   `json:"bullets"`
	Waves      []surf.WaveView `json:"waves"`
	Intent     *surf.Intent    `json:"intent,omitempty"`
	Histogram  []float64       `json:"histogram"`
}

// state 当前帧快照（调用方需持有 mu）
func (e *Engagement) state() EngagementState {
	bullets := make([]BulletState, 0, len(e.bullets))
	for _, b := range e.bullets {
		bullets = append(bullets, BulletState{X: b.Position.X, Y: b.Position.Y, Power: b.Power})
	}
	st := EngagementState{
		Type:       "state",
		Engagement: e.ID,
		Tick:       e.tick,
		Paused:     e.paused,
		Agent:      e.agent.snapshot(),
		Opponent:   e.opponent.snapshot(),
		Bullets:    bullets,
		Waves:      e.surfer.Waves(),
		Histogram:  e.surfer.Histogram.Snapshot(),
	}
	if e.moving {
		in := e.intent
		st.Intent = &in
	}
	return st
}

// Snapshot 线程安全的状态快照
func (e *Engagement) Snapshot() EngagementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state()
}

// Broadcast 将当前状态广播给所有观察端（文本 JSON）
func (e *Engagement) Broadcast() {
	if len(e.viewers) == 0 {
		return
	}
	b, err := json.Marshal(e.state())
	if err != nil {
		e.log.Errorf("encode state: %v", err)
		return
	}
	for _, v := range e.viewers {
		if !v.Enqueue(b) {
			e.metrics.IncViewerDropped()
		}
	}
}

// Config 当前配置副本
func (e *Engagement) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// UpdateConfig 热更新开火相关参数，校验失败时保持原配置
func (e *Engagement) UpdateConfig(p ConfigPatch) (Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := p.Apply(e.cfg)
	if err := next.Validate(); err != nil {
		return e.cfg, err
	}
	e.cfg = next
	return next, nil
}

// Metrics 指标
func (e *Engagement) Metrics() *EngagementMetrics { return e.metrics }

// Tick 当前 tick
func (e *Engagement) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// ExportHistogram 对局边界的显式导出（msgpack）
func (e *Engagement) ExportHistogram() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfer.Histogram.Export()
}

// ImportHistogram 用导出的数据为对局播种
func (e *Engagement) ImportHistogram(b []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfer.Histogram.Import(b)
}

// Histogram 直方图副本
func (e *Engagement) Histogram() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surfer.Histogram.Snapshot()
}

// Close 停止 Tick 并关闭所有观察端
func (e *Engagement) Close() error {
	e.StopTicker()
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	for id := range e.viewers {
		err = multierr.Append(err, e.removeViewer(id))
	}
	return err
}
