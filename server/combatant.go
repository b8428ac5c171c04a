package server

import (
	"math"

	"wavesurf/surf"
)

// BodyHalf 车身半宽（36x36 的方形车体）
const BodyHalf = 18.0

// Tank 场地中的一个车体（服务端权威状态）
type Tank struct {
	surf.State
	Energy float64
}

// TankState 广播给观察端的轻量状态
type TankState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Heading  float64 `json:"heading"`
	Velocity float64 `json:"velocity"`
	Energy   float64 `json:"energy"`
}

func (t *Tank) snapshot() TankState {
	return TankState{X: t.Position.X, Y: t.Position.Y, Heading: t.Heading, Velocity: t.Velocity, Energy: t.Energy}
}

// Apply 执行一帧驱动命令：转向受速度相关的转向率限制，
// Ahead 为 0 时刹车，反向时先以 2/tick 减速。撞墙返回 true 并清零速度。
func (t *Tank) Apply(d surf.Drive, width, height float64) bool {
	maxTurn := surf.MaxTurnRate(t.Velocity)
	t.Heading = surf.NormalizeAngle(t.Heading + math.Max(-maxTurn, math.Min(d.Turn, maxTurn)))

	switch {
	case d.Ahead > 0:
		t.Velocity = accelerate(t.Velocity, 1)
	case d.Ahead < 0:
		t.Velocity = accelerate(t.Velocity, -1)
	default:
		// 刹车到 0，不越过
		if t.Velocity > 0 {
			t.Velocity = math.Max(0, t.Velocity-surf.Decel)
		} else if t.Velocity < 0 {
			t.Velocity = math.Min(0, t.Velocity+surf.Decel)
		}
	}
	t.Position = surf.Project(t.Position, t.Heading, t.Velocity)
	return t.clamp(width, height)
}

func accelerate(v, moveDir float64) float64 {
	if v*moveDir < 0 {
		v += surf.Decel * moveDir
	} else {
		v += surf.Accel * moveDir
	}
	return math.Max(-surf.MaxSpeed, math.Min(v, surf.MaxSpeed))
}

// clamp 越界裁剪
func (t *Tank) clamp(width, height float64) bool {
	hit := false
	if t.Position.X < BodyHalf {
		t.Position.X, hit = BodyHalf, true
	}
	if t.Position.Y < BodyHalf {
		t.Position.Y, hit = BodyHalf, true
	}
	if t.Position.X > width-BodyHalf {
		t.Position.X, hit = width-BodyHalf, true
	}
	if t.Position.Y > height-BodyHalf {
		t.Position.Y, hit = height-BodyHalf, true
	}
	if hit {
		t.Velocity = 0
	}
	return hit
}

// Covers 点是否落在车体方框内
func (t *Tank) Covers(p surf.Point) bool {
	return math.Abs(p.X-t.Position.X) < BodyHalf && math.Abs(p.Y-t.Position.Y) < BodyHalf
}

// Bullet 真实子弹（波只是 agent 对它的推断）
type Bullet struct {
	Origin   surf.Point
	Position surf.Point
	Heading  float64
	Velocity float64
	Power    float64
	FiredAt  int64
}

// BulletState 广播用
type BulletState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Power float64 `json:"power"`
}

// Advance 前进一个 tick
func (b *Bullet) Advance() {
	b.Position = surf.Project(b.Position, b.Heading, b.Velocity)
}

// BulletDamage 命中伤害：4p，超过 1 的部分再加 2(p-1)
func BulletDamage(power float64) float64 {
	d := 4 * power
	if power > 1 {
		d += 2 * (power - 1)
	}
	return d
}

// HeadOnAim 直接瞄准目标当前位置
func HeadOnAim(shooter, target surf.Point) float64 {
	return surf.AbsoluteBearing(shooter, target)
}

// LinearAim 假设目标保持当前朝向与速度，逐 tick 推演到子弹可达的位置
func LinearAim(shooter surf.Point, target surf.State, bulletVelocity, width, height float64) float64 {
	p := target.Position
	for t := 1; t < 200; t++ {
		p = surf.Project(p, target.Heading, target.Velocity)
		p.X = math.Max(BodyHalf, math.Min(p.X, width-BodyHalf))
		p.Y = math.Max(BodyHalf, math.Min(p.Y, height-BodyHalf))
		if shooter.Distance(p) <= float64(t)*bulletVelocity {
			break
		}
	}
	return surf.AbsoluteBearing(shooter, p)
}
