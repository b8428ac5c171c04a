package surf

import "math"

// Point 场地坐标系中的二维位置（0 弧度指向 +Y，顺时针为正）
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Distance 两点间欧氏距离
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Project 从 p 沿 angle 方向前进 length
func Project(p Point, angle, length float64) Point {
	return Point{X: p.X + math.Sin(angle)*length, Y: p.Y + math.Cos(angle)*length}
}

// AbsoluteBearing 从 source 指向 target 的绝对角度
func AbsoluteBearing(source, target Point) float64 {
	return math.Atan2(target.X-source.X, target.Y-source.Y)
}

// NormalizeAngle 将角度归一到 [-π, π)
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a >= math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func limit(lo, v, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Rect 轴对齐矩形，用于表示（内缩后的）场地
type Rect struct {
	X, Y, W, H float64
}

// Contains 左/下边界闭合，右/上边界开放
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// Inset 各边向内收缩 margin
func (r Rect) Inset(margin float64) Rect {
	return Rect{X: r.X + margin, Y: r.Y + margin, W: r.W - 2*margin, H: r.H - 2*margin}
}
