package surf

import "math"

// 绕满一圈仍找不到出口时放弃（起点本身已在内缩区域外）
var maxSmoothSteps = int(math.Ceil(2*math.Pi/SmoothStep)) + 1

// WallSmoother 迭代式墙壁平滑：不断旋转候选角度，直到前瞻点落在场地内
type WallSmoother struct {
	Field Rect    // 已内缩的场地
	Stick float64 // 前瞻距离
	Step  float64 // 每次旋转的弧度
}

// NewWallSmoother 按场地宽高构造，默认内缩 18、前瞻 160
func NewWallSmoother(width, height float64) *WallSmoother {
	return &WallSmoother{
		Field: Rect{W: width, H: height}.Inset(WallInset),
		Stick: WallStick,
		Step:  SmoothStep,
	}
}

// Smooth 返回修正后的绝对角度。orientation 决定旋转方向。
func (s *WallSmoother) Smooth(position Point, angle float64, orientation Direction) float64 {
	step := orientation.Sign() * s.Step
	for i := 0; i < maxSmoothSteps; i++ {
		if s.Field.Contains(Project(position, angle, s.Stick)) {
			return angle
		}
		angle += step
	}
	return angle
}
