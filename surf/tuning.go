package surf

import "math"

const (
	Bins       = 47             // 危险直方图分桶数
	MidBin     = (Bins - 1) / 2 // 中心桶（正对参考方位）
	MaxSpeed   = 8.0            // 最大线速度，同时也是最大横向速度
	Accel      = 1.0            // 每 tick 加速量
	Decel      = 2.0            // 每 tick 减速量（反向时）
	WallStick  = 160.0          // 墙壁平滑的前瞻距离
	WallInset  = 18.0           // 场地边界内缩（半个车身）
	SmoothStep = 0.05           // 墙壁平滑每次旋转的弧度

	// 有效开火能量区间（开区间）
	MinFirePower = 0.09
	MaxFirePower = 3.01
	// 开火时刻对应的历史下标（感知延迟 1 tick + 开火 1 tick）
	FireLag = 2

	ExpiryMargin     = 50.0  // 波越过本机多远后丢弃
	HitDistanceSlack = 50.0  // 命中归因的距离容差
	HitVelocitySlack = 0.001 // 命中归因的速度容差
	MaxPredictTicks  = 500   // 预测步数上限
	NearViewSlack    = 40.0  // 调试叠加层：半径 - 40 < 距离时视为临近
)

// BulletVelocity 子弹速度 = 20 - 3*power
func BulletVelocity(power float64) float64 {
	return 20 - 3*power
}

// MaxEscapeAngle 最大逃逸角 asin(8/v)。v <= 8 时 asin 无定义，按 π/2 处理。
func MaxEscapeAngle(velocity float64) float64 {
	if velocity <= MaxSpeed {
		return math.Pi / 2
	}
	return math.Asin(MaxSpeed / velocity)
}

// MaxTurnRate 每 tick 最大转向角，速度越快越小
func MaxTurnRate(velocity float64) float64 {
	return math.Pi / 720 * (40 - 3*math.Abs(velocity))
}
