package surf

// Direction 横向移动方向（相对开火点顺时针为 Right）
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// Sign 以 ±1 参与角度与因子计算
func (d Direction) Sign() float64 {
	if d == Left {
		return -1
	}
	return 1
}

// Opposite 反向
func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// DirectionOf 根据横向速度的符号得到方向（0 归为 Right）
func DirectionOf(lateral float64) Direction {
	if lateral >= 0 {
		return Right
	}
	return Left
}
