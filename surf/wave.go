package surf

import (
	"fmt"

	"github.com/google/uuid"
)

// Wave 敌方子弹抽象为以开火点为圆心、匀速扩张的圆
type Wave struct {
	ID               string
	Origin           Point     // 开火点（上一 tick 的敌方位置）
	FireTime         int64     // 开火 tick
	Velocity         float64   // 每 tick 扩张距离
	Direction        Direction // 开火时本机横向方向
	ReferenceBearing float64   // 开火时开火点指向本机的绝对方位
	DistanceTraveled float64
}

func newWaveID() string {
	return fmt.Sprintf("wave_%s", uuid.NewString())
}

// Advance 按当前 tick 重新计算已传播距离
func (w *Wave) Advance(tick int64) {
	w.DistanceTraveled = float64(tick-w.FireTime) * w.Velocity
}

// Gap 波前到 p 的剩余距离，负值表示已越过
func (w *Wave) Gap(p Point) float64 {
	return p.Distance(w.Origin) - w.DistanceTraveled
}

// WaveView 提供给调试叠加层的只读视图
type WaveView struct {
	ID     string  `json:"id"`
	Origin Point   `json:"origin"`
	Radius float64 `json:"radius"`
	Near   bool    `json:"near"`
}

// View 生成叠加层视图；波前与 self 距离在 40 以内视为临近
func (w *Wave) View(self Point) WaveView {
	return WaveView{
		ID:     w.ID,
		Origin: w.Origin,
		Radius: w.DistanceTraveled,
		Near:   w.DistanceTraveled-NearViewSlack < self.Distance(w.Origin),
	}
}
