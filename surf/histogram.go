package surf

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// DangerHistogram 按逃逸角因子分桶的危险度统计。
// 生命周期为一场对局；只增不减，由所属 agent 单线程写入。
type DangerHistogram struct {
	bins [Bins]float64
}

// NewDangerHistogram 全零直方图
func NewDangerHistogram() *DangerHistogram {
	return &DangerHistogram{}
}

// FactorIndex 目标位置相对波参考方位的逃逸角因子所在桶，范围 [0, Bins-1]
func FactorIndex(w *Wave, target Point) int {
	offset := NormalizeAngle(AbsoluteBearing(w.Origin, target) - w.ReferenceBearing)
	factor := offset / MaxEscapeAngle(w.Velocity) * w.Direction.Sign()
	return int(limit(0, factor*MidBin+MidBin, Bins-1))
}

// Record 以命中桶为中心累加 1/((index-x)^2+1)
func (h *DangerHistogram) Record(w *Wave, target Point) int {
	index := FactorIndex(w, target)
	for x := range h.bins {
		d := float64(index - x)
		h.bins[x] += 1 / (d*d + 1)
	}
	return index
}

// Query 预测位置所在桶的危险度，仅用于候选之间比较
func (h *DangerHistogram) Query(w *Wave, predicted Point) float64 {
	return h.bins[FactorIndex(w, predicted)]
}

// At 第 i 个桶的值
func (h *DangerHistogram) At(i int) float64 {
	return h.bins[i]
}

// Snapshot 拷贝当前所有桶
func (h *DangerHistogram) Snapshot() []float64 {
	out := make([]float64, Bins)
	copy(out, h.bins[:])
	return out
}

// Reset 新对局开始时清零
func (h *DangerHistogram) Reset() {
	h.bins = [Bins]float64{}
}

type histogramDump struct {
	Bins []float64 `msgpack:"bins"`
}

// Export 显式序列化（对局边界时由调用方决定是否保存）
func (h *DangerHistogram) Export() ([]byte, error) {
	b, err := msgpack.Marshal(&histogramDump{Bins: h.Snapshot()})
	if err != nil {
		return nil, fmt.Errorf("encode histogram: %w", err)
	}
	return b, nil
}

// Import 从 Export 的结果恢复；桶数不符或含负值时拒绝
func (h *DangerHistogram) Import(b []byte) error {
	var dump histogramDump
	if err := msgpack.Unmarshal(b, &dump); err != nil {
		return fmt.Errorf("decode histogram: %w", err)
	}
	if len(dump.Bins) != Bins {
		return fmt.Errorf("decode histogram: got %d bins, want %d", len(dump.Bins), Bins)
	}
	var bins [Bins]float64
	for i, v := range dump.Bins {
		if v < 0 {
			return fmt.Errorf("decode histogram: bin %d is negative (%f)", i, v)
		}
		bins[i] = v
	}
	h.bins = bins
	return nil
}
