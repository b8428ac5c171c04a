package surf

// Observation 单个 tick 记录的横向方向与（开火点指向本机的）绝对方位
type Observation struct {
	Direction Direction
	Bearing   float64
}

// History 固定容量环形缓冲；At(k) 为 k 个 tick 之前的观测（k=0 为最新）
type History struct {
	buf  []Observation
	head int // 下一个写入位置
	size int
}

// NewHistory 创建容量为 capacity 的历史缓冲（至少 FireLag+1）
func NewHistory(capacity int) *History {
	if capacity < FireLag+1 {
		capacity = FireLag + 1
	}
	return &History{buf: make([]Observation, capacity)}
}

// Push 写入最新观测，满时覆盖最旧
func (h *History) Push(o Observation) {
	h.buf[h.head] = o
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len 当前有效观测数
func (h *History) Len() int { return h.size }

// At 返回 lag 个 tick 之前的观测；越界时 ok=false
func (h *History) At(lag int) (Observation, bool) {
	if lag < 0 || lag >= h.size {
		return Observation{}, false
	}
	idx := (h.head - 1 - lag + len(h.buf)) % len(h.buf)
	return h.buf[idx], true
}

// Reset 清空，容量不变
func (h *History) Reset() {
	h.head = 0
	h.size = 0
}
