package server

import "time"

// StartTicker 启动对局的 Tick 循环（单线程推进世界）
func (e *Engagement) StartTicker() {
	e.mu.Lock()
	if e.tickerStarted {
		e.mu.Unlock()
		return
	}
	e.tickerStarted = true
	interval := time.Second / time.Duration(e.cfg.TicksPerSecond)
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-e.stop:
				return
			case <-ticker.C:
				// 核心循环：处理命令 → 推进世界 → 广播结果
				start := time.Now()
				e.Step()
				e.metrics.AddTick(time.Since(start).Nanoseconds())
			}
		}
	}()
}

// StopTicker 停止 Tick 循环，可重复调用
func (e *Engagement) StopTicker() {
	e.stopOnce.Do(func() { close(e.stop) })
}
