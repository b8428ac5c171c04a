package server

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EngagementManager 管理多个对局的生命周期
type EngagementManager struct {
	mu          sync.RWMutex
	engagements map[string]*Engagement
	defaultID   string
	cfg         Config
	logger      *zap.Logger
}

var (
	defaultManager *EngagementManager
	once           sync.Once
)

// InitEngagementManager 以给定配置创建单例（只有首次调用生效）
func InitEngagementManager(cfg Config, logger *zap.Logger) *EngagementManager {
	once.Do(func() {
		defaultManager = NewEngagementManager(cfg, logger)
	})
	return defaultManager
}

// GetEngagementManager 单例对局管理器（未初始化时使用默认配置）
func GetEngagementManager() *EngagementManager {
	return InitEngagementManager(DefaultConfig(), Log.Desugar())
}

// NewEngagementManager 非单例构造，便于测试
func NewEngagementManager(cfg Config, logger *zap.Logger) *EngagementManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngagementManager{engagements: make(map[string]*Engagement), cfg: cfg, logger: logger}
}

// Create 创建新对局并开始 Tick；第一个对局成为默认对局
func (m *EngagementManager) Create() *Engagement {
	e := NewEngagement(m.cfg, m.logger)
	m.mu.Lock()
	m.engagements[e.ID] = e
	if m.defaultID == "" {
		m.defaultID = e.ID
	}
	m.mu.Unlock()
	e.StartTicker()
	Log.Infof("engagement created: %s", e.ID)
	return e
}

// Get 按 id 查找；id 为空时返回默认对局（不存在则创建）
func (m *EngagementManager) Get(id string) (*Engagement, bool) {
	if id == "" {
		return m.Default(), true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engagements[id]
	return e, ok
}

// Default 默认对局，不存在时创建
func (m *EngagementManager) Default() *Engagement {
	m.mu.RLock()
	e, ok := m.engagements[m.defaultID]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	if e, ok := m.engagements[m.defaultID]; ok {
		m.mu.Unlock()
		return e
	}
	e = NewEngagement(m.cfg, m.logger)
	m.engagements[e.ID] = e
	m.defaultID = e.ID
	m.mu.Unlock()
	e.StartTicker()
	Log.Infof("default engagement created: %s", e.ID)
	return e
}

// Remove 停止并移除对局
func (m *EngagementManager) Remove(id string) error {
	m.mu.Lock()
	e, ok := m.engagements[id]
	delete(m.engagements, id)
	if m.defaultID == id {
		m.defaultID = ""
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return e.Close()
}

// List 所有对局 id
func (m *EngagementManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.engagements))
	for id := range m.engagements {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown 停止所有对局，汇总关闭错误
func (m *EngagementManager) Shutdown() error {
	m.mu.Lock()
	all := m.engagements
	m.engagements = make(map[string]*Engagement)
	m.defaultID = ""
	m.mu.Unlock()

	var err error
	for _, e := range all {
		err = multierr.Append(err, e.Close())
	}
	return err
}
