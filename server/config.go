package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// AimMode 模拟对手的瞄准方式
type AimMode string

const (
	AimHeadOn AimMode = "headon" // 直接瞄准当前位置
	AimLinear AimMode = "linear" // 按当前速度线性预判
)

// Config 服务与对局参数（.env / 环境变量 / 命令行）
type Config struct {
	Addr     string
	LogFile  string
	LogLevel string

	Width          float64
	Height         float64
	TicksPerSecond int
	InitialEnergy  float64 // 双方初始能量，也是 agent 的能量基线
	FireInterval   int     // 对手两次开火之间的最少 tick 数
	MinPower       float64
	MaxPower       float64
	Aim            AimMode
	Seed           int64 // 0 表示按时间取种子
}

// DefaultConfig 800x600、20 TPS
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		LogFile:        "wavesurf.log",
		LogLevel:       "info",
		Width:          800,
		Height:         600,
		TicksPerSecond: 20,
		InitialEnergy:  100,
		FireInterval:   16,
		MinPower:       0.5,
		MaxPower:       3.0,
		Aim:            AimHeadOn,
	}
}

// LoadConfig 先加载 envFile（不存在时忽略），再用 WAVESURF_* 环境变量覆盖默认值
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := DefaultConfig()
	var err error
	envString("WAVESURF_ADDR", &cfg.Addr)
	envString("WAVESURF_LOG_FILE", &cfg.LogFile)
	envString("WAVESURF_LOG_LEVEL", &cfg.LogLevel)
	err = multierr.Append(err, envFloat("WAVESURF_ARENA_WIDTH", &cfg.Width))
	err = multierr.Append(err, envFloat("WAVESURF_ARENA_HEIGHT", &cfg.Height))
	err = multierr.Append(err, envInt("WAVESURF_TPS", &cfg.TicksPerSecond))
	err = multierr.Append(err, envFloat("WAVESURF_INITIAL_ENERGY", &cfg.InitialEnergy))
	err = multierr.Append(err, envInt("WAVESURF_FIRE_INTERVAL", &cfg.FireInterval))
	err = multierr.Append(err, envFloat("WAVESURF_MIN_POWER", &cfg.MinPower))
	err = multierr.Append(err, envFloat("WAVESURF_MAX_POWER", &cfg.MaxPower))
	err = multierr.Append(err, envInt64("WAVESURF_SEED", &cfg.Seed))
	var aim string
	envString("WAVESURF_AIM", &aim)
	if aim != "" {
		cfg.Aim = AimMode(strings.ToLower(aim))
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate 汇总所有非法字段
func (c Config) Validate() error {
	var err error
	// 场地太小时墙壁平滑的 160 前瞻找不到出口
	if c.Width < 400 || c.Height < 400 {
		err = multierr.Append(err, fmt.Errorf("arena %.0fx%.0f smaller than 400x400", c.Width, c.Height))
	}
	if c.TicksPerSecond < 1 || c.TicksPerSecond > 1000 {
		err = multierr.Append(err, fmt.Errorf("ticks per second %d out of [1,1000]", c.TicksPerSecond))
	}
	if c.InitialEnergy <= 0 {
		err = multierr.Append(err, fmt.Errorf("initial energy must be positive, got %f", c.InitialEnergy))
	}
	if c.FireInterval < 1 {
		err = multierr.Append(err, fmt.Errorf("fire interval must be >= 1, got %d", c.FireInterval))
	}
	if c.MinPower < 0.1 || c.MaxPower > 3 || c.MinPower > c.MaxPower {
		err = multierr.Append(err, fmt.Errorf("power range [%.2f,%.2f] not within [0.1,3]", c.MinPower, c.MaxPower))
	}
	if c.Aim != AimHeadOn && c.Aim != AimLinear {
		err = multierr.Append(err, fmt.Errorf("unknown aim mode %q", c.Aim))
	}
	return err
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// ConfigPatch 管理接口的部分更新载荷，nil 字段保持不变
type ConfigPatch struct {
	FireInterval *int     `json:"fireInterval,omitempty"`
	MinPower     *float64 `json:"minPower,omitempty"`
	MaxPower     *float64 `json:"maxPower,omitempty"`
	Aim          *string  `json:"aim,omitempty"`
}

// Apply 返回应用补丁后的新配置（未校验）
func (p ConfigPatch) Apply(c Config) Config {
	if p.FireInterval != nil {
		c.FireInterval = *p.FireInterval
	}
	if p.MinPower != nil {
		c.MinPower = *p.MinPower
	}
	if p.MaxPower != nil {
		c.MaxPower = *p.MaxPower
	}
	if p.Aim != nil {
		c.Aim = AimMode(strings.ToLower(*p.Aim))
	}
	return c
}
