package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "SSTACK_"

// EnvOverrides 允许通过环境变量覆盖的配置项
// 未设置的变量保持为 nil，不会覆盖 YAML 中的值
type EnvOverrides struct {
	CaptureInterval  *int    `env:"CAPTURE_INTERVAL"`
	RestartCountdown *int    `env:"RESTART_COUNTDOWN"`
	ClearHoldMs      *int    `env:"CLEAR_HOLD_MS"`
	BlockSize        *int    `env:"BLOCK_SIZE"`
	ImageDB          *string `env:"IMAGE_DB"`
	Stage            *string `env:"STAGE"`
}

// ParseEnv 从环境变量读取覆盖项
func ParseEnv() (EnvOverrides, error) {
	var o EnvOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Apply 将覆盖项写入配置并重新校验
func (o EnvOverrides) Apply(cfg *GameConfig) error {
	if o.CaptureInterval != nil {
		cfg.Capture.IntervalSeconds = *o.CaptureInterval
		log.Printf("[Config] Env override: capture interval = %ds", *o.CaptureInterval)
	}
	if o.RestartCountdown != nil {
		cfg.Session.RestartCountdownSeconds = *o.RestartCountdown
		log.Printf("[Config] Env override: restart countdown = %ds", *o.RestartCountdown)
	}
	if o.ClearHoldMs != nil {
		cfg.Session.ClearHoldMs = *o.ClearHoldMs
		log.Printf("[Config] Env override: clear hold = %dms", *o.ClearHoldMs)
	}
	if o.BlockSize != nil {
		cfg.Block.DefaultSize = *o.BlockSize
		log.Printf("[Config] Env override: block size = %dpx", *o.BlockSize)
	}
	if o.ImageDB != nil {
		cfg.Storage.ImageDB = *o.ImageDB
		log.Printf("[Config] Env override: image db = %q", *o.ImageDB)
	}
	if o.Stage != nil {
		cfg.DefaultStage = *o.Stage
		log.Printf("[Config] Env override: stage = %s", *o.Stage)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config after env overrides: %w", err)
	}
	return nil
}
