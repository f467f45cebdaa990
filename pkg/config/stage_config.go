package config

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/silhouette-stack/pkg/embedded"
)

// StagesDir 嵌入的关卡配置目录
const StagesDir = "data/stages"

// StageConfig 关卡配置
//
// 配置文件位置: data/stages/<id>.yaml
// 所有坐标为逻辑屏幕坐标，平台坐标为矩形中心点。
type StageConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// ClearLineY 通关线：所有可下落刚体中最高的顶边 Y 小于此值即满足通关条件
	ClearLineY float64 `yaml:"clearLineY"`

	// Spawn 新刚体的出生区域
	Spawn SpawnArea `yaml:"spawn"`

	// Platforms 静态平台列表
	Platforms []PlatformConfig `yaml:"platforms"`
}

// SpawnArea 出生区域：X 在 [MinX, MaxX] 内随机，Y 固定
type SpawnArea struct {
	MinX float64 `yaml:"minX"`
	MaxX float64 `yaml:"maxX"`
	Y    float64 `yaml:"y"`
}

// Contains 判断点是否位于出生区域（Y 方向允许 tolerance 的偏差）
func (s SpawnArea) Contains(x, y, tolerance float64) bool {
	return x >= s.MinX-tolerance && x <= s.MaxX+tolerance &&
		y >= s.Y-tolerance && y <= s.Y+tolerance
}

// PlatformConfig 静态平台（矩形，中心点 + 宽高）
type PlatformConfig struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Friction float64 `yaml:"friction"`
}

// ParseStageConfig 解析单个关卡配置
func ParseStageConfig(data []byte) (*StageConfig, error) {
	var cfg StageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stage config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stage config %q: %w", cfg.ID, err)
	}
	return &cfg, nil
}

// Validate 验证关卡配置
func (c *StageConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("stage id is required")
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("stage needs at least one platform")
	}
	for i, p := range c.Platforms {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("platform %d has invalid size %.1fx%.1f", i, p.Width, p.Height)
		}
	}
	if c.Spawn.MinX > c.Spawn.MaxX {
		return fmt.Errorf("spawn range invalid: minX(%.1f) > maxX(%.1f)", c.Spawn.MinX, c.Spawn.MaxX)
	}
	if c.ClearLineY <= 0 || c.ClearLineY >= ScreenHeight {
		return fmt.Errorf("clearLineY %.1f outside screen", c.ClearLineY)
	}
	return nil
}

// StageSet 已加载的关卡集合
type StageSet struct {
	stages map[string]*StageConfig
	order  []string
}

// NewStageSet 由关卡列表构建集合（按 ID 排序）
func NewStageSet(stages ...*StageConfig) (*StageSet, error) {
	set := &StageSet{stages: make(map[string]*StageConfig)}
	for _, s := range stages {
		if _, dup := set.stages[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %q", s.ID)
		}
		set.stages[s.ID] = s
		set.order = append(set.order, s.ID)
	}
	sort.Strings(set.order)
	return set, nil
}

// LoadStages 从嵌入资源加载全部关卡配置
func LoadStages() (*StageSet, error) {
	files, err := embedded.Glob(path.Join(StagesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list stage configs: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no stage configs found in %s", StagesDir)
	}

	stages := make([]*StageConfig, 0, len(files))
	for _, f := range files {
		data, err := embedded.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		cfg, err := ParseStageConfig(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		stages = append(stages, cfg)
	}
	return NewStageSet(stages...)
}

// Get 按 ID 获取关卡
func (s *StageSet) Get(id string) (*StageConfig, bool) {
	cfg, ok := s.stages[id]
	return cfg, ok
}

// IDs 返回排序后的关卡 ID 列表
func (s *StageSet) IDs() []string {
	return append([]string(nil), s.order...)
}
