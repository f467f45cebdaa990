package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/silhouette-stack/pkg/embedded"
)

// GameConfigPath 嵌入的全局配置文件路径
const GameConfigPath = "data/game.yaml"

// GameConfig 全局游戏配置
//
// 配置文件位置: data/game.yaml
// 可被 SSTACK_* 环境变量覆盖（见 env.go）
type GameConfig struct {
	Physics      PhysicsConfig      `yaml:"physics"`
	Material     Material           `yaml:"material"`
	Capture      CaptureConfig      `yaml:"capture"`
	Session      SessionConfig      `yaml:"session"`
	Block        BlockConfig        `yaml:"block"`
	Contour      ContourConfig      `yaml:"contour"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Storage      StorageConfig      `yaml:"storage"`

	// DefaultStage 默认关卡ID
	DefaultStage string `yaml:"defaultStage"`
}

// PhysicsConfig 物理模拟参数
type PhysicsConfig struct {
	// TPS 每秒物理步数，固定步长 = 1/TPS
	TPS int `yaml:"tps"`
	// Gravity 重力加速度（像素/秒²，Y 轴向下为正）
	Gravity float64 `yaml:"gravity"`
	// LossMargin 判定出界时的容差（像素）
	LossMargin float64 `yaml:"lossMargin"`
}

// Material 可下落刚体的材质参数
type Material struct {
	Friction       float64 `yaml:"friction"`       // 动摩擦
	FrictionStatic float64 `yaml:"frictionStatic"` // 静摩擦（防止堆叠时滑落）
	FrictionAir    float64 `yaml:"frictionAir"`    // 空气阻力（每步速度衰减比例）
	Restitution    float64 `yaml:"restitution"`    // 反弹系数，接近 0
	Density        float64 `yaml:"density"`        // 密度，决定下落质量
}

// ContactFriction 物理引擎每个形状只有一个摩擦系数，取动、静摩擦中较大者，
// 使静摩擦调高时堆叠更稳
func (m Material) ContactFriction() float64 {
	return max(m.Friction, m.FrictionStatic)
}

// CaptureConfig 自动拍摄循环参数
type CaptureConfig struct {
	// IntervalSeconds 两次拍摄之间的倒计时秒数
	IntervalSeconds int `yaml:"intervalSeconds"`
	// ErrorRecoverySeconds 出错后回到 idle 前等待的秒数
	ErrorRecoverySeconds int `yaml:"errorRecoverySeconds"`
	// AutoStart 启动时是否开启自动拍摄
	AutoStart bool `yaml:"autoStart"`
}

// SessionConfig 对局参数
type SessionConfig struct {
	// RestartCountdownSeconds 失败/通关后自动重开的倒计时秒数
	RestartCountdownSeconds int `yaml:"restartCountdownSeconds"`
	// ClearHoldMs 通关条件需要持续满足的毫秒数
	ClearHoldMs int `yaml:"clearHoldMs"`
	// TopScores 保存的最高分条数
	TopScores int `yaml:"topScores"`
}

// BlockConfig 剪影显示宽度（方块尺寸）控制参数
type BlockConfig struct {
	DefaultSize int `yaml:"defaultSize"`
	MinSize     int `yaml:"minSize"`
	MaxSize     int `yaml:"maxSize"`
	Step        int `yaml:"step"`
}

// ContourConfig 轮廓提取参数
type ContourConfig struct {
	BlurRadius      int     `yaml:"blurRadius"`
	EpsilonFraction float64 `yaml:"epsilonFraction"`
	Opening         bool    `yaml:"opening"`
}

// SegmentationConfig 人物分割后处理参数
type SegmentationConfig struct {
	// FlipHorizontal 预览画面为镜像时，遮罩也需要水平翻转
	FlipHorizontal bool `yaml:"flipHorizontal"`
	// GreenKey 绿幕色键范围
	GreenKey GreenKeyConfig `yaml:"greenKey"`
}

// GreenKeyConfig HSV 绿幕范围（色相单位为度，饱和度/明度为 0~1）
type GreenKeyConfig struct {
	HMin float64 `yaml:"hMin"`
	HMax float64 `yaml:"hMax"`
	SMin float64 `yaml:"sMin"`
	VMin float64 `yaml:"vMin"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	// ImageDB SQLite 图片库路径，为空时使用内存存储
	ImageDB string `yaml:"imageDB"`
	// AppName gdata 存储使用的应用名
	AppName string `yaml:"appName"`
}

// FixedStep 固定物理步长
func (c *GameConfig) FixedStep() float64 {
	return 1.0 / float64(c.Physics.TPS)
}

// ClearHold 通关保持时长
func (c *GameConfig) ClearHold() time.Duration {
	return time.Duration(c.Session.ClearHoldMs) * time.Millisecond
}

// DefaultGameConfig 返回内置默认配置（与 data/game.yaml 保持一致）
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Physics: PhysicsConfig{TPS: 60, Gravity: 900, LossMargin: 50},
		Material: Material{
			Friction:       0.8,
			FrictionStatic: 1.0,
			FrictionAir:    0.01,
			Restitution:    0,
			Density:        0.001,
		},
		Capture: CaptureConfig{IntervalSeconds: 6, ErrorRecoverySeconds: 2, AutoStart: true},
		Session: SessionConfig{RestartCountdownSeconds: 3, ClearHoldMs: 3000, TopScores: 5},
		Block:   BlockConfig{DefaultSize: 200, MinSize: 80, MaxSize: 400, Step: 20},
		Contour: ContourConfig{BlurRadius: 1, EpsilonFraction: 0.005, Opening: true},
		Segmentation: SegmentationConfig{
			FlipHorizontal: true,
			GreenKey:       GreenKeyConfig{HMin: 70, HMax: 160, SMin: 0.25, VMin: 0.2},
		},
		Storage:      StorageConfig{AppName: "silhouette_stack"},
		DefaultStage: "1",
	}
}

// ParseGameConfig 解析 YAML 配置，未出现的字段保留默认值
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}

// LoadGameConfig 从嵌入资源加载全局配置
func LoadGameConfig() (*GameConfig, error) {
	data, err := embedded.ReadFile(GameConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// LoadGameConfigFile 从磁盘文件加载全局配置（用于本地调参）
func LoadGameConfigFile(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// Validate 验证配置有效性
func (c *GameConfig) Validate() error {
	if c.Physics.TPS <= 0 {
		return fmt.Errorf("physics.tps must be positive, got %d", c.Physics.TPS)
	}
	if c.Physics.LossMargin < 0 {
		return fmt.Errorf("physics.lossMargin must not be negative, got %.1f", c.Physics.LossMargin)
	}
	if c.Material.Density <= 0 {
		return fmt.Errorf("material.density must be positive, got %f", c.Material.Density)
	}
	if c.Material.Restitution < 0 || c.Material.Restitution > 1 {
		return fmt.Errorf("material.restitution must be in [0,1], got %f", c.Material.Restitution)
	}
	if c.Material.Friction < 0 || c.Material.FrictionStatic < 0 {
		return fmt.Errorf("material friction must not be negative, got friction=%f frictionStatic=%f",
			c.Material.Friction, c.Material.FrictionStatic)
	}
	if c.Material.FrictionAir < 0 || c.Material.FrictionAir >= 1 {
		return fmt.Errorf("material.frictionAir must be in [0,1), got %f", c.Material.FrictionAir)
	}
	if c.Capture.IntervalSeconds < 1 {
		return fmt.Errorf("capture.intervalSeconds must be at least 1, got %d", c.Capture.IntervalSeconds)
	}
	if c.Capture.ErrorRecoverySeconds < 0 {
		return fmt.Errorf("capture.errorRecoverySeconds must not be negative, got %d", c.Capture.ErrorRecoverySeconds)
	}
	if c.Session.RestartCountdownSeconds < 1 {
		return fmt.Errorf("session.restartCountdownSeconds must be at least 1, got %d", c.Session.RestartCountdownSeconds)
	}
	if c.Session.ClearHoldMs < 0 {
		return fmt.Errorf("session.clearHoldMs must not be negative, got %d", c.Session.ClearHoldMs)
	}
	if c.Session.TopScores < 1 {
		return fmt.Errorf("session.topScores must be at least 1, got %d", c.Session.TopScores)
	}
	b := c.Block
	if b.MinSize <= 0 || b.MinSize > b.MaxSize {
		return fmt.Errorf("block size range invalid: min(%d) max(%d)", b.MinSize, b.MaxSize)
	}
	if b.DefaultSize < b.MinSize || b.DefaultSize > b.MaxSize {
		return fmt.Errorf("block.defaultSize %d outside [%d,%d]", b.DefaultSize, b.MinSize, b.MaxSize)
	}
	if b.Step <= 0 {
		return fmt.Errorf("block.step must be positive, got %d", b.Step)
	}
	if c.Contour.EpsilonFraction < 0 || c.Contour.EpsilonFraction > 0.05 {
		return fmt.Errorf("contour.epsilonFraction out of range: %f", c.Contour.EpsilonFraction)
	}
	if c.Contour.BlurRadius < 0 {
		return fmt.Errorf("contour.blurRadius must not be negative, got %d", c.Contour.BlurRadius)
	}
	g := c.Segmentation.GreenKey
	if g.HMin > g.HMax {
		return fmt.Errorf("greenKey hue range invalid: min(%.1f) > max(%.1f)", g.HMin, g.HMax)
	}
	return nil
}
