package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 玩家设置
// 设置是全局的，与关卡无关
type GameSettings struct {
	// BlockSize 剪影方块的显示宽度（像素）
	BlockSize int `yaml:"blockSize"`
	// AutoCapture 是否开启自动拍摄循环
	AutoCapture bool `yaml:"autoCapture"`
	// Stage 上次游玩的关卡
	Stage string `yaml:"stage"`

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		BlockSize:   200,
		AutoCapture: true,
		Stage:       "1",
		Fullscreen:  false,
	}
}

// SettingsManager 设置管理器
// 负责游戏设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings  // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 如果加载设置失败返回错误（不影响创建）
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置；gdataManager 为 nil 或没有存档时使用默认设置
func (sm *SettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	// 检查设置文件是否存在
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		// 文件不存在，使用默认设置
		sm.settings = DefaultSettings()
		return nil
	}

	// 从 gdata 加载数据
	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		// 文件存在但加载失败，使用默认设置
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 反序列化 YAML 数据
	// 从默认值开始，旧版本文件缺少的字段保持默认
	loadedSettings := *DefaultSettings()
	if err := yaml.Unmarshal(data, &loadedSettings); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	sm.settings = &loadedSettings
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 把设置写入 gdata；降级模式下什么都不做
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 当前设置（可修改，修改后需 Save）
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetBlockSize 设置方块尺寸，限制在 [lo, hi] 内并对齐到 step，返回实际生效的尺寸
func (sm *SettingsManager) SetBlockSize(size, lo, hi, step int) int {
	if step > 0 && size > lo {
		size = lo + ((size-lo)/step)*step
	}
	size = max(lo, min(size, hi))
	sm.settings.BlockSize = size
	return size
}

// SetAutoCapture 设置自动拍摄开关
func (sm *SettingsManager) SetAutoCapture(enabled bool) {
	sm.settings.AutoCapture = enabled
}

// SetStage 记录当前关卡
func (sm *SettingsManager) SetStage(id string) {
	sm.settings.Stage = id
}

// SetFullscreen 设置启动时是否全屏
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}
