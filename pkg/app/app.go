// Package app 提供游戏应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/silhouette-stack/pkg/capture"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/game"
	"github.com/decker502/silhouette-stack/pkg/imagestore"
	"github.com/decker502/silhouette-stack/pkg/scenes"
	"github.com/decker502/silhouette-stack/pkg/segmentation"
	"github.com/decker502/silhouette-stack/pkg/utils"
)

// 相机模式
const (
	CameraDemo = "demo" // 合成绿幕画面
	CameraNone = "none" // 不拍摄，只处理其他程序写入图片库的图片
)

const (
	demoFrameWidth  = 320
	demoFrameHeight = 240
	demoDownscale   = 4

	// imagePollInterval 共享图片库的轮询间隔
	imagePollInterval = time.Second
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Stage 指定要加载的关卡，为空则使用上次的关卡或默认关卡
	Stage string
	// ImageDB 图片库路径，非空时覆盖配置文件和环境变量
	ImageDB string
	// Camera 相机模式，为空时使用 CameraDemo
	Camera string
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	services     *scenes.Services
	store        imagestore.Store
	watchCancel  context.CancelFunc

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gameCfg, env, err := loadConfig()
	if err != nil {
		return nil, err
	}
	stages, err := config.LoadStages()
	if err != nil {
		return nil, fmt.Errorf("关卡加载失败: %w", err)
	}

	settings, scores := openSaveData(gameCfg)
	if env.BlockSize != nil {
		b := gameCfg.Block
		settings.SetBlockSize(*env.BlockSize, b.MinSize, b.MaxSize, b.Step)
	}

	store, err := openImageStore(gameCfg, cfg.ImageDB)
	if err != nil {
		return nil, err
	}

	camera, err := newCamera(cfg.Camera, gameCfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	pipeline := capture.NewPipeline(store, capture.ContourOptions(gameCfg.Contour), settings.GetSettings().BlockSize)
	orch := capture.NewOrchestrator(camera, store, pipeline, capture.Options{
		Interval:      gameCfg.Capture.IntervalSeconds,
		ErrorRecovery: gameCfg.Capture.ErrorRecoverySeconds,
	})

	watchCtx, watchCancel := context.WithCancel(context.Background())
	poll := time.Duration(0)
	if _, ok := store.(*imagestore.SQLiteStore); ok {
		poll = imagePollInterval
	}
	if err := orch.Watch(watchCtx, store, poll); err != nil {
		watchCancel()
		orch.Close()
		store.Close()
		return nil, err
	}

	svc := &scenes.Services{
		Config:       gameCfg,
		Stages:       stages,
		Orchestrator: orch,
		Pipeline:     pipeline,
		Scores:       scores,
		Settings:     settings,
		Input:        utils.NewKeyboardInput(),
		Rand:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(func(stageID string) (game.Scene, error) {
		s, err := scenes.NewGameScene(svc, sceneManager, stageID)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	var envStage string
	if env.Stage != nil {
		envStage = *env.Stage
	}
	stageID := pickStage(stages, cfg.Stage, envStage, settings.GetSettings().Stage, gameCfg.DefaultStage)
	log.Printf("[App] Starting stage: %s", stageID)
	if err := sceneManager.LoadStage(stageID); err != nil {
		watchCancel()
		orch.Close()
		store.Close()
		return nil, err
	}

	if settings.GetSettings().Fullscreen && !utils.IsMobile() {
		ebiten.SetFullscreen(true)
	}

	return &App{
		sceneManager: sceneManager,
		services:     svc,
		store:        store,
		watchCancel:  watchCancel,
	}, nil
}

// loadConfig 读取 data/game.yaml 并应用 SSTACK_* 环境变量
func loadConfig() (*config.GameConfig, config.EnvOverrides, error) {
	gameCfg, err := config.LoadGameConfig()
	if err != nil {
		return nil, config.EnvOverrides{}, fmt.Errorf("配置加载失败: %w", err)
	}
	overrides, err := config.ParseEnv()
	if err != nil {
		return nil, overrides, err
	}
	if err := overrides.Apply(gameCfg); err != nil {
		return nil, overrides, err
	}
	return gameCfg, overrides, nil
}

// openSaveData 打开设置和最高分存储；gdata 不可用时只保存在内存中
func openSaveData(cfg *config.GameConfig) (*game.SettingsManager, *game.ScoreManager) {
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	gm, err := gdata.Open(gdata.Config{AppName: cfg.Storage.AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable, settings and scores will not persist: %v", err)
		gm = nil
	}

	settings, err := game.NewSettingsManager(gm)
	if err != nil {
		log.Printf("[App] Warning: %v", err)
	}
	scores := game.NewScoreManager(gm, cfg.Session.TopScores)
	return settings, scores
}

// openImageStore 打开图片库；路径为空时使用内存存储
func openImageStore(cfg *config.GameConfig, override string) (imagestore.Store, error) {
	path := cfg.Storage.ImageDB
	if override != "" {
		path = override
	}
	if path == "" {
		log.Printf("[App] Image store: memory")
		return imagestore.NewMemoryStore(), nil
	}

	if base := utils.GetStoragePath(); base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(base, "saves", path)
	}
	store, err := imagestore.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("图片库打开失败: %w", err)
	}
	log.Printf("[App] Image store: %s", path)
	return store, nil
}

// errNoCamera 无相机模式下不会主动拍摄
var errNoCamera = errors.New("no camera")

// storeOnlyCamera 无相机模式：从不就绪，循环只处理图片库中的新图片
type storeOnlyCamera struct{}

func (storeOnlyCamera) Ready() bool    { return false }
func (storeOnlyCamera) Status() string { return "no camera, watching image store" }
func (storeOnlyCamera) Capture(ctx context.Context) (image.Image, error) {
	return nil, errNoCamera
}

// newCamera 按模式创建相机
func newCamera(mode string, cfg *config.GameConfig) (capture.Camera, error) {
	switch mode {
	case "", CameraDemo:
		src := segmentation.NewDemoSource(demoFrameWidth, demoFrameHeight)
		seg := &segmentation.DemoSegmenter{Source: src, Downscale: demoDownscale}
		return segmentation.NewCamera(src, seg, cfg.Segmentation), nil
	case CameraNone:
		return storeOnlyCamera{}, nil
	default:
		return nil, fmt.Errorf("unknown camera mode %q (want %s or %s)", mode, CameraDemo, CameraNone)
	}
}

// pickStage 按优先级（命令行、环境变量、上次的关卡、配置默认值）选出第一个存在的关卡
func pickStage(stages *config.StageSet, candidates ...string) string {
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, ok := stages.Get(id); ok {
			return id
		}
		log.Printf("[App] Warning: unknown stage %q, ignored", id)
	}
	return stages.IDs()[0]
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 退出全屏后需要等待几帧才能正确设置窗口大小
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) && !utils.IsMobile() {
		a.toggleFullscreen()
	}

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))

	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

func (a *App) toggleFullscreen() {
	fullscreen := !ebiten.IsFullscreen()
	ebiten.SetFullscreen(fullscreen)
	a.services.Settings.SetFullscreen(fullscreen)
	if fullscreen {
		return
	}
	if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
	a.pendingWindowSizeReset = true
	a.windowSizeResetCountdown = 3
	log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口，全屏时两侧填充黑色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Close 保存设置并释放拍摄循环和图片库
func (a *App) Close() error {
	if s, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok {
		s.SaveOnExit()
	}
	a.watchCancel()
	a.services.Orchestrator.Close()
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close image store: %w", err)
	}
	log.Printf("[App] Closed")
	return nil
}
