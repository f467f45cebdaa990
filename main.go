package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/silhouette-stack/pkg/app"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/embedded"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	stage := flag.String("stage", "", "要加载的关卡ID（如 1、2）")
	images := flag.String("images", "", "SQLite 图片库路径，为空时使用配置或内存存储")
	camera := flag.String("camera", app.CameraDemo, "相机模式: demo（合成画面）或 none（只处理图片库中的新图片）")
	flag.Parse()

	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Stage:   *stage,
		ImageDB: *images,
		Camera:  *camera,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "游戏初始化失败: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Silhouette Stack")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	runErr := ebiten.RunGame(gameApp)
	if err := gameApp.Close(); err != nil {
		log.Printf("[Main] Warning: %v", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		os.Exit(1)
	}
}
