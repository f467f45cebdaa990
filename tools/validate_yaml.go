// validate_yaml 校验 data/game.yaml 和 data/stages/*.yaml
//
// 用法（在项目根目录）:
//
//	go run ./tools
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decker502/silhouette-stack/pkg/config"
)

func main() {
	failed := 0

	cfg, err := config.LoadGameConfigFile(config.GameConfigPath)
	if err != nil {
		fmt.Printf("❌ %s: %v\n", config.GameConfigPath, err)
		failed++
	} else {
		fmt.Printf("✅ %s: tps=%d, 拍摄间隔 %ds, 默认关卡 %s\n",
			config.GameConfigPath, cfg.Physics.TPS, cfg.Capture.IntervalSeconds, cfg.DefaultStage)
	}

	files, err := filepath.Glob("data/stages/*.yaml")
	if err != nil || len(files) == 0 {
		fmt.Printf("❌ data/stages 下没有关卡文件\n")
		os.Exit(1)
	}

	var stages []*config.StageConfig
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failed++
			continue
		}
		stage, err := config.ParseStageConfig(data)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("✅ %s: 关卡 %s (%s), %d 个平台, 通关线 y=%.0f\n",
			path, stage.ID, stage.Name, len(stage.Platforms), stage.ClearLineY)
		stages = append(stages, stage)
	}

	if _, err := config.NewStageSet(stages...); err != nil {
		fmt.Printf("❌ 关卡集合: %v\n", err)
		failed++
	}
	if cfg != nil {
		found := false
		for _, s := range stages {
			found = found || s.ID == cfg.DefaultStage
		}
		if !found {
			fmt.Printf("❌ 默认关卡 %s 不存在\n", cfg.DefaultStage)
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("❌ %d 个错误\n", failed)
		os.Exit(1)
	}
}
