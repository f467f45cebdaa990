package scenes

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/decker502/silhouette-stack/pkg/capture"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/game"
)

var (
	backgroundColor = color.RGBA{R: 24, G: 26, B: 34, A: 255}
	overlayColor    = color.RGBA{R: 0, G: 0, B: 0, A: 150}
	clearTextColor  = color.RGBA{R: 80, G: 230, B: 120, A: 255}
	overTextColor   = color.RGBA{R: 240, G: 80, B: 80, A: 255}
	holdBarColor    = color.RGBA{R: 80, G: 200, B: 120, A: 220}
)

// hud 结果文字使用的字体
type hud struct {
	titleFace *text.GoTextFace
	bodyFace  *text.GoTextFace
}

// newHUD 加载内置字体；失败时退回 DebugPrint
func newHUD() *hud {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[GameScene] Warning: failed to load HUD font: %v", err)
		return &hud{}
	}
	return &hud{
		titleFace: &text.GoTextFace{Source: source, Size: 40},
		bodyFace:  &text.GoTextFace{Source: source, Size: 18},
	}
}

// statusLines 生成左上角 HUD 文本
func statusLines(snap game.SessionSnapshot, cs capture.CycleState, blockSize int, auto bool, stage *config.StageConfig) []string {
	lines := []string{
		fmt.Sprintf("Stage %s  %s", stage.ID, stage.Name),
		fmt.Sprintf("Score: %d", snap.BlockCount),
	}

	switch {
	case !cs.Running:
		lines = append(lines, "Capture: stopped")
	case cs.Busy:
		lines = append(lines, "Capture: "+cs.State.String())
	case cs.State == capture.StateError:
		lines = append(lines, "Capture error: "+cs.LastError)
	case auto:
		lines = append(lines, fmt.Sprintf("Next capture in %ds (%s)", cs.Countdown, cs.Status))
	default:
		lines = append(lines, fmt.Sprintf("Auto capture off (%s)", cs.Status))
	}

	lock := ""
	if auto {
		lock = " [locked]"
	}
	lines = append(lines, fmt.Sprintf("Block size: %dpx%s", blockSize, lock))

	if snap.Holding {
		lines = append(lines, fmt.Sprintf("Holding: %.1fs", snap.ClearHeld.Seconds()))
	}
	return lines
}

// resultText 终局提示文字
func resultText(snap game.SessionSnapshot) (title string, clr color.Color, ok bool) {
	switch {
	case snap.IsCleared:
		return "STAGE CLEAR!", clearTextColor, true
	case snap.IsGameOver:
		return "GAME OVER", overTextColor, true
	default:
		return "", nil, false
	}
}

// topScoreLines 最高分列表文字
func topScoreLines(entries []game.ScoreEntry) []string {
	if len(entries) == 0 {
		return []string{"No scores yet"}
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Top scores:")
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %3d  stage %s  %s", i+1, e.Score, e.Stage, e.RecordedAt.Format("01-02 15:04")))
	}
	return lines
}

func (s *GameScene) drawHUD(screen *ebiten.Image) {
	snap := s.session.Snapshot()
	cs := s.svc.Orchestrator.Snapshot()
	lines := statusLines(snap, cs, s.svc.Pipeline.BlockSize(), s.autoCapture, s.stage)
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), config.HUDMarginX, config.HUDMarginY)

	if snap.Holding {
		hold := s.svc.Config.ClearHold().Seconds()
		frac := min(snap.ClearHeld.Seconds()/hold, 1)
		vector.DrawFilledRect(screen, 0, float32(s.stage.ClearLineY)-4, float32(frac*config.ScreenWidth), 4, holdBarColor, false)
	}

	help := "SPACE capture  A auto  +/- size  R restart  1/2 stage"
	ebitenutil.DebugPrintAt(screen, help, config.HUDMarginX, config.ScreenHeight-config.HUDLineHeight-config.HUDMarginY)
}

func (s *GameScene) drawResultOverlay(screen *ebiten.Image) {
	snap := s.session.Snapshot()
	title, clr, ok := resultText(snap)
	if !ok {
		return
	}

	vector.DrawFilledRect(screen, 0, 0, config.ScreenWidth, config.ScreenHeight, overlayColor, false)

	y := float64(config.ScreenHeight) / 3
	sub := fmt.Sprintf("Score %d  -  restarting in %d", snap.BlockCount, snap.RestartCountdown)
	if s.lastRecordKept && snap.BlockCount > 0 {
		sub += "  (new top score)"
	}

	if s.hud.titleFace == nil {
		ebitenutil.DebugPrintAt(screen, title+"\n"+sub, config.ScreenWidth/4, int(y))
	} else {
		drawCentered(screen, title, s.hud.titleFace, y, clr)
		drawCentered(screen, sub, s.hud.bodyFace, y+50, color.White)
	}

	lines := topScoreLines(s.svc.Scores.Top())
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), config.ScreenWidth/4, int(y)+100)
}

// drawCentered 水平居中绘制一行文字
func drawCentered(screen *ebiten.Image, str string, face *text.GoTextFace, y float64, clr color.Color) {
	w := text.Advance(str, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate((float64(config.ScreenWidth)-w)/2, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, face, op)
}
