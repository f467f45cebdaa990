// Package capture 驱动"拍摄 → 保存 → 识别 → 生成刚体"的自动循环
//
// 慢操作（拍摄、编码、存储、轮廓提取、凸分解）在工作 goroutine 中执行，
// 结果通过 Pump 交回游戏主循环，只有主循环会修改物理世界和会话状态。
// 同一时刻最多只有一个循环在运行，由容量为 1 的信号量保证。
package capture

import (
	"errors"

	"github.com/decker502/silhouette-stack/internal/decomp"
	"github.com/decker502/silhouette-stack/pkg/entities"
)

var (
	// ErrAcquisition 拍摄或保存失败，循环进入 error 状态
	ErrAcquisition = errors.New("capture: acquisition failed")
	// ErrNoContour 图片中没有可用的剪影轮廓，本次循环不生成刚体
	ErrNoContour = errors.New("capture: no contour found")
	// ErrBusy 已有循环在运行，本次请求被忽略
	ErrBusy = errors.New("capture: cycle already running")
	// ErrStopped 循环已停止（对局处于终局或正在重开）
	ErrStopped = errors.New("capture: orchestrator stopped")
)

// IsNoOp 判断错误是否只意味着"本次没有可生成的刚体"
// 这类错误不进入 error 状态
func IsNoOp(err error) bool {
	if errors.Is(err, ErrNoContour) || errors.Is(err, entities.ErrNoParts) {
		return true
	}
	var gerr *decomp.GeometryError
	return errors.As(err, &gerr)
}
