package segmentation

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/decker502/silhouette-stack/pkg/config"
)

// FrameSource 视频帧来源（摄像头）
type FrameSource interface {
	// Frame 抓取当前帧（未镜像的原始画面）
	Frame(ctx context.Context) (image.Image, error)
	// Ready 摄像头是否已就绪
	Ready() bool
}

// Segmenter 人物分割模型
type Segmenter interface {
	// Segment 返回原始帧的人物遮罩，分辨率可以低于帧
	Segment(ctx context.Context, frame image.Image) (*Mask, error)
	// Ready 模型是否已加载
	Ready() bool
}

// Camera 组合帧来源与分割模型，输出与预览画面对齐的剪影图片
type Camera struct {
	source    FrameSource
	segmenter Segmenter
	cfg       config.SegmentationConfig
}

// NewCamera 创建剪影相机
func NewCamera(source FrameSource, segmenter Segmenter, cfg config.SegmentationConfig) *Camera {
	return &Camera{source: source, segmenter: segmenter, cfg: cfg}
}

// Ready 帧来源和模型都就绪
func (c *Camera) Ready() bool {
	return c.source.Ready() && c.segmenter.Ready()
}

// Status 当前状态文字
func (c *Camera) Status() string {
	switch {
	case !c.segmenter.Ready():
		return "loading model"
	case !c.source.Ready():
		return "camera initializing"
	default:
		return "ready"
	}
}

// Capture 抓取一帧并生成剪影：分割 → 镜像 → 缩放 → 去绿 → 写 alpha
func (c *Camera) Capture(ctx context.Context) (image.Image, error) {
	frame, err := c.source.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}
	mask, err := c.segmenter.Segment(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("segment frame: %w", err)
	}
	if err := mask.Validate(); err != nil {
		return nil, fmt.Errorf("segment frame: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := frame.Bounds()
	if c.cfg.FlipHorizontal {
		mask = mask.Mirror()
		frame = MirrorImage(frame)
	}
	mask = mask.Resize(b.Dx(), b.Dy())

	refined, err := RefineGreen(mask, frame, c.cfg.GreenKey)
	if err != nil {
		return nil, err
	}
	out, err := ApplyAlpha(frame, refined)
	if err != nil {
		return nil, err
	}
	log.Printf("[Camera] Captured %dx%d silhouette, %d person pixels", b.Dx(), b.Dy(), refined.Count())
	return out, nil
}
