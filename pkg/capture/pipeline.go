package capture

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync/atomic"

	"github.com/decker502/silhouette-stack/internal/contour"
	"github.com/decker502/silhouette-stack/internal/decomp"
	"github.com/decker502/silhouette-stack/internal/geom"
	"github.com/decker502/silhouette-stack/pkg/config"
	"github.com/decker502/silhouette-stack/pkg/imagestore"
)

// ImageLoader 按 ID 读取已保存的 PNG
type ImageLoader interface {
	Get(ctx context.Context, id imagestore.ID) ([]byte, bool, error)
}

// Recognition 一张剪影图片的识别结果
//
// Parts 已按方块尺寸缩放，并以缩放后的剪影质心为原点。
type Recognition struct {
	ImageID   imagestore.ID
	Image     image.Image
	Parts     []geom.Polygon
	ImageSize geom.Size
	// Centroid 原图像素坐标中的剪影质心
	Centroid geom.Point
	// Scale 原图像素到世界坐标的缩放比例
	Scale float64
}

// Pipeline 读取图片并提取凸多边形部件
//
// Recognize 在工作 goroutine 中调用，方块尺寸可以在主循环中随时修改。
type Pipeline struct {
	loader    ImageLoader
	opts      contour.Options
	blockSize atomic.Int64
}

// ContourOptions 由配置生成轮廓提取参数
func ContourOptions(cfg config.ContourConfig) contour.Options {
	return contour.Options{
		BlurRadius:      cfg.BlurRadius,
		EpsilonFraction: cfg.EpsilonFraction,
		Opening:         cfg.Opening,
	}
}

// NewPipeline 创建识别流水线
func NewPipeline(loader ImageLoader, opts contour.Options, blockSize int) *Pipeline {
	p := &Pipeline{loader: loader, opts: opts}
	p.SetBlockSize(blockSize)
	return p
}

// SetBlockSize 设置剪影在世界中的显示宽度（像素）
func (p *Pipeline) SetBlockSize(size int) {
	p.blockSize.Store(int64(size))
}

// BlockSize 当前方块尺寸
func (p *Pipeline) BlockSize() int {
	return int(p.blockSize.Load())
}

// Recognize 读取图片 → 提取轮廓 → 缩放居中 → 凸分解
func (p *Pipeline) Recognize(ctx context.Context, id imagestore.ID) (*Recognition, error) {
	data, ok, err := p.loader.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load image %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("image %d not found: %w", id, ErrNoContour)
	}
	img, err := imagestore.DecodePNG(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := contour.Trace(img, p.opts)
	if res.Empty() || res.BoundingRect.W <= 0 {
		return nil, ErrNoContour
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := float64(p.BlockSize()) / float64(res.BoundingRect.W)
	outline := geom.Scale(geom.Translate(res.Points, res.Centroid.Mul(-1)), scale)

	parts, err := decomp.Decompose(outline)
	if err != nil {
		return nil, err
	}
	log.Printf("[Pipeline] Image %d: %d outline points, %d parts, scale %.3f",
		id, len(res.Points), len(parts), scale)

	return &Recognition{
		ImageID:   id,
		Image:     img,
		Parts:     parts,
		ImageSize: res.ImageSize,
		Centroid:  res.Centroid,
		Scale:     scale,
	}, nil
}
