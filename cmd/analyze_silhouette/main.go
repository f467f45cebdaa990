// analyze_silhouette 对一张剪影 PNG 执行轮廓提取和凸分解，输出统计信息
//
// 用法:
//
//	go run ./cmd/analyze_silhouette [-out parts.png] [-size 200] <剪影.png>
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"

	"golang.org/x/image/vector"

	"github.com/decker502/silhouette-stack/internal/contour"
	"github.com/decker502/silhouette-stack/internal/decomp"
	"github.com/decker502/silhouette-stack/internal/geom"
	"github.com/decker502/silhouette-stack/pkg/imagestore"
)

// partColors 部件叠加颜色，循环使用
var partColors = []color.NRGBA{
	{R: 230, G: 80, B: 80, A: 160},
	{R: 80, G: 180, B: 230, A: 160},
	{R: 240, G: 200, B: 60, A: 160},
	{R: 120, G: 220, B: 120, A: 160},
	{R: 200, G: 120, B: 230, A: 160},
}

func main() {
	out := flag.String("out", "", "把部件叠加图写入该 PNG 文件")
	size := flag.Int("size", 200, "方块尺寸（像素），用于显示缩放后的尺寸")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("用法: go run ./cmd/analyze_silhouette [-out parts.png] [-size 200] <剪影.png>")
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("读取失败: %v", err)
	}
	img, err := imagestore.DecodePNG(data)
	if err != nil {
		log.Fatalf("解码失败: %v", err)
	}

	res := contour.Trace(img, contour.DefaultOptions())
	if res.Empty() {
		fmt.Println("没有找到剪影轮廓")
		os.Exit(2)
	}
	fmt.Printf("图片尺寸: %dx%d\n", res.ImageSize.W, res.ImageSize.H)
	fmt.Printf("区域像素: %d\n", res.Area)
	fmt.Printf("包围盒: (%d, %d) %dx%d\n", res.BoundingRect.X, res.BoundingRect.Y, res.BoundingRect.W, res.BoundingRect.H)
	fmt.Printf("质心: (%.1f, %.1f)\n", res.Centroid.X, res.Centroid.Y)
	fmt.Printf("轮廓顶点: %d\n", len(res.Points))

	parts, err := decomp.Decompose(res.Points)
	if err != nil {
		log.Fatalf("凸分解失败: %v", err)
	}
	scale := float64(*size) / float64(res.BoundingRect.W)
	fmt.Printf("凸部件: %d（缩放 %.3f）\n", len(parts), scale)
	for i, p := range parts {
		fmt.Printf("  #%d  顶点 %2d  面积 %8.1f px²  缩放后 %8.1f\n", i, len(p), geom.Area(p), geom.Area(p)*scale*scale)
	}

	if *out == "" {
		return
	}
	overlay := renderParts(img, parts)
	encoded, err := imagestore.EncodePNG(overlay)
	if err != nil {
		log.Fatalf("编码失败: %v", err)
	}
	if err := os.WriteFile(*out, encoded, 0644); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	fmt.Printf("叠加图已写入: %s\n", *out)
}

// renderParts 在原图上用不同颜色填充每个凸部件
func renderParts(img image.Image, parts []geom.Polygon) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)

	for i, part := range parts {
		if len(part) < 3 {
			continue
		}
		r := vector.NewRasterizer(b.Dx(), b.Dy())
		r.MoveTo(float32(part[0].X), float32(part[0].Y))
		for _, p := range part[1:] {
			r.LineTo(float32(p.X), float32(p.Y))
		}
		r.ClosePath()
		r.Draw(dst, dst.Bounds(), &image.Uniform{C: partColors[i%len(partColors)]}, image.Point{})
	}
	return dst
}
