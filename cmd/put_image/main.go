// put_image 把剪影 PNG 写入共享的 SQLite 图片库
//
// 游戏以 --camera none --images <库> 运行时，会为每张新写入的图片生成一个方块。
//
// 用法:
//
//	go run ./cmd/put_image -db images.db a.png b.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/silhouette-stack/pkg/imagestore"
)

func main() {
	dbPath := flag.String("db", "", "SQLite 图片库路径")
	flag.Parse()
	if *dbPath == "" || flag.NArg() == 0 {
		fmt.Println("用法: go run ./cmd/put_image -db images.db <剪影.png>...")
		os.Exit(1)
	}

	store, err := imagestore.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatalf("打开图片库失败: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, path := range flag.Args() {
		id, err := putFile(ctx, store, path)
		if err != nil {
			log.Printf("跳过 %s: %v", path, err)
			continue
		}
		fmt.Printf("%s -> id %d\n", path, id)
	}
}

// putFile 校验文件是可解码的 PNG 后写入
func putFile(ctx context.Context, store imagestore.Store, path string) (imagestore.ID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if _, err := imagestore.DecodePNG(data); err != nil {
		return 0, err
	}
	return store.Put(ctx, data)
}
