// Package imagestore 保存拍摄得到的剪影图片
//
// 图片以 PNG 字节保存，ID 单调递增（按写入时间排序）。
// 热路径上只有写入与读取，没有更新和删除。
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
)

// ID 图片 ID，从 1 开始
type ID int64

// Store 图片库接口
type Store interface {
	// Put 写入一张 PNG 图片并返回新 ID
	Put(ctx context.Context, pngData []byte) (ID, error)
	// LatestID 返回最新的 ID；库为空时 ok 为 false
	LatestID(ctx context.Context) (id ID, ok bool, err error)
	// Get 读取图片；不存在时 ok 为 false
	Get(ctx context.Context, id ID) (pngData []byte, ok bool, err error)
	// Subscribe 订阅新图片通知，返回的函数用于取消订阅
	Subscribe() (<-chan ID, func())
	Close() error
}

// EncodePNG 把图片编码为 PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG 解码 PNG
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// notifier 向订阅者广播新 ID
//
// 每个订阅者有一个容量为 1 的通道，只保留最新的 ID：
// 订阅者来不及读取时旧通知被覆盖，不会阻塞写入方。
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan ID
}

func (n *notifier) subscribe() (<-chan ID, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]chan ID)
	}
	key := n.next
	n.next++
	ch := make(chan ID, 1)
	n.subs[key] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[key]; ok {
			delete(n.subs, key)
			close(c)
		}
	}
	return ch, cancel
}

// publish 持锁发送；先清空缓冲再写入，因此发送不会阻塞
func (n *notifier) publish(id ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		ch <- id
	}
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key, ch := range n.subs {
		delete(n.subs, key)
		close(ch)
	}
}
