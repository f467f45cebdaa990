package imagestore

import (
	"context"
	"sync"
)

// MemoryStore 进程内图片库，未配置数据库路径时使用
type MemoryStore struct {
	mu     sync.RWMutex
	images [][]byte // 下标 i 对应 ID i+1
	notify notifier
}

// NewMemoryStore 创建内存图片库
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put 写入图片
func (s *MemoryStore) Put(ctx context.Context, pngData []byte) (ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.images = append(s.images, append([]byte(nil), pngData...))
	id := ID(len(s.images))
	s.mu.Unlock()

	s.notify.publish(id)
	return id, nil
}

// LatestID 返回最新 ID
func (s *MemoryStore) LatestID(ctx context.Context) (ID, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.images) == 0 {
		return 0, false, nil
	}
	return ID(len(s.images)), true, nil
}

// Get 读取图片
func (s *MemoryStore) Get(ctx context.Context, id ID) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || int(id) > len(s.images) {
		return nil, false, nil
	}
	return s.images[id-1], true, nil
}

// Subscribe 订阅新图片通知
func (s *MemoryStore) Subscribe() (<-chan ID, func()) {
	return s.notify.subscribe()
}

// Close 关闭全部订阅
func (s *MemoryStore) Close() error {
	s.notify.closeAll()
	return nil
}
