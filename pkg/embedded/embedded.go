// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包保存该文件系统，让其他包可以按 "data/..." 路径读取配置。
//
// 使用前必须调用 Init() 初始化。测试中可传入 os.DirFS 指向项目根目录。
package embedded

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

const dataPrefix = "data/"

var (
	mu     sync.RWMutex
	dataFS fs.FS
)

// ErrNotInitialized 未调用 Init 时返回
var ErrNotInitialized = fmt.Errorf("embedded package not initialized, call Init() first")

// Init 设置资源文件系统
// 必须在 main() 开始时、任何配置加载之前调用
func Init(data fs.FS) {
	mu.Lock()
	dataFS = data
	mu.Unlock()
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return dataFS != nil
}

// reset 仅供测试使用
func reset() {
	mu.Lock()
	dataFS = nil
	mu.Unlock()
}

// resolve 标准化路径并返回文件系统
func resolve(path string) (fs.FS, string, error) {
	mu.RLock()
	fsys := dataFS
	mu.RUnlock()
	if fsys == nil {
		return nil, "", ErrNotInitialized
	}

	// embed.FS 使用正斜杠
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if !strings.HasPrefix(path, dataPrefix) && path != "data" {
		return nil, "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return fsys, path, nil
}

// Open 打开文件
func Open(path string) (fs.File, error) {
	fsys, p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(p)
}

// ReadFile 读取文件内容
func ReadFile(path string) ([]byte, error) {
	fsys, p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, p)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配文件，模式必须以 "data/" 开头
func Glob(pattern string) ([]string, error) {
	fsys, p, err := resolve(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, p)
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	fsys, p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(fsys, p)
}
