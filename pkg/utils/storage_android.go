//go:build android

package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// androidSavesDir gdata 和图片库共用的目录
const androidSavesDir = "saves"

// EnsureStorageDir 在 gdata 初始化前创建 /data/data/{package}/saves 并确认可写
//
// gdata 在 Android 上不会预先创建子目录。
func EnsureStorageDir() error {
	base := GetStoragePath()
	if base == "" {
		return errors.New("cannot detect android package name")
	}
	dir := filepath.Join(base, androidSavesDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, nil, 0644); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return os.Remove(testFile)
}

// GetStoragePath 应用私有目录 /data/data/{package}；无法识别包名时返回空字符串
func GetStoragePath() string {
	// cmdline 以 NUL 分隔，第一个字段是包名
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return ""
	}
	name, _, _ := bytes.Cut(data, []byte{0})
	name = bytes.TrimSpace(name)
	if len(name) == 0 {
		return ""
	}
	return filepath.Join("/data/data", string(name))
}
