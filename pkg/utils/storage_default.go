//go:build !android

package utils

// EnsureStorageDir gdata 在桌面平台会自行创建目录
func EnsureStorageDir() error {
	return nil
}

// GetStoragePath 桌面平台返回空字符串，相对路径按工作目录解析
func GetStoragePath() string {
	return ""
}
