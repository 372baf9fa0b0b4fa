// Package embedded 提供默认数据包的统一访问接口
//
// 数据包由 data 包编译进二进制文件。磁盘上存在同名文件时优先使用，
// 用户可以在相同相对路径放置文件来覆盖默认 schema。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const dataPrefix = "data/"

var (
	dataFS      fs.FS
	initialized bool
)

// Init 设置数据文件系统
// fsys 内的路径相对于 data 目录（"schema/particle_params.xml"）
func Init(fsys fs.FS) {
	dataFS = fsys
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 将 "data/..." 路径转换为 dataFS 内的路径
func normalize(path string) (string, error) {
	if !initialized {
		return "", fmt.Errorf("embedded package not initialized, call Init() first")
	}
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	if !strings.HasPrefix(path, dataPrefix) {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return strings.TrimPrefix(path, dataPrefix), nil
}

// Open 打开嵌入文件，路径必须以 "data/" 开头
func Open(path string) (fs.File, error) {
	key, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return dataFS.Open(key)
}

// ReadFile 读取嵌入文件，路径必须以 "data/" 开头
func ReadFile(path string) ([]byte, error) {
	key, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, key)
}

// Exists 判断数据包中是否存在 path
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配嵌入文件，结果保留 "data/" 前缀
func Glob(pattern string) ([]string, error) {
	key, err := normalize(pattern)
	if err != nil {
		return nil, err
	}
	matches, err := fs.Glob(dataFS, key)
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = dataPrefix + m
	}
	return matches, nil
}

// ReadDir 列出嵌入目录
func ReadDir(path string) ([]fs.DirEntry, error) {
	key, err := normalize(strings.TrimSuffix(path, "/") + "/")
	if err != nil {
		return nil, err
	}
	key = strings.TrimSuffix(key, "/")
	if key == "" {
		key = "."
	}
	return fs.ReadDir(dataFS, key)
}

// Resolve 磁盘上存在文件时从磁盘读取，否则从数据包读取
// 不以 "data/" 开头的路径只从磁盘读取
//
// 返回：
//   - []byte: 文件内容
//   - string: "disk" 或 "embedded"，用于诊断
//   - error: 两处都不存在该文件
func Resolve(path string) ([]byte, string, error) {
	if data, err := os.ReadFile(path); err == nil {
		return data, "disk", nil
	} else if !strings.HasPrefix(filepath.ToSlash(strings.TrimPrefix(path, "./")), dataPrefix) {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%s not found on disk or in the data pack: %w", path, err)
	}
	return data, "embedded", nil
}
