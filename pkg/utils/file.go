package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteContentToFile 将内容写入指定文件并返回文件的绝对路径
// filename: 文件名称
// content: 要写入的内容（字节数组）
// perm: 文件权限，如果为0则默认使用0644
// 返回值: 文件的绝对路径和可能的错误
func WriteContentToFile(filename string, content []byte, perm os.FileMode) (string, error) {
	// 如果权限为0，设置为默认权限0644
	if perm == 0 {
		perm = 0644
	}

	// 确保目录存在
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}

	// 写入文件
	if err := os.WriteFile(filename, content, perm); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	// 获取文件的绝对路径
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return "", fmt.Errorf("获取绝对路径失败: %w", err)
	}

	return absPath, nil
}

// WriteStringToFile 将字符串内容写入指定文件并返回文件的绝对路径
// filename: 文件名称
// content: 要写入的字符串内容
// perm: 文件权限，如果为0则默认使用0644
// 返回值: 文件的绝对路径和可能的错误
func WriteStringToFile(filename string, content string, perm os.FileMode) (string, error) {
	return WriteContentToFile(filename, []byte(content), perm)
}

// CopyDir 递归复制目录树，保留文件权限
// src: 源目录
// dst: 目标目录，不存在时会自动创建
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("读取源目录失败: %w", err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("源路径不是目录: %s", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return fmt.Errorf("创建目标目录失败: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("遍历源目录失败: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// copyFile 复制单个文件并保留原始权限
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("读取源文件失败: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("打开源文件失败: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("创建目标文件失败: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("复制文件内容失败: %w", err)
	}

	return nil
}

// ClearDir 清空目录内容但保留目录本身，目录不存在时自动创建
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0755)
		}
		return fmt.Errorf("读取目录失败: %w", err)
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("删除目录内容失败: %w", err)
		}
	}

	return nil
}

// FileSHA256 计算文件内容的SHA256摘要，返回十六进制字符串
func FileSHA256(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("计算摘要失败: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// PathExists 判断路径是否存在
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
