package app

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTarGz 构造一个测试用 tar.gz 归档
func buildTarGz(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	archivePath := filepath.Join(dir, "artifact-1.0.0.tar.gz")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return archivePath
}

// buildZip 构造一个测试用 zip 归档
func buildZip(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	archivePath := filepath.Join(dir, "artifact-1.0.0.zip")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return archivePath
}

// TestExtractArchive_TarGz 测试 tar.gz 解包
func TestExtractArchive_TarGz(t *testing.T) {
	archive := buildTarGz(t, t.TempDir(), map[string]string{
		"app.exe":      "binary",
		"conf/db.json": `{"Host":"localhost"}`,
	})
	target := filepath.Join(t.TempDir(), "extract")

	require.NoError(t, ExtractArchive(archive, target))

	content, err := os.ReadFile(filepath.Join(target, "conf", "db.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"Host":"localhost"}`, string(content))
}

// TestExtractArchive_Zip 测试 zip 解包
func TestExtractArchive_Zip(t *testing.T) {
	archive := buildZip(t, t.TempDir(), map[string]string{
		"app.exe":     "binary",
		"bin/app.dll": "lib",
	})
	target := filepath.Join(t.TempDir(), "extract")

	require.NoError(t, ExtractArchive(archive, target))

	content, err := os.ReadFile(filepath.Join(target, "bin", "app.dll"))
	require.NoError(t, err)
	assert.Equal(t, "lib", string(content))
}

// TestExtractArchive_ClearsPriorBuild 测试解压目录只保留最近一次构建的内容
func TestExtractArchive_ClearsPriorBuild(t *testing.T) {
	target := filepath.Join(t.TempDir(), "extract")
	require.NoError(t, os.MkdirAll(target, 0755))
	stale := filepath.Join(target, "old-build.txt")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))

	archive := buildZip(t, t.TempDir(), map[string]string{"new.txt": "new"})
	require.NoError(t, ExtractArchive(archive, target))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "上一次构建的残留文件必须被清掉")
	_, err = os.Stat(filepath.Join(target, "new.txt"))
	assert.NoError(t, err)
}

// TestExtractArchive_PathTraversal 测试目录穿越条目被拒绝
func TestExtractArchive_PathTraversal(t *testing.T) {
	archive := buildTarGz(t, t.TempDir(), map[string]string{
		"../escape.txt": "bad",
	})
	target := filepath.Join(t.TempDir(), "extract")

	err := ExtractArchive(archive, target)
	assert.Error(t, err, "包含 ../ 的条目必须报错")
}

// TestExtractArchive_UnsupportedFormat 测试不支持的归档格式
func TestExtractArchive_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "artifact.rar")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0644))

	err := ExtractArchive(plain, filepath.Join(dir, "extract"))
	assert.Error(t, err)
}
