package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsNewer_ColdStart 测试无历史构建时任何候选都算新
func TestIsNewer_ColdStart(t *testing.T) {
	assert.True(t, IsNewer("mysite-1.0.0.1.zip", ""), "冷启动应接受任何候选")
	assert.True(t, IsNewer("anything.tar.gz", ""), "冷启动应接受无版本号的文件名")
}

// TestIsNewer_VersionComparison 测试双方都能提取版本段时的比较
func TestIsNewer_VersionComparison(t *testing.T) {
	assert.True(t, IsNewer("app-1.2.3.10.zip", "1.2.3.9"), "1.2.3.10 字典序大于 1.2.3.9")
	assert.False(t, IsNewer("app-1.2.3.9.zip", "1.2.3.9"), "相同版本不算新")
	assert.False(t, IsNewer("app-1.2.2.5.zip", "1.2.3.1"), "更小的版本不算新")
}

// TestIsNewer_LexicalQuirk 测试字典序比较的已知行为："1.10" 小于 "1.9"
func TestIsNewer_LexicalQuirk(t *testing.T) {
	assert.False(t, IsNewer("app-1.10.zip", "1.9"), "字典序下 1.10 排在 1.9 之前")
	assert.True(t, IsNewer("app-1.9.zip", "1.10"), "字典序下 1.9 排在 1.10 之后")
}

// TestIsNewer_FallbackToFileName 测试任一方提取失败时退化为完整文件名比较
func TestIsNewer_FallbackToFileName(t *testing.T) {
	assert.True(t, IsNewer("build-b.zip", "build-a.zip"), "无版本段时按文件名字典序")
	assert.False(t, IsNewer("build-a.zip", "build-b.zip"))
	// 候选有版本段但历史值没有，同样走文件名比较
	assert.True(t, IsNewer("z-1.2.3.zip", "a.zip"))
}

// TestIsNewer_StrictRelation 测试关系的非自反与非对称性
func TestIsNewer_StrictRelation(t *testing.T) {
	names := []string{"app-1.2.3.zip", "app-1.2.4.zip", "nodots.zip", ""}
	for _, a := range names {
		if a != "" {
			assert.False(t, IsNewer(a, a), "自身与自身比较必须为假: %s", a)
		}
		for _, b := range names {
			if a == "" || b == "" || a == b {
				continue
			}
			if IsNewer(a, b) {
				assert.False(t, IsNewer(b, a), "不允许双向都为新: %s vs %s", a, b)
			}
		}
	}
}

// TestExtractBuildID 测试版本段提取
func TestExtractBuildID(t *testing.T) {
	id, ok := ExtractBuildID("mysite-1.2.3.45-qa.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, "1.2.3.45", id, "应提取第一个点分数字段")

	id, ok = ExtractBuildID("release-2.0.zip")
	assert.True(t, ok)
	assert.Equal(t, "2.0", id)

	_, ok = ExtractBuildID("latest.zip")
	assert.False(t, ok, "无点分数字段时提取失败")

	_, ok = ExtractBuildID("build7.zip")
	assert.False(t, ok, "单独数字不构成版本段")
}
