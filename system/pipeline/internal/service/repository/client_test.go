package repository

import (
	"testing"
	"time"

	"msifactory/pkg/core/config"
	"msifactory/pkg/core/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	cfg := &config.RepositoryConfig{
		BaseURL:             "https://repo.example.com/artifacts",
		Username:            "ci",
		Password:            "secret",
		QueryTimeoutSeconds: 5,
	}
	return NewClient(cfg, time.Minute, logger.InitLogger("error"))
}

// TestNormalize_FileListing 测试目录清单负载（files 形态）的归一化
func TestNormalize_FileListing(t *testing.T) {
	c := newTestClient()
	body := []byte(`{"files":[
		{"uri":"/app-1.2.3.zip","size":1024,"sha2":"abc","lastModified":"2026-08-01T10:00:00Z","folder":false},
		{"uri":"/subdir","folder":true},
		{"uri":"/readme.txt","size":10,"folder":false}
	]}`)

	list := c.normalize(body, "releases/stable")
	require.Len(t, list, 1, "目录与非归档文件都应被过滤")
	assert.Equal(t, "app-1.2.3.zip", list[0].FileName)
	assert.Equal(t, "https://repo.example.com/artifacts/releases/stable/app-1.2.3.zip", list[0].DownloadURL)
	assert.Equal(t, int64(1024), list[0].Size)
	assert.Equal(t, "abc", list[0].Checksum)
	assert.False(t, list[0].LastModified.IsZero(), "应解析 last-modified 时间戳")
}

// TestNormalize_Children 测试简单子节点负载的归一化
func TestNormalize_Children(t *testing.T) {
	c := newTestClient()
	body := []byte(`{"children":[
		{"uri":"/app-2.0.0.tar.gz","folder":false},
		{"uri":"/nested","folder":true}
	]}`)

	list := c.normalize(body, "feature-builds/feature-x")
	require.Len(t, list, 1)
	assert.Equal(t, "app-2.0.0.tar.gz", list[0].FileName)
}

// TestNormalize_QueryResults 测试结构化查询负载（results 形态）的归一化
func TestNormalize_QueryResults(t *testing.T) {
	c := newTestClient()
	body := []byte(`{"results":[
		{"name":"app-3.1.0.zip","size":2048,"sha256":"def","downloadUri":"https://cdn.example.com/app-3.1.0.zip"}
	]}`)

	list := c.normalize(body, "hotfixes/hotfix-a")
	require.Len(t, list, 1)
	assert.Equal(t, "https://cdn.example.com/app-3.1.0.zip", list[0].DownloadURL, "显式下载地址优先")
	assert.Equal(t, "def", list[0].Checksum)
}

// TestNormalize_EmptyPayload 测试空负载返回空列表而不是报错
func TestNormalize_EmptyPayload(t *testing.T) {
	c := newTestClient()
	assert.Empty(t, c.normalize([]byte(`{}`), "snapshots/develop"))
	assert.Empty(t, c.normalize([]byte(`{"files":[]}`), "snapshots/develop"))
}
