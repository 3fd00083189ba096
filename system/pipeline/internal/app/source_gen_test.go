package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"msifactory/system/pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderManifest_ByComponentType 测试不同组件类型选择不同清单模板
func TestRenderManifest_ByComponentType(t *testing.T) {
	vars := ManifestVars{
		ProductName: "billing",
		DisplayName: "计费服务",
		Version:     "1.2.3.7",
		Environment: "PROD",
		InstallPath: "C:\\apps\\billing",
		ServiceName: "BillingSvc",
		ProductCode: "code-1",
	}

	service, err := RenderManifest(model.ComponentTypeService, vars)
	require.NoError(t, err)
	assert.Contains(t, service, `<WindowsService Name="BillingSvc"`, "服务类型应注册后台服务")
	assert.Contains(t, service, `Version="1.2.3.7"`)

	site, err := RenderManifest(model.ComponentTypeSite, vars)
	require.NoError(t, err)
	assert.Contains(t, site, `<WebSite Name="BillingSvc"`, "站点类型应注册独立站点")

	webapp, err := RenderManifest(model.ComponentTypeWebApp, vars)
	require.NoError(t, err)
	assert.Contains(t, webapp, `<WebApplication Site="BillingSvc"`, "Web 应用类型应挂载到站点")

	// 未知类型回退到服务模板
	unknown, err := RenderManifest(model.ComponentType("other"), vars)
	require.NoError(t, err)
	assert.Contains(t, unknown, "<WindowsService")
}

// TestEnumerateFiles_AllFilesTracked 测试每个文件都被枚举且标识唯一
func TestEnumerateFiles_AllFilesTracked(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(work, "bin", "lib"), 0755))
	files := []string{"app.exe", "bin/app.dll", "bin/lib/util.dll", "conf.json", "readme.txt"}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(work, filepath.FromSlash(f)), []byte(f), 0644))
	}

	entries, err := EnumerateFiles(work)
	require.NoError(t, err)
	assert.Len(t, entries, len(files), "任何文件都不允许被跳过")

	seen := make(map[string]bool)
	targets := make(map[string]bool)
	for _, entry := range entries {
		assert.False(t, seen[entry.ID], "文件标识不允许重复: %s", entry.ID)
		seen[entry.ID] = true
		targets[entry.Target] = true
		assert.True(t, strings.HasPrefix(entry.Source, work), "源路径应在工作副本内")
	}
	for _, f := range files {
		assert.True(t, targets[f], "缺少文件条目: %s", f)
	}
}

// TestEnumerateFiles_EmptyDir 测试空工作副本报错而不是生成空清单
func TestEnumerateFiles_EmptyDir(t *testing.T) {
	_, err := EnumerateFiles(t.TempDir())
	assert.Error(t, err)
}
