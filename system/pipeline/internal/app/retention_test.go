package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"msifactory/system/pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedHistory 写入一条带真实落盘制品的构建历史
func seedHistory(t *testing.T, a *App, componentID, branchID int64, buildID string, builtAt time.Time, dir string) string {
	t.Helper()
	archive := filepath.Join(dir, buildID)
	require.NoError(t, os.WriteFile(archive, []byte("archive"), 0o644))
	history := &model.BuildHistoryRecord{
		ComponentID:  componentID,
		BranchID:     branchID,
		BuildID:      buildID,
		DownloadPath: archive,
		Checksum:     "abc123",
		BuiltAt:      &builtAt,
	}
	require.NoError(t, a.HistoryDao.Create(context.Background(), history))
	return archive
}

// TestApplyRetention_KeepsNewestN 保留策略只留下构建时间最新的 N 条，其余清盘并标记
func TestApplyRetention_KeepsNewestN(t *testing.T) {
	a := newTestApp(t, "")
	a.Cfg.KeepBuilds = 3
	component, branch := seedTarget(t, a, "com/acme/billing")
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	archives := make(map[string]string, 5)
	// 乱序写入，保留顺序必须由制品构建时间决定而不是入库顺序
	for _, idx := range []int{2, 4, 0, 3, 1} {
		buildID := fmt.Sprintf("billing-1.0.%d.zip", idx)
		archives[buildID] = seedHistory(t, a, component.ID, branch.ID, buildID, base.Add(time.Duration(idx)*time.Hour), dir)
	}

	a.applyRetention(ctx, component, branch)

	histories, err := a.TrackingSvc.ListHistory(ctx, component.ID, branch.ID)
	require.NoError(t, err)
	require.Len(t, histories, 5)

	kept := map[string]bool{"billing-1.0.4.zip": true, "billing-1.0.3.zip": true, "billing-1.0.2.zip": true}
	for _, h := range histories {
		if kept[h.BuildID] {
			assert.False(t, h.Purged, "最新的 %s 不应被清理", h.BuildID)
			assert.FileExists(t, archives[h.BuildID])
		} else {
			assert.True(t, h.Purged, "过期的 %s 应被清理", h.BuildID)
			assert.NoFileExists(t, archives[h.BuildID])
		}
	}

	// 重复执行不报错也不会改变保留集合
	a.applyRetention(ctx, component, branch)
	histories, err = a.TrackingSvc.ListHistory(ctx, component.ID, branch.ID)
	require.NoError(t, err)
	unpurged := 0
	for _, h := range histories {
		if !h.Purged {
			unpurged++
		}
	}
	assert.Equal(t, 3, unpurged)
}

// TestApplyRetention_UnderLimit 未超过保留上限时不做任何清理
func TestApplyRetention_UnderLimit(t *testing.T) {
	a := newTestApp(t, "")
	a.Cfg.KeepBuilds = 5
	component, branch := seedTarget(t, a, "com/acme/billing")
	ctx := context.Background()

	dir := t.TempDir()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedHistory(t, a, component.ID, branch.ID, fmt.Sprintf("billing-1.0.%d.zip", i), base.Add(time.Duration(i)*time.Hour), dir)
	}

	a.applyRetention(ctx, component, branch)

	histories, err := a.TrackingSvc.ListHistory(ctx, component.ID, branch.ID)
	require.NoError(t, err)
	for _, h := range histories {
		assert.False(t, h.Purged)
	}
}

// TestListHistory_OrderedByBuildTime 历史按制品构建时间倒序返回
func TestListHistory_OrderedByBuildTime(t *testing.T) {
	a := newTestApp(t, "")
	component, branch := seedTarget(t, a, "com/acme/billing")
	ctx := context.Background()

	dir := t.TempDir()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, idx := range []int{1, 0, 2} {
		seedHistory(t, a, component.ID, branch.ID, fmt.Sprintf("billing-1.0.%d.zip", idx), base.Add(time.Duration(idx)*time.Hour), dir)
	}

	histories, err := a.TrackingSvc.ListHistory(ctx, component.ID, branch.ID)
	require.NoError(t, err)
	require.Len(t, histories, 3)
	assert.Equal(t, "billing-1.0.2.zip", histories[0].BuildID)
	assert.Equal(t, "billing-1.0.1.zip", histories[1].BuildID)
	assert.Equal(t, "billing-1.0.0.zip", histories[2].BuildID)
}
