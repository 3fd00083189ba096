package service

import (
	"context"
	"testing"

	"msifactory/pkg/core/logger"
	"msifactory/system/pipeline/internal/dao"
	"msifactory/system/pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestTrackingService(t *testing.T) (*TrackingService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.BuildTrackingRecord{},
		&model.BuildHistoryRecord{},
	))

	log := logger.InitLogger("error")
	svc := NewTrackingService(
		dao.NewTrackingDao(db, log),
		dao.NewHistoryDao(db, log),
		log,
	)
	return svc, db
}

func buildHistory(componentID, branchID int64, buildID string) *model.BuildHistoryRecord {
	return &model.BuildHistoryRecord{
		ComponentID:  componentID,
		BranchID:     branchID,
		BuildID:      buildID,
		SourceURL:    "http://repo.local/app/snapshots/develop/" + buildID + ".zip",
		DownloadPath: "/staging/app/downloads/develop/" + buildID + ".zip",
		ExtractPath:  "/staging/app/extract",
		Size:         1024,
		Checksum:     "abc123",
	}
}

// TestTrackingService_RecordSuccess 下载成功后历史与跟踪状态同时可见
func TestTrackingService_RecordSuccess(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSuccess(ctx, buildHistory(1, 2, "app-1.4.2.zip")))

	histories, err := svc.ListHistory(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, "app-1.4.2.zip", histories[0].BuildID)
	assert.False(t, histories[0].Purged)

	record, err := svc.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.StageStatusCompleted, record.DownloadStatus)
	assert.Equal(t, model.StageStatusCompleted, record.ExtractStatus)
	assert.Equal(t, "app-1.4.2.zip", record.LastBuildID)
	assert.Equal(t, "abc123", record.Checksum)
	assert.Empty(t, record.LastError)
}

// TestTrackingService_RecordSuccessIdempotent 同一构建重复上报不会产生重复历史
func TestTrackingService_RecordSuccessIdempotent(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSuccess(ctx, buildHistory(1, 2, "app-1.4.2.zip")))
	require.NoError(t, svc.RecordSuccess(ctx, buildHistory(1, 2, "app-1.4.2.zip")))

	histories, err := svc.ListHistory(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

// TestTrackingService_AlreadyDownloaded 去重判断覆盖构建号、状态与校验和
func TestTrackingService_AlreadyDownloaded(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	done, err := svc.AlreadyDownloaded(ctx, 1, 2, "app-1.4.2.zip", "abc123")
	require.NoError(t, err)
	assert.False(t, done, "无跟踪记录时应判定未下载")

	require.NoError(t, svc.RecordSuccess(ctx, buildHistory(1, 2, "app-1.4.2.zip")))

	done, err = svc.AlreadyDownloaded(ctx, 1, 2, "app-1.4.2.zip", "abc123")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.AlreadyDownloaded(ctx, 1, 2, "app-1.5.0.zip", "abc123")
	require.NoError(t, err)
	assert.False(t, done, "更新的构建不应被去重")

	done, err = svc.AlreadyDownloaded(ctx, 1, 2, "app-1.4.2.zip", "mismatch")
	require.NoError(t, err)
	assert.False(t, done, "校验和不一致应重新下载")
}

// TestTrackingService_RecordFailureDownload 下载失败时解压状态回到 pending
func TestTrackingService_RecordFailureDownload(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordFailure(ctx, 1, 2, "app-1.4.2.zip", "download", assert.AnError))

	record, err := svc.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.StageStatusFailed, record.DownloadStatus)
	assert.Equal(t, model.StageStatusPending, record.ExtractStatus)
	assert.Contains(t, record.LastError, "download")

	histories, err := svc.ListHistory(ctx, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, histories, "失败不应写入历史")
}

// TestTrackingService_RecordFailureExtract 解压失败时下载状态保持 completed
func TestTrackingService_RecordFailureExtract(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordFailure(ctx, 1, 2, "app-1.4.2.zip", "extract", assert.AnError))

	record, err := svc.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.StageStatusCompleted, record.DownloadStatus)
	assert.Equal(t, model.StageStatusFailed, record.ExtractStatus)
	assert.Contains(t, record.LastError, "extract")
}

// TestTrackingService_TouchPoll 轮询时间无条件更新，记录缺失时补建
func TestTrackingService_TouchPoll(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	require.NoError(t, svc.TouchPoll(ctx, 1, 2))

	record, err := svc.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.LastPollAt)
	assert.Equal(t, model.StageStatusPending, record.DownloadStatus)
	assert.Equal(t, model.StageStatusPending, record.ExtractStatus)

	first := *record.LastPollAt
	require.NoError(t, svc.TouchPoll(ctx, 1, 2))
	record, err = svc.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, record.LastPollAt.Before(first))
}

// TestTrackingService_MarkHistoryPurged 保留策略清理后历史记录被标记
func TestTrackingService_MarkHistoryPurged(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	require.NoError(t, svc.RecordSuccess(ctx, buildHistory(1, 2, "app-1.4.2.zip")))
	histories, err := svc.ListHistory(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, histories, 1)

	require.NoError(t, svc.MarkHistoryPurged(ctx, histories[0].ID))

	histories, err = svc.ListHistory(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, histories[0].Purged)
}
