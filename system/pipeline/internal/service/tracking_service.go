package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/system/pipeline/internal/dao"
	"msifactory/system/pipeline/internal/model"
)

// TrackingService 构建跟踪服务
// 同一 (component, branch) 的所有写入经 keyMutex 串行化，不同目标互不阻塞；
// 下载成功时先写历史记录再把跟踪状态置为 completed，保证审计一致性
type TrackingService struct {
	trackingDao *dao.TrackingDao
	historyDao  *dao.HistoryDao
	log         *logger.Log
	err         *errorc.ErrorBuilder

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// NewTrackingService 创建构建跟踪服务实例
func NewTrackingService(trackingDao *dao.TrackingDao, historyDao *dao.HistoryDao, log *logger.Log) *TrackingService {
	return &TrackingService{
		trackingDao: trackingDao,
		historyDao:  historyDao,
		log:         log.WithEntryName("TrackingService"),
		err:         errorc.NewErrorBuilder("TrackingService"),
		keyLocks:    make(map[string]*sync.Mutex),
	}
}

// lockTarget 获取 (component, branch) 对应的互斥锁
func (s *TrackingService) lockTarget(componentID, branchID int64) *sync.Mutex {
	key := fmt.Sprintf("%d:%d", componentID, branchID)
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLocks[key] = lock
	}
	return lock
}

// Get 查询 (component, branch) 的跟踪记录，不存在时返回 nil
func (s *TrackingService) Get(ctx context.Context, componentID, branchID int64) (*model.BuildTrackingRecord, error) {
	return s.trackingDao.GetByTarget(ctx, componentID, branchID)
}

// ListAll 查询全部跟踪记录
func (s *TrackingService) ListAll(ctx context.Context) ([]*model.BuildTrackingRecord, error) {
	return s.trackingDao.ListAll(ctx)
}

// TouchPoll 无条件更新轮询时间，无论本轮是否发现新制品
func (s *TrackingService) TouchPoll(ctx context.Context, componentID, branchID int64) error {
	lock := s.lockTarget(componentID, branchID)
	lock.Lock()
	defer lock.Unlock()

	return s.trackingDao.TouchPollTime(ctx, componentID, branchID, time.Now())
}

// AlreadyDownloaded 判断制品是否已成功下载过（状态 completed 且校验和一致）
// 用于重复投递的下载事件去重，避免产生重复历史记录
func (s *TrackingService) AlreadyDownloaded(ctx context.Context, componentID, branchID int64, buildID, checksum string) (bool, error) {
	record, err := s.trackingDao.GetByTarget(ctx, componentID, branchID)
	if err != nil {
		return false, err
	}
	if record == nil || record.LastBuildID != buildID {
		return false, nil
	}
	if record.DownloadStatus != model.StageStatusCompleted {
		return false, nil
	}
	if checksum != "" && record.Checksum != "" && record.Checksum != checksum {
		return false, nil
	}
	history, err := s.historyDao.GetByBuildID(ctx, componentID, branchID, buildID)
	if err != nil {
		return false, err
	}
	return history != nil, nil
}

// RecordSuccess 记录一次成功的下载+解压
// 写入顺序固定：先追加历史记录，再把跟踪状态置为 completed
func (s *TrackingService) RecordSuccess(ctx context.Context, history *model.BuildHistoryRecord) error {
	lock := s.lockTarget(history.ComponentID, history.BranchID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.historyDao.GetByBuildID(ctx, history.ComponentID, history.BranchID, history.BuildID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := s.historyDao.Create(ctx, history); err != nil {
			return err
		}
	}

	now := time.Now()
	record := &model.BuildTrackingRecord{
		ComponentID:    history.ComponentID,
		BranchID:       history.BranchID,
		LastBuildID:    history.BuildID,
		LastPollAt:     &now,
		DownloadStatus: model.StageStatusCompleted,
		ExtractStatus:  model.StageStatusCompleted,
		DownloadPath:   history.DownloadPath,
		ExtractPath:    history.ExtractPath,
		Checksum:       history.Checksum,
		LastError:      "",
	}
	return s.trackingDao.Upsert(ctx, record)
}

// RecordFailure 记录某个阶段的失败，保留失败原因
// stage 为 download 时解压状态回到 pending；为 extract 时下载保持 completed
func (s *TrackingService) RecordFailure(ctx context.Context, componentID, branchID int64, buildID, stage string, cause error) error {
	lock := s.lockTarget(componentID, branchID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	record := &model.BuildTrackingRecord{
		ComponentID: componentID,
		BranchID:    branchID,
		LastBuildID: buildID,
		LastPollAt:  &now,
		LastError:   fmt.Sprintf("[%s] %v", stage, cause),
	}
	switch stage {
	case "extract":
		record.DownloadStatus = model.StageStatusCompleted
		record.ExtractStatus = model.StageStatusFailed
	default:
		record.DownloadStatus = model.StageStatusFailed
		record.ExtractStatus = model.StageStatusPending
	}
	return s.trackingDao.Upsert(ctx, record)
}

// ListHistory 按构建时间倒序查询构建历史
func (s *TrackingService) ListHistory(ctx context.Context, componentID, branchID int64) ([]*model.BuildHistoryRecord, error) {
	return s.historyDao.ListByTarget(ctx, componentID, branchID)
}

// MarkHistoryPurged 标记历史记录的磁盘制品已清理
func (s *TrackingService) MarkHistoryPurged(ctx context.Context, id int64) error {
	return s.historyDao.MarkPurged(ctx, id)
}
