package dao

import (
	"context"
	"time"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/mvc"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingDao 构建跟踪记录数据访问层
type TrackingDao struct {
	mvc.IBaseDao[model.BuildTrackingRecord]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewTrackingDao 创建构建跟踪 DAO 实例
func NewTrackingDao(db *gorm.DB, log *logger.Log) *TrackingDao {
	return &TrackingDao{
		IBaseDao: mvc.NewGormDao[model.BuildTrackingRecord](db),
		log:      log.WithEntryName("TrackingDao"),
		err:      errorc.NewErrorBuilder("TrackingDao"),
		db:       db,
	}
}

// GetByTarget 查询 (component, branch) 对应的跟踪记录，不存在时返回 nil
func (d *TrackingDao) GetByTarget(ctx context.Context, componentID, branchID int64) (*model.BuildTrackingRecord, error) {
	var record model.BuildTrackingRecord
	err := d.db.WithContext(ctx).
		Where("component_id = ? AND branch_id = ?", componentID, branchID).
		First(&record).Error
	if err != nil {
		if errorc.IsNotFound(err) {
			return nil, nil
		}
		return nil, d.err.New("查询构建跟踪记录失败", err).DB()
	}
	return &record, nil
}

// Upsert 按 (component, branch) 插入或更新跟踪记录
func (d *TrackingDao) Upsert(ctx context.Context, record *model.BuildTrackingRecord) error {
	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "component_id"}, {Name: "branch_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"last_build_id", "last_poll_at", "download_status", "extract_status",
				"download_path", "extract_path", "checksum", "last_error", "updated_at",
			}),
		}).
		Create(record).Error
	if err != nil {
		return d.err.New("写入构建跟踪记录失败", err).DB()
	}
	return nil
}

// TouchPollTime 仅更新最近轮询时间，记录不存在时插入
func (d *TrackingDao) TouchPollTime(ctx context.Context, componentID, branchID int64, at time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&model.BuildTrackingRecord{}).
		Where("component_id = ? AND branch_id = ?", componentID, branchID).
		UpdateColumn("last_poll_at", at)
	if result.Error != nil {
		return d.err.New("更新轮询时间失败", result.Error).DB()
	}
	if result.RowsAffected == 0 {
		record := &model.BuildTrackingRecord{
			ComponentID:    componentID,
			BranchID:       branchID,
			LastPollAt:     &at,
			DownloadStatus: model.StageStatusPending,
			ExtractStatus:  model.StageStatusPending,
		}
		if err := d.Upsert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// ListAll 查询所有跟踪记录
func (d *TrackingDao) ListAll(ctx context.Context) ([]*model.BuildTrackingRecord, error) {
	var list []*model.BuildTrackingRecord
	err := d.db.WithContext(ctx).
		Order("component_id ASC, branch_id ASC").
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询构建跟踪记录列表失败", err).DB()
	}
	return list, nil
}
