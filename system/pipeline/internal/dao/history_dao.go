package dao

import (
	"context"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/mvc"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
)

// HistoryDao 构建历史数据访问层，只追加写入
type HistoryDao struct {
	mvc.IBaseDao[model.BuildHistoryRecord]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewHistoryDao 创建构建历史 DAO 实例
func NewHistoryDao(db *gorm.DB, log *logger.Log) *HistoryDao {
	return &HistoryDao{
		IBaseDao: mvc.NewGormDao[model.BuildHistoryRecord](db),
		log:      log.WithEntryName("HistoryDao"),
		err:      errorc.NewErrorBuilder("HistoryDao"),
		db:       db,
	}
}

// GetByBuildID 查询 (component, branch, build) 对应的历史记录，不存在时返回 nil
func (d *HistoryDao) GetByBuildID(ctx context.Context, componentID, branchID int64, buildID string) (*model.BuildHistoryRecord, error) {
	var record model.BuildHistoryRecord
	err := d.db.WithContext(ctx).
		Where("component_id = ? AND branch_id = ? AND build_id = ?", componentID, branchID, buildID).
		First(&record).Error
	if err != nil {
		if errorc.IsNotFound(err) {
			return nil, nil
		}
		return nil, d.err.New("查询构建历史失败", err).DB()
	}
	return &record, nil
}

// ListByTarget 按构建时间倒序查询 (component, branch) 的全部历史
// 制品自带构建时间缺失时退回记录写入时间
func (d *HistoryDao) ListByTarget(ctx context.Context, componentID, branchID int64) ([]*model.BuildHistoryRecord, error) {
	var list []*model.BuildHistoryRecord
	err := d.db.WithContext(ctx).
		Where("component_id = ? AND branch_id = ?", componentID, branchID).
		Order("COALESCE(built_at, created_at) DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询构建历史列表失败", err).DB()
	}
	return list, nil
}

// MarkPurged 标记历史记录的磁盘制品已被清理
func (d *HistoryDao) MarkPurged(ctx context.Context, id int64) error {
	err := d.db.WithContext(ctx).
		Model(&model.BuildHistoryRecord{}).
		Where("id = ?", id).
		UpdateColumn("purged", true).Error
	if err != nil {
		return d.err.New("标记历史记录清理状态失败", err).DB()
	}
	return nil
}
