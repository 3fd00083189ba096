package dao

import (
	"context"
	"time"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/mvc"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
)

// PackageJobDao 打包任务数据访问层
type PackageJobDao struct {
	mvc.IBaseDao[model.PackageJob]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewPackageJobDao 创建打包任务 DAO 实例
func NewPackageJobDao(db *gorm.DB, log *logger.Log) *PackageJobDao {
	return &PackageJobDao{
		IBaseDao: mvc.NewGormDao[model.PackageJob](db),
		log:      log.WithEntryName("PackageJobDao"),
		err:      errorc.NewErrorBuilder("PackageJobDao"),
		db:       db,
	}
}

// ListByComponentID 按创建时间倒序查询组件的打包任务
func (d *PackageJobDao) ListByComponentID(ctx context.Context, componentID int64, limit int) ([]*model.PackageJob, error) {
	if limit <= 0 {
		limit = 50
	}
	var list []*model.PackageJob
	err := d.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询打包任务列表失败", err).DB()
	}
	return list, nil
}

// ListByBuild 查询某次构建下所有环境的打包任务
func (d *PackageJobDao) ListByBuild(ctx context.Context, componentID int64, buildID string) ([]*model.PackageJob, error) {
	var list []*model.PackageJob
	err := d.db.WithContext(ctx).
		Where("component_id = ? AND build_id = ?", componentID, buildID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询构建打包任务失败", err).DB()
	}
	return list, nil
}

// UpdateStatus 更新任务状态及相关字段
func (d *PackageJobDao) UpdateStatus(ctx context.Context, id int64, status model.PackageJobStatus, fields map[string]interface{}) error {
	values := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		values[k] = v
	}
	err := d.db.WithContext(ctx).
		Model(&model.PackageJob{}).
		Where("id = ?", id).
		Updates(values).Error
	if err != nil {
		return d.err.New("更新打包任务状态失败", err).DB()
	}
	return nil
}
