package dao

import (
	"context"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/model/common"
	"msifactory/pkg/core/mvc"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
)

// ComponentDao 组件数据访问层
type ComponentDao struct {
	mvc.IBaseDao[model.Component]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewComponentDao 创建组件 DAO 实例
func NewComponentDao(db *gorm.DB, log *logger.Log) *ComponentDao {
	return &ComponentDao{
		IBaseDao: mvc.NewGormDao[model.Component](db),
		log:      log.WithEntryName("ComponentDao"),
		err:      errorc.NewErrorBuilder("ComponentDao"),
		db:       db,
	}
}

// ListPollEnabled 查询所有启用轮询的组件
func (d *ComponentDao) ListPollEnabled(ctx context.Context) ([]*model.Component, error) {
	var list []*model.Component
	err := d.db.WithContext(ctx).
		Where("poll_enabled = ?", common.TRUE).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询启用轮询的组件失败", err).DB()
	}
	return list, nil
}

// GetByBuildLocationTag 根据构建目录标签查询组件
func (d *ComponentDao) GetByBuildLocationTag(ctx context.Context, tag string) (*model.Component, error) {
	var component model.Component
	err := d.db.WithContext(ctx).
		Where("build_location_tag = ?", tag).
		First(&component).Error
	if err != nil {
		if errorc.IsNotFound(err) {
			return nil, d.err.New("组件不存在", err).NotFound()
		}
		return nil, d.err.New("查询组件失败", err).DB()
	}
	return &component, nil
}
