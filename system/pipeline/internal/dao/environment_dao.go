package dao

import (
	"context"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/mvc"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
)

// EnvironmentDao 环境配置数据访问层
type EnvironmentDao struct {
	mvc.IBaseDao[model.EnvironmentConfig]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewEnvironmentDao 创建环境配置 DAO 实例
func NewEnvironmentDao(db *gorm.DB, log *logger.Log) *EnvironmentDao {
	return &EnvironmentDao{
		IBaseDao: mvc.NewGormDao[model.EnvironmentConfig](db),
		log:      log.WithEntryName("EnvironmentDao"),
		err:      errorc.NewErrorBuilder("EnvironmentDao"),
		db:       db,
	}
}

// ListByComponentID 查询组件下的全部环境配置
func (d *EnvironmentDao) ListByComponentID(ctx context.Context, componentID int64) ([]*model.EnvironmentConfig, error) {
	var list []*model.EnvironmentConfig
	err := d.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询环境配置列表失败", err).DB()
	}
	return list, nil
}
