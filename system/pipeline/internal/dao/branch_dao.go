package dao

import (
	"context"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/mvc"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
)

// BranchDao 分支数据访问层
type BranchDao struct {
	mvc.IBaseDao[model.Branch]
	log *logger.Log
	err *errorc.ErrorBuilder
	db  *gorm.DB
}

// NewBranchDao 创建分支 DAO 实例
func NewBranchDao(db *gorm.DB, log *logger.Log) *BranchDao {
	return &BranchDao{
		IBaseDao: mvc.NewGormDao[model.Branch](db),
		log:      log.WithEntryName("BranchDao"),
		err:      errorc.NewErrorBuilder("BranchDao"),
		db:       db,
	}
}

// ListByComponentID 查询组件下的所有分支
func (d *BranchDao) ListByComponentID(ctx context.Context, componentID int64) ([]*model.Branch, error) {
	var list []*model.Branch
	err := d.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, d.err.New("查询分支列表失败", err).DB()
	}
	return list, nil
}

// GetByComponentAndName 根据组件 ID 和分支名查询分支
func (d *BranchDao) GetByComponentAndName(ctx context.Context, componentID int64, name string) (*model.Branch, error) {
	var branch model.Branch
	err := d.db.WithContext(ctx).
		Where("component_id = ? AND name = ?", componentID, name).
		First(&branch).Error
	if err != nil {
		if errorc.IsNotFound(err) {
			return nil, d.err.New("分支不存在", err).NotFound()
		}
		return nil, d.err.New("查询分支失败", err).DB()
	}
	return &branch, nil
}

// IncrementBuildCounter 自增分支构建号，返回自增后的值
func (d *BranchDao) IncrementBuildCounter(ctx context.Context, branchID int64) (int64, error) {
	err := d.db.WithContext(ctx).
		Model(&model.Branch{}).
		Where("id = ?", branchID).
		UpdateColumn("build_counter", gorm.Expr("build_counter + 1")).Error
	if err != nil {
		return 0, d.err.New("自增构建号失败", err).DB()
	}

	var branch model.Branch
	if err := d.db.WithContext(ctx).First(&branch, branchID).Error; err != nil {
		return 0, d.err.New("查询自增后的构建号失败", err).DB()
	}
	return branch.BuildCounter, nil
}
