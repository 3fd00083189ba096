package mvc

import (
	"context"
)

// IBaseDao 基础数据访问接口
type IBaseDao[T any] interface {
	// Create 创建实体
	Create(ctx context.Context, entity *T) error
	// CreateBatch 批量创建实体
	CreateBatch(ctx context.Context, entities []*T) error
	// DeleteById 根据ID删除
	DeleteById(ctx context.Context, id interface{}) error
	// DeleteByIds 根据ID批量删除
	DeleteByIds(ctx context.Context, ids []interface{}) (int64, error)
	// DeleteByColumn 根据列条件删除
	DeleteByColumn(ctx context.Context, column string, value interface{}) error
	// DeleteByMap 根据条件Map删除
	DeleteByMap(ctx context.Context, conditions map[string]interface{}) error
	// UpdateById 根据ID更新
	UpdateById(ctx context.Context, id interface{}, entity *T) (int64, error)
	// UpdateByColumn 根据列条件更新
	UpdateByColumn(ctx context.Context, column string, value interface{}, entity *T) (int64, error)
	// UpdateByMap 根据条件Map更新
	UpdateByMap(ctx context.Context, conditions map[string]interface{}, entity *T) (int64, error)
	// FindById 根据ID查询
	FindById(ctx context.Context, id interface{}) (*T, error)
	// FindByIds 根据ID批量查询
	FindByIds(ctx context.Context, ids []interface{}) ([]*T, error)
	// FindByColumn 根据列条件查询列表
	FindByColumn(ctx context.Context, column string, value interface{}) ([]*T, error)
	// FindOneByColumn 根据列条件查询单条
	FindOneByColumn(ctx context.Context, column string, value interface{}) (*T, error)
	// FindByMap 根据条件Map查询列表
	FindByMap(ctx context.Context, conditions map[string]interface{}) ([]*T, error)
	// FindOneByMap 根据条件Map查询单条
	FindOneByMap(ctx context.Context, conditions map[string]interface{}) (*T, error)
	// FindList 根据实体条件查询列表
	FindList(ctx context.Context, condition *T) ([]*T, error)
	// FindPage 分页查询
	FindPage(ctx context.Context, page *Page, condition *T) ([]*T, int64, error)
	// FindPageByMap 根据条件Map分页查询
	FindPageByMap(ctx context.Context, page *Page, condition map[string]interface{}) ([]*T, int64, error)
	// Count 统计数量
	Count(ctx context.Context, condition *T) (int64, error)
	// CountByMap 根据条件Map统计数量
	CountByMap(ctx context.Context, conditions map[string]interface{}) (int64, error)
	// Exists 判断是否存在
	Exists(ctx context.Context, condition *T) (bool, error)
	// ExistsByMap 根据条件Map判断是否存在
	ExistsByMap(ctx context.Context, conditions map[string]interface{}) (bool, error)
	// WithTx 设置事务
	WithTx(tx interface{}) IBaseDao[T]
}
