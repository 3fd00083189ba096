package service

import (
	"context"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/model/common"
	"msifactory/system/pipeline/internal/dao"
	"msifactory/system/pipeline/internal/model"
)

// PollTarget 一个可轮询的 (组件, 分支) 对
type PollTarget struct {
	Component *model.Component
	Branch    *model.Branch
}

// TargetService 轮询目标查询服务，组件/分支/环境配置对流水线只读
type TargetService struct {
	componentDao   *dao.ComponentDao
	branchDao      *dao.BranchDao
	environmentDao *dao.EnvironmentDao
	log            *logger.Log
	err            *errorc.ErrorBuilder
}

// NewTargetService 创建轮询目标服务实例
func NewTargetService(componentDao *dao.ComponentDao, branchDao *dao.BranchDao, environmentDao *dao.EnvironmentDao, log *logger.Log) *TargetService {
	return &TargetService{
		componentDao:   componentDao,
		branchDao:      branchDao,
		environmentDao: environmentDao,
		log:            log.WithEntryName("TargetService"),
		err:            errorc.NewErrorBuilder("TargetService"),
	}
}

// ListPollTargets 列出所有启用轮询的 (组件, 分支) 对
// 组件未启用轮询时其下所有分支都不参与；分支 auto_build 不影响轮询本身
func (s *TargetService) ListPollTargets(ctx context.Context) ([]*PollTarget, error) {
	components, err := s.componentDao.ListPollEnabled(ctx)
	if err != nil {
		return nil, err
	}

	var targets []*PollTarget
	for _, component := range components {
		branches, err := s.branchDao.ListByComponentID(ctx, component.ID)
		if err != nil {
			return nil, err
		}
		for _, branch := range branches {
			targets = append(targets, &PollTarget{Component: component, Branch: branch})
		}
	}
	return targets, nil
}

// GetComponent 根据 ID 查询组件
func (s *TargetService) GetComponent(ctx context.Context, id int64) (*model.Component, error) {
	return s.componentDao.FindById(ctx, id)
}

// GetBranch 根据 ID 查询分支
func (s *TargetService) GetBranch(ctx context.Context, id int64) (*model.Branch, error) {
	return s.branchDao.FindById(ctx, id)
}

// ListEnvironments 查询组件的全部环境配置
func (s *TargetService) ListEnvironments(ctx context.Context, componentID int64) ([]*model.EnvironmentConfig, error) {
	return s.environmentDao.ListByComponentID(ctx, componentID)
}

// AutoBuildEnabled 判断分支是否开启下载后自动打包
func (s *TargetService) AutoBuildEnabled(branch *model.Branch) bool {
	return branch.AutoBuild == common.TRUE
}

// NextBuildNumber 自增并返回分支构建号
func (s *TargetService) NextBuildNumber(ctx context.Context, branchID int64) (int64, error) {
	return s.branchDao.IncrementBuildCounter(ctx, branchID)
}
