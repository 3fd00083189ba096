package service

import (
	"context"
	"time"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/system/pipeline/internal/dao"
	"msifactory/system/pipeline/internal/model"
)

// PackageJobService 打包任务服务，维护 pending → running → {succeeded, failed} 状态机
type PackageJobService struct {
	dao *dao.PackageJobDao
	log *logger.Log
	err *errorc.ErrorBuilder
}

// NewPackageJobService 创建打包任务服务实例
func NewPackageJobService(dao *dao.PackageJobDao, log *logger.Log) *PackageJobService {
	return &PackageJobService{
		dao: dao,
		log: log.WithEntryName("PackageJobService"),
		err: errorc.NewErrorBuilder("PackageJobService"),
	}
}

// Create 创建一条 pending 状态的打包任务
func (s *PackageJobService) Create(ctx context.Context, job *model.PackageJob) error {
	job.Status = model.PackageJobStatusPending
	return s.dao.Create(ctx, job)
}

// FindByID 根据 ID 查询打包任务
func (s *PackageJobService) FindByID(ctx context.Context, id int64) (*model.PackageJob, error) {
	return s.dao.FindById(ctx, id)
}

// ListByComponent 查询组件最近的打包任务
func (s *PackageJobService) ListByComponent(ctx context.Context, componentID int64, limit int) ([]*model.PackageJob, error) {
	return s.dao.ListByComponentID(ctx, componentID, limit)
}

// ListByBuild 查询某次构建下全部环境的打包任务
func (s *PackageJobService) ListByBuild(ctx context.Context, componentID int64, buildID string) ([]*model.PackageJob, error) {
	return s.dao.ListByBuild(ctx, componentID, buildID)
}

// MarkRunning 将任务置为 running 并记录开始时间
func (s *PackageJobService) MarkRunning(ctx context.Context, id int64) error {
	return s.dao.UpdateStatus(ctx, id, model.PackageJobStatusRunning, map[string]interface{}{
		"started_at": time.Now(),
	})
}

// MarkSucceeded 将任务置为 succeeded 并记录产出路径
func (s *PackageJobService) MarkSucceeded(ctx context.Context, id int64, outputPath string) error {
	return s.dao.UpdateStatus(ctx, id, model.PackageJobStatusSucceeded, map[string]interface{}{
		"finished_at": time.Now(),
		"output_path": outputPath,
	})
}

// MarkFailed 将任务置为 failed 并完整保留失败原因
func (s *PackageJobService) MarkFailed(ctx context.Context, id int64, errMessage string) error {
	return s.dao.UpdateStatus(ctx, id, model.PackageJobStatusFailed, map[string]interface{}{
		"finished_at":   time.Now(),
		"error_message": errMessage,
	})
}
