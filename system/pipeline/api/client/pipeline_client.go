package client

import (
	"context"

	errorc "msifactory/pkg/core/err"
	"msifactory/system/pipeline/api/dto"
	internalapp "msifactory/system/pipeline/internal/app"
	internalmodel "msifactory/system/pipeline/internal/model"
)

// PipelineClient 流水线组件对外客户端（进程内调用）
// 对外只暴露 api/dto，禁止泄漏 internal/model。
type PipelineClient struct {
	app *internalapp.App
	err *errorc.ErrorBuilder
}

// NewPipelineClient 创建流水线客户端实例
func NewPipelineClient(app *internalapp.App) *PipelineClient {
	return &PipelineClient{
		app: app,
		err: errorc.NewErrorBuilder("PipelineClient"),
	}
}

// GetBuildStatus 查询 (组件, 分支) 的构建跟踪状态
func (c *PipelineClient) GetBuildStatus(ctx context.Context, componentID, branchID int64) (*dto.BuildStatusDTO, error) {
	record, err := c.app.TrackingSvc.Get(ctx, componentID, branchID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, c.err.NotFound("构建跟踪记录不存在")
	}
	return &dto.BuildStatusDTO{
		ComponentID:    record.ComponentID,
		BranchID:       record.BranchID,
		LastBuildID:    record.LastBuildID,
		LastPollAt:     record.LastPollAt,
		DownloadStatus: string(record.DownloadStatus),
		ExtractStatus:  string(record.ExtractStatus),
		Checksum:       record.Checksum,
		LastError:      record.LastError,
	}, nil
}

// ListJobsByBuild 查询某次构建下全部环境的打包任务
func (c *PipelineClient) ListJobsByBuild(ctx context.Context, componentID int64, buildID string) ([]*dto.PackageJobDTO, error) {
	jobs, err := c.app.PackageJobSvc.ListByBuild(ctx, componentID, buildID)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.PackageJobDTO, 0, len(jobs))
	for _, job := range jobs {
		list = append(list, c.toJobDTO(job))
	}
	return list, nil
}

// TriggerPackaging 触发环境矩阵打包
func (c *PipelineClient) TriggerPackaging(ctx context.Context, req *dto.TriggerPackageRequest) ([]*dto.PackageJobDTO, error) {
	jobs, err := c.app.TriggerPackaging(ctx, req.ComponentID, req.BranchID, req.RequestedBy)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.PackageJobDTO, 0, len(jobs))
	for _, job := range jobs {
		list = append(list, c.toJobDTO(job))
	}
	return list, nil
}

// toJobDTO 内部模型转对外视图
func (c *PipelineClient) toJobDTO(job *internalmodel.PackageJob) *dto.PackageJobDTO {
	return &dto.PackageJobDTO{
		ID:           job.ID,
		ComponentID:  job.ComponentID,
		BranchID:     job.BranchID,
		BuildID:      job.BuildID,
		Environment:  job.Environment,
		Status:       string(job.Status),
		RequestedBy:  job.RequestedBy,
		StartedAt:    job.StartedAt,
		FinishedAt:   job.FinishedAt,
		OutputPath:   job.OutputPath,
		ErrorMessage: job.ErrorMessage,
	}
}
