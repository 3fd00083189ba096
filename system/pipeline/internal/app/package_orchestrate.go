package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"msifactory/pkg/core/logger"
	"msifactory/system/pipeline/internal/model"
)

// TriggerPackaging 手动触发某 (组件, 分支) 最近一次构建的环境矩阵打包
// 解压状态未完成的构建在创建任何子进程之前就被拒绝
func (a *App) TriggerPackaging(ctx context.Context, componentID, branchID int64, requestedBy string) ([]*model.PackageJob, error) {
	component, err := a.TargetSvc.GetComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}
	branch, err := a.TargetSvc.GetBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if branch.ComponentID != component.ID {
		return nil, a.err.BadRequest("分支不属于该组件")
	}

	tracking, err := a.TrackingSvc.Get(ctx, componentID, branchID)
	if err != nil {
		return nil, err
	}
	if tracking == nil || tracking.ExtractStatus != model.StageStatusCompleted {
		return nil, a.err.BadRequest("构建尚未完成解压，无法打包")
	}

	environments, err := a.TargetSvc.ListEnvironments(ctx, componentID)
	if err != nil {
		return nil, err
	}
	if len(environments) == 0 {
		return nil, a.err.BadRequest("组件未配置目标环境")
	}

	jobs := make([]*model.PackageJob, 0, len(environments))
	for _, env := range environments {
		job := &model.PackageJob{
			ComponentID:   componentID,
			BranchID:      branchID,
			EnvironmentID: env.ID,
			BuildID:       tracking.LastBuildID,
			Environment:   env.Name,
			RequestedBy:   requestedBy,
		}
		if err := a.PackageJobSvc.Create(ctx, job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	productVersion, err := a.nextProductVersion(ctx, branch)
	if err != nil {
		return nil, err
	}

	go a.runPackagingJobs(component, branch, tracking.LastBuildID, productVersion, environments, jobs)
	return jobs, nil
}

// nextProductVersion 自增分支构建号并生成本次打包的产品版本号
// 分支记录对流水线只读，构建号是唯一允许的写入
func (a *App) nextProductVersion(ctx context.Context, branch *model.Branch) (string, error) {
	counter, err := a.TargetSvc.NextBuildNumber(ctx, branch.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d.%d", branch.VersionMajor, branch.VersionMinor, branch.VersionPatch, counter), nil
}

// runPackagingJobs 按环境并行执行一批打包任务
// 每个环境使用隔离的工作副本，单个环境失败不影响同一构建下的其他环境
func (a *App) runPackagingJobs(component *model.Component, branch *model.Branch, buildID, productVersion string, environments []*model.EnvironmentConfig, jobs []*model.PackageJob) {
	envByID := make(map[int64]*model.EnvironmentConfig, len(environments))
	for _, env := range environments {
		envByID[env.ID] = env
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		env, ok := envByID[job.EnvironmentID]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(job *model.PackageJob, env *model.EnvironmentConfig) {
			defer wg.Done()
			a.envGate <- struct{}{}
			defer func() { <-a.envGate }()
			a.runPackagingJob(context.Background(), component, branch, buildID, productVersion, env, job)
		}(job, env)
	}
	wg.Wait()
}

// runPackagingJob 执行单个 (组件, 构建, 环境) 打包任务
// 状态机 pending → running → {succeeded, failed}，running 之后的每次退出都会落库
func (a *App) runPackagingJob(ctx context.Context, component *model.Component, branch *model.Branch, buildID, productVersion string, env *model.EnvironmentConfig, job *model.PackageJob) {
	log := a.log.WithComponent(component.ID).
		WithBranch(branch.Name).
		WithField("environment", env.Name).
		WithField("jobId", job.ID)

	// 打包前复核验证：解压必须已完成，否则不创建任何子进程
	tracking, err := a.TrackingSvc.Get(ctx, component.ID, branch.ID)
	if err != nil {
		a.failJob(ctx, job.ID, fmt.Sprintf("读取构建跟踪记录失败: %v", err), log)
		return
	}
	if tracking == nil || tracking.ExtractStatus != model.StageStatusCompleted {
		a.failJob(ctx, job.ID, "构建尚未完成解压，打包被拒绝", log)
		return
	}
	// 解压目录始终只保留最新构建，任务排队期间构建被覆盖时必须放弃，
	// 否则会把新构建的文件打进旧构建标识的安装包
	if tracking.LastBuildID != buildID {
		a.failJob(ctx, job.ID, fmt.Sprintf("构建 %s 已被更新的 %s 覆盖，打包取消", buildID, tracking.LastBuildID), log)
		return
	}

	if err := a.PackageJobSvc.MarkRunning(ctx, job.ID); err != nil {
		log.WithErr(err).Error("标记任务开始执行失败")
		return
	}

	workDir := a.workDir(component, env.Name)
	if err := TransformWorkingCopy(tracking.ExtractPath, workDir, env.Overrides); err != nil {
		a.failJob(ctx, job.ID, fmt.Sprintf("环境配置转换失败: %v", err), log)
		return
	}

	sourceDir := filepath.Join(workDir, "..", "sources-"+env.Name)
	manifestPath, fileListPath, err := a.GenerateSources(component, env, productVersion, workDir, sourceDir)
	if err != nil {
		a.failJob(ctx, job.ID, fmt.Sprintf("生成打包清单失败: %v", err), log)
		return
	}

	outputPath := filepath.Join(a.outputDir(component, env.Name), fmt.Sprintf("%s-%s-%s.msi", component.Name, buildID, env.Name))
	output, err := a.InvokeCompiler(ctx, component, manifestPath, fileListPath, outputPath)
	if err != nil {
		a.failJob(ctx, job.ID, fmt.Sprintf("%v\n--- 编译器输出 ---\n%s", err, output), log)
		return
	}

	if err := a.PackageJobSvc.MarkSucceeded(ctx, job.ID, outputPath); err != nil {
		log.WithErr(err).Error("标记任务成功失败")
		return
	}
	log.WithField("output", outputPath).Info("环境安装包打包完成")
}

// failJob 将任务标记为失败并记录日志
func (a *App) failJob(ctx context.Context, jobID int64, message string, log *logger.Log) {
	if err := a.PackageJobSvc.MarkFailed(ctx, jobID, message); err != nil {
		a.log.WithErr(err).Error("标记任务失败状态失败")
		return
	}
	log.Error("打包任务失败: " + message)
}
