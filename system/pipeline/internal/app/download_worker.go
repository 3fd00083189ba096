package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"msifactory/system/pipeline/internal/model"
	"msifactory/system/pipeline/internal/service/repository"
)

// DownloadEvent 轮询产生的新制品下载事件
type DownloadEvent struct {
	Component  *model.Component
	Branch     *model.Branch
	Descriptor *repository.ArtifactDescriptor
}

// enqueueDownload 非阻塞投递下载事件，队列满时丢弃并告警，等待下一轮轮询重新发现
func (a *App) enqueueDownload(ctx context.Context, event *DownloadEvent) bool {
	select {
	case a.downloadCh <- event:
		return true
	default:
		a.log.WithComponent(event.Component.ID).
			WithBranch(event.Branch.Name).
			Warn("下载队列已满，事件丢弃，等待下一轮轮询")
		return false
	}
}

// startConsumer 启动唯一的下载消费者
// 单消费者保证同一组件的解压目录不会被并发写入；
// 消费者只在队列被 DrainConsumer 关闭后退出，停机前入队的事件全部会被处理
func (a *App) startConsumer() {
	a.consumerOnce.Do(func() {
		a.consumerWg.Add(1)
		go func() {
			defer a.consumerWg.Done()
			a.log.Info("下载消费者已启动")
			for event := range a.downloadCh {
				a.handleDownload(context.Background(), event)
			}
			a.log.Info("下载消费者已排空退出")
		}()
	})
}

// DrainConsumer 关闭下载队列并等待消费者处理完在途事件
// 必须在调度器停止、不再有轮询任务入队之后调用
func (a *App) DrainConsumer() {
	a.drainOnce.Do(func() {
		close(a.downloadCh)
		a.consumerWg.Wait()
	})
}

// handleDownload 处理一个下载事件：落盘、解压、写历史、更新跟踪、保留清理、触发打包
// 任何一步失败都会把失败原因落到跟踪记录上并中止后续步骤
func (a *App) handleDownload(ctx context.Context, event *DownloadEvent) {
	component, branch, descriptor := event.Component, event.Branch, event.Descriptor
	log := a.log.WithComponent(component.ID).WithBranch(branch.Name).WithField("artifact", descriptor.FileName)

	buildID, ok := ExtractBuildID(descriptor.FileName)
	if !ok {
		buildID = descriptor.FileName
	}

	// 重复投递的事件直接跳过，不产生重复历史记录
	done, err := a.TrackingSvc.AlreadyDownloaded(ctx, component.ID, branch.ID, buildID, descriptor.Checksum)
	if err != nil {
		log.WithErr(err).Error("下载去重检查失败")
		return
	}
	if done {
		log.Info("制品已下载过，跳过")
		return
	}

	downloadPath := filepath.Join(a.downloadDir(component, branch.Name), descriptor.FileName)
	extractPath := a.extractDir(component)

	size, checksum, err := a.Repo.Download(ctx, descriptor.DownloadURL, downloadPath)
	if err != nil {
		log.WithErr(err).Error("制品下载失败")
		a.recordStageFailure(ctx, component.ID, branch.ID, buildID, "download", err)
		return
	}

	// 仓库提供校验和时必须与落盘内容一致
	if descriptor.Checksum != "" && !strings.EqualFold(descriptor.Checksum, checksum) {
		err := fmt.Errorf("校验和不一致: 仓库 %s 实际 %s", descriptor.Checksum, checksum)
		log.WithErr(err).Error("制品校验失败")
		a.recordStageFailure(ctx, component.ID, branch.ID, buildID, "download", err)
		return
	}

	if err := ExtractArchive(downloadPath, extractPath); err != nil {
		log.WithErr(err).Error("制品解压失败")
		a.recordStageFailure(ctx, component.ID, branch.ID, buildID, "extract", err)
		return
	}

	history := &model.BuildHistoryRecord{
		ComponentID:  component.ID,
		BranchID:     branch.ID,
		BuildID:      buildID,
		SourceURL:    descriptor.DownloadURL,
		DownloadPath: downloadPath,
		ExtractPath:  extractPath,
		Size:         size,
		Checksum:     checksum,
	}
	if !descriptor.LastModified.IsZero() {
		t := descriptor.LastModified
		history.BuiltAt = &t
	}
	if err := a.TrackingSvc.RecordSuccess(ctx, history); err != nil {
		log.WithErr(err).Error("写入构建记录失败")
		return
	}
	log.WithField("buildId", buildID).WithField("size", size).Info("制品下载解压完成")

	a.applyRetention(ctx, component, branch)

	if a.TargetSvc.AutoBuildEnabled(branch) {
		a.enqueuePackaging(ctx, component, branch, buildID, "auto")
	}
}

// recordStageFailure 记录阶段失败，落库失败时只打日志
func (a *App) recordStageFailure(ctx context.Context, componentID, branchID int64, buildID, stage string, cause error) {
	if err := a.TrackingSvc.RecordFailure(ctx, componentID, branchID, buildID, stage, cause); err != nil {
		a.log.WithErr(err).Error("记录阶段失败状态失败")
	}
}

// enqueuePackaging 为组件的每个环境创建打包任务并异步执行
func (a *App) enqueuePackaging(ctx context.Context, component *model.Component, branch *model.Branch, buildID, requestedBy string) {
	environments, err := a.TargetSvc.ListEnvironments(ctx, component.ID)
	if err != nil {
		a.log.WithErr(err).WithComponent(component.ID).Error("查询环境配置失败，打包未触发")
		return
	}
	if len(environments) == 0 {
		a.log.WithComponent(component.ID).Info("组件未配置目标环境，跳过打包")
		return
	}

	jobs := make([]*model.PackageJob, 0, len(environments))
	for _, env := range environments {
		job := &model.PackageJob{
			ComponentID:   component.ID,
			BranchID:      branch.ID,
			EnvironmentID: env.ID,
			BuildID:       buildID,
			Environment:   env.Name,
			RequestedBy:   requestedBy,
		}
		if err := a.PackageJobSvc.Create(ctx, job); err != nil {
			a.log.WithErr(err).WithComponent(component.ID).Error("创建打包任务失败")
			continue
		}
		jobs = append(jobs, job)
	}

	productVersion, err := a.nextProductVersion(ctx, branch)
	if err != nil {
		a.log.WithErr(err).WithComponent(component.ID).Error("生成产品版本号失败，打包未触发")
		for _, job := range jobs {
			a.failJob(ctx, job.ID, fmt.Sprintf("生成产品版本号失败: %v", err), a.log)
		}
		return
	}

	go a.runPackagingJobs(component, branch, buildID, productVersion, environments, jobs)
}
