package app

import (
	"context"
	"fmt"
	"time"

	"msifactory/pkg/scheduler"
	"msifactory/system/pipeline/internal/service"
	"msifactory/system/pipeline/internal/service/repository"
)

// StartWatchers 为每个启用轮询的 (组件, 分支) 注册一个固定间隔的监听任务
// 并启动下载消费者。任务并发度由调度器的工作槽位上限约束
func (a *App) StartWatchers(ctx context.Context) error {
	a.startConsumer()

	targets, err := a.TargetSvc.ListPollTargets(ctx)
	if err != nil {
		return err
	}

	interval := time.Duration(a.Cfg.PollIntervalSeconds) * time.Second
	for _, target := range targets {
		target := target
		taskName := fmt.Sprintf("poll-%s-%s", target.Component.BuildLocationTag, repository.BranchSlug(target.Branch.Name))
		task := scheduler.NewIntervalTask(taskName, time.Now(), interval, interval, func(taskCtx context.Context) error {
			a.pollOnce(taskCtx, target)
			return nil
		})
		if err := a.scheduler.AddTask(task); err != nil {
			return err
		}
	}

	a.log.WithField("targets", len(targets)).Info("轮询监听任务已注册")
	return nil
}

// pollOnce 执行一轮轮询
// 查询失败只记录日志，等待下一轮重试，绝不让单个目标的故障影响其他监听任务
func (a *App) pollOnce(ctx context.Context, target *service.PollTarget) {
	component, branch := target.Component, target.Branch
	log := a.log.WithComponent(component.ID).WithBranch(branch.Name)

	queryPath := repository.ResolveQueryPath(component.RepositoryPath, branch.Name, branch.PathPattern)
	candidates, err := a.Repo.List(ctx, queryPath)
	if err != nil {
		log.WithErr(err).Warn("仓库查询失败，等待下一轮重试")
		a.touchPoll(ctx, component.ID, branch.ID)
		return
	}

	tracking, err := a.TrackingSvc.Get(ctx, component.ID, branch.ID)
	if err != nil {
		log.WithErr(err).Error("读取构建跟踪记录失败")
		return
	}
	lastKnown := ""
	if tracking != nil {
		lastKnown = tracking.LastBuildID
	}

	enqueued := 0
	for _, candidate := range candidates {
		if !IsNewer(candidate.FileName, lastKnown) {
			continue
		}
		event := &DownloadEvent{
			Component:  component,
			Branch:     branch,
			Descriptor: candidate,
		}
		if a.enqueueDownload(ctx, event) {
			enqueued++
		}
	}
	if enqueued > 0 {
		log.WithField("count", enqueued).Info("发现新制品，已入下载队列")
	}

	a.touchPoll(ctx, component.ID, branch.ID)
}

// touchPoll 无条件刷新轮询时间
func (a *App) touchPoll(ctx context.Context, componentID, branchID int64) {
	if err := a.TrackingSvc.TouchPoll(ctx, componentID, branchID); err != nil {
		a.log.WithErr(err).Warn("更新轮询时间失败")
	}
}
