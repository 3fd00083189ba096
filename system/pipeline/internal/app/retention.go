package app

import (
	"context"
	"os"

	"msifactory/system/pipeline/internal/model"
)

// applyRetention 按分支保留最近 N 次构建，清理更早构建的磁盘制品
// 删除是尽力而为：单条清理失败只记日志，不影响其余条目
func (a *App) applyRetention(ctx context.Context, component *model.Component, branch *model.Branch) {
	keep := a.Cfg.KeepBuilds
	if keep <= 0 {
		keep = 5
	}

	histories, err := a.TrackingSvc.ListHistory(ctx, component.ID, branch.ID)
	if err != nil {
		a.log.WithErr(err).WithComponent(component.ID).WithBranch(branch.Name).Warn("查询构建历史失败，本轮保留清理跳过")
		return
	}

	// 历史按构建时间倒序返回，前 keep 条保留
	if len(histories) <= keep {
		return
	}

	for _, stale := range histories[keep:] {
		if stale.Purged {
			continue
		}
		if stale.DownloadPath != "" {
			if err := os.Remove(stale.DownloadPath); err != nil && !os.IsNotExist(err) {
				a.log.WithErr(err).WithField("path", stale.DownloadPath).Warn("清理过期下载制品失败")
				continue
			}
		}
		if err := a.TrackingSvc.MarkHistoryPurged(ctx, stale.ID); err != nil {
			a.log.WithErr(err).WithField("historyId", stale.ID).Warn("标记历史清理状态失败")
			continue
		}
		a.log.WithComponent(component.ID).
			WithBranch(branch.Name).
			WithField("buildId", stale.BuildID).
			Info("过期构建制品已清理")
	}
}
