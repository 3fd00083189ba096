package model

import (
	"time"

	"msifactory/pkg/core/model/common"
)

// StageStatus 下载/解压阶段状态
type StageStatus string

const (
	// StageStatusPending 未开始或进行中
	StageStatusPending StageStatus = "pending"
	// StageStatusCompleted 已完成
	StageStatusCompleted StageStatus = "completed"
	// StageStatusFailed 已失败
	StageStatusFailed StageStatus = "failed"
)

// BuildTrackingRecord 构建跟踪记录，每个 (component, branch) 一行，只增不删
// 约束：解压状态为 completed 时下载状态必须为 completed
type BuildTrackingRecord struct {
	common.Model
	ComponentID    int64       `gorm:"not null;uniqueIndex:uk_tracking_target" json:"componentId" comment:"组件 ID"`
	BranchID       int64       `gorm:"not null;uniqueIndex:uk_tracking_target" json:"branchId" comment:"分支 ID"`
	LastBuildID    string      `gorm:"size:255" json:"lastBuildId" comment:"最近一次已知构建标识"`
	LastPollAt     *time.Time  `json:"lastPollAt" comment:"最近一次轮询时间"`
	DownloadStatus StageStatus `gorm:"size:32;not null;default:pending" json:"downloadStatus" comment:"下载状态"`
	ExtractStatus  StageStatus `gorm:"size:32;not null;default:pending" json:"extractStatus" comment:"解压状态"`
	DownloadPath   string      `gorm:"size:500" json:"downloadPath" comment:"下载落盘路径"`
	ExtractPath    string      `gorm:"size:500" json:"extractPath" comment:"解压目录路径"`
	Checksum       string      `gorm:"size:64" json:"checksum" comment:"制品 SHA256 校验和"`
	LastError      string      `gorm:"size:2000" json:"lastError" comment:"最近一次失败原因"`
}

func (BuildTrackingRecord) TableName() string {
	return "pipe_build_tracking"
}
