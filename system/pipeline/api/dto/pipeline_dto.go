package dto

import "time"

// BuildStatusDTO 构建跟踪状态对外视图
type BuildStatusDTO struct {
	ComponentID    int64      `json:"componentId"`
	BranchID       int64      `json:"branchId"`
	LastBuildID    string     `json:"lastBuildId"`
	LastPollAt     *time.Time `json:"lastPollAt"`
	DownloadStatus string     `json:"downloadStatus"`
	ExtractStatus  string     `json:"extractStatus"`
	Checksum       string     `json:"checksum"`
	LastError      string     `json:"lastError"`
}

// PackageJobDTO 打包任务对外视图
type PackageJobDTO struct {
	ID           int64      `json:"id"`
	ComponentID  int64      `json:"componentId"`
	BranchID     int64      `json:"branchId"`
	BuildID      string     `json:"buildId"`
	Environment  string     `json:"environment"`
	Status       string     `json:"status"`
	RequestedBy  string     `json:"requestedBy"`
	StartedAt    *time.Time `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt"`
	OutputPath   string     `json:"outputPath"`
	ErrorMessage string     `json:"errorMessage"`
}

// TriggerPackageRequest 手动触发环境矩阵打包请求
type TriggerPackageRequest struct {
	ComponentID int64  `json:"componentId" validate:"required,gt=0" comment:"组件ID"`
	BranchID    int64  `json:"branchId" validate:"required,gt=0" comment:"分支ID"`
	RequestedBy string `json:"requestedBy" validate:"required,max=128" comment:"触发人"`
}
