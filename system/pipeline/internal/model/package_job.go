package model

import (
	"time"

	"msifactory/pkg/core/model/common"
)

// PackageJobStatus 打包任务状态，succeeded/failed 为终态
type PackageJobStatus string

const (
	// PackageJobStatusPending 等待执行
	PackageJobStatusPending PackageJobStatus = "pending"
	// PackageJobStatusRunning 执行中
	PackageJobStatusRunning PackageJobStatus = "running"
	// PackageJobStatusSucceeded 执行成功
	PackageJobStatusSucceeded PackageJobStatus = "succeeded"
	// PackageJobStatusFailed 执行失败
	PackageJobStatusFailed PackageJobStatus = "failed"
)

// Terminal 判断状态是否为终态
func (s PackageJobStatus) Terminal() bool {
	return s == PackageJobStatusSucceeded || s == PackageJobStatusFailed
}

// PackageJob 打包任务，每个 (component, build, environment) 一条记录
type PackageJob struct {
	common.Model
	ComponentID   int64            `gorm:"not null;index" json:"componentId" comment:"组件 ID"`
	BranchID      int64            `gorm:"not null;index" json:"branchId" comment:"分支 ID"`
	EnvironmentID int64            `gorm:"not null;index" json:"environmentId" comment:"环境配置 ID"`
	BuildID       string           `gorm:"size:255;not null" json:"buildId" comment:"构建标识"`
	Environment   string           `gorm:"size:64;not null" json:"environment" comment:"环境名称冗余，便于展示"`
	Status        PackageJobStatus `gorm:"size:32;not null;default:pending" json:"status" comment:"任务状态"`
	RequestedBy   string           `gorm:"size:128" json:"requestedBy" comment:"触发来源：auto 或操作人标识"`
	StartedAt     *time.Time       `json:"startedAt" comment:"开始执行时间"`
	FinishedAt    *time.Time       `json:"finishedAt" comment:"结束时间"`
	OutputPath    string           `gorm:"size:500" json:"outputPath" comment:"产出安装包路径"`
	ErrorMessage  string           `gorm:"type:text" json:"errorMessage" comment:"失败原因，含编译器完整输出"`
}

func (PackageJob) TableName() string {
	return "pipe_package_job"
}
