package model

import (
	"time"

	"msifactory/pkg/core/model/common"
)

// BuildHistoryRecord 构建历史，按 (component, branch) 追加写入，供保留策略和展示使用
type BuildHistoryRecord struct {
	common.Model
	ComponentID  int64      `gorm:"not null;index:idx_history_target" json:"componentId" comment:"组件 ID"`
	BranchID     int64      `gorm:"not null;index:idx_history_target" json:"branchId" comment:"分支 ID"`
	BuildID      string     `gorm:"size:255;not null" json:"buildId" comment:"构建标识"`
	SourceURL    string     `gorm:"size:1000" json:"sourceUrl" comment:"制品下载地址"`
	DownloadPath string     `gorm:"size:500" json:"downloadPath" comment:"下载落盘路径"`
	ExtractPath  string     `gorm:"size:500" json:"extractPath" comment:"解压目录路径"`
	Size         int64      `gorm:"default:0" json:"size" comment:"制品大小（字节）"`
	Checksum     string     `gorm:"size:64" json:"checksum" comment:"SHA256 校验和"`
	Purged       bool       `gorm:"default:false" json:"purged" comment:"磁盘制品是否已被保留策略清理"`
	BuiltAt      *time.Time `json:"builtAt" comment:"制品构建时间（仓库 last-modified）"`
}

func (BuildHistoryRecord) TableName() string {
	return "pipe_build_history"
}
