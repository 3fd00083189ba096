package model

import (
	"msifactory/pkg/core/model/common"
)

// EnvironmentConfig 组件在某个目标环境下的打包配置，流水线只读
type EnvironmentConfig struct {
	common.Model
	ComponentID int64       `gorm:"not null;uniqueIndex:uk_component_env" json:"componentId" comment:"组件 ID"`
	Name        string      `gorm:"size:64;not null;uniqueIndex:uk_component_env" json:"name" comment:"环境名称，如 QA/PROD"`
	InstallPath string      `gorm:"size:500;not null" json:"installPath" comment:"目标安装路径"`
	ServiceName string      `gorm:"size:255" json:"serviceName" comment:"服务/站点标识"`
	Overrides   common.JSON `gorm:"type:json" json:"overrides" comment:"配置键覆盖表，支持 Section__Key 嵌套寻址"`
}

func (EnvironmentConfig) TableName() string {
	return "pipe_environment_config"
}
