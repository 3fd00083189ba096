package model

import (
	"msifactory/pkg/core/model/common"
)

// ComponentType 组件类型，决定打包清单模板与编译器扩展
type ComponentType string

const (
	// ComponentTypeWebApp Web 应用（挂载到已有站点下的应用）
	ComponentTypeWebApp ComponentType = "webapp"
	// ComponentTypeSite 独立站点
	ComponentTypeSite ComponentType = "site"
	// ComponentTypeService 后台服务
	ComponentTypeService ComponentType = "service"
)

// Component 可部署组件，由外围管理端维护，流水线只读
type Component struct {
	common.Model
	Name             string        `gorm:"size:128;not null" json:"name" comment:"组件名称"`
	DisplayName      string        `gorm:"size:255" json:"displayName" comment:"展示名称"`
	ProjectID        int64         `gorm:"not null;index" json:"projectId" comment:"所属项目 ID"`
	Type             ComponentType `gorm:"size:32;not null;default:service" json:"type" comment:"组件类型：webapp/site/service"`
	RepositoryPath   string        `gorm:"size:500;not null" json:"repositoryPath" comment:"制品仓库基础路径"`
	BuildLocationTag string        `gorm:"size:64;not null;uniqueIndex" json:"buildLocationTag" comment:"构建目录命名空间标签，全局唯一"`
	PollEnabled      common.Flag   `gorm:"default:2" json:"pollEnabled" comment:"是否启用轮询：1是 2否"`
}

func (Component) TableName() string {
	return "pipe_component"
}
