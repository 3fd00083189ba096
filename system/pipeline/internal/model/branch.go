package model

import (
	"msifactory/pkg/core/model/common"
)

// Branch 组件下的轮询目标分支，(component_id, name) 唯一
type Branch struct {
	common.Model
	ComponentID  int64       `gorm:"not null;uniqueIndex:uk_component_branch" json:"componentId" comment:"所属组件 ID"`
	Name         string      `gorm:"size:255;not null;uniqueIndex:uk_component_branch" json:"name" comment:"分支名称"`
	PathPattern  string      `gorm:"size:500" json:"pathPattern" comment:"仓库路径覆盖规则，为空时按分支名分类"`
	VersionMajor int         `gorm:"default:1" json:"versionMajor" comment:"主版本号"`
	VersionMinor int         `gorm:"default:0" json:"versionMinor" comment:"次版本号"`
	VersionPatch int         `gorm:"default:0" json:"versionPatch" comment:"修订版本号"`
	BuildCounter int64       `gorm:"default:0" json:"buildCounter" comment:"自增构建号"`
	AutoBuild    common.Flag `gorm:"default:2" json:"autoBuild" comment:"下载完成后是否自动触发打包：1是 2否"`
}

func (Branch) TableName() string {
	return "pipe_branch"
}
