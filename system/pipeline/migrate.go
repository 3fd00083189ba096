package pipeline

import (
	"msifactory/pkg/core/logger"
	"msifactory/system/pipeline/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 执行流水线组件的数据库迁移
func AutoMigrate(db *gorm.DB, log *logger.Log) error {
	log.Info("开始执行流水线组件数据库迁移...")

	err := db.AutoMigrate(
		&model.Component{},
		&model.Branch{},
		&model.BuildTrackingRecord{},
		&model.BuildHistoryRecord{},
		&model.EnvironmentConfig{},
		&model.PackageJob{},
	)
	if err != nil {
		log.WithErr(err).Error("流水线组件数据库迁移失败")
		return err
	}

	log.Info("流水线组件数据库迁移完成")
	return nil
}
