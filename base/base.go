package base

import (
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/start"
	"msifactory/pkg/scheduler"

	"gorm.io/gorm"
)

var (
	Configures *start.Configures
	Logger     *logger.Log
	ENV        string
	DB         *gorm.DB
	Scheduler  *scheduler.Scheduler
)
