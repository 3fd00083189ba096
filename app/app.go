package app

import (
	"context"

	"msifactory/pkg/core/start"
	"msifactory/system/pipeline"

	"github.com/gofiber/fiber/v2"
)

// App 应用组合根，持有所有业务组件模块
type App struct {
	PipelineModule *pipeline.Module
}

// NewApp 创建应用组合根，按依赖顺序初始化各组件模块
func NewApp() *App {
	pipelineModule := pipeline.NewModule()

	return &App{
		PipelineModule: pipelineModule,
	}
}

// Start 启动各组件的后台工作：轮询监听与下载消费者
func (a *App) Start(ctx context.Context) error {
	return a.PipelineModule.Start(ctx)
}

// Stop 按启动的逆序停止各组件，排空在途工作
func (a *App) Stop() {
	a.PipelineModule.Stop()
}

// GetApp 创建挂载了通用中间件的 Fiber 实例
func GetApp() *fiber.App {
	return start.GetApp()
}
