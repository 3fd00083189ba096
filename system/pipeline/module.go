package pipeline

import (
	"context"

	"msifactory/system/pipeline/api/client"
	"msifactory/system/pipeline/internal/app"
)

// Module 流水线组件模块门面（对外暴露的根对象）
// 封装了内部 app 和对外 client，只暴露需要的能力
type Module struct {
	// internalApp 内部应用实例，不对外暴露，仅供组件内部使用
	internalApp *app.App
	// Client 对外客户端，供其他组件查询构建状态和触发打包
	Client *client.PipelineClient
}

// NewModule 创建流水线模块实例
func NewModule() *Module {
	internalApp := app.NewApp()
	pipelineClient := client.NewPipelineClient(internalApp)

	return &Module{
		internalApp: internalApp,
		Client:      pipelineClient,
	}
}

// Start 注册轮询监听任务并启动下载消费者
func (m *Module) Start(ctx context.Context) error {
	return m.internalApp.StartWatchers(ctx)
}

// Stop 排空下载队列中的在途事件
func (m *Module) Stop() {
	m.internalApp.DrainConsumer()
}
