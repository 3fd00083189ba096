package pipeline

import (
	controller "msifactory/system/pipeline/external/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes 注册流水线组件的所有 HTTP 路由
// 此函数在 pipeline 包内，可以访问 Module 的私有字段 internalApp
func RegisterRoutes(m *Module, api, admin fiber.Router) {
	pipelineController := controller.NewPipelineController(m.internalApp)
	pipelineController.RegisterRoutes(admin)

	_ = api // 暂未使用
}
