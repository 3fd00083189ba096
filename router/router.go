package router

import (
	"msifactory/app"
	"msifactory/system/pipeline"

	"github.com/gofiber/fiber/v2"
)

// Register 负责集中注册所有 HTTP 路由。
// 按规范：
//   - 只依赖 app.App（业务编排入口）和 fiber.App（HTTP Server）。
//   - 不直接依赖任何 DAO / Service / system/internal 包。
//   - 不包含业务逻辑，只做分组与路由绑定。
func Register(a *app.App, f *fiber.App) {
	// 公共 API 分组
	api := f.Group("/api")

	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": "ok"})
	})

	// 后台管理路由分组
	admin := f.Group("/admin")

	// 注册流水线组件路由（构建状态查询、打包触发）
	pipeline.RegisterRoutes(a.PipelineModule, api, admin)
}
