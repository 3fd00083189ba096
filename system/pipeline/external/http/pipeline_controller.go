package http

import (
	"strconv"

	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/result"
	"msifactory/system/pipeline/api/dto"
	"msifactory/system/pipeline/internal/app"
	"msifactory/utils"

	"github.com/gofiber/fiber/v2"
)

// PipelineController 流水线查询与触发控制器
// 状态查询是纯读接口，业务逻辑都在应用层
type PipelineController struct {
	app *app.App
	log *logger.Log
	err *errorc.ErrorBuilder
}

// NewPipelineController 创建流水线控制器实例
func NewPipelineController(app *app.App) *PipelineController {
	return &PipelineController{
		app: app,
		log: logger.GetLogger().WithEntryName("PipelineController"),
		err: errorc.NewErrorBuilder("PipelineController"),
	}
}

// RegisterRoutes 注册流水线相关路由
func (c *PipelineController) RegisterRoutes(admin fiber.Router) {
	pipeline := admin.Group("/pipeline")

	// 构建跟踪与历史查询
	pipeline.Get("/tracking", c.ListTracking)
	pipeline.Get("/components/:componentId/branches/:branchId/tracking", c.GetTracking)
	pipeline.Get("/components/:componentId/branches/:branchId/history", c.ListHistory)

	// 打包任务
	pipeline.Get("/components/:componentId/jobs", c.ListJobs)
	pipeline.Get("/jobs/:id", c.GetJob)
	pipeline.Post("/package", c.TriggerPackage)
}

// ListTracking 查询全部构建跟踪记录
func (c *PipelineController) ListTracking(ctx *fiber.Ctx) error {
	list, err := c.app.TrackingSvc.ListAll(ctx.UserContext())
	return result.Once(ctx, list, err)
}

// GetTracking 查询指定 (组件, 分支) 的构建跟踪记录
func (c *PipelineController) GetTracking(ctx *fiber.Ctx) error {
	componentID, branchID, err := c.targetParams(ctx)
	if err != nil {
		return err
	}

	record, err := c.app.TrackingSvc.Get(ctx.UserContext(), componentID, branchID)
	if err != nil {
		return err
	}
	if record == nil {
		return c.err.NotFound("构建跟踪记录不存在")
	}
	return result.OK(ctx, record)
}

// ListHistory 按构建时间倒序查询构建历史
func (c *PipelineController) ListHistory(ctx *fiber.Ctx) error {
	componentID, branchID, err := c.targetParams(ctx)
	if err != nil {
		return err
	}

	list, err := c.app.TrackingSvc.ListHistory(ctx.UserContext(), componentID, branchID)
	return result.Once(ctx, list, err)
}

// ListJobs 查询组件最近的打包任务
func (c *PipelineController) ListJobs(ctx *fiber.Ctx) error {
	componentID, err := strconv.ParseInt(ctx.Params("componentId"), 10, 64)
	if err != nil {
		return c.err.New("组件ID无效", err).ValidWithCtx()
	}

	if buildID := ctx.Query("buildId"); buildID != "" {
		list, err := c.app.PackageJobSvc.ListByBuild(ctx.UserContext(), componentID, buildID)
		return result.Once(ctx, list, err)
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	list, err := c.app.PackageJobSvc.ListByComponent(ctx.UserContext(), componentID, limit)
	return result.Once(ctx, list, err)
}

// GetJob 查询打包任务详情
func (c *PipelineController) GetJob(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return c.err.New("任务ID无效", err).ValidWithCtx()
	}

	job, err := c.app.PackageJobSvc.FindByID(ctx.UserContext(), id)
	return result.Once(ctx, job, err)
}

// TriggerPackage 手动触发环境矩阵打包
func (c *PipelineController) TriggerPackage(ctx *fiber.Ctx) error {
	var req dto.TriggerPackageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return c.err.New("解析请求参数失败", err).ValidWithCtx()
	}
	if _, err := utils.Validate(req); err != nil {
		return c.err.New("参数验证失败", err).ValidWithCtx()
	}

	jobs, err := c.app.TriggerPackaging(ctx.UserContext(), req.ComponentID, req.BranchID, req.RequestedBy)
	return result.Once(ctx, jobs, err)
}

// targetParams 解析路径中的组件和分支 ID
func (c *PipelineController) targetParams(ctx *fiber.Ctx) (int64, int64, error) {
	componentID, err := strconv.ParseInt(ctx.Params("componentId"), 10, 64)
	if err != nil {
		return 0, 0, c.err.New("组件ID无效", err).ValidWithCtx()
	}
	branchID, err := strconv.ParseInt(ctx.Params("branchId"), 10, 64)
	if err != nil {
		return 0, 0, c.err.New("分支ID无效", err).ValidWithCtx()
	}
	return componentID, branchID, nil
}
