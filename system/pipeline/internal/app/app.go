package app

import (
	"path/filepath"
	"sync"
	"time"

	"msifactory/base"
	"msifactory/pkg/core/config"
	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/scheduler"
	"msifactory/system/pipeline/internal/dao"
	"msifactory/system/pipeline/internal/model"
	"msifactory/system/pipeline/internal/service"
	"msifactory/system/pipeline/internal/service/repository"

	"gorm.io/gorm"
)

// App 流水线组件应用层
// 负责轮询调度、下载消费、环境矩阵打包的编排
type App struct {
	// DAOs
	ComponentDao   *dao.ComponentDao
	BranchDao      *dao.BranchDao
	TrackingDao    *dao.TrackingDao
	HistoryDao     *dao.HistoryDao
	EnvironmentDao *dao.EnvironmentDao
	PackageJobDao  *dao.PackageJobDao

	// Services
	TargetSvc     *service.TargetService
	TrackingSvc   *service.TrackingService
	PackageJobSvc *service.PackageJobService

	// 制品仓库客户端
	Repo *repository.Client

	// 流水线配置，启动时固定
	Cfg *config.PipelineConfig

	// 下载事件队列与消费者
	downloadCh   chan *DownloadEvent
	consumerWg   sync.WaitGroup
	consumerOnce sync.Once
	drainOnce    sync.Once

	// 打包并发闸门，限制同一构建跨环境的并行度
	envGate chan struct{}

	scheduler *scheduler.Scheduler
	log       *logger.Log
	err       *errorc.ErrorBuilder
	db        *gorm.DB
}

// NewApp 创建流水线组件应用层实例
func NewApp() *App {
	log := base.Logger.WithEntryName("PipelineApp")
	cfg := &base.Configures.Config.Pipeline

	componentDao := dao.NewComponentDao(base.DB, log)
	branchDao := dao.NewBranchDao(base.DB, log)
	trackingDao := dao.NewTrackingDao(base.DB, log)
	historyDao := dao.NewHistoryDao(base.DB, log)
	environmentDao := dao.NewEnvironmentDao(base.DB, log)
	packageJobDao := dao.NewPackageJobDao(base.DB, log)

	targetSvc := service.NewTargetService(componentDao, branchDao, environmentDao, log)
	trackingSvc := service.NewTrackingService(trackingDao, historyDao, log)
	packageJobSvc := service.NewPackageJobService(packageJobDao, log)

	repoClient := repository.NewClient(
		&base.Configures.Config.Repository,
		time.Duration(cfg.DownloadTimeoutSeconds)*time.Second,
		log,
	)

	envParallel := cfg.EnvParallel
	if envParallel <= 0 {
		envParallel = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	return &App{
		ComponentDao:   componentDao,
		BranchDao:      branchDao,
		TrackingDao:    trackingDao,
		HistoryDao:     historyDao,
		EnvironmentDao: environmentDao,
		PackageJobDao:  packageJobDao,
		TargetSvc:      targetSvc,
		TrackingSvc:    trackingSvc,
		PackageJobSvc:  packageJobSvc,
		Repo:           repoClient,
		Cfg:            cfg,
		downloadCh:     make(chan *DownloadEvent, queueSize),
		envGate:        make(chan struct{}, envParallel),
		scheduler:      base.Scheduler,
		log:            log,
		err:            errorc.NewErrorBuilder("PipelineApp"),
		db:             base.DB,
	}
}

// downloadDir 组件某分支的下载目录，按构建目录标签命名空间隔离
func (a *App) downloadDir(component *model.Component, branchName string) string {
	return filepath.Join(a.Cfg.StagingRoot, component.BuildLocationTag, "downloads", repository.BranchSlug(branchName))
}

// extractDir 组件的解压目录，始终只保留最近一次构建
func (a *App) extractDir(component *model.Component) string {
	return filepath.Join(a.Cfg.StagingRoot, component.BuildLocationTag, "extract")
}

// workDir 某环境打包用的隔离工作副本目录
func (a *App) workDir(component *model.Component, envName string) string {
	return filepath.Join(a.Cfg.StagingRoot, component.BuildLocationTag, "work", envName)
}

// outputDir 某环境的安装包产出目录
func (a *App) outputDir(component *model.Component, envName string) string {
	return filepath.Join(a.Cfg.OutputRoot, component.BuildLocationTag, envName)
}
