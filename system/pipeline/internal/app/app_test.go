package app

import (
	"context"
	"testing"
	"time"

	"msifactory/pkg/core/config"
	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/model/common"
	"msifactory/system/pipeline/internal/dao"
	"msifactory/system/pipeline/internal/model"
	"msifactory/system/pipeline/internal/service"
	"msifactory/system/pipeline/internal/service/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestApp 基于内存库构造应用层实例，repoBaseURL 指向测试用仓库服务
func newTestApp(t *testing.T, repoBaseURL string) *App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Component{},
		&model.Branch{},
		&model.BuildTrackingRecord{},
		&model.BuildHistoryRecord{},
		&model.EnvironmentConfig{},
		&model.PackageJob{},
	))

	log := logger.InitLogger("error")
	componentDao := dao.NewComponentDao(db, log)
	branchDao := dao.NewBranchDao(db, log)
	trackingDao := dao.NewTrackingDao(db, log)
	historyDao := dao.NewHistoryDao(db, log)
	environmentDao := dao.NewEnvironmentDao(db, log)
	packageJobDao := dao.NewPackageJobDao(db, log)

	cfg := &config.PipelineConfig{
		StagingRoot:            t.TempDir(),
		OutputRoot:             t.TempDir(),
		KeepBuilds:             5,
		DownloadTimeoutSeconds: 30,
		BuildTimeoutSeconds:    30,
	}
	repoCfg := &config.RepositoryConfig{
		BaseURL:             repoBaseURL,
		Username:            "ci",
		Password:            "ci",
		QueryTimeoutSeconds: 5,
	}

	return &App{
		ComponentDao:   componentDao,
		BranchDao:      branchDao,
		TrackingDao:    trackingDao,
		HistoryDao:     historyDao,
		EnvironmentDao: environmentDao,
		PackageJobDao:  packageJobDao,
		TargetSvc:      service.NewTargetService(componentDao, branchDao, environmentDao, log),
		TrackingSvc:    service.NewTrackingService(trackingDao, historyDao, log),
		PackageJobSvc:  service.NewPackageJobService(packageJobDao, log),
		Repo:           repository.NewClient(repoCfg, 30*time.Second, log),
		Cfg:            cfg,
		downloadCh:     make(chan *DownloadEvent, 16),
		envGate:        make(chan struct{}, 2),
		log:            log.WithEntryName("PipelineApp"),
		err:            errorc.NewErrorBuilder("PipelineApp"),
		db:             db,
	}
}

// seedTarget 写入一个启用轮询的组件及其 develop 分支
func seedTarget(t *testing.T, a *App, repoPath string) (*model.Component, *model.Branch) {
	t.Helper()
	ctx := context.Background()
	component := &model.Component{
		Name:             "billing",
		Type:             model.ComponentTypeService,
		RepositoryPath:   repoPath,
		BuildLocationTag: "billing",
		PollEnabled:      common.TRUE,
	}
	require.NoError(t, a.ComponentDao.Create(ctx, component))
	branch := &model.Branch{
		ComponentID:  component.ID,
		Name:         "develop",
		VersionMajor: 1,
	}
	require.NoError(t, a.BranchDao.Create(ctx, branch))
	return component, branch
}

// seedEnvironment 写入组件的一个目标环境配置
func seedEnvironment(t *testing.T, a *App, componentID int64, name string, overrides common.JSON) *model.EnvironmentConfig {
	t.Helper()
	env := &model.EnvironmentConfig{
		ComponentID: componentID,
		Name:        name,
		InstallPath: "C:\\apps\\billing",
		Overrides:   overrides,
	}
	require.NoError(t, a.EnvironmentDao.Create(context.Background(), env))
	return env
}
