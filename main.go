package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"msifactory/app"
	"msifactory/base"
	"msifactory/pkg/core/start"
	"msifactory/pkg/scheduler"
	"msifactory/router"
	"msifactory/system/pipeline"
)

// Version 构建时通过 -ldflags 注入
var Version = "dev"

func main() {
	env := flag.String("env", "dev", "环境配置 (dev, prod, test等)")
	configFile := flag.String("config", "", "配置文件路径，默认 config/{env}.yaml")
	migrate := flag.Bool("migrate", false, "只执行数据库迁移后退出")
	showVersion := flag.Bool("version", false, "打印版本号后退出")
	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return
	}

	filename := *configFile
	if filename == "" {
		filename = fmt.Sprintf("config/%s.yaml", *env)
	}
	file, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("读取配置文件失败,因为：%v", err))
	}

	configures := start.NewConfigures(file, *env)
	base.Configures = configures
	base.Logger = configures.Logger
	base.ENV = *env
	base.DB = configures.EnableMysql()

	// 执行数据库迁移
	if err := pipeline.AutoMigrate(base.DB, base.Logger); err != nil {
		configures.Logger.Panic(fmt.Sprintf("数据库迁移失败: %v", err))
	}
	if *migrate {
		base.Logger.Info("数据库迁移完成，退出")
		return
	}

	base.Scheduler = scheduler.NewScheduler(&scheduler.SchedulerConfig{
		MaxWorkers: base.Configures.Config.Pipeline.MaxWorkers,
	})
	if err := base.Scheduler.Start(); err != nil {
		configures.Logger.Panic(fmt.Sprintf("启动调度器失败: %v", err))
	}

	// 创建应用组合根并启动后台流水线
	appRoot := app.NewApp()
	runCtx, cancel := context.WithCancel(context.Background())
	if err := appRoot.Start(runCtx); err != nil {
		configures.Logger.Panic(fmt.Sprintf("启动流水线失败: %v", err))
	}

	// 创建 Fiber 应用并注册路由
	fiberApp := app.GetApp()
	router.Register(appRoot, fiberApp)

	go func() {
		addr := fmt.Sprintf(":%d", base.Configures.Config.Port)
		if err := fiberApp.Listen(addr); err != nil {
			base.Logger.WithErr(err).Error("HTTP 服务退出")
		}
	}()
	base.Logger.Info(fmt.Sprintf("服务已启动，监听端口 %d", base.Configures.Config.Port))

	// 等待终止信号后按序优雅停机：
	// 停止接受新轮询周期 → 排空下载队列 → 关闭 HTTP 服务
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	base.Logger.Info("收到终止信号，开始优雅停机")

	cancel()
	if err := base.Scheduler.Stop(); err != nil {
		base.Logger.WithErr(err).Warn("停止调度器失败")
	}
	appRoot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		base.Logger.WithErr(err).Warn("关闭 HTTP 服务失败")
	}
	base.Logger.Info("应用已停止")
}
