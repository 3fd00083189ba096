package start

import (
	"fmt"
	"net"
	"os"

	"msifactory/pkg/core/config"
	"msifactory/pkg/core/logger"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Config struct {
	AppName    string                  `yaml:"app-name"`
	Env        string                  `yaml:"env"`
	Host       string                  `yaml:"host"`
	Port       int                     `yaml:"port"`
	Log        config.LogConfig        `yaml:"log"`
	Database   config.Database         `yaml:"db"`
	Repository config.RepositoryConfig `yaml:"repository"`
	Pipeline   config.PipelineConfig   `yaml:"pipeline"`
}

type Configures struct {
	Config Config
	Logger *logger.Log
}

func NewConfigures(file []byte, env string) *Configures {
	cfg := Config{
		Repository: config.DefaultRepositoryConfig(),
		Pipeline:   config.DefaultPipelineConfig(),
	}
	err := yaml.Unmarshal(file, &cfg)
	if err != nil {
		panic(fmt.Sprintf("读取配置文件失败，因为%v", err))
	}

	cfg.Env = env
	cfg.Host, _ = getLocalIP()

	level := cfg.Log.Level
	if level == "" {
		level = "debug"
	}

	c := &Configures{
		Config: cfg,
		Logger: logger.InitLogger(level),
	}

	// 仓库凭证和暂存目录缺失时所有工作者都无法运行，直接中止启动
	if err := c.validate(); err != nil {
		panic(fmt.Sprintf("配置校验失败: %v", err))
	}

	return c
}

// validate 校验致命配置项
func (c *Configures) validate() error {
	if c.Config.Repository.BaseURL == "" {
		return fmt.Errorf("repository.baseUrl 未配置")
	}
	if c.Config.Repository.Username == "" || c.Config.Repository.Password == "" {
		return fmt.Errorf("制品仓库凭证未配置")
	}
	if c.Config.Pipeline.StagingRoot == "" {
		return fmt.Errorf("pipeline.stagingRoot 未配置")
	}
	if err := os.MkdirAll(c.Config.Pipeline.StagingRoot, 0755); err != nil {
		return fmt.Errorf("暂存根目录不可用: %w", err)
	}
	if err := os.MkdirAll(c.Config.Pipeline.OutputRoot, 0755); err != nil {
		return fmt.Errorf("打包输出目录不可用: %w", err)
	}
	return nil
}

func (c *Configures) EnablePg() *gorm.DB {
	db, err := config.InitPg(c.Config.Database)
	if err != nil {
		c.Logger.WithField("database", c.Config.Database.Host).WithField("err", err).Panic("failed connect database")
	}
	c.Logger.Info("connect database success")
	return db
}

func (c *Configures) EnableMysql() *gorm.DB {
	db, err := config.InitMysql(c.Config.Database)
	if err != nil {
		c.Logger.WithField("database", c.Config.Database.Host).WithField("err", err).Panic("failed connect database")
	}
	c.Logger.Info("connect database success")
	return db
}

// getLocalIP 获取本机IP地址（优先获取内网IP）
func getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				if ipnet.IP.IsPrivate() {
					return ipnet.IP.String(), nil
				}
			}
		}
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "127.0.0.1", nil
}
