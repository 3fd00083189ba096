package config

// PipelineConfig 构建流水线配置
type PipelineConfig struct {
	// PollIntervalSeconds 每个分支的轮询间隔（秒）
	PollIntervalSeconds int `yaml:"pollIntervalSeconds"`
	// MaxWorkers 轮询工作者上限
	MaxWorkers int `yaml:"maxWorkers"`
	// KeepBuilds 每个分支保留的历史构建数量
	KeepBuilds int `yaml:"keepBuilds"`
	// StagingRoot 下载与解压的暂存根目录
	StagingRoot string `yaml:"stagingRoot"`
	// OutputRoot 打包输出根目录
	OutputRoot string `yaml:"outputRoot"`
	// DownloadTimeoutSeconds 单个制品下载超时（秒）
	DownloadTimeoutSeconds int `yaml:"downloadTimeoutSeconds"`
	// QueueSize 下载事件队列长度
	QueueSize int `yaml:"queueSize"`
	// CompilerPath 外部打包编译器可执行文件路径
	CompilerPath string `yaml:"compilerPath"`
	// BuildTimeoutSeconds 单次编译器调用超时（秒）
	BuildTimeoutSeconds int `yaml:"buildTimeoutSeconds"`
	// EnvParallel 同一构建下各环境打包的并行度
	EnvParallel int `yaml:"envParallel"`
	// Extensions 按组件类型追加的编译器扩展参数
	Extensions map[string][]string `yaml:"extensions"`
}

// DefaultPipelineConfig 返回默认配置
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		PollIntervalSeconds:    60,
		MaxWorkers:             20,
		KeepBuilds:             5,
		StagingRoot:            "/opt/msifactory/staging",
		OutputRoot:             "/opt/msifactory/output",
		DownloadTimeoutSeconds: 300,
		QueueSize:              100,
		CompilerPath:           "wixbuild",
		BuildTimeoutSeconds:    600,
		EnvParallel:            4,
	}
}
