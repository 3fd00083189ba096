package config

// RepositoryConfig 制品仓库配置
type RepositoryConfig struct {
	// BaseURL 仓库根地址，如 https://artifacts.example.com/repo
	BaseURL string `yaml:"baseUrl"`
	// Username Basic 认证用户名
	Username string `yaml:"username"`
	// Password Basic 认证密码
	Password string `yaml:"password"`
	// QueryTimeoutSeconds 查询仓库列表的超时时间（秒）
	QueryTimeoutSeconds int `yaml:"queryTimeoutSeconds"`
}

// DefaultRepositoryConfig 返回默认配置
func DefaultRepositoryConfig() RepositoryConfig {
	return RepositoryConfig{
		QueryTimeoutSeconds: 30,
	}
}
