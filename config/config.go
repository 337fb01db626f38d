package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Queue     QueueConfig     `mapstructure:"queue"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Email     EmailConfig     `mapstructure:"email"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	// 启动时自动建表，开发环境用
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// 连接断开后的重连尝试次数
	ReconnectRetries int `mapstructure:"reconnect_retries"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// OptimizerConfig 远程优化引擎配置
type OptimizerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	OptimizePath   string `mapstructure:"optimize_path"`
	BatchSize      int    `mapstructure:"batch_size"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	SnapshotLimit  int    `mapstructure:"snapshot_limit"`
}

type QueueConfig struct {
	JobQueue    string `mapstructure:"job_queue"`
	PollSeconds int    `mapstructure:"poll_seconds"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// AlertsConfig 库存告警与任务巡检配置
type AlertsConfig struct {
	LowStockEnabled    bool     `mapstructure:"low_stock_enabled"`
	LowStockRecipients []string `mapstructure:"low_stock_recipients"`
	// 运行中任务的最长存活时间（小时），超时后由定时任务置为失败
	StaleJobHours int `mapstructure:"stale_job_hours"`
}

// 优化引擎参数默认值
const (
	DefaultBatchSize      = 200
	DefaultTimeoutSeconds = 90
	DefaultSnapshotLimit  = 1000
)

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Optimizer.BatchSize <= 0 {
		c.Optimizer.BatchSize = DefaultBatchSize
	}
	if c.Optimizer.TimeoutSeconds <= 0 {
		c.Optimizer.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Optimizer.SnapshotLimit <= 0 {
		c.Optimizer.SnapshotLimit = DefaultSnapshotLimit
	}
	if c.Optimizer.OptimizePath == "" {
		c.Optimizer.OptimizePath = "/optimize"
	}
	if c.Queue.JobQueue == "" {
		c.Queue.JobQueue = "stockopt:jobs"
	}
	if c.Queue.PollSeconds <= 0 {
		c.Queue.PollSeconds = 5
	}
	if c.Database.ReconnectRetries < 0 {
		c.Database.ReconnectRetries = 0
	}
	if c.Alerts.StaleJobHours <= 0 {
		c.Alerts.StaleJobHours = 6
	}
}

// OptimizeTimeout 单个批次远程调用的超时时间
func (c *OptimizerConfig) OptimizeTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
