// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构，从 YAML 文件加载，可被环境变量与 Nacos 远程配置覆盖。
type Config struct {
	App      AppConfig         `yaml:"app"`
	Server   ServerConfig      `yaml:"server"`
	Infra    InfraConfig       `yaml:"infra"`
	Auth     AuthConfig        `yaml:"auth"`
	Storage  StorageConfig     `yaml:"storage"`
	Cart     CartConfig        `yaml:"cart"`
	Push     PushConfig        `yaml:"push"`
	Services map[string]string `yaml:"services"` // 服务名 -> 静态基地址，未启用 Nacos 时使用
}

type AppConfig struct {
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
	Timezone  string `yaml:"timezone"` // 门店营业日所在时区，折扣窗口按该时区的日期判断
}

// Location 解析 Timezone，空值视为 UTC
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", c.Timezone)
	}
	return loc, nil
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type InfraConfig struct {
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
	Nacos     NacosConfig     `yaml:"nacos"`
}

type JaegerConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sampleRatio"`
}

type MySQLConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	OrderTopic  string   `yaml:"orderTopic"`
	RetryTopic  string   `yaml:"retryTopic"`
	DLTTopic    string   `yaml:"dltTopic"`
	GroupID     string   `yaml:"groupId"`
	MaxAttempts int      `yaml:"maxAttempts"`
}

type ZookeeperConfig struct {
	Servers        []string      `yaml:"servers"`
	SessionTimeout time.Duration `yaml:"sessionTimeout"`
	LockTimeout    time.Duration `yaml:"lockTimeout"`
}

type NacosConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServerAddrs string `yaml:"serverAddrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

// AuthConfig 描述令牌校验方式："firebase" 使用托管身份服务，"header" 仅用于本地开发。
type AuthConfig struct {
	Mode            string   `yaml:"mode"`
	CredentialsFile string   `yaml:"credentialsFile"`
	ProjectID       string   `yaml:"projectId"`
	AdminUIDs       []string `yaml:"adminUids"`
}

type StorageConfig struct {
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
	MaxUploadSize int64  `yaml:"maxUploadSize"`
}

type CartConfig struct {
	CacheTTL time.Duration `yaml:"cacheTtl"`
}

// PushConfig 是通知服务的 WebSocket 推送配置
type PushConfig struct {
	AllowedOrigins []string      `yaml:"allowedOrigins"` // 为空时不校验 Origin
	PresenceTTL    time.Duration `yaml:"presenceTtl"`
	RetryDelay     time.Duration `yaml:"retryDelay"` // 重试 topic 中消息的最短等待时间
}

var currentConfig atomic.Pointer[Config]

func init() {
	currentConfig.Store(defaultConfig())
}

func defaultConfig() *Config {
	return &Config{
		App:    AppConfig{Env: "dev", LogLevel: "info", LogFormat: "json", Timezone: "UTC"},
		Server: ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
		Infra: InfraConfig{
			Jaeger: JaegerConfig{Endpoint: "http://localhost:14268/api/traces", SampleRatio: 1},
			MySQL: MySQLConfig{
				DSN:             "root:root@tcp(localhost:3306)/solitaire?charset=utf8mb4&parseTime=True&loc=UTC",
				MaxOpenConns:    20,
				MaxIdleConns:    10,
				ConnMaxLifetime: time.Hour,
			},
			Redis: RedisConfig{Addr: "localhost:6379"},
			Kafka: KafkaConfig{
				Brokers:     []string{"localhost:9092"},
				OrderTopic:  "order-events",
				RetryTopic:  "order-events-retry",
				DLTTopic:    "order-events-dlt",
				GroupID:     "notification-group",
				MaxAttempts: 3,
			},
			Zookeeper: ZookeeperConfig{
				Servers:        []string{"localhost:2181"},
				SessionTimeout: 5 * time.Second,
				LockTimeout:    30 * time.Second,
			},
			Nacos: NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
		},
		Auth:    AuthConfig{Mode: "header"},
		Storage: StorageConfig{Bucket: "ring-images", MaxUploadSize: 5 << 20},
		Cart:    CartConfig{CacheTTL: 10 * time.Minute},
		Push:    PushConfig{PresenceTTL: 24 * time.Hour, RetryDelay: 5 * time.Second},
		Services: map[string]string{
			"catalog-service":      "http://localhost:8082",
			"promotion-service":    "http://localhost:8081",
			"order-service":        "http://localhost:8083",
			"account-service":      "http://localhost:8084",
			"notification-service": "http://localhost:8085",
		},
	}
}

// GetCurrentConfig 返回当前生效的配置 (Nacos 推送后会被原子替换)
func GetCurrentConfig() *Config {
	return currentConfig.Load()
}

// SetCurrentConfig 原子替换当前配置
func SetCurrentConfig(cfg *Config) {
	currentConfig.Store(cfg)
}

// LoadConfig 读取 CONFIG_FILE (默认 configs/config.yaml)，文件不存在时使用默认值，最后应用环境变量覆盖。
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()
	path := getEnv("CONFIG_FILE", "configs/config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// MergeRemote 把 Nacos 下发的 YAML 覆盖到 base 的副本上
func MergeRemote(base *Config, data string) (*Config, error) {
	merged := *base
	merged.Services = make(map[string]string, len(base.Services))
	for k, v := range base.Services {
		merged.Services[k] = v
	}
	if err := yaml.Unmarshal([]byte(data), &merged); err != nil {
		return nil, errors.Wrap(err, "parse remote config")
	}
	return &merged, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFormat = getEnv("LOG_FORMAT", cfg.App.LogFormat)
	cfg.App.Timezone = getEnv("APP_TIMEZONE", cfg.App.Timezone)
	if v, err := strconv.Atoi(getEnv("SERVER_PORT", "")); err == nil {
		cfg.Server.Port = v
	}
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.MySQL.DSN = getEnv("MYSQL_DSN", cfg.Infra.MySQL.DSN)
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", cfg.Infra.Redis.Addr)
	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getEnv("ZK_SERVERS", ""); v != "" {
		cfg.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
	if v, err := strconv.ParseBool(getEnv("NACOS_ENABLED", "")); err == nil {
		cfg.Infra.Nacos.Enabled = v
	}
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
	cfg.Auth.Mode = getEnv("AUTH_MODE", cfg.Auth.Mode)
	cfg.Auth.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", cfg.Auth.CredentialsFile)
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", cfg.Storage.Bucket)
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
