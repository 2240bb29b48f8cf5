package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Database DatabaseConfig `mapstructure:"database"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release / test
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json / text
}

type LedgerConfig struct {
	SeedDemo      bool  `mapstructure:"seed_demo"`      // 启动时写入演示账户
	WorkerID      int64 `mapstructure:"worker_id"`      // 账号生成器的机器ID
	MaxIDAttempts int   `mapstructure:"max_id_attempts"` // ID 冲突重试次数
}

// DatabaseConfig outbox 所用的 SQLite，默认进程内存库
type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"` // silent / error / warn / info
}

// 通知投递方式
const (
	NotifyDriverLog   = "log"
	NotifyDriverKafka = "kafka"
	NotifyDriverRedis = "redis"
	NotifyDriverNone  = "none"
)

type NotifyConfig struct {
	Driver    string        `mapstructure:"driver"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	KeepSent  int           `mapstructure:"keep_sent"` // 已发送通知保留条数
	Kafka     KafkaConfig   `mapstructure:"kafka"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type BusinessConfig struct {
	MaxRetryCount int `mapstructure:"max_retry_count"`
}

// EnvPrefix 环境变量前缀，例如 BANK_SERVER_PORT
const EnvPrefix = "BANK"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ledger.seed_demo", true)
	v.SetDefault("ledger.worker_id", 1)
	v.SetDefault("ledger.max_id_attempts", 5)
	v.SetDefault("database.dsn", "file::memory:")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("notify.driver", NotifyDriverLog)
	v.SetDefault("notify.interval", 100*time.Millisecond)
	v.SetDefault("notify.batch_size", 100)
	v.SetDefault("notify.keep_sent", 200)
	v.SetDefault("notify.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("notify.kafka.topic", "bank.notifications")
	v.SetDefault("notify.redis.host", "localhost")
	v.SetDefault("notify.redis.port", 6379)
	v.SetDefault("notify.redis.channel", "bank.notifications")
	v.SetDefault("business.max_retry_count", 3)
}

// LoadConfig 加载配置文件；configPath 为空时只使用默认值与环境变量
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configPath)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Notify.Driver {
	case NotifyDriverLog, NotifyDriverNone:
	case NotifyDriverKafka:
		if len(c.Notify.Kafka.Brokers) == 0 || c.Notify.Kafka.Topic == "" {
			return errors.New("notify.kafka requires brokers and topic")
		}
	case NotifyDriverRedis:
		if c.Notify.Redis.Host == "" || c.Notify.Redis.Channel == "" {
			return errors.New("notify.redis requires host and channel")
		}
	default:
		return errors.Errorf("unknown notify.driver %q", c.Notify.Driver)
	}
	if c.Notify.KeepSent < 0 {
		return errors.Errorf("notify.keep_sent must not be negative: %d", c.Notify.KeepSent)
	}
	if c.Notify.Interval <= 0 {
		return errors.New("notify.interval must be positive")
	}
	if c.Business.MaxRetryCount <= 0 {
		return errors.New("business.max_retry_count must be positive")
	}
	return nil
}
