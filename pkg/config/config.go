package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPPort    string `mapstructure:"http_port"`
	GRPCPort    string `mapstructure:"grpc_port"`
	MetricsPort string `mapstructure:"metrics_port"`
	GinMode     string `mapstructure:"gin_mode"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // postgres | sqlite
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Debug      bool   `mapstructure:"debug"`
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket"`
	URLExpiryMins   int    `mapstructure:"url_expiry_mins"`
}

// Kafka is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// Redis is disabled when Addr is empty.
type RedisConfig struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpireMins int    `mapstructure:"expire_mins"`
	Issuer     string `mapstructure:"issuer"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig() (*Config, error) {
	// .env is optional, the process environment always wins
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.grpc_port", "50053")
	v.SetDefault("server.metrics_port", "2112")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "edumarket")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "edumarket.db")
	v.SetDefault("database.debug", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resources")
	v.SetDefault("minio.url_expiry_mins", 15)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "resource.events")
	v.SetDefault("kafka.group_id", "edumarket-activity")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl_sec", 60)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_mins", 60)
	v.SetDefault("jwt.issuer", "edumarket")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("log.level", "info")

	v.AutomaticEnv()

	bindings := map[string]string{
		"server.http_port":      "GATEWAY_PORT",
		"server.grpc_port":      "GRPC_PORT",
		"server.metrics_port":   "METRICS_PORT",
		"server.gin_mode":       "GIN_MODE",
		"database.driver":       "DB_DRIVER",
		"database.host":         "DB_HOST",
		"database.port":         "DB_PORT",
		"database.user":         "DB_USER",
		"database.password":     "DB_PASSWORD",
		"database.dbname":       "DB_NAME",
		"database.sslmode":      "DB_SSLMODE",
		"database.sqlite_path":  "DB_PATH",
		"database.debug":        "DB_DEBUG",
		"minio.endpoint":        "MINIO_ENDPOINT",
		"minio.access_key":      "MINIO_ACCESS_KEY",
		"minio.secret_key":      "MINIO_SECRET_KEY",
		"minio.use_ssl":         "MINIO_USE_SSL",
		"minio.bucket":          "MINIO_BUCKET_NAME",
		"minio.url_expiry_mins": "MINIO_URL_EXPIRY_MINS",
		"kafka.brokers":         "KAFKA_BROKERS",
		"kafka.topic":           "KAFKA_TOPIC_RESOURCE_EVENTS",
		"kafka.group_id":        "KAFKA_GROUP_ID",
		"redis.addr":            "REDIS_ADDR",
		"redis.password":        "REDIS_PASSWORD",
		"redis.db":              "REDIS_DB",
		"redis.cache_ttl_sec":   "REDIS_CACHE_TTL_SEC",
		"jwt.secret":            "JWT_SECRET",
		"jwt.expire_mins":       "JWT_EXPIRE_MINUTES",
		"jwt.issuer":            "JWT_ISSUER",
		"admin.email":           "ADMIN_EMAIL",
		"admin.password":        "ADMIN_PASSWORD",
		"log.level":             "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWT.ExpireMins <= 0 {
		cfg.JWT.ExpireMins = 60
	}
	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpireMins) * time.Minute
}

func (c *RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

func (c *MinIOConfig) URLExpiry() time.Duration {
	return time.Duration(c.URLExpiryMins) * time.Minute
}

// SplitBrokers turns "a:9092, b:9092" into a broker list.
func (c *KafkaConfig) SplitBrokers() []string {
	var out []string
	for _, p := range strings.Split(c.Brokers, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *KafkaConfig) Enabled() bool {
	return len(c.SplitBrokers()) > 0 && c.Topic != ""
}
