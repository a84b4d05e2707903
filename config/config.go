package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Verifier      VerifierConfig      `mapstructure:"verifier"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres / sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	// ModeratorPasswordHash 管理员口令的 bcrypt 哈希
	ModeratorPasswordHash string `mapstructure:"moderator_password_hash"`
	JWTSecret             string `mapstructure:"jwt_secret"`
	TokenTTLHours         int    `mapstructure:"token_ttl_hours"`
}

type VerifierConfig struct {
	// Questions 问答对列表，提交前的人机验证题库
	Questions []QuestionPair `mapstructure:"questions"`
	// ChallengeTTLSeconds 挑战在 redis 中的存活时间
	ChallengeTTLSeconds int `mapstructure:"challenge_ttl_seconds"`
}

type QuestionPair struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

type ObservabilityConfig struct {
	SentryDSN    string `mapstructure:"sentry_dsn"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load 加载配置：configs/config.yaml + 环境变量覆盖（TREEHOLE_ 前缀）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TREEHOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "treehole.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("verifier.challenge_ttl_seconds", 600)
	v.SetDefault("observability.service_name", "treehole")

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时仅用默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
