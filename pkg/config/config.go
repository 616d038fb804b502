package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Redis     RedisConfig
	Archive   ArchiveConfig
	Reports   ReportsConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
	// MaxAttempts is 1 by default: model calls are billed per token and are
	// not retried unless the operator opts in.
	MaxAttempts int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type ArchiveConfig struct {
	Path string
	Dir  string
}

type ReportsConfig struct {
	OutputDir        string
	LabName          string
	LabAccreditation string
	LabAddress       string
	LabPhone         string
	LabEmail         string
}

type SessionConfig struct {
	TimeoutSec       int
	SweepIntervalSec int
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pvlab")

	viper.SetEnvPrefix("PVLAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 120)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 4096)
	viper.SetDefault("llm.timeoutSec", 60)
	viper.SetDefault("llm.maxAttempts", 1)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("archive.path", "./data/report_archive.db")
	viper.SetDefault("archive.dir", "./data/archive")

	viper.SetDefault("reports.outputDir", "./data/reports")
	viper.SetDefault("reports.labName", "Solar PV Testing Laboratory")
	viper.SetDefault("reports.labAccreditation", "NABL-TC-0000")
	viper.SetDefault("reports.labAddress", "")
	viper.SetDefault("reports.labPhone", "")
	viper.SetDefault("reports.labEmail", "")

	viper.SetDefault("session.timeoutSec", 3600)
	viper.SetDefault("session.sweepIntervalSec", 300)

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
