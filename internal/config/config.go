package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Convert   ConvertConfig
	AI        AIConfig
	Zitadel   ZitadelConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	SubmitPerHour int
	WipePerHour   int
}

type StorageConfig struct {
	Endpoint        string // empty for AWS, set for R2/MinIO-compatible endpoints
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type ConvertConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

type AIConfig struct {
	ServiceURL      string
	APIKey          string
	Model           string
	AnalysisTimeout int // seconds, the hard budget for one analysis call
}

type ZitadelConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type GatewayConfig struct {
	Enabled bool
}

// AnalysisBudget returns the analysis timeout as a duration.
func (c *AIConfig) AnalysisBudget() time.Duration {
	return time.Duration(c.AnalysisTimeout) * time.Second
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("AI_API_KEY")
	readSecret("S3_ACCESS_KEY_ID")
	readSecret("S3_SECRET_ACCESS_KEY")
	readSecret("ZITADEL_CLIENT_ID")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("ratelimit.submit_per_hour", "RATELIMIT_SUBMIT_PER_HOUR")
	_ = viper.BindEnv("ratelimit.wipe_per_hour", "RATELIMIT_WIPE_PER_HOUR")
	_ = viper.BindEnv("storage.endpoint", "S3_ENDPOINT")
	_ = viper.BindEnv("storage.region", "S3_REGION")
	_ = viper.BindEnv("storage.access_key_id", "S3_ACCESS_KEY_ID")
	_ = viper.BindEnv("storage.secret_access_key", "S3_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("storage.bucket", "S3_BUCKET")
	_ = viper.BindEnv("convert.service_url", "CONVERT_SERVICE_URL")
	_ = viper.BindEnv("convert.timeout", "CONVERT_SERVICE_TIMEOUT")
	_ = viper.BindEnv("ai.service_url", "AI_SERVICE_URL")
	_ = viper.BindEnv("ai.api_key", "AI_API_KEY")
	_ = viper.BindEnv("ai.model", "AI_MODEL")
	_ = viper.BindEnv("ai.analysis_timeout", "ANALYSIS_TIMEOUT")
	_ = viper.BindEnv("zitadel.domain", "ZITADEL_DOMAIN")
	_ = viper.BindEnv("zitadel.client_id", "ZITADEL_CLIENT_ID")
	_ = viper.BindEnv("zitadel.issuer", "ZITADEL_ISSUER")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.submit_per_hour", 20)
	viper.SetDefault("ratelimit.wipe_per_hour", 5)

	// Storage defaults
	viper.SetDefault("storage.region", "auto")
	viper.SetDefault("storage.bucket", "resumes")

	// Conversion service defaults
	viper.SetDefault("convert.service_url", "http://localhost:8084")
	viper.SetDefault("convert.timeout", 60)

	// AI feedback service defaults
	viper.SetDefault("ai.service_url", "http://localhost:8085")
	viper.SetDefault("ai.model", "claude-3-7-sonnet")
	viper.SetDefault("ai.analysis_timeout", 30)

	// Gateway defaults
	viper.SetDefault("gateway.enabled", false)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerHour: viper.GetInt("ratelimit.submit_per_hour"),
			WipePerHour:   viper.GetInt("ratelimit.wipe_per_hour"),
		},
		Storage: StorageConfig{
			Endpoint:        viper.GetString("storage.endpoint"),
			Region:          viper.GetString("storage.region"),
			AccessKeyID:     viper.GetString("storage.access_key_id"),
			SecretAccessKey: viper.GetString("storage.secret_access_key"),
			Bucket:          viper.GetString("storage.bucket"),
		},
		Convert: ConvertConfig{
			ServiceURL: viper.GetString("convert.service_url"),
			Timeout:    viper.GetInt("convert.timeout"),
		},
		AI: AIConfig{
			ServiceURL:      viper.GetString("ai.service_url"),
			APIKey:          viper.GetString("ai.api_key"),
			Model:           viper.GetString("ai.model"),
			AnalysisTimeout: viper.GetInt("ai.analysis_timeout"),
		},
		Zitadel: ZitadelConfig{
			Domain:   viper.GetString("zitadel.domain"),
			ClientID: viper.GetString("zitadel.client_id"),
			Issuer:   viper.GetString("zitadel.issuer"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
