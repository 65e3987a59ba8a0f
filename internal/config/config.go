package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourcePostgres = "postgres"
	SourceREST     = "rest"
	SourceDemo     = "demo"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DataSource     string        `mapstructure:"DATA_SOURCE"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	RESTURL        string        `mapstructure:"REST_URL"`
	RESTAPIKey     string        `mapstructure:"REST_API_KEY"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int           `mapstructure:"REDIS_DB"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	SyntheticSeed  int64         `mapstructure:"SYNTHETIC_SEED"`
	TrendDays      int           `mapstructure:"TREND_DAYS"`
	MinioEndpoint  string        `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string        `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string        `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string        `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool          `mapstructure:"MINIO_USE_SSL"`
	RecordingTTL   time.Duration `mapstructure:"RECORDING_URL_TTL"`
	MaxUploadMB    int64         `mapstructure:"MAX_UPLOAD_MB"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATA_SOURCE", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REST_URL", "")
	v.SetDefault("REST_API_KEY", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("SYNTHETIC_SEED", 0)
	v.SetDefault("TREND_DAYS", 14)
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "call-recordings")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("RECORDING_URL_TTL", "15m")
	v.SetDefault("MAX_UPLOAD_MB", 10)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.DataSource = ResolveSource(cfg)
	return cfg, nil
}

// ResolveSource picks the record source: an explicit DATA_SOURCE wins,
// otherwise a database URL, then a REST URL, then the demo data set.
func ResolveSource(cfg Config) string {
	switch s := strings.ToLower(strings.TrimSpace(cfg.DataSource)); s {
	case SourcePostgres, SourceREST, SourceDemo:
		return s
	}
	switch {
	case cfg.DatabaseURL != "":
		return SourcePostgres
	case cfg.RESTURL != "":
		return SourceREST
	}
	return SourceDemo
}
