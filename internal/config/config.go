package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`
	APIKey          string        `mapstructure:"API_KEY"`

	OpenAIKey          string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel        string        `mapstructure:"OPENAI_MODEL"`
	ModelTimeout       time.Duration `mapstructure:"MODEL_TIMEOUT"`
	ModelMaxTokens     int64         `mapstructure:"MODEL_MAX_OUTPUT_TOKENS"`
	AnalyzeConcurrency int           `mapstructure:"ANALYZE_CONCURRENCY"`
	MockAI             bool          `mapstructure:"MOCK_AI"`

	OperatorName        string `mapstructure:"OPERATOR_NAME"`
	OperatorPhone       string `mapstructure:"OPERATOR_PHONE"`
	OperatorBusiness    string `mapstructure:"OPERATOR_BUSINESS"`
	OperatorHours       string `mapstructure:"OPERATOR_HOURS"`
	OperatorServiceArea string `mapstructure:"OPERATOR_SERVICE_AREA"`

	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	GeocodeEnabled bool    `mapstructure:"GEOCODE_ENABLED"`
	GeocodeBaseURL string  `mapstructure:"GEOCODE_BASE_URL"`
	GeocodeCountry string  `mapstructure:"GEOCODE_COUNTRY"`
	BaseLat        float64 `mapstructure:"BASE_LAT"`
	BaseLon        float64 `mapstructure:"BASE_LON"`
}

// keys lists every setting so AutomaticEnv can see variables that have no default.
var keys = []string{
	"ENV", "PORT", "LOG_LEVEL", "REQUEST_TIMEOUT", "CORS_ALLOWED_ORIGINS", "MAX_UPLOAD_MB", "API_KEY",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "MODEL_TIMEOUT", "MODEL_MAX_OUTPUT_TOKENS",
	"ANALYZE_CONCURRENCY", "MOCK_AI",
	"OPERATOR_NAME", "OPERATOR_PHONE", "OPERATOR_BUSINESS", "OPERATOR_HOURS", "OPERATOR_SERVICE_AREA",
	"DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "SESSION_TTL",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
	"GEOCODE_ENABLED", "GEOCODE_BASE_URL", "GEOCODE_COUNTRY", "BASE_LAT", "BASE_LON",
}

func Load() (Config, error) {
	return load(".env")
}

func load(file string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "120s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("OPENAI_MODEL", "gpt-4.1-mini")
	v.SetDefault("MODEL_TIMEOUT", "60s")
	v.SetDefault("MODEL_MAX_OUTPUT_TOKENS", 1500)
	v.SetDefault("ANALYZE_CONCURRENCY", 4)
	v.SetDefault("MOCK_AI", false)
	v.SetDefault("OPERATOR_NAME", "Иван")
	v.SetDefault("OPERATOR_BUSINESS", "Ремонт и укладка полов")
	v.SetDefault("OPERATOR_HOURS", "Вс-Чт 8:00-18:00")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("MINIO_BUCKET", "floorquote-exports")
	v.SetDefault("GEOCODE_ENABLED", false)
	v.SetDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_COUNTRY", "Israel")
	v.SetDefault("BASE_LAT", 32.0853)
	v.SetDefault("BASE_LON", 34.7818)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must be set"))
	}
	if c.MaxUploadSizeMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	if c.AnalyzeConcurrency <= 0 {
		errs = append(errs, errors.New("ANALYZE_CONCURRENCY must be positive"))
	}
	if c.ModelTimeout <= 0 {
		errs = append(errs, errors.New("MODEL_TIMEOUT must be positive"))
	}
	if c.ModelMaxTokens <= 0 {
		errs = append(errs, errors.New("MODEL_MAX_OUTPUT_TOKENS must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "" || c.MinioBucket == "") {
		errs = append(errs, errors.New("MINIO_ENDPOINT requires MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET"))
	}
	return errors.Join(errs...)
}

func (c Config) ArchivalEnabled() bool {
	return c.MinioEndpoint != ""
}
