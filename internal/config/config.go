package config

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/optimizer"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Forecast  ForecastConfig
	Optimizer OptimizerConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	APIKey         string
	RateLimitRPS   float64 // per client IP; 0 disables
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	LogLevel string
	LogJSON  bool
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Prefix    string
}

type ForecastConfig struct {
	Method         string
	LookbackDays   int
	SeasonalPeriod int
	Alpha          float64
	Beta           float64
	Gamma          float64
	HorizonDays    int
}

type OptimizerConfig struct {
	HoldingCostRate    float64
	OrderingCost       float64
	LeadTimeDays       int
	ServiceLevelTarget float64
	Language           string
	BatchWorkers       int
	HistoryDays        int
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env, then the environment, once per process.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		setDefaults(v)
		v.AutomaticEnv()

		instance = fromViper(v)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_API_KEY", "")
	v.SetDefault("SERVER_RATE_LIMIT_RPS", 20)
	v.SetDefault("SERVER_RATE_LIMIT_BURST", 40)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "stockcast")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_FORECAST_TTL_SECONDS", 900)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "stockcast")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_PREFIX", "reports")

	defaults := forecast.DefaultParameters()
	v.SetDefault("FORECAST_METHOD", string(defaults.Method))
	v.SetDefault("FORECAST_LOOKBACK_DAYS", 0)
	v.SetDefault("FORECAST_SEASONAL_PERIOD", defaults.SeasonalPeriod)
	v.SetDefault("FORECAST_ALPHA", defaults.Alpha)
	v.SetDefault("FORECAST_BETA", defaults.Beta)
	v.SetDefault("FORECAST_GAMMA", defaults.Gamma)
	v.SetDefault("FORECAST_HORIZON_DAYS", forecast.DefaultForecastDays)

	policy := optimizer.DefaultParameters()
	v.SetDefault("OPTIMIZER_HOLDING_COST_RATE", policy.HoldingCostRate)
	v.SetDefault("OPTIMIZER_ORDERING_COST", policy.OrderingCost)
	v.SetDefault("OPTIMIZER_LEAD_TIME_DAYS", policy.LeadTimeDays)
	v.SetDefault("OPTIMIZER_SERVICE_LEVEL_TARGET", policy.ServiceLevelTarget)
	v.SetDefault("OPTIMIZER_LANGUAGE", policy.Language)
	v.SetDefault("OPTIMIZER_BATCH_WORKERS", optimizer.DefaultBatchWorkers)
	v.SetDefault("OPTIMIZER_HISTORY_DAYS", 90)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			APIKey:         v.GetString("SERVER_API_KEY"),
			RateLimitRPS:   v.GetFloat64("SERVER_RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("SERVER_RATE_LIMIT_BURST"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			LogLevel: v.GetString("LOG_LEVEL"),
			LogJSON:  v.GetBool("LOG_JSON"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			ForecastTTLSeconds: v.GetInt("CACHE_FORECAST_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Forecast: ForecastConfig{
			Method:         v.GetString("FORECAST_METHOD"),
			LookbackDays:   v.GetInt("FORECAST_LOOKBACK_DAYS"),
			SeasonalPeriod: v.GetInt("FORECAST_SEASONAL_PERIOD"),
			Alpha:          v.GetFloat64("FORECAST_ALPHA"),
			Beta:           v.GetFloat64("FORECAST_BETA"),
			Gamma:          v.GetFloat64("FORECAST_GAMMA"),
			HorizonDays:    v.GetInt("FORECAST_HORIZON_DAYS"),
		},
		Optimizer: OptimizerConfig{
			HoldingCostRate:    v.GetFloat64("OPTIMIZER_HOLDING_COST_RATE"),
			OrderingCost:       v.GetFloat64("OPTIMIZER_ORDERING_COST"),
			LeadTimeDays:       v.GetInt("OPTIMIZER_LEAD_TIME_DAYS"),
			ServiceLevelTarget: v.GetFloat64("OPTIMIZER_SERVICE_LEVEL_TARGET"),
			Language:           v.GetString("OPTIMIZER_LANGUAGE"),
			BatchWorkers:       v.GetInt("OPTIMIZER_BATCH_WORKERS"),
			HistoryDays:        v.GetInt("OPTIMIZER_HISTORY_DAYS"),
		},
	}
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Parameters converts the section into engine parameters. An unknown method
// is reported rather than silently replaced.
func (c ForecastConfig) Parameters() (forecast.Parameters, error) {
	method, err := forecast.ParseMethod(c.Method)
	if err != nil {
		return forecast.Parameters{}, fmt.Errorf("FORECAST_METHOD: %w", err)
	}
	return forecast.Parameters{
		Method:         method,
		LookbackDays:   c.LookbackDays,
		SeasonalPeriod: c.SeasonalPeriod,
		Alpha:          c.Alpha,
		Beta:           c.Beta,
		Gamma:          c.Gamma,
	}, nil
}

func (c OptimizerConfig) Parameters() optimizer.Parameters {
	return optimizer.Parameters{
		HoldingCostRate:    c.HoldingCostRate,
		OrderingCost:       c.OrderingCost,
		LeadTimeDays:       c.LeadTimeDays,
		ServiceLevelTarget: c.ServiceLevelTarget,
		Language:           c.Language,
	}
}
