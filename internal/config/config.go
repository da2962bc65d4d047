// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Forecast ForecastConfig
	Storage  StorageConfig
	Drive    DriveConfig
	LogLevel string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
	SnapshotTTLSeconds int
}

// ForecastConfig holds the predictive-inventory engine tunables
type ForecastConfig struct {
	MinDaysWithData          int
	CriticalDays             float64
	WarningDays              float64
	DefaultLowStockThreshold int
	ConfidenceSaturation     int
	VariancePenalty          float64
	TopN                     int
}

// StorageConfig describes the S3-compatible bucket holding snapshot exports
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "novaware")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 3600)
		viper.SetDefault("FORECAST_MIN_DAYS", 30)
		viper.SetDefault("FORECAST_CRITICAL_DAYS", 7)
		viper.SetDefault("FORECAST_WARNING_DAYS", 14)
		viper.SetDefault("FORECAST_DEFAULT_LOW_STOCK_THRESHOLD", 10)
		viper.SetDefault("FORECAST_CONFIDENCE_SATURATION", 30)
		viper.SetDefault("FORECAST_VARIANCE_PENALTY", 0.5)
		viper.SetDefault("FORECAST_TOP_N", 5)
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
				SnapshotTTLSeconds: viper.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
			},
			Forecast: ForecastConfig{
				MinDaysWithData:          viper.GetInt("FORECAST_MIN_DAYS"),
				CriticalDays:             viper.GetFloat64("FORECAST_CRITICAL_DAYS"),
				WarningDays:              viper.GetFloat64("FORECAST_WARNING_DAYS"),
				DefaultLowStockThreshold: viper.GetInt("FORECAST_DEFAULT_LOW_STOCK_THRESHOLD"),
				ConfidenceSaturation:     viper.GetInt("FORECAST_CONFIDENCE_SATURATION"),
				VariancePenalty:          viper.GetFloat64("FORECAST_VARIANCE_PENALTY"),
				TopN:                     viper.GetInt("FORECAST_TOP_N"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
			},
			LogLevel: viper.GetString("LOG_LEVEL"),
		}
	})

	return instance
}
