package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string            `json:"port"`
	PublicBaseURL string            `json:"public_base_url"`
	AdminSecret   string            `json:"admin_secret"`
	StreamToken   StreamTokenConfig `json:"stream_token"`
	Origin        OriginConfig      `json:"origin"`
	Cache         CacheConfig       `json:"cache"`
	Settings      SettingsConfig    `json:"settings"`
	Tasks         TasksConfig       `json:"tasks"`
	Redis         RedisConfig       `json:"redis"`
	CORS          CORSConfig        `json:"cors"`
	Log           LogConfig         `json:"log"`
}

// StreamTokenConfig holds the shared secret for signed streaming URLs.
// Rotating the secret invalidates every token signed with the old one.
type StreamTokenConfig struct {
	Secret string `json:"secret"`
}

// OriginConfig describes the internal media origin the proxy forwards to
// and the catalog client reads from.
type OriginConfig struct {
	BaseURL  string `json:"base_url"`
	APIToken string `json:"api_token"`
}

// CacheConfig selects the timeline-preview asset store backend.
type CacheConfig struct {
	Provider  string `json:"provider"` // "local", "minio" or "gcs"
	LocalPath string `json:"local_path"`

	MinIOEndpoint  string `json:"minio_endpoint"`
	MinIOAccessKey string `json:"minio_access_key"`
	MinIOSecretKey string `json:"minio_secret_key"`
	MinIOBucket    string `json:"minio_bucket"`
	MinIOUseSSL    bool   `json:"minio_use_ssl"`

	GCSBucket string `json:"gcs_bucket"`
}

// SettingsConfig points at the externally managed library settings document.
type SettingsConfig struct {
	Path string `json:"path"`
}

// TasksConfig holds the schedules for the batch tasks. A zero interval
// disables the periodic trigger for that task.
type TasksConfig struct {
	GenerationInterval time.Duration `json:"generation_interval"`
	CleanupInterval    time.Duration `json:"cleanup_interval"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers"`
}

type LogConfig struct {
	Level string `json:"log_level"`
}

func init() {
	if !isGCP {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not find or load .env file.")
		}
	}
}

func NewConfig() *Config {
	return &Config{
		Port:          getOptionalSecret("PORT", "8080"),
		PublicBaseURL: getRequiredSecret("PUBLIC_BASE_URL"),
		AdminSecret:   getRequiredSecret("ADMIN_JWT_SECRET"),
		StreamToken: StreamTokenConfig{
			Secret: getRequiredSecret("STREAM_TOKEN_SECRET"),
		},
		Origin: OriginConfig{
			BaseURL:  getRequiredSecret("ORIGIN_BASE_URL"),
			APIToken: getOptionalSecret("ORIGIN_API_TOKEN", ""),
		},
		Cache: CacheConfig{
			Provider:       getOptionalSecret("CACHE_PROVIDER", "local"),
			LocalPath:      getOptionalSecret("CACHE_LOCAL_PATH", "./data/timeline-cache"),
			MinIOEndpoint:  getOptionalSecret("CACHE_MINIO_ENDPOINT", ""),
			MinIOAccessKey: getOptionalSecret("CACHE_MINIO_ACCESS_KEY", ""),
			MinIOSecretKey: getOptionalSecret("CACHE_MINIO_SECRET_KEY", ""),
			MinIOBucket:    getOptionalSecret("CACHE_MINIO_BUCKET", "timeline-cache"),
			MinIOUseSSL:    parseBoolOptional("CACHE_MINIO_USE_SSL", false),
			GCSBucket:      getOptionalSecret("CACHE_GCS_BUCKET", ""),
		},
		Settings: SettingsConfig{
			Path: getOptionalSecret("LIBRARY_SETTINGS_PATH", "./data/library-settings.json"),
		},
		Tasks: TasksConfig{
			GenerationInterval: parseDurationOptional("GENERATION_INTERVAL", 0),
			CleanupInterval:    parseDurationOptional("CLEANUP_INTERVAL", 0),
		},
		Redis: RedisConfig{
			Enabled:  parseBoolOptional("REDIS_ENABLED", false),
			Host:     getOptionalSecret("REDIS_HOST", "localhost"),
			Port:     getOptionalSecret("REDIS_PORT", "6379"),
			Password: getOptionalSecret("REDIS_PASSWORD", ""),
			DB:       parseIntOptional("REDIS_DB", 0),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getOptionalSecret("CORS_ALLOWED_ORIGINS", "*")),
			AllowedMethods: splitList(getOptionalSecret("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders: splitList(getOptionalSecret("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,Range")),
		},
		Log: LogConfig{
			Level: getOptionalSecret("LOG_LEVEL", "info"),
		},
	}
}
