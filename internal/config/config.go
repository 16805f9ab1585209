package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration values.
type Config struct {
	Port              string `yaml:"port"`
	DatabaseURL       string `yaml:"database_url"`
	HistoryLimit      int    `yaml:"history_limit"`
	DefaultBackend    string `yaml:"default_backend"`
	RequestTimeoutSec int    `yaml:"request_timeout_seconds"`
	TemplatesFile     string `yaml:"templates_file"`
	AdminPasswordHash string `yaml:"admin_password_hash"`

	Media      MediaConfig      `yaml:"media"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Qwen       QwenConfig       `yaml:"qwen"`
	NanoBanana NanoBananaConfig `yaml:"nanobanana"`
	Vertex     VertexConfig     `yaml:"vertex"`
	Redis      RedisConfig      `yaml:"redis"`
}

// MediaConfig describes where inputs and outputs are stored.
type MediaConfig struct {
	Dir             string `yaml:"dir"`
	WebPCopy        bool   `yaml:"webp_copy"`
	WebPQuality     int    `yaml:"webp_quality"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PublicURL       string `yaml:"public_url"`
	KeyPrefix       string `yaml:"key_prefix"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// GeminiConfig covers both the SDK image backends and the REST vision client.
type GeminiConfig struct {
	APIKey             string `yaml:"api_key"`
	ImageModel         string `yaml:"image_model"`
	VisionModel        string `yaml:"vision_model"`
	AdvisorModel       string `yaml:"advisor_model"`
	BaseURL            string `yaml:"base_url"`
	ServiceAccountJSON string `yaml:"service_account_json"`
	PreAnalysis        bool   `yaml:"pre_analysis"`
}

// QwenConfig describes the DashScope backend.
type QwenConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// NanoBananaConfig describes the OpenAI-compatible backend.
type NanoBananaConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// VertexConfig describes the Imagen backend.
type VertexConfig struct {
	ProjectID          string `yaml:"project_id"`
	Location           string `yaml:"location"`
	ImagenModel        string `yaml:"imagen_model"`
	ServiceAccountFile string `yaml:"service_account_file"`
	ServiceAccountJSON string `yaml:"service_account_json"`
}

// RedisConfig describes the analysis cache.
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	TLS             bool   `yaml:"tls"`
	Prefix          string `yaml:"prefix"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:              "8080",
		HistoryLimit:      20,
		DefaultBackend:    "gemini",
		RequestTimeoutSec: 60,
		Media: MediaConfig{
			Dir:         "media",
			WebPQuality: 80,
		},
		Gemini: GeminiConfig{
			ImageModel:  "gemini-2.5-flash-image",
			VisionModel: "gemini-2.5-flash",
		},
		Qwen: QwenConfig{
			BaseURL: "https://dashscope-intl.aliyuncs.com/api/v1",
			Model:   "qwen-image-edit-plus",
		},
		NanoBanana: NanoBananaConfig{
			Model: "gemini-2.5-flash-image",
		},
		Vertex: VertexConfig{
			Location:    "us-central1",
			ImagenModel: "imagen-3.0-capability-001",
		},
		Redis: RedisConfig{
			CacheTTLMinutes: 1440,
		},
	}
}

// Load reads .env (if present), then the optional YAML file at path, then lets
// environment variables override both.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: could not read .env: %v", err)
	}

	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if strings.TrimSpace(cfg.Port) == "" {
		return Config{}, fmt.Errorf("config: APP_PORT cannot be empty")
	}
	cfg.Media.KeyPrefix = strings.Trim(cfg.Media.KeyPrefix, "/")
	return cfg, nil
}

// RequestTimeout bounds a single backend call.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// AnalysisCacheTTL is how long pre-analysis descriptions stay cached.
func (c Config) AnalysisCacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLMinutes) * time.Minute
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "APP_PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setInt(&cfg.HistoryLimit, "HISTORY_LIMIT")
	setString(&cfg.DefaultBackend, "DEFAULT_BACKEND")
	setInt(&cfg.RequestTimeoutSec, "REQUEST_TIMEOUT_SECONDS")
	setString(&cfg.TemplatesFile, "TEMPLATES_FILE")
	setString(&cfg.AdminPasswordHash, "ADMIN_PASSWORD_HASH")

	setString(&cfg.Media.Dir, "MEDIA_DIR")
	setBool(&cfg.Media.WebPCopy, "WEBP_COPY")
	setInt(&cfg.Media.WebPQuality, "WEBP_QUALITY")
	setString(&cfg.Media.Bucket, "S3_BUCKET")
	setString(&cfg.Media.Region, "S3_REGION")
	setString(&cfg.Media.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Media.PublicURL, "S3_PUBLIC_URL")
	setString(&cfg.Media.KeyPrefix, "S3_KEY_PREFIX")
	setBool(&cfg.Media.ForcePathStyle, "S3_FORCE_PATH_STYLE")
	setString(&cfg.Media.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.Media.SecretAccessKey, "S3_SECRET_ACCESS_KEY")

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.ImageModel, "GEMINI_IMAGE_MODEL")
	setString(&cfg.Gemini.VisionModel, "GEMINI_VISION_MODEL")
	setString(&cfg.Gemini.AdvisorModel, "GEMINI_ADVISOR_MODEL")
	setString(&cfg.Gemini.BaseURL, "GEMINI_BASE_URL")
	setString(&cfg.Gemini.ServiceAccountJSON, "GEMINI_SERVICE_ACCOUNT_JSON")
	setBool(&cfg.Gemini.PreAnalysis, "PRE_ANALYSIS")

	setString(&cfg.Qwen.APIKey, "QWEN_API_KEY")
	setString(&cfg.Qwen.BaseURL, "QWEN_BASE_URL")
	setString(&cfg.Qwen.Model, "QWEN_MODEL")

	setString(&cfg.NanoBanana.APIKey, "NANOBANANA_API_KEY")
	setString(&cfg.NanoBanana.BaseURL, "NANOBANANA_BASE_URL")
	setString(&cfg.NanoBanana.Model, "NANOBANANA_MODEL")

	setString(&cfg.Vertex.ProjectID, "VERTEX_PROJECT_ID")
	setString(&cfg.Vertex.Location, "VERTEX_LOCATION")
	setString(&cfg.Vertex.ImagenModel, "VERTEX_IMAGEN_MODEL")
	setString(&cfg.Vertex.ServiceAccountFile, "VERTEX_SERVICE_ACCOUNT_FILE")
	setString(&cfg.Vertex.ServiceAccountJSON, "VERTEX_SERVICE_ACCOUNT_JSON")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setBool(&cfg.Redis.TLS, "REDIS_TLS")
	setString(&cfg.Redis.Prefix, "REDIS_PREFIX")
	setInt(&cfg.Redis.CacheTTLMinutes, "ANALYSIS_CACHE_TTL_MINUTES")
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setBool(dst *bool, key string) {
	*dst = getenvBool(key, *dst)
}

func setInt(dst *int, key string) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Printf("config: ignoring %s=%q: %v", key, val, err)
		return
	}
	*dst = parsed
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}
