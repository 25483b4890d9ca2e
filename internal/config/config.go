// Package config собирает настройки приложения из окружения и .env файлов.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort           = "8080"
	DefaultUploadDir      = "uploads/productos"
	DefaultUploadMaxBytes = 4 << 20
	DefaultCartTTL        = 2 * time.Hour

	devSessionSecret = "dev_fallback_secret"
)

// Config — все параметры, которые читает сервер
type Config struct {
	Env  string
	Port string

	DBDriver string
	DBDSN    string

	SessionSecret string

	UploadDir      string
	UploadURL      string
	UploadMaxBytes int64
	StorageDisk    string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Key       string
	S3Secret    string
	S3PublicURL string

	CartStore string
	CartTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load грузит .env из текущей папки, родительской и корня репо (когда запускаем из cmd/server),
// затем читает переменные окружения. Отсутствующие файлы не ошибка.
func Load() Config {
	for _, f := range []string{".env", "../.env", "../../.env"} {
		_ = godotenv.Overload(f)
	}
	return FromEnv()
}

// FromEnv читает Config только из окружения
func FromEnv() Config {
	return Config{
		Env:  get("APP_ENV", "local"),
		Port: get("APP_PORT", DefaultPort),

		DBDriver: strings.ToLower(get("DB_DRIVER", "postgres")),
		DBDSN:    get("DB_DSN", ""),

		SessionSecret: get("SESSION_SECRET", ""),

		UploadDir:      get("UPLOAD_DIR", DefaultUploadDir),
		UploadURL:      strings.TrimRight(get("UPLOAD_URL", "/uploads/productos"), "/"),
		UploadMaxBytes: int64(getInt("UPLOAD_MAX_BYTES", DefaultUploadMaxBytes)),
		StorageDisk:    strings.ToLower(get("STORAGE_DISK", "local")),

		S3Bucket:    get("S3_BUCKET", ""),
		S3Region:    get("S3_REGION", "us-east-1"),
		S3Endpoint:  get("S3_ENDPOINT", ""),
		S3Key:       get("S3_KEY", ""),
		S3Secret:    get("S3_SECRET", ""),
		S3PublicURL: strings.TrimRight(get("S3_URL", ""), "/"),

		CartStore: strings.ToLower(get("CART_STORE", "memory")),
		CartTTL:   getDuration("CART_TTL", DefaultCartTTL),

		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
	}
}

// IsProduction — true для APP_ENV=production|prod
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Secret возвращает ключ для cookie-сессий и CSRF; пустой заменяется дефолтом, чтобы не падало
func (c Config) Secret() (secret string, fallback bool) {
	if c.SessionSecret == "" {
		return devSessionSecret, true
	}
	return c.SessionSecret, false
}

func get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
