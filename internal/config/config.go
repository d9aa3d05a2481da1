package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port          int
	Env           string
	DBDSN         string
	RedisURL      string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	JWTSecret     string
	AllowOrigins  []string

	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig

	Backup  BackupConfig
	Storage StorageConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// BackupConfig controla exportações periódicas de demandas.
type BackupConfig struct {
	Dir               string
	Interval          time.Duration
	RetentionInterval time.Duration
	RetentionMax      int
}

// StorageConfig define o destino opcional para cópias externas dos backups.
type StorageConfig struct {
	Provider    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.Env = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "development")))

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.Backup.Dir = getEnv("BACKUP_DIR", "backups")

	backupInterval, err := parseDurationEnv("BACKUP_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Backup.Interval = backupInterval

	retentionInterval, err := parseDurationEnv("BACKUP_RETENTION_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Backup.RetentionInterval = retentionInterval

	retentionMax, err := strconv.Atoi(getEnv("BACKUP_RETENTION_MAX", "10"))
	if err != nil || retentionMax <= 0 {
		return nil, errors.New("BACKUP_RETENTION_MAX inválido")
	}
	cfg.Backup.RetentionMax = retentionMax

	cfg.Storage = StorageConfig{
		Provider:    strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", ""))),
		S3Endpoint:  getEnv("STORAGE_S3_ENDPOINT", ""),
		S3Region:    getEnv("STORAGE_S3_REGION", "auto"),
		S3Bucket:    getEnv("STORAGE_S3_BUCKET", ""),
		S3AccessKey: getEnv("STORAGE_S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("STORAGE_S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("STORAGE_S3_PUBLIC_URL", ""),
	}

	return cfg, nil
}

// IsProduction indica se a API roda em modo produção.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
