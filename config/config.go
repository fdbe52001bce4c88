package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Upstream    UpstreamConfig
	Realtime    RealtimeConfig
	Cart        CartConfig
	Persistence PersistenceConfig
	Observ      ObservabilityConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type UpstreamConfig struct {
	TenantID  string
	AuthToken string
	BaseURL   string
	Timeout   time.Duration
}

type RealtimeConfig struct {
	URL               string
	MaxReconnects     int
	ReconnectInterval time.Duration
}

type CartConfig struct {
	MaxUnits       int
	TaxRatePercent int
}

type PersistenceConfig struct {
	Driver     string // none | sqlite | redis
	SQLitePath string
	RedisAddr  string
	RedisPass  string
	RedisDB    int
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

func Load() *Config {
	_ = godotenv.Load()

	timeoutSecs, _ := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "10"))
	maxReconnects, _ := strconv.Atoi(getEnv("REALTIME_MAX_RECONNECTS", "5"))
	reconnectSecs, _ := strconv.Atoi(getEnv("REALTIME_RECONNECT_SECONDS", "3"))
	maxUnits, _ := strconv.Atoi(getEnv("CART_MAX_UNITS", "10"))
	taxRate, _ := strconv.Atoi(getEnv("CART_TAX_RATE_PERCENT", "18"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Upstream: UpstreamConfig{
			TenantID:  getEnv("TENANT_ID", ""),
			AuthToken: getEnv("AUTH_TOKEN", ""),
			BaseURL:   getEnv("UPSTREAM_BASE_URL", "http://localhost:3000"),
			Timeout:   time.Duration(timeoutSecs) * time.Second,
		},
		Realtime: RealtimeConfig{
			URL:               getEnv("REALTIME_URL", "ws://localhost:3000/real-time-updates"),
			MaxReconnects:     maxReconnects,
			ReconnectInterval: time.Duration(reconnectSecs) * time.Second,
		},
		Cart: CartConfig{
			MaxUnits:       maxUnits,
			TaxRatePercent: taxRate,
		},
		Persistence: PersistenceConfig{
			Driver:     getEnv("PERSISTENCE_DRIVER", "none"),
			SQLitePath: getEnv("SQLITE_PATH", "storefront.db"),
			RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPass:  getEnv("REDIS_PASSWORD", ""),
			RedisDB:    redisDB,
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, tenant=%s", cfg.Server.Env, cfg.Server.Port, cfg.Upstream.TenantID)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
