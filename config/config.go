package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取 / populated from environment variables.
type Config struct {
	ListenAddr string

	DBDriver string // "postgres" or "sqlite"
	DBHost   string
	DBUser   string
	DBPass   string
	DBName   string
	DBPort   string
	DBPath   string // sqlite file, ":memory:" allowed

	RedisAddr string
	RedisPwd  string

	TokenSecret string
	TokenTTL    time.Duration
	// BootstrapToken, when non-empty, is accepted without signature
	// verification and resolves to the bootstrap admin. Leave empty in
	// production.
	BootstrapToken string

	BootstrapAdminUser  string
	BootstrapAdminPass  string
	BootstrapAdminEmail string

	MaxFrameSize  uint32
	LoanPeriod    int // days
	SweepInterval time.Duration
	SeenThrottle  time.Duration
}

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getSeconds(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	return Config{
		ListenAddr: get("LISTEN_ADDR", "127.0.0.1:9000"),

		DBDriver: get("DB_DRIVER", "postgres"),
		DBHost:   get("DB_HOST", "127.0.0.1"),
		DBUser:   get("DB_USER", "postgres"),
		DBPass:   os.Getenv("DB_PASSWORD"),
		DBName:   get("DB_NAME", "library"),
		DBPort:   get("DB_PORT", "5432"),
		DBPath:   get("DB_PATH", "library.db"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),

		TokenSecret:    get("TOKEN_SECRET", "dev-only-secret"),
		TokenTTL:       getSeconds("TOKEN_TTL_SECONDS", time.Hour),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		BootstrapAdminUser:  get("BOOTSTRAP_ADMIN_USER", "admin"),
		BootstrapAdminPass:  os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		BootstrapAdminEmail: get("BOOTSTRAP_ADMIN_EMAIL", "admin@library.local"),

		MaxFrameSize:  uint32(getInt("MAX_FRAME_BYTES", 16<<20)),
		LoanPeriod:    getInt("LOAN_PERIOD_DAYS", 14),
		SweepInterval: getSeconds("SWEEP_INTERVAL_SECONDS", 10*time.Minute),
		SeenThrottle:  getSeconds("SEEN_THROTTLE_SECONDS", 5*time.Minute),
	}
}
