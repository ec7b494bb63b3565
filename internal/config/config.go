package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const defaultSQLiteDSN = "file:brewpos.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_txlock=immediate"

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	DBSeed   bool
	LogFile  string

	OrderTimeout time.Duration
	StrictAddons bool

	KafkaBrokers []string
	KafkaTopic   string

	RedisAddr      string
	IdempotencyTTL time.Duration

	LowStockSchedule string
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func Load() Config {
	driver := strings.ToLower(env("DB_DRIVER", "sqlite"))
	dsn := env("DB_DSN", "")
	if dsn == "" && driver == "sqlite" {
		dsn = defaultSQLiteDSN // sqlite file in working directory
	}

	var brokers []string
	for _, b := range strings.Split(env("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	cfg := Config{
		Port:             env("PORT", "8080"),
		DBDriver:         driver,
		DBDSN:            dsn,
		DBSeed:           cast.ToBool(env("DB_SEED", "true")),
		LogFile:          env("LOG_FILE", "./brewpos.log"),
		OrderTimeout:     durationOr(env("ORDER_TIMEOUT", ""), 10*time.Second),
		StrictAddons:     cast.ToBool(env("STRICT_ADDONS", "false")),
		KafkaBrokers:     brokers,
		KafkaTopic:       env("KAFKA_TOPIC", "pos-events"),
		RedisAddr:        env("REDIS_ADDR", ""),
		IdempotencyTTL:   durationOr(env("IDEMPOTENCY_TTL", ""), 24*time.Hour),
		LowStockSchedule: env("LOW_STOCK_SCHEDULE", "@every 15m"),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_SEED=%t LOG_FILE=%s ORDER_TIMEOUT=%s STRICT_ADDONS=%t KAFKA_BROKERS=%v REDIS_ADDR=%s LOW_STOCK_SCHEDULE=%q",
		cfg.Port, cfg.DBDriver, cfg.DBSeed, cfg.LogFile, cfg.OrderTimeout, cfg.StrictAddons, cfg.KafkaBrokers, cfg.RedisAddr, cfg.LowStockSchedule)
	return cfg
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := cast.ToDurationE(s)
	if err != nil || d <= 0 {
		log.Printf("[config] ignoring bad duration %q, using %s", s, def)
		return def
	}
	return d
}
