package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jsoniter "github.com/json-iterator/go"

	"brewpos/internal/config"
	"brewpos/internal/events"
	"brewpos/internal/http/handlers"
	"brewpos/internal/jobs"
	applog "brewpos/internal/log"
	"brewpos/internal/repos"
	"brewpos/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, cfg.DBSeed)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Events
	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		log.Printf("[events] kafka brokers=%v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer pub.Close()

	// Idempotency keys: redis when configured, otherwise the database
	var idem services.IdempotencyStore = repos.NewIdempotencyRepo(db)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[warn] redis %s unreachable, using database idempotency keys: %v", cfg.RedisAddr, err)
		} else {
			idem = repos.NewRedisIdempotency(rdb, cfg.IdempotencyTTL)
			defer rdb.Close()
		}
	}

	deps := handlers.NewDeps(db, cfg, pub, idem)

	// Low-stock sweep
	sched := jobs.NewScheduler()
	if _, err := jobs.Schedule(sched, cfg.LowStockSchedule, &jobs.LowStockJob{Inv: deps.Inventory, Events: pub}); err != nil {
		log.Printf("[warn] low stock job not scheduled: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		JSONEncoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests."})
		},
	}))

	handlers.Mount(app, deps)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found."})
	})

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("[server] shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[server] %v", err)
	}
}
