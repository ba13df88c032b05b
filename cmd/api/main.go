package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"forge-api/internal/handlers/generate"
	"forge-api/internal/middleware"
	"forge-api/internal/routers"
	"forge-api/internal/shared"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manifold-inc/manifold-sdk/lib/eflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Flags / ENV Variables
	refinerEndpoint := flag.String("refiner-endpoint", "", "Prompt refiner chat-completions URL")
	refinerAPIKey := flag.String("refiner-api-key", "", "Prompt refiner API key")
	refinerModel := flag.String("refiner-model", "", "Prompt refiner model name")
	coderEndpoint := flag.String("coder-endpoint", "", "Code generator chat-completions URL")
	coderAPIKey := flag.String("coder-api-key", "", "Code generator API key")
	coderModel := flag.String("coder-model", "", "Code generator model name")

	dsn := flag.String("dsn", "", "History DSN (optional)")
	redisAddr := flag.String("redis-addr", "", "Redis host:port for rate limiting (optional)")
	rateLimitRPM := flag.Int("rate-limit-rpm", shared.DefaultRateLimitRPM, "Requests per minute per IP")
	metricsAPIKey := flag.String("metrics-api-key", "", "Metrics api key")
	debug := flag.Bool("debug", false, "Debug enabled")

	err := eflag.SetFlagsFromEnvironment()
	if err != nil {
		panic(err)
	}
	flag.Parse()

	if *refinerEndpoint == "" || *refinerAPIKey == "" {
		panic("refiner endpoint and API key are required")
	}
	if *coderEndpoint == "" || *coderAPIKey == "" {
		panic("coder endpoint and API key are required")
	}

	// History DB init, only when configured
	var historyDB *sql.DB
	if *dsn != "" {
		historyDB, err = sql.Open("mysql", *dsn)
		if err != nil {
			panic(fmt.Sprintf("failed initializing sqlClient: %s", err))
		}
		err = historyDB.Ping()
		if err != nil {
			panic(fmt.Sprintf("failed ping to sql db: %s", err))
		}
	}

	// Redis connection, only when rate limiting is enabled
	var redisClient *redis.Client
	if *redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     *redisAddr,
			Password: "",
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			panic(fmt.Sprintf("failed ping to redis db: %s", err))
		}
	}

	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if historyDB != nil {
			_ = historyDB.Close()
		}
	}()

	var logger *zap.Logger
	if !*debug {
		logger, err = zap.NewProduction()
		if err != nil {
			panic("Failed init logger")
		}
	}
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic("Failed init logger")
		}
	}
	log := logger.Sugar()

	e := echo.New()
	e.GET(("/ping"), func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey, err := shared.ExtractAPIKey(c)
			if err != nil {
				return c.String(401, "Missing or invalid API key")
			}

			if apiKey != *metricsAPIKey {
				return c.String(401, "Unauthorized API key")
			}
			return next(c)
		}
	})
	base := e.Group("")
	base.Use(middleware.NewRecoverMiddleware(log))
	base.Use(middleware.NewTrackMiddleware(log))
	if redisClient != nil {
		base.Use(middleware.NewRateLimitMiddleware(redisClient, *rateLimitRPM))
		log.Info("Rate limiting enabled")
	}

	// Register routes
	shutdown, err := routers.RegisterGenerateRoutes(base, routers.GenerateRouterConfig{
		RefinerEndpoint: generate.Endpoint{
			URL:    *refinerEndpoint,
			APIKey: *refinerAPIKey,
			Model:  *refinerModel,
		},
		CoderEndpoint: generate.Endpoint{
			URL:    *coderEndpoint,
			APIKey: *coderAPIKey,
			Model:  *coderModel,
		},
		HistoryDB: historyDB,
	}, log)
	if err != nil {
		panic(err)
	}
	defer shutdown()

	go func() {
		if err := e.Start(":80"); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Wait for interrupt signal to gracefully shut down the server.
	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shared.DefaultShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
