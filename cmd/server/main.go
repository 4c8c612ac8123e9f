package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fxdesk/tradeflow-api/internal/config"
	"github.com/fxdesk/tradeflow-api/internal/demo"
	"github.com/fxdesk/tradeflow-api/internal/store"
	"github.com/fxdesk/tradeflow-api/internal/trading"
	"github.com/fxdesk/tradeflow-api/pkg/middleware"
)

// configureLogging sets up zerolog from the logging section of the config.
// Console output gets pretty printing outside production; a configured log
// file rotates through lumberjack.
func configureLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if os.Getenv("ENV") != "production" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	if cfg.Logging.File != "" {
		fileOut := &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = zerolog.MultiLevelWriter(out, fileOut)
	}

	zlog.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// main initializes and runs the trade approval API server with graceful
// shutdown support. Exit code 0 on clean shutdown, non-zero on
// initialization failure.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	configureLogging(cfg)

	// Select the snapshot store backend
	var tradeStore store.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		gormStore, err := store.OpenSQLite(cfg.Storage.DSN)
		if err != nil {
			zlog.Fatal().Err(err).Msg("Failed to initialize sqlite store")
		}
		tradeStore = gormStore
	default:
		tradeStore = store.NewMemoryStore()
	}

	engine, err := trading.NewEngine(tradeStore, cfg.Engine.MachineID)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize engine")
	}

	if cfg.DevMode() {
		demo.Run(engine)
	}

	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimit())

	handlers := trading.NewGinHandlers(engine)
	setupRoutes(router, handlers)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zlog.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures the trade lifecycle endpoints.
func setupRoutes(router *gin.Engine, handlers *trading.GinHandlers) {
	router.GET("/hello", handlers.HelloHandler())

	trade := router.Group("/trade")
	{
		trade.POST("", handlers.CreateTradeHandler())
		trade.GET("", handlers.ListTradesHandler())
		trade.GET("/:id", handlers.GetStatusHandler())
		trade.DELETE("/:id", handlers.CancelTradeHandler())
		trade.GET("/:id/details", handlers.GetDetailsHandler())
		trade.PUT("/:id/details", handlers.UpdateDetailsHandler())
		trade.POST("/:id/submit", handlers.SubmitTradeHandler())
		trade.POST("/:id/approve", handlers.ApproveTradeHandler())
		trade.POST("/:id/send", handlers.SendTradeHandler())
		trade.POST("/:id/book", handlers.BookTradeHandler())
		trade.GET("/:id/history", handlers.GetHistoryHandler())
		trade.GET("/:id/diff", handlers.TradeDiffHandler())
	}
}
