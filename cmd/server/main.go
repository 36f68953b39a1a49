package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/basket/internal/app"
	"github.com/agenthands/basket/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfgPath)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close(context.Background())
	logger := a.Logger

	if err := a.LoadData(ctx); err != nil {
		logger.Fatal("failed to load transactions", zap.Error(err))
	}
	if a.Driver != nil {
		if err := a.Basket.BuildIndices(ctx); err != nil {
			logger.Warn("failed to build indices", zap.Error(err))
		}
	}

	if !a.Config.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(a.Basket, a.Config, logger, a.Registry)
	httpServer := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: srv.SetupRouter(),
	}

	go func() {
		logger.Info("starting server", zap.String("port", a.Config.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
