package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khoomi-api-io/storefront/internal/config"
	"khoomi-api-io/storefront/internal/container"
	"khoomi-api-io/storefront/internal/pubsub"
	"khoomi-api-io/storefront/internal/routers"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	log := util.Logger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := util.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	redisClient, err := util.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	serviceContainer := container.NewServiceContainer(cfg, mongoClient.Database(cfg.DBName), redisClient)
	defer func() {
		if err := serviceContainer.Close(); err != nil {
			log.Error("failed to close order writer", zap.Error(err))
		}
	}()

	go func() {
		err := pubsub.NewPublisher(redisClient).Subscribe(ctx, serviceContainer.HandleCacheMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cache subscription ended", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           routers.InitRoute(serviceContainer, cfg.RateLimit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("storefront listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
