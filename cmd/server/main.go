package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricing-service/config"
	"pricing-service/internal/api"
	"pricing-service/internal/broker"
	"pricing-service/internal/history"
	"pricing-service/internal/redisclient"
	"pricing-service/internal/service"
	"pricing-service/internal/store"
	"pricing-service/internal/util"
	"pricing-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting pricing service")

	tp, err := util.InitTracer("pricing-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	var catalog store.Catalog
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := store.NewPostgresCatalog(cfg.Store.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()
		catalog = pg
		log.Println("Postgres catalog connected")
	default:
		catalog = store.NewMemoryCatalog()
		if cfg.Store.SeedFile != "" {
			n, err := store.LoadSeed(context.Background(), catalog, cfg.Store.SeedFile)
			if err != nil {
				log.Fatalf("Failed to seed catalog: %v", err)
			}
			log.Printf("Catalog seeded with %d products", n)
		}
	}

	var cache service.Cache
	var redisClient *redisclient.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cache = redisClient
		log.Println("Redis connected")
	}

	var events service.Publisher
	var producer *broker.Producer
	if cfg.Kafka.Enabled {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog)
		defer producer.Close()
		events = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	recorder := history.NewRecorder()
	productService := service.NewProductService(catalog, recorder, cache, events)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var cacheWorker *worker.CacheWorker
	if cfg.Kafka.Enabled && cfg.Redis.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
		cacheWorker = worker.NewCacheWorker(consumer, cache)
		go func() {
			if err := cacheWorker.Start(workerCtx); err != nil {
				log.Printf("Cache worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(productService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if cacheWorker != nil {
		cacheWorker.Stop()
	}

	log.Println("Server exited")
}
