package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/api"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/auth"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/config"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/events"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/gateway"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/logger"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/presence"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/repository"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/translation"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt secret is required")
	}

	zl, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	mongoClient, err := repository.NewMongoClient(cfg)
	if err != nil {
		zl.Fatalw("mongo connect", "error", err)
	}
	db := mongoClient.Database(cfg.Mongo.Database)
	roomStore := repository.NewMongoRoomStore(db.Collection("rooms"))
	messageStore := repository.NewMongoMessageStore(db.Collection("messages"))
	userStore := repository.NewMongoUserStore(db.Collection("users"))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zl.Fatalw("redis ping", "error", err)
	}
	cancelPing()

	tracker := presence.NewRedisTracker(rdb, cfg.Redis.Prefix)

	var cache translation.Cache
	if cfg.Translation.CacheBackend == "redis" {
		cache = translation.NewRedisCache(rdb, cfg.Redis.Prefix, cfg.CacheTTL)
	} else {
		cache = translation.NewMemoryCache(cfg.CacheTTL)
	}
	upstream := translation.NewGoogleTranslator(
		cfg.Translation.Endpoint,
		cfg.TranslationTimeout,
		cfg.Translation.RatePerSecond,
		cfg.Translation.RateBurst,
	)
	translator := translation.NewService(upstream, cache, cfg.TranslationTimeout, cfg.Translation.FallbackLanguage, zl)

	var publisher events.Publisher
	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageSent)
		publisher = producer
	}

	validator := auth.NewValidator(cfg.JWT.Secret)
	hub := gateway.NewHub()
	gw := gateway.New(hub, roomStore, messageStore, userStore, tracker, translator, publisher, zl)
	wsrv := gateway.NewServer(gw, userStore, validator, cfg, zl)

	handler := api.NewHandler(roomStore, messageStore, userStore, tracker, translator, zl)
	limiter := api.NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.RateLimit.Requests, cfg.RateLimitWindow)
	app := api.NewServer(cfg, handler, wsrv, validator, limiter)

	errs := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.App.Port)
		zl.Infow("starting server", "addr", addr)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zl.Fatalw("server error", "error", err)
	case s := <-sig:
		zl.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		zl.Warnw("fiber shutdown", "error", err)
	}
	if producer != nil {
		_ = producer.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = mongoClient.Disconnect(shutdownCtx)
	_ = rdb.Close()
	zl.Info("shut down")
}
