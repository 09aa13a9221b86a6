package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_backend/internal/config"
	"shop_backend/internal/gateway"
	"shop_backend/internal/model"
	"shop_backend/internal/queue"
	"shop_backend/internal/router"
	"shop_backend/internal/service"
	rediskey "shop_backend/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load", "err", err)
		os.Exit(1)
	}

	// 1. 连接 SQLite，自动建表
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		logger.Error("db open", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&model.Product{}, &model.Cart{}, &model.Order{}, &model.PaymentEvent{}); err != nil {
		logger.Error("db migrate", "err", err)
		os.Exit(1)
	}

	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer rdb.Close()

	// 2. 支付事件管道：capture → Redis Stream → Relay → Kafka → 审计落库
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	outbox := queue.NewStreamOutbox(rdb, cfg.PaymentEventStream)
	relay := queue.NewRelay(rdb, producer, cfg.PaymentEventStream, cfg.PaymentEventGroup, cfg.PaymentEventConsumer, logger)
	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, db, logger)
	defer consumer.Close()

	// 3. 核心订单服务
	gw := gateway.NewRazorpay(cfg.GatewayKeyID, cfg.GatewaySecret)
	lock := rediskey.NewCaptureLock(rdb, cfg.CaptureLockTTL)
	svc := service.New(db, gw, lock, outbox, service.Config{
		GatewayKeyID:  cfg.GatewayKeyID,
		GatewaySecret: cfg.GatewaySecret,
		Currency:      cfg.Currency,
	}, logger)

	r := gin.Default()
	router.Setup(r, db, rdb, svc, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go relay.Run(ctx)
	go consumer.Run(ctx)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "err", err)
		}
	}()

	logger.Info("server listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http serve", "err", err)
		os.Exit(1)
	}
}
