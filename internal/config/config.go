package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）、Topic、消费者组
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Redis Stream outbox（capture 成功后入流，Relay 异步转 Kafka）
	PaymentEventStream   string
	PaymentEventGroup    string
	PaymentEventConsumer string

	// 支付网关凭证：KeyID 可下发前端，Secret 只用于服务端验签
	GatewayKeyID  string
	GatewaySecret string
	// 本部署固定单一币种
	Currency string

	// 下单接口限流与 capture 幂等锁
	CreateRateLimit  int
	CreateRateWindow time.Duration
	CaptureLockTTL   time.Duration
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DBPath:               getEnv("DB_PATH", "shop_backend.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              0,
		KafkaBrokers:         splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "shop-payment-events"),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "shop-payment-audit"),
		PaymentEventStream:   getEnv("PAYMENT_EVENT_STREAM", "shop:payment_events"),
		PaymentEventGroup:    getEnv("PAYMENT_EVENT_GROUP", "shop-relay-group"),
		PaymentEventConsumer: getEnv("PAYMENT_EVENT_CONSUMER", "shop-relay-1"),
		GatewayKeyID:         getEnv("RAZORPAY_KEY_ID", "rzp_test_key"),
		GatewaySecret:        getEnv("RAZORPAY_KEY_SECRET", "dev-gateway-secret"),
		Currency:             getEnv("ORDER_CURRENCY", "INR"),
		CreateRateLimit:      100,
		CreateRateWindow:     time.Second,
		CaptureLockTTL:       30 * time.Second,
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("CREATE_RATE_LIMIT", cfg.CreateRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CREATE_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("CREATE_RATE_LIMIT must be > 0")
	}
	cfg.CreateRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("CREATE_RATE_WINDOW_SEC", int(cfg.CreateRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CREATE_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("CREATE_RATE_WINDOW_SEC must be > 0")
	}
	cfg.CreateRateWindow = time.Duration(rateWindowSec) * time.Second

	lockTTLSec, err := getEnvInt("CAPTURE_LOCK_TTL_SEC", int(cfg.CaptureLockTTL.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CAPTURE_LOCK_TTL_SEC: %w", err)
	}
	if lockTTLSec <= 0 {
		return AppConfig{}, fmt.Errorf("CAPTURE_LOCK_TTL_SEC must be > 0")
	}
	cfg.CaptureLockTTL = time.Duration(lockTTLSec) * time.Second

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}
	if cfg.PaymentEventStream == "" {
		return AppConfig{}, fmt.Errorf("PAYMENT_EVENT_STREAM must not be empty")
	}
	if cfg.PaymentEventGroup == "" {
		return AppConfig{}, fmt.Errorf("PAYMENT_EVENT_GROUP must not be empty")
	}
	if cfg.PaymentEventConsumer == "" {
		return AppConfig{}, fmt.Errorf("PAYMENT_EVENT_CONSUMER must not be empty")
	}
	if cfg.GatewayKeyID == "" || cfg.GatewaySecret == "" {
		return AppConfig{}, fmt.Errorf("RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET must not be empty")
	}
	if len(cfg.Currency) != 3 {
		return AppConfig{}, fmt.Errorf("ORDER_CURRENCY must be a 3-letter code, got %q", cfg.Currency)
	}
	cfg.Currency = strings.ToUpper(cfg.Currency)

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
