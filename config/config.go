package config

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Config carries the tunables the catalog service reads at startup.
// Every field has a working default so a bare environment still boots.
type Config struct {
	HTTPAddr   string
	PublicBase string

	BranchTTL time.Duration
	MenuTTL   time.Duration
	SalesTTL  time.Duration

	FetchTimeout  time.Duration
	ConfigTimeout time.Duration

	QueueKey       string
	ReplayInterval time.Duration

	KafkaTopic string
}

func Load() Config {
	return Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8084"),
		PublicBase:     getEnv("PUBLIC_BASE_URL", "http://localhost:8084"),
		BranchTTL:      getDuration("CACHE_TTL_BRANCHES", 5*time.Minute),
		MenuTTL:        getDuration("CACHE_TTL_MENU", 3*time.Minute),
		SalesTTL:       getDuration("CACHE_TTL_SALES", time.Minute),
		FetchTimeout:   getDuration("FETCH_TIMEOUT", 30*time.Second),
		ConfigTimeout:  getDuration("CONFIG_TIMEOUT", 5*time.Second),
		QueueKey:       getEnv("WRITE_QUEUE_KEY", "catalog:write-queue"),
		ReplayInterval: getDuration("REPLAY_INTERVAL", time.Minute),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "catalog-orders"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func MustInitPostgres() *sql.DB {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")

	connStr := "host=" + dbHost + " port=" + dbPort + " user=" + dbUser +
		" password=" + dbPassword + " dbname=" + dbName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(os.Getenv("KAFKA_BROKER")),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}
