package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once at startup and passed by injection into every
// component that needs it. There is no global singleton.
type Config struct {
	Addr     string
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
}

// DatabaseConfig captures the master store connection settings.
type DatabaseConfig struct {
	URL string
}

// RedisConfig captures connection settings for the optional login-lockout
// store. An empty URL disables Redis-backed lockout (in-memory fallback).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures the optional audit event sink. Empty brokers disable
// Kafka publishing (audit events stay in the local store).
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// JWTConfig captures token signing settings. Key and algorithm are fixed per
// deployment; there is no rotation support.
type JWTConfig struct {
	SigningKey string
	Algorithm  string
	TTL        time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("ORGHUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/org_master?sslmode=disable"
	}

	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		// Development default - must be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	algorithm := os.Getenv("JWT_ALGORITHM")
	if algorithm == "" {
		algorithm = "HS256"
	}

	ttlMinutes := envInt("ACCESS_TOKEN_TTL_MINUTES", 60)

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "orghub.audit"
	}

	return Config{
		Addr:     addr,
		Database: DatabaseConfig{URL: dbURL},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{Brokers: brokers, AuditTopic: auditTopic},
		JWT: JWTConfig{
			SigningKey: signingKey,
			Algorithm:  algorithm,
			TTL:        time.Duration(ttlMinutes) * time.Minute,
		},
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
