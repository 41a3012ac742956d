package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"orghub/internal/admin"
	"orghub/internal/admin/lockout"
	adminmetrics "orghub/internal/admin/metrics"
	adminservice "orghub/internal/admin/service"
	"orghub/internal/audit"
	"orghub/internal/jwttoken"
	"orghub/internal/org"
	orgmetrics "orghub/internal/org/metrics"
	orgservice "orghub/internal/org/service"
	"orghub/internal/org/store/registry"
	"orghub/internal/org/store/tenantcoll"
	"orghub/internal/platform/config"
	"orghub/internal/platform/httpserver"
	"orghub/internal/platform/logger"
	"orghub/internal/platform/postgres"
	"orghub/internal/platform/redis"
	authmw "orghub/pkg/platform/middleware/auth"
	"orghub/pkg/platform/middleware/requestid"
	"orghub/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	tokens, err := jwttoken.New(cfg.JWT)
	if err != nil {
		log.Error("invalid jwt configuration", "error", err)
		os.Exit(1)
	}

	// Audit trail: events flow through a bounded inbox into the in-process
	// store, and to Kafka when brokers are configured.
	auditStore := audit.NewInMemory()
	auditPublisher := audit.NewPublisher(256, log)
	var auditSinks []audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditSinks = append(auditSinks, kafkaSink)
		log.Info("audit events publishing to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	auditWorker := audit.NewWorker(auditStore, auditPublisher.Inbox(), log, auditSinks...)

	// Login lockout state: Redis when configured, in-memory otherwise.
	var lockoutStore lockout.Store = lockout.NewInMemoryStore()
	redisClient, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		lockoutStore = lockout.NewRedisStore(redisClient)
		log.Info("login lockout state backed by redis")
	}
	locks, err := lockout.New(lockoutStore,
		lockout.WithLogger(log),
		lockout.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("failed to build lockout service", "error", err)
		os.Exit(1)
	}

	registryStore := registry.NewPostgres(db)
	collectionStore := tenantcoll.NewPostgres(db)

	orgService := org.NewService(registryStore, collectionStore,
		orgservice.WithLogger(log),
		orgservice.WithAuditPublisher(auditPublisher),
		orgservice.WithMetrics(orgmetrics.New()),
	)
	adminService := admin.NewService(registryStore, tokens,
		adminservice.WithLogger(log),
		adminservice.WithLockout(locks),
		adminservice.WithAuditPublisher(auditPublisher),
		adminservice.WithMetrics(adminmetrics.New()),
	)

	orgHandler := org.NewHandler(orgService, log)
	adminHandler := admin.NewHandler(adminService, log)

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)

	orgHandler.Register(router)
	adminHandler.Register(router)
	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwttoken.NewServiceAdapter(tokens), log))
		orgHandler.RegisterProtected(r)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting orghub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := auditWorker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return httpserver.Drain(gctx, srv)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("orghub stopped")
}
