package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authgate/internal/audit"
	"authgate/internal/auth/handler"
	authmetrics "authgate/internal/auth/metrics"
	"authgate/internal/auth/password"
	"authgate/internal/auth/service"
	userstore "authgate/internal/auth/store/user"
	"authgate/internal/auth/store/verification"
	"authgate/internal/email"
	httpapi "authgate/internal/http"
	jwttoken "authgate/internal/jwt_token"
	"authgate/internal/platform/config"
	"authgate/internal/platform/httpserver"
	"authgate/internal/platform/logger"
	"authgate/internal/platform/metrics"
	"authgate/internal/platform/postgres"
	"authgate/internal/platform/redis"
)

const (
	mailWorkers   = 4
	mailBuffer    = 256
	auditBuffer   = 256
	shutdownGrace = 10 * time.Second
)

// main wires the dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	checks := map[string]httpapi.HealthChecker{}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var codes service.CodeStore
	if rdb != nil {
		codes = verification.NewRedis(rdb.Client)
		checks["redis"] = rdb
		defer rdb.Close()
	} else {
		log.Warn("REDIS_URL not set, using in-memory verification codes")
		codes = verification.NewMemory()
	}

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	var users service.UserStore
	if db != nil {
		if _, err := db.Exec(userstore.Schema); err != nil {
			log.Error("schema bootstrap failed", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgres(db)
		checks["postgres"] = httpapi.HealthCheckerFunc(db.PingContext)
		defer db.Close()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory user directory")
		users = userstore.NewMemory()
	}

	var auditStore audit.Store
	if len(cfg.KafkaBrokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events stay in memory")
		auditStore = audit.NewMemoryStore()
	}

	publisher := audit.NewPublisher(log, auditBuffer)
	worker := audit.NewWorker(auditStore, publisher.Inbox())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(context.Background()); err != nil {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	dispatcher := email.NewDispatcher(email.NewSender(cfg.SMTP, log), log, mailWorkers, mailBuffer)

	issuer := jwttoken.NewIssuer(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	svc := service.New(
		codes,
		users,
		issuer,
		password.New(cfg.BcryptCost),
		dispatcher,
		publisher,
		log,
		cfg.VerificationTTL,
		service.WithMetrics(authmetrics.New()),
	)

	router := httpapi.NewRouter(
		[]httpapi.Registrar{handler.New(svc, log, metrics.New())},
		checks,
	)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting authgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Flush background work after the listener stops accepting requests.
	if err := dispatcher.Close(); err != nil {
		log.Error("mail dispatcher close failed", "error", err)
	}
	publisher.Close()
	select {
	case <-workerDone:
	case <-ctx.Done():
		log.Warn("audit worker did not drain in time")
	}
}
