package main

import (
	"context"
	"github.com/ariefcatur/go-bookstore-api/internal/audit"
	"github.com/ariefcatur/go-bookstore-api/internal/config"
	kafkax "github.com/ariefcatur/go-bookstore-api/internal/kafka"
	"github.com/ariefcatur/go-bookstore-api/internal/logging"
	"github.com/ariefcatur/go-bookstore-api/internal/postgres"
	"github.com/ariefcatur/go-bookstore-api/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel, cfg.Production())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the auditor")
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()
	repo := &postgres.AuditRepo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("db schema")
	}

	// Redis
	rdb, err := redisx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.WithError(err).Fatal("redis connect")
	}
	defer rdb.Close()

	svc := &audit.Service{
		Recorder:    repo,
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-auditor",
		Log:         log,
	}

	cons := kafkax.NewConsumer(brokers, cfg.AuditorGroup, cfg.KafkaTopic, cfg.AuditorWorkers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.WithFields(logrus.Fields{
			"group":   cfg.AuditorGroup,
			"topic":   cfg.KafkaTopic,
			"workers": cfg.AuditorWorkers,
		}).Info("auditor consumer started")
		if err := cons.Start(ctx, svc.HandleChange); err != nil {
			log.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("consumer did not stop in time")
	}
}
