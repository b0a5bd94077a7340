package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-bookstore-api/internal/apidocs"
	"github.com/ariefcatur/go-bookstore-api/internal/auth"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"github.com/ariefcatur/go-bookstore-api/internal/config"
	"github.com/ariefcatur/go-bookstore-api/internal/httpx"
	kafkax "github.com/ariefcatur/go-bookstore-api/internal/kafka"
	"github.com/ariefcatur/go-bookstore-api/internal/logging"
	"github.com/ariefcatur/go-bookstore-api/internal/mongodb"
	"github.com/ariefcatur/go-bookstore-api/internal/redisx"
	"github.com/ariefcatur/go-bookstore-api/internal/validate"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"net/http"
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

	// Mongo
	startCtx, startCancel := context.WithTimeout(ctx, 15*time.Second)
	defer startCancel()
	mc, err := mongodb.Connect(startCtx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("mongo connect")
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.MongoDatabase)
	if err := bookstore.EnsureIndexes(startCtx, db); err != nil {
		log.WithError(err).Fatal("mongo indexes")
	}

	// Redis sessions
	rdb, err := redisx.Connect(startCtx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.WithError(err).Fatal("redis connect")
	}
	defer rdb.Close()
	sameSite, _ := cfg.SameSite()
	store := auth.NewRedisStore(rdb, []byte(cfg.SessionSecret), sessions.Options{
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   int(cfg.SessionMaxAge / time.Second),
		Secure:   cfg.Production(),
		HttpOnly: true,
		SameSite: sameSite,
	})
	mgr := auth.NewManager(store, cfg.SessionName)

	docs, err := apidocs.New()
	if err != nil {
		log.WithError(err).Fatal("api docs")
	}

	limiter := httpx.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	stopSweep := make(chan struct{})
	defer close(stopSweep)
	limiter.StartSweeper(time.Minute, stopSweep)

	deps := httpx.Deps{
		Users:    bookstore.NewUsers(db),
		Books:    bookstore.NewBooks(db),
		Orders:   bookstore.NewOrders(db),
		Reviews:  bookstore.NewReviews(db),
		Sessions: mgr,
		Auth: &httpx.AuthHandler{
			Sessions:   mgr,
			Provider:   auth.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL),
			SuccessURL: cfg.AuthSuccessURL,
			FailureURL: cfg.AuthFailureURL,
			Limiter:    limiter,
		},
		Docs:        docs,
		Validator:   validate.New(),
		Log:         log,
		ServiceName: cfg.ServiceName,
		CORSOrigin:  cfg.CORSOrigin,
		Verbose:     !cfg.Production(),
	}

	// Kafka change events, optional
	var prod *kafkax.Producer
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		prod = kafkax.NewProducer(brokers, cfg.KafkaTopic, 1024, log)
		prod.Start(ctx)
		deps.Events = prod
	} else {
		log.Info("KAFKA_BROKERS not set, change events disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httpx.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr(), "env": cfg.Env}).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	// tunggu signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
}
