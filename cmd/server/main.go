package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/course-enrollment/internal/config"
	"github.com/iliyamo/course-enrollment/internal/database"
	"github.com/iliyamo/course-enrollment/internal/handler"
	"github.com/iliyamo/course-enrollment/internal/logging"
	"github.com/iliyamo/course-enrollment/internal/middleware"
	"github.com/iliyamo/course-enrollment/internal/payment"
	"github.com/iliyamo/course-enrollment/internal/queue"
	"github.com/iliyamo/course-enrollment/internal/repository"
	"github.com/iliyamo/course-enrollment/internal/repository/cachestore"
	"github.com/iliyamo/course-enrollment/internal/repository/mongostore"
	"github.com/iliyamo/course-enrollment/internal/repository/mysqlstore"
	"github.com/iliyamo/course-enrollment/internal/router"
	"github.com/iliyamo/course-enrollment/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("open store")
	}
	log.WithField("driver", cfg.StoreDriver).Info("store connected")

	var events service.Publisher = service.Noop{}
	if cfg.EventsEnabled {
		pub := service.NewAMQPPublisher(cfg.RabbitURL, log)
		defer pub.Close()
		events = pub

		consumer := &queue.Consumer{
			URL:     cfg.RabbitURL,
			LogPath: filepath.Join("logs", "enrollment.log"),
			Log:     log.WithField("component", "event-consumer"),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("event consumer stopped")
			}
		}()
	}

	if cfg.StripeKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set; payment intents will fail")
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	stores.Classes = cachestore.WrapClasses(stores.Classes, config.LoadCacheConfig(), rdb, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.NewMetrics(reg).Middleware())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, cfg.JWTSecret, log))

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute),
		Users:   handler.NewUserHandler(stores.Users, events, cfg.LenientRoleLookup),
		Classes: handler.NewClassHandler(stores.Classes, events),
		Cart:    handler.NewCartHandler(stores.Cart, events),
		Payment: handler.NewPaymentHandler(payment.NewStripe(cfg.StripeKey), events),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("close store")
	}
}

// openStores connects the configured driver and returns stores owning the
// connection.
func openStores(ctx context.Context, cfg config.Config) (*repository.Stores, error) {
	switch cfg.StoreDriver {
	case "mysql":
		dsn, err := mysqlstore.WithFoundRows(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		db, err := database.OpenMySQL(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return mysqlstore.New(db), nil
	default:
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := mongostore.EnsureIndexes(idxCtx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongostore.New(db, client.Disconnect), nil
	}
}
