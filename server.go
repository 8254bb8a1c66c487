package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/crm_backend/config"
	"github.com/mmdatafocus/crm_backend/handlers"
	"github.com/mmdatafocus/crm_backend/middlewares"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/mmdatafocus/crm_backend/utils"
	"github.com/sirupsen/logrus"
)

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, handlers.Response{Success: false, Error: "route not found"})
}

func corsConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS; deny all when unset.
	if cfg.Production {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		if len(corsConfig.AllowOrigins) == 0 {
			corsConfig.AllowOrigins = []string{}
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	return corsConfig
}

func main() {
	cfg := config.LoadConfig()
	logger := config.GetLogger()
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	api := handlers.NewServer(cfg)
	var limiter atomic.Pointer[middlewares.RateLimiter]

	// Until dependencies are ready, app endpoints answer 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.ReadinessMiddleware(api.Ready))
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.RateLimitEnabled {
		r.Use(func(c *gin.Context) {
			if rl := limiter.Load(); rl != nil {
				rl.RateLimitMiddleware(c)
				return
			}
			c.Next()
		})
	}
	r.Use(middlewares.CustomErrorLogger(logger))
	r.Use(gin.Recovery())
	r.GET(middlewares.HealthPath, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.Register(r)
	r.NoRoute(customNotFoundHandler)

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	db, err := config.ConnectDatabaseWithRetry(sigCtx, cfg.Database)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Error("database not connected: " + err.Error())
		return
	}
	defer config.CloseDatabase(db)

	// AutoMigrate can run blocking DDL; allow running it as a separate job instead.
	if !cfg.SkipMigrations {
		if err := models.MigrateTable(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Error("migration failed: " + err.Error())
			return
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	deps := &handlers.Deps{DB: db}

	rdb, locker, err := config.ConnectRedisWithRetry(sigCtx, cfg.Redis)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("redis disabled: " + err.Error())
	}
	if rdb != nil {
		defer rdb.Close()
		deps.Locker = locker
		if cfg.RateLimitEnabled {
			limiter.Store(middlewares.NewRateLimiter(rdb, cfg.RateLimitMaxRequests, cfg.RateLimitWindow))
		}
	}

	if cfg.GCSBucket != "" {
		deps.Uploader = utils.NewGCSUploader(cfg.GCSBucket)
		deps.Bucket = cfg.GCSBucket
	}
	if cfg.BackupEventsTopic != "" {
		publisher, err := config.NewPubSubPublisher(sigCtx, cfg.PubSubProjectID, cfg.BackupEventsTopic)
		if err != nil {
			logger.WithFields(logrus.Fields{"field": "pubsub"}).Warn("backup events disabled: " + err.Error())
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}

	api.SetDeps(deps)
	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on port ", cfg.Port)
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests before the deferred closes release the pool.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
