package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cheertaboi/shop-service/internal/api"
	"github.com/Cheertaboi/shop-service/internal/api/middleware"
	"github.com/Cheertaboi/shop-service/internal/cache"
	"github.com/Cheertaboi/shop-service/internal/config"
	"github.com/Cheertaboi/shop-service/internal/events"
	"github.com/Cheertaboi/shop-service/internal/metrics"
	"github.com/Cheertaboi/shop-service/internal/repository"
	"github.com/Cheertaboi/shop-service/internal/service"
	"github.com/Cheertaboi/shop-service/pkg/db"
	"github.com/Cheertaboi/shop-service/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	conn, err := db.NewPostgresConnection(cfg.Database)
	if err != nil {
		lg.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, conn); err != nil {
			lg.Fatal("migrate", zap.Error(err))
		}
	}

	var couponCache cache.CouponCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Warn("redis unreachable, cache lookups will miss", zap.Error(err))
		}
		couponCache = cache.NewRedisCouponCache(rdb, cfg.Redis.TTL, lg)
	} else {
		couponCache = cache.NewLocalCouponCache(cfg.Redis.TTL)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.MaxRetries)
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	products := repository.NewProductRepo(conn)
	catalog := service.NewCatalogService(products, lg)
	coupons := service.NewCouponService(conn, couponCache, m, lg, cfg.Server.EvalWorkers)
	carts := service.NewCartService(repository.NewCartRepo(conn), products, coupons)
	checkout := service.NewCheckoutService(conn, couponCache, publisher, m, lg)

	if cfg.Database.Seed {
		if err := service.Seed(ctx, products, catalog, coupons, lg); err != nil {
			lg.Fatal("seed", zap.Error(err))
		}
	}

	stop := make(chan struct{})
	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		go limiter.Run(stop)
	}

	handler := api.NewRouter(api.Deps{
		Products:    catalog,
		Coupons:     coupons,
		Carts:       carts,
		Orders:      checkout,
		Log:         lg,
		Metrics:     m,
		Gatherer:    reg,
		Limiter:     limiter,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		close(stop)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			lg.Error("http server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	lg.Info("starting shop-service", zap.String("addr", cfg.Server.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	lg.Info("server stopped")
}
