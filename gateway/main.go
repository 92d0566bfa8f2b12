package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RigelNana/edumarket/gateway/handler"
	"github.com/RigelNana/edumarket/gateway/router"
	"github.com/RigelNana/edumarket/pkg/config"
	"github.com/RigelNana/edumarket/pkg/database"
	"github.com/RigelNana/edumarket/pkg/logging"
	"github.com/RigelNana/edumarket/pkg/metrics"
	grpcMetrics "github.com/RigelNana/edumarket/pkg/metrics/grpc"
	"github.com/RigelNana/edumarket/pkg/session"
	authmodels "github.com/RigelNana/edumarket/services/auth-service/models"
	authrepo "github.com/RigelNana/edumarket/services/auth-service/repository"
	authservice "github.com/RigelNana/edumarket/services/auth-service/service"
	"github.com/RigelNana/edumarket/services/auth-service/utils"
	"github.com/RigelNana/edumarket/services/resource-service/cache"
	"github.com/RigelNana/edumarket/services/resource-service/events"
	resourcemodels "github.com/RigelNana/edumarket/services/resource-service/models"
	resourcerepo "github.com/RigelNana/edumarket/services/resource-service/repository"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	"github.com/RigelNana/edumarket/services/resource-service/storage"
	usermodels "github.com/RigelNana/edumarket/services/user-service/models"
	userrepo "github.com/RigelNana/edumarket/services/user-service/repository"
	userservice "github.com/RigelNana/edumarket/services/user-service/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("gateway stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)

	db, err := database.InitDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db,
		&resourcemodels.Resource{},
		&resourcemodels.Activity{},
		&usermodels.User{},
		&authmodels.Auth{},
	); err != nil {
		return err
	}

	// 会话和列表缓存：配置了 Redis 就用 Redis，否则进程内存
	var sessions session.Store = session.NewMemoryStore()
	var listingCache cache.ListingCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		sessions = session.NewRedisStore(rdb, "edumarket:session:")
		listingCache = cache.NewRedisCache(rdb, "edumarket:listing:", cfg.Redis.CacheTTL())
		log.WithField("addr", cfg.Redis.Addr).Info("redis enabled")
	} else {
		log.Info("REDIS_ADDR not set, sessions kept in memory")
	}

	var objects storage.ObjectStorage
	if cfg.MinIO.Endpoint != "" {
		ms, err := storage.NewMinioStorage(ctx, &cfg.MinIO)
		if err != nil {
			return err
		}
		objects = ms
		log.WithField("bucket", cfg.MinIO.BucketName).Info("object storage enabled")
	} else {
		log.Info("MINIO_ENDPOINT not set, uploads store metadata only")
	}

	resources := resourcerepo.NewResourceRepository(db)
	activities := resourcerepo.NewActivityRepository(db)
	recorder := resourceservice.NewActivityRecorder(activities)

	var publisher events.Publisher
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(&cfg.Kafka)
		go events.NewConsumer(&cfg.Kafka, recorder.Handle, log).Run(ctx)
	} else {
		log.Info("Kafka disabled (missing config), recording activity in-process")
		publisher = events.NewDirectPublisher(recorder.Handle)
	}
	defer publisher.Close()

	users := userservice.NewUserService(userrepo.NewUserRepository(db))
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL())
	auth := authservice.NewAuthService(authrepo.NewAuthRepository(db), users, tokens, sessions, authservice.Options{}, log)
	if err := auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	resourceSvc := resourceservice.NewResourceService(
		resources,
		activities,
		objects,
		listingCache,
		publisher,
		resourceservice.Options{URLExpiry: cfg.MinIO.URLExpiry()},
		log,
	)

	engine := router.Setup(router.Handlers{
		Auth:      handler.NewAuthHandler(auth, log),
		Resources: handler.NewResourceHandler(resourceSvc, log),
		Dashboard: handler.NewDashboardHandler(resourceSvc, log),
		Admin:     handler.NewAdminHandler(resourceSvc, users, log),
		Landing:   handler.NewLandingHandler(resourceSvc, log),
	}, auth, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := metrics.NewMetricsServer(cfg.Server.MetricsPort)

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMetrics.UnaryServerInterceptor("gateway")),
		grpc.StreamInterceptor(grpcMetrics.StreamServerInterceptor("gateway")),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	errCh := make(chan error, 3)
	go func() {
		log.WithField("port", cfg.Server.HTTPPort).Info("Gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.WithField("port", cfg.Server.MetricsPort).Info("Prometheus metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	go func() {
		log.WithField("port", cfg.Server.GRPCPort).Info("gRPC health server listening")
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.WithError(err).Error("server failed, shutting down")
		stop()
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics shutdown")
	}
	grpcServer.GracefulStop()
	return nil
}
