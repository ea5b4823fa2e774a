package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"google.golang.org/grpc"

	"github.com/vidyaa00/REMS/services/estate-service/internal/cache"
	"github.com/vidyaa00/REMS/services/estate-service/internal/config"
	"github.com/vidyaa00/REMS/services/estate-service/internal/handler"
	"github.com/vidyaa00/REMS/services/estate-service/internal/middleware"
	"github.com/vidyaa00/REMS/services/estate-service/internal/repository"
	"github.com/vidyaa00/REMS/services/estate-service/internal/storage"
	"github.com/vidyaa00/REMS/services/estate-service/internal/token"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/auth"
	"github.com/vidyaa00/REMS/shared/discovery"
	"github.com/vidyaa00/REMS/shared/logger"
	"github.com/vidyaa00/REMS/shared/mailer"
	"github.com/vidyaa00/REMS/shared/utilities"
	"github.com/vidyaa00/REMS/shared/validation"
)

const (
	serviceName     = "estate-service"
	shutdownTimeout = 10 * time.Second
	healthInterval  = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLogger := logger.New(os.Stdout, serviceName, os.Getenv("LOG_LEVEL"), false)

	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(os.Stdout, serviceName, cfg.LogLevel, cfg.LogPretty)

	users, properties, closeStore := openStore(ctx, log, cfg.Store)
	defer closeStore()

	files := openFileStore(ctx, log, cfg.Upload)
	featured := openFeaturedCache(ctx, log, cfg.Cache)

	v, err := validation.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Auth.JWTIssuer, cfg.Auth.JWTIssuer, []byte(cfg.Auth.JWTSecret))
	tokens := token.NewService(jwtAuth, cfg.Auth.SessionTTL, cfg.Auth.PasswordResetTTL)

	authUsecase := usecase.NewAuthUsecase(log, users, tokens, mailer.NewMailer(cfg.SMTP), usecase.AuthOptions{
		AllowAdminRegistration: cfg.Auth.AllowAdminRegistration,
		PasswordResetURL:       cfg.Auth.PasswordResetURL,
		PasswordResetTTL:       cfg.Auth.PasswordResetTTL,
	})

	h := handler.NewHandler(handler.Deps{
		Logger:         log,
		Validator:      v,
		Auth:           authUsecase,
		Profile:        usecase.NewProfileUsecase(users, files),
		Properties:     usecase.NewPropertyUsecase(log, properties, users, featured, v),
		Uploads:        usecase.NewUploadUsecase(files),
		Store:          users,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	routerOpts := handler.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Gate:           middleware.NewAuthGate(log, authUsecase),
		Limiter:        limiter,
	}
	if cfg.Upload.Driver == config.UploadLocal {
		routerOpts.StaticDir = cfg.Upload.Dir
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(log, h, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCHealthAddr != "" {
		grpcServer = startHealthServer(ctx, log, cfg.GRPCHealthAddr, users)
	}

	if cfg.Consul.Addr != "" {
		deregister := register(log, cfg)
		defer deregister()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}

func openStore(
	ctx context.Context,
	log *zerolog.Logger,
	cfg config.StoreConfig,
) (repository.UserRepository, repository.PropertyRepository, func()) {
	if cfg.Driver == config.StoreMemory {
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		mem := repository.NewMemoryStore()
		return mem.Users(), mem.Properties(), func() {}
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.Database)
	log.Info().Str("database", cfg.Database).Msg("connected to mongodb")

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}

	return repository.NewUserMongoRepository(ctx, log, db), repository.NewPropertyMongoRepository(ctx, log, db), closeFn
}

func openFileStore(ctx context.Context, log *zerolog.Logger, cfg config.UploadConfig) storage.Store {
	if cfg.Driver != config.UploadS3 {
		return storage.NewLocalStore(cfg.Dir)
	}

	opts := storage.S3Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}

	client, err := storage.NewS3Client(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create s3 client")
	}

	return storage.NewS3Store(client, opts)
}

func openFeaturedCache(ctx context.Context, log *zerolog.Logger, cfg config.CacheConfig) cache.FeaturedCache {
	if cfg.RedisURL == "" {
		return cache.Noop{}
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	return cache.NewRedisFeatured(client, cfg.FeaturedTTL)
}

func startHealthServer(ctx context.Context, log *zerolog.Logger, addr string, store utilities.Pinger) *grpc.Server {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("failed to listen for grpc health")
	}

	grpcServer := grpc.NewServer()
	hs := utilities.RegisterHealthServer(grpcServer)
	go utilities.WatchHealth(ctx, log, hs, serviceName, store, healthInterval)

	go func() {
		log.Info().Str("addr", addr).Msg("grpc health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("grpc health server stopped")
		}
	}()

	return grpcServer
}

func register(log *zerolog.Logger, cfg *config.Config) func() {
	registrar, err := discovery.NewRegistrar(log, cfg.Consul.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create consul client")
	}

	deregister, err := registrar.Register(discovery.Registration{
		ServiceID:      cfg.Consul.ServiceName + "-" + uuid.NewString(),
		ServiceName:    cfg.Consul.ServiceName,
		Host:           cfg.Consul.AdvertiseHost,
		HTTPAddr:       cfg.HTTPAddr,
		GRPCHealthAddr: cfg.GRPCHealthAddr,
		Tags:           []string{cfg.AppEnv},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register with consul")
	}

	return deregister
}
