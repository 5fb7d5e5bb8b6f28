package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	authadapter "github.com/shivamDefault/ChatLive/internal/adapters/auth"
	"github.com/shivamDefault/ChatLive/internal/adapters/cache"
	eventadapter "github.com/shivamDefault/ChatLive/internal/adapters/events"
	httpadapter "github.com/shivamDefault/ChatLive/internal/adapters/http"
	"github.com/shivamDefault/ChatLive/internal/adapters/memstore"
	"github.com/shivamDefault/ChatLive/internal/adapters/postgres"
	"github.com/shivamDefault/ChatLive/internal/adapters/security"
	"github.com/shivamDefault/ChatLive/internal/application"
	"github.com/shivamDefault/ChatLive/internal/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	health     *health.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

// backend is the set of stores one storage mode provides.
type backend struct {
	profiles    ports.ProfileStore
	chats       ports.ChatStore
	messages    ports.MessageStore
	statuses    ports.StatusStore
	blobs       ports.BlobRepository
	credentials ports.CredentialRepository
	tokens      ports.CredentialStore
	outbox      ports.OutboxRepository
	ready       func(ctx context.Context) error
	closers     []io.Closer
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var b backend
	switch cfg.Backend {
	case BackendMemory:
		b = memoryBackend(cfg)
	default:
		b, err = postgresBackend(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}
	closeAll := func() {
		for i := len(b.closers) - 1; i >= 0; i-- {
			_ = b.closers[i].Close()
		}
	}

	signer, err := newSigner(cfg)
	if err != nil {
		closeAll()
		return nil, err
	}
	authService := authadapter.NewLocalAuthService(authadapter.Dependencies{
		Credentials: b.credentials,
		Hasher:      security.NewBcryptHasher(cfg.BcryptCost),
		Signer:      signer,
		Tokens:      b.tokens,
		TokenTTL:    cfg.TokenTTL,
	})

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:  cfg.ServiceID,
			WriteTimeout: cfg.WriteTimeout,
		},
		Auth:     authService,
		Profiles: b.profiles,
		Chats:    b.chats,
		Messages: b.messages,
		Statuses: b.statuses,
		Blobs:    b.blobs,
	})

	handler := httpadapter.NewHandler(service, b.blobs, b.ready)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = service.Close()
		closeAll()
		return nil, err
	}

	var outbox *eventadapter.OutboxWorker
	if b.outbox != nil {
		publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
		if len(cfg.KafkaBrokers) > 0 {
			topics := map[string]string{}
			if cfg.KafkaTopicChats != "" {
				topics[postgres.EventChatCreated] = cfg.KafkaTopicChats
				topics[postgres.EventChatDeleted] = cfg.KafkaTopicChats
			}
			kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, topics)
			if pubErr != nil {
				logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
			} else {
				publisher = kafkaPublisher
				b.closers = append(b.closers, kafkaPublisher)
			}
		}
		outbox = eventadapter.NewOutboxWorker(logger, b.outbox, publisher, eventadapter.OutboxConfig{
			Interval:   cfg.OutboxPollInterval,
			BatchSize:  cfg.OutboxBatchSize,
			MaxRetries: cfg.OutboxMaxRetries,
		})
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		health:     healthSrv,
		outbox:     outbox,
		cleanupFn: func(context.Context) {
			_ = service.Close()
			closeAll()
		},
	}, nil
}

func Build(ctx context.Context, configPath string) (*Runtime, error) {
	return NewRuntime(ctx, configPath)
}

func memoryBackend(cfg Config) backend {
	repos := memstore.NewRepositories(cfg.BlobBaseURL)
	return backend{
		profiles:    repos.Profiles,
		chats:       repos.Chats,
		messages:    repos.Messages,
		statuses:    repos.Statuses,
		blobs:       repos.Blobs,
		credentials: repos.Credentials,
		tokens:      tokenStore(cfg),
	}
}

func postgresBackend(ctx context.Context, cfg Config, logger *slog.Logger) (backend, error) {
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return backend{}, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return backend{}, err
	}
	closers := []io.Closer{sqlDB}
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = sqlDB.Close()
			return backend{}, err
		}
	}

	var (
		feed        ports.ChangeFeed
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = sqlDB.Close()
			return backend{}, err
		}
		closers = append(closers, redisClient)
		redisFeed, feedErr := cache.NewRedisChangeFeed(ctx, redisClient, cfg.ChangeFeedPrefix)
		if feedErr != nil {
			_ = redisClient.Close()
			_ = sqlDB.Close()
			return backend{}, feedErr
		}
		closers = append(closers, redisFeed)
		feed = redisFeed
	} else {
		logger.WarnContext(ctx, "redis not configured, change feed is process local")
		feed = cache.NewLocalChangeFeed()
	}

	repos := postgres.NewRepositories(db, feed, postgres.Options{
		ServiceName: cfg.ServiceID,
		BlobBaseURL: cfg.BlobBaseURL,
	})
	return backend{
		profiles:    repos.Profiles,
		chats:       repos.Chats,
		messages:    repos.Messages,
		statuses:    repos.Statuses,
		blobs:       repos.Blobs,
		credentials: repos.Credentials,
		tokens:      tokenStore(cfg),
		outbox:      repos.Outbox,
		ready:       readiness(db, redisClient),
		closers:     closers,
	}, nil
}

func tokenStore(cfg Config) ports.CredentialStore {
	if cfg.CredentialsPath == "" {
		return &memstore.TokenStore{}
	}
	return authadapter.NewFileTokenStore(cfg.CredentialsPath)
}

func newSigner(cfg Config) (*security.JWTSigner, error) {
	if cfg.JWTSecret == "" {
		return security.NewEphemeralJWTSigner(cfg.ServiceID)
	}
	return security.NewJWTSigner(cfg.ServiceID, cfg.JWTSecret)
}

func readiness(db *gorm.DB, redisClient *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	if err := r.service.Initialize(ctx); err != nil {
		r.logger.WarnContext(ctx, "session restore failed", "operation", "initialize", "outcome", "failure", "error", err)
	}

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "api started", "http_port", r.cfg.HTTPPort, "grpc_port", r.cfg.GRPCPort, "backend", r.cfg.Backend)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	r.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker relays the sync outbox. It needs the postgres backend.
func (r *Runtime) RunWorker(ctx context.Context) error {
	if r.outbox == nil {
		r.cleanupFn(context.Background())
		return fmt.Errorf("outbox worker requires the %s backend", BackendPostgres)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)

	go func() {
		if err := r.outbox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		r.cleanupFn(context.Background())
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}
