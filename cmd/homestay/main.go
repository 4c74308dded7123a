package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/middleware"
	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"

	availabilityhandlers "homestay/internal/app/handlers/availability"
	bookinghandlers "homestay/internal/app/handlers/booking"
	hostinghandlers "homestay/internal/app/handlers/hosting"
	listinghandlers "homestay/internal/app/handlers/listings"
	mehandlers "homestay/internal/app/handlers/me"
	authsvc "homestay/internal/app/services/auth"

	"homestay/internal/infra/broker/kafka"
	"homestay/internal/infra/config"
	mongostore "homestay/internal/infra/db/mongo"
	ginserver "homestay/internal/infra/http/gin"
	"homestay/internal/infra/oauth"
	"homestay/internal/infra/obs"
	infraoutbox "homestay/internal/infra/outbox"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
	"homestay/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service terminated", "error", err)
		os.Exit(1)
	}
}

type backend struct {
	factory     uow.Factory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	ready       func() error
	close       func(ctx context.Context)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	be, err := buildBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if be.close != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			be.close(closeCtx)
		}()
	}

	authService := buildAuthService(ctx, cfg, logger, be.factory)
	uploader := buildUploader(cfg, logger)

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	registerCommandHandlers(commandBus, be, uploader, logger)
	registerQueryHandlers(queryBus, be.factory)

	dispatchBus := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(be.idempotency, middleware.JSONResultCodec{}),
		middleware.Transaction(be.factory, nil),
		middleware.OutboxFlush(be.outbox),
	)
	askBus := middleware.ChainQueries(queryBus)

	handlers := ginserver.Handlers{
		Auth:           &ginserver.AuthHandler{Service: authService, Logger: logger},
		Listing:        ginserver.ListingHandler{Queries: askBus},
		Booking:        ginserver.BookingHandler{Commands: dispatchBus},
		HostListing:    ginserver.HostListingHandler{Commands: dispatchBus, Queries: askBus, Logger: logger},
		Hosting:        ginserver.HostingHandler{Commands: dispatchBus, Logger: logger},
		Me:             ginserver.MeHandler{Queries: askBus, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}

	srv := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: be.ready}, handlers)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	if cfg.StorageMode == "mongo" {
		return buildMongoBackend(ctx, cfg, logger)
	}

	availabilityRepo := memory.NewAvailabilityRepository()
	factory := &memory.Factory{
		ListingsRepo:     memory.NewListingRepository(availabilityRepo),
		AvailabilityRepo: availabilityRepo,
		BookingRepo:      memory.NewBookingRepository(),
		UsersRepo:        memory.NewUserRepository(),
		SessionsStore:    memory.NewSessionStore(),
		ApplicationsRepo: memory.NewApplicationRepository(),
	}
	logger.Info("storage initialized", "mode", "memory")
	return backend{
		factory:     factory,
		outbox:      memory.NewOutbox(),
		idempotency: memory.NewIdempotencyStore(),
	}, nil
}

func buildMongoBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return backend{}, err
	}
	db := client.Database()

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return backend{}, err
	}

	store := infraoutbox.NewStore(db)
	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          uuid.NewString(),
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	logger.Info("storage initialized", "mode", "mongo", "db", cfg.MongoDB)
	return backend{
		factory:     mongostore.NewFactory(client),
		outbox:      store,
		idempotency: mongostore.NewIdempotencyStore(db, cfg.IdempotencyTTL),
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		},
		close: func(closeCtx context.Context) {
			if err := producer.Close(); err != nil {
				logger.Warn("kafka producer close failed", "error", err)
			}
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}

// buildAuthService wires the session-backed auth service on top of the
// same storage the command side uses. Repositories are reached through a
// throwaway read-only unit since auth calls run outside the command bus.
func buildAuthService(ctx context.Context, cfg config.Config, logger *slog.Logger, factory uow.Factory) *authsvc.Service {
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		logger.Error("auth wiring failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = unit.Rollback(ctx) }()

	service := &authsvc.Service{
		Users:      unit.Users(),
		Sessions:   unit.Sessions(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	if cfg.GoogleEnabled() {
		google, err := oauth.NewGoogleClient(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		if err != nil {
			logger.Warn("google sign-in disabled", "error", err)
		} else {
			service.Google = google
			logger.Info("google sign-in enabled")
		}
	}
	return service
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func registerCommandHandlers(bus *commands.InMemoryBus, be backend, uploader s3.Uploader, logger *slog.Logger) {
	commands.RegisterHandler(bus, bookinghandlers.CreateBookingCommand{}.Key(), &bookinghandlers.CreateBookingHandler{
		UoWFactory: be.factory,
		Outbox:     be.outbox,
	})
	commands.RegisterHandler(bus, listinghandlers.CreateHostListingCommand{}.Key(), &listinghandlers.CreateHostListingHandler{Logger: logger})
	commands.RegisterHandler(bus, listinghandlers.UpdateHostListingCommand{}.Key(), &listinghandlers.UpdateHostListingHandler{Logger: logger})
	commands.RegisterHandler(bus, listinghandlers.DeleteHostListingCommand{}.Key(), &listinghandlers.DeleteHostListingHandler{Logger: logger})
	commands.RegisterHandler(bus, listinghandlers.UploadListingPhotoCommand{}.Key(), &listinghandlers.UploadListingPhotoHandler{
		Logger:   logger,
		Uploader: uploader,
	})
	commands.RegisterHandler(bus, hostinghandlers.ApplyForHostingCommand{}.Key(), &hostinghandlers.ApplyForHostingHandler{Logger: logger})
	commands.RegisterHandler(bus, hostinghandlers.ApproveApplicationCommand{}.Key(), &hostinghandlers.ApproveApplicationHandler{Logger: logger})
	commands.RegisterHandler(bus, hostinghandlers.RejectApplicationCommand{}.Key(), &hostinghandlers.RejectApplicationHandler{Logger: logger})
}

func registerQueryHandlers(bus *queries.InMemoryBus, factory uow.Factory) {
	queries.RegisterHandler(bus, listinghandlers.SearchListingsQuery{}.Key(), &listinghandlers.SearchListingsHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, listinghandlers.GetListingQuery{}.Key(), &listinghandlers.GetListingHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, listinghandlers.ListHostListingsQuery{}.Key(), &listinghandlers.ListHostListingsHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, availabilityhandlers.GetCalendarQuery{}.Key(), &availabilityhandlers.GetCalendarHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, mehandlers.ListGuestBookingsQuery{}.Key(), &mehandlers.ListGuestBookingsHandler{UoWFactory: factory})
}
