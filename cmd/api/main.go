package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"grubio/config"
	_ "grubio/docs"
	"grubio/internal/adapters/auth"
	"grubio/internal/adapters/email"
	"grubio/internal/adapters/push"
	"grubio/internal/adapters/qrcode"
	"grubio/internal/adapters/storage"
	delivery "grubio/internal/delivery/http"
	"grubio/internal/delivery/http/controllers"
	"grubio/internal/delivery/http/middleware"
	"grubio/internal/delivery/http/ws"
	"grubio/internal/domain"
	"grubio/internal/realtime"
	"grubio/internal/repository/postgres"
	"grubio/internal/services"
	"grubio/migrations"
)

const shutdownTimeout = 15 * time.Second

// @title Grubio API
// @version 1.0
// @description Event-scoped food-surplus sharing: events joined by code, food posts, claims, notifications and live queries.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.Migrate(cfg.DBUrl, migrations.FS, logger); err != nil {
			return err
		}
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connection established")

	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	postRepo := postgres.NewPostRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)

	hub := realtime.NewHub(logger)
	registry := realtime.NewRegistry()

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
	}, logger)
	emailService := services.NewEmailService(mailer, renderer, logger)

	pusher, err := newPusher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var imageStore domain.ImageStore
	if cfg.Storage.S3Bucket != "" {
		imageStore, err = storage.NewS3ImageStore(ctx, storage.S3Config{
			Region:        cfg.Storage.S3Region,
			Bucket:        cfg.Storage.S3Bucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			URLExpiry:     cfg.Storage.URLExpiry,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Info("image uploads disabled: S3_BUCKET not set")
	}

	authService, err := newAuthService(ctx, cfg, logger, userRepo, sessionRepo, registry, emailService)
	if err != nil {
		return err
	}
	notifier := services.NewClaimNotifier(notificationRepo, userRepo, deviceRepo, pusher, emailService, hub, logger)
	eventService := services.NewEventService(eventRepo, qrcode.NewEncoder(cfg.QRCodeSize), hub, logger, cfg.JoinCodeMaxAttempts, cfg.RequestTimeout)
	postService := services.NewPostService(eventRepo, postRepo, notifier, imageStore, hub, cfg.RequestTimeout)
	notificationService := services.NewNotificationService(notificationRepo, deviceRepo, hub, cfg.RequestTimeout)
	analyticsService := services.NewAnalyticsService(eventRepo, postRepo, userRepo, cfg.RequestTimeout)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authService),
		Events:        controllers.NewEventController(logger, eventService),
		Posts:         controllers.NewPostController(logger, postService),
		Analytics:     controllers.NewAnalyticsController(logger, analyticsService),
		Notifications: controllers.NewNotificationController(logger, notificationService),
		Health:        controllers.NewHealthController(logger, db),
		Live: ws.NewHandler(logger, authService, hub, registry, ws.Services{
			Events:        eventService,
			Posts:         postService,
			Notifications: notificationService,
			Analytics:     analyticsService,
		}, cfg.CORSAllowedOrigins),
	}, authService)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Environment, "auth_provider", cfg.Auth.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

func newAuthService(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	registry *realtime.Registry,
	emailService domain.EmailService,
) (domain.AuthService, error) {
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	switch cfg.Auth.Provider {
	case "firebase":
		fb, err := auth.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return services.NewAuthService(userRepo, sessionRepo, hasher, nil, fb, registry, emailService, cfg.Auth.TokenExpiry, logger, services.WithUserProvisioning()), nil
	default:
		tokens := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
		return services.NewAuthService(userRepo, sessionRepo, hasher, tokens, tokens, registry, emailService, cfg.Auth.TokenExpiry, logger), nil
	}
}

// newPusher returns nil when no push platform is configured.
func newPusher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Pusher, error) {
	router := push.NewRouter(logger)
	if cfg.Push.APNsKeyFile != "" {
		apns, err := push.NewAPNs(push.APNsConfig{
			KeyFile:    cfg.Push.APNsKeyFile,
			KeyID:      cfg.Push.APNsKeyID,
			TeamID:     cfg.Push.APNsTeamID,
			BundleID:   cfg.Push.APNsBundleID,
			Production: cfg.Push.APNsProduction,
		})
		if err != nil {
			return nil, err
		}
		router.Handle("ios", apns)
	}
	if cfg.Push.FCMEnabled {
		fcm, err := push.NewFCM(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		router.Handle("android", fcm)
	}
	if !router.Enabled() {
		logger.Info("push notifications disabled")
		return nil, nil
	}
	return router, nil
}
