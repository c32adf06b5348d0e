// Command server runs the nominee tracker HTTP API.
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

	"github.com/hibiken/asynq"

	"nomineetracker/config"
	_ "nomineetracker/docs" // Swagger docs
	"nomineetracker/internal/adapters/auth"
	"nomineetracker/internal/adapters/email"
	"nomineetracker/internal/adapters/queue"
	deliveryhttp "nomineetracker/internal/delivery/http"
	"nomineetracker/internal/delivery/http/controllers"
	"nomineetracker/internal/delivery/http/middleware"
	"nomineetracker/internal/domain"
	"nomineetracker/internal/repository/migrations"
	"nomineetracker/internal/repository/sqlrepo"
	"nomineetracker/internal/services"
)

// @title Nominee Tracker API
// @version 1.0
// @description Training event nominations, invitation responses, attendance and feedback.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin JWT. Example: "Bearer {token}"

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlrepo.Open(cfg.DBDriver, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = migrations.Apply(migrateCtx, db)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	eventRepo := sqlrepo.NewEventRepository(db)
	nomineeRepo := sqlrepo.NewNomineeRepository(db)
	feedbackRepo := sqlrepo.NewFeedbackRepository(db)
	links := services.NewLinkIssuer(sqlrepo.NewLinkTokenRepository(db), cfg.BackendURL, cfg.FrontendURL)

	notifier, closeNotifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	eventService := services.NewEventService(eventRepo, nomineeRepo, cfg.RequestTimeout)
	nomineeService := services.NewNomineeService(services.NomineeServiceConfig{
		EventRepo:   eventRepo,
		NomineeRepo: nomineeRepo,
		Links:       links,
		Notifier:    notifier,
		AdminEmail:  cfg.AdminEmail,
		Logger:      logger,
		Timeout:     cfg.RequestTimeout,
	})
	feedbackService := services.NewFeedbackService(eventRepo, nomineeRepo, feedbackRepo, links, cfg.RequestTimeout)
	dispatchService := services.NewDispatchService(services.DispatchServiceConfig{
		EventRepo:    eventRepo,
		NomineeRepo:  nomineeRepo,
		FeedbackRepo: feedbackRepo,
		Links:        links,
		Notifier:     notifier,
		Logger:       logger,
		Timeout:      cfg.RequestTimeout,
	})

	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Events:   controllers.NewEventController(logger, eventService),
		Nominees: controllers.NewNomineeController(logger, nomineeService),
		Feedback: controllers.NewFeedbackController(logger, feedbackService, dispatchService),
		Public:   controllers.NewPublicController(logger, nomineeService, feedbackService, cfg.FrontendURL),
		Verifier: auth.NewJWTVerifier(cfg.JWTSecret),
		DB:       db,
		Logger:   logger,
	})

	var handler http.Handler = router
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.Recovery(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// newNotifier returns the queued notifier when Redis is configured and the
// in-process one otherwise. The returned func releases its resources.
func newNotifier(cfg *config.Config, logger *slog.Logger) (domain.Notifier, func(), error) {
	if cfg.RedisAddr != "" {
		client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		logger.Info("mail hand-off via queue", "redis", cfg.RedisAddr, "queue", queue.MailQueue)
		return queue.NewAsynqNotifier(client, logger), func() { _ = client.Close() }, nil
	}

	emails, err := newEmailService(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	inline := queue.NewInlineNotifier(emails, cfg.WorkerConcurrency, logger)
	logger.Info("mail hand-off in process", "concurrency", cfg.WorkerConcurrency)
	return inline, inline.Wait, nil
}

func newEmailService(cfg *config.Config, logger *slog.Logger) (domain.EmailService, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.SESRegion,
			AccessKeyID:        cfg.Mail.SESAccessKeyID,
			SecretAccessKey:    cfg.Mail.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	return services.NewEmailService(mailer, renderer), nil
}
