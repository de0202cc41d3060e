// Package yamdb собирает HTTP API: хранилище, кеш, сервисы и маршруты.
package yamdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/yamdb/internal/cache"
	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/lib/jwt"
	"github.com/magabrotheeeer/yamdb/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/lib/smtp"
	"github.com/magabrotheeeer/yamdb/internal/migrations"
	"github.com/magabrotheeeer/yamdb/internal/services/auth"
	"github.com/magabrotheeeer/yamdb/internal/services/catalog"
	"github.com/magabrotheeeer/yamdb/internal/services/mailer"
	"github.com/magabrotheeeer/yamdb/internal/services/reviews"
	"github.com/magabrotheeeer/yamdb/internal/services/sender"
	"github.com/magabrotheeeer/yamdb/internal/services/titles"
	"github.com/magabrotheeeer/yamdb/internal/services/users"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP сервер API и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	closers []io.Closer
}

// New подключается к внешним системам, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.yamdb.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var userCache users.Cache = cache.Nop{}
	if cfg.Redis.Address != "" {
		redisCache, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, redisCache)
		userCache = redisCache
	} else {
		logger.Warn("redis address is empty, user cache disabled")
	}

	m, err := app.newMailer(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	userService := users.New(db, userCache, cfg.Redis.UserTTL, logger)
	svc := Services{
		Auth:       auth.New(db, userService, m, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), logger),
		Users:      userService,
		Categories: catalog.New(db, storage.Categories, logger),
		Genres:     catalog.New(db, storage.Genres, logger),
		Titles:     titles.New(db, logger),
		Reviews:    reviews.New(db, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, svc)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// newMailer выбирает доставку кодов подтверждения по cfg.Mailer.Transport.
func (a *App) newMailer(ctx context.Context, cfg *config.Config) (mailer.Mailer, error) {
	var m mailer.Mailer
	switch cfg.Mailer.Transport {
	case config.MailerSMTP:
		m = sender.New(a.logger, smtp.NewTransport(cfg.SMTP, cfg.Mailer.From, a.logger))
	case config.MailerRabbitMQ:
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn)
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ch)
		m = mailer.NewQueue(rabbitmq.NewPublisher(ch))
	default:
		m = mailer.NewConsole(a.logger)
	}
	a.logger.Info("mailer configured", slog.String("transport", cfg.Mailer.Transport))
	return mailer.WithMetrics(cfg.Mailer.Transport, m), nil
}

// Run запускает сервер и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// close освобождает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
