package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/encore/internal/infrastructure/configs"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/metrics"
	"github.com/hilthontt/encore/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/encore/internal/infrastructure/security"
	auditLogsHandler "github.com/hilthontt/encore/internal/presentation/handler/auditlogs"
	authHandler "github.com/hilthontt/encore/internal/presentation/handler/auth"
	healthHandler "github.com/hilthontt/encore/internal/presentation/handler/health"
	liveHandler "github.com/hilthontt/encore/internal/presentation/handler/live"
	mailHandler "github.com/hilthontt/encore/internal/presentation/handler/mail"
	meHandler "github.com/hilthontt/encore/internal/presentation/handler/me"
	notificationsHandler "github.com/hilthontt/encore/internal/presentation/handler/notifications"
	requestsHandler "github.com/hilthontt/encore/internal/presentation/handler/requests"
	usersHandler "github.com/hilthontt/encore/internal/presentation/handler/users"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type Handlers struct {
	Health        *healthHandler.Handler
	Auth          *authHandler.Handler
	Me            *meHandler.Handler
	Requests      *requestsHandler.Handler
	Users         *usersHandler.Handler
	AuditLogs     *auditLogsHandler.Handler
	Notifications *notificationsHandler.Handler
	Mail          *mailHandler.Handler
	Live          *liveHandler.Handler
}

// Limiters groups the buckets applied to each class of route.
type Limiters struct {
	Login     ratelimiter.Limiter
	Mutations ratelimiter.Limiter
	Mail      ratelimiter.Limiter
}

type Application struct {
	config   configs.Config
	handlers Handlers
	auth     middlewares.Authenticator
	limiters Limiters
	logger   *logger.Logger
}

func NewApplication(
	config configs.Config,
	handlers Handlers,
	auth middlewares.Authenticator,
	limiters Limiters,
	logger *logger.Logger,
) *Application {
	return &Application{
		config:   config,
		handlers: handlers,
		auth:     auth,
		limiters: limiters,
		logger:   logger.Named("http"),
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.requestLogger)
	r.Use(middleware.Recoverer)
	if app.config.Sentry.DSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(app.enableCors)
	r.Use(metrics.InstrumentHandler)

	cookie := security.CookieConfig{
		Name:   app.config.Session.CookieName,
		Secure: app.config.Session.Secure,
	}
	session := middlewares.RequireSession(app.auth, cookie, app.logger)
	staff := middlewares.RequireRole(middlewares.Staff)
	owner := middlewares.RequireRole(middlewares.Owner)
	mutations := middlewares.RateLimit(app.limiters.Mutations, middlewares.ActorOrIP, app.logger)
	mailLimit := middlewares.RateLimit(app.limiters.Mail, middlewares.ActorOrIP, app.logger)

	r.Get("/health", app.handlers.Health.GetHealth)

	r.Route("/observability", func(r chi.Router) {
		r.Handle("/metrics", metrics.Handler())
		r.Mount("/debug", middleware.Profiler())
	})

	r.Route("/api", func(r chi.Router) {
		r.With(session, mailLimit).Post("/mail", app.handlers.Mail.SendHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))

				r.Route("/auth", func(r chi.Router) {
					r.Use(middlewares.RateLimit(app.limiters.Login, app.sourceKey, app.logger))
					r.Post("/signup", app.handlers.Auth.SignUpHandler)
					r.Post("/login", app.handlers.Auth.LoginHandler)
					r.With(session).Post("/logout", app.handlers.Auth.LogoutHandler)
				})

				r.Group(func(r chi.Router) {
					r.Use(session)

					r.Get("/me", app.handlers.Me.GetMeHandler)
					r.With(mutations).Put("/me/profile", app.handlers.Me.RenameHandler)

					r.Route("/requests", func(r chi.Router) {
						r.Get("/", app.handlers.Requests.ListHandler)
						r.With(mutations).Post("/", app.handlers.Requests.SubmitHandler)
						r.Get("/{requestId}", app.handlers.Requests.GetHandler)
						r.With(mutations).Patch("/{requestId}", app.handlers.Requests.UpdateHandler)
						r.With(staff, mutations).Delete("/{requestId}", app.handlers.Requests.DeleteHandler)
					})
					r.With(staff, mutations).Put("/queue/order", app.handlers.Requests.ReorderHandler)

					r.With(mailLimit).Post("/mail", app.handlers.Mail.SendHandler)

					r.Group(func(r chi.Router) {
						r.Use(owner)

						r.Get("/users", app.handlers.Users.ListHandler)
						r.With(mutations).Post("/users", app.handlers.Users.CreateAdminHandler)
						r.With(mutations).Patch("/users/{userId}/disabled", app.handlers.Users.SetDisabledHandler)

						r.Get("/audit-logs", app.handlers.AuditLogs.ListHandler)

						r.Get("/notifications", app.handlers.Notifications.ListHandler)
						r.Patch("/notifications/{notificationId}/read", app.handlers.Notifications.MarkReadHandler)
					})
				})
			})

			// Websockets outlive the request timeout.
			r.Route("/live", func(r chi.Router) {
				r.Use(session)
				r.Get("/queue", app.handlers.Live.QueueHandler)
				r.Get("/requests/{requestId}", app.handlers.Live.RequestHandler)
				r.With(owner).Get("/notifications", app.handlers.Live.NotificationsHandler)
			})
		})
	})

	return otelhttp.NewHandler(r, app.config.App.Name,
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (app *Application) Run(ctx context.Context, mux http.Handler) error {
	srv := &http.Server{
		Addr:              app.config.HTTP.Addr(),
		Handler:           mux,
		ReadTimeout:       app.config.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      app.config.HTTP.WriteTimeout,
		IdleTimeout:       app.config.HTTP.IdleTimeout,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		app.logger.Info("Shutting down server...", zap.String("addr", srv.Addr))
		if app.config.Sentry.DSN != "" {
			sentry.Flush(2 * time.Second)
		}

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("env", app.config.App.Env),
	)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	app.logger.Info("Server exited successfully", zap.String("addr", srv.Addr))

	return nil
}
