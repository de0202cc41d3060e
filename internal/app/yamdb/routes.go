package yamdb

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/yamdb/docs"
	"github.com/magabrotheeeer/yamdb/internal/config"
	authhandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/auth"
	cataloghandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/catalog"
	commentshandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/comments"
	reviewshandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/reviews"
	titleshandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/titles"
	usershandler "github.com/magabrotheeeer/yamdb/internal/http/handlers/users"
	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/permissions"
	"github.com/magabrotheeeer/yamdb/internal/services/auth"
	"github.com/magabrotheeeer/yamdb/internal/services/catalog"
	"github.com/magabrotheeeer/yamdb/internal/services/reviews"
	"github.com/magabrotheeeer/yamdb/internal/services/titles"
	"github.com/magabrotheeeer/yamdb/internal/services/users"
)

// Services бизнес-логика, на которую опираются маршруты.
type Services struct {
	Auth       *auth.Service
	Users      *users.Service
	Categories *catalog.Service
	Genres     *catalog.Service
	Titles     *titles.Service
	Reviews    *reviews.Service
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, response.Error("method not allowed"))
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, svc Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.StripSlashes,
		middlewarectx.Metrics,
	)
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
	})

	r.Route("/v1", func(r chi.Router) {
		// Пользователь из токена, если он передан
		r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))

		authH := authhandler.New(logger, svc.Auth)
		r.Route("/auth", func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit))
			r.Post("/signup", authH.Signup)
			r.Post("/token", authH.Token)
		})

		usersH := usershandler.New(logger, svc.Users, cfg.Pagination)
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.Authorize(logger, middlewarectx.Authenticated))
				r.Get("/me", usersH.Me)
				r.Patch("/me", usersH.UpdateMe)
			})
			// Иначе DELETE /me попадёт в /{username}
			r.Delete("/me", methodNotAllowed)
			r.Put("/me", methodNotAllowed)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.Authorize(logger, middlewarectx.AdminOnly))
				r.Get("/", usersH.List)
				r.Post("/", usersH.Create)
				r.Get("/{username}", usersH.Get)
				r.Patch("/{username}", usersH.Update)
				r.Delete("/{username}", usersH.Delete)
			})
		})

		catalogRoutes := func(h *cataloghandler.Handler) func(chi.Router) {
			return func(r chi.Router) {
				r.Use(middlewarectx.Authorize(logger, permissions.AdminOrReadOnly))
				r.Get("/", h.List)
				r.Post("/", h.Create)
				r.Delete("/{slug}", h.Delete)
			}
		}
		r.Route("/categories", catalogRoutes(cataloghandler.New(logger, svc.Categories, cfg.Pagination, "categories")))
		r.Route("/genres", catalogRoutes(cataloghandler.New(logger, svc.Genres, cfg.Pagination, "genres")))

		titlesH := titleshandler.New(logger, svc.Titles, cfg.Pagination)
		reviewsH := reviewshandler.New(logger, svc.Reviews, cfg.Pagination)
		commentsH := commentshandler.New(logger, svc.Reviews, cfg.Pagination)
		r.Route("/titles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.Authorize(logger, permissions.AdminOrReadOnly))
				r.Get("/", titlesH.List)
				r.Post("/", titlesH.Create)
				r.Get("/{title_id}", titlesH.Get)
				r.Patch("/{title_id}", titlesH.Update)
				r.Delete("/{title_id}", titlesH.Delete)
			})

			// Автора, модератора и администратора проверяет сервис
			r.Route("/{title_id}/reviews", func(r chi.Router) {
				r.Use(middlewarectx.Authorize(logger, permissions.ReadOrAuthenticated))
				r.Get("/", reviewsH.List)
				r.Post("/", reviewsH.Create)
				r.Get("/{review_id}", reviewsH.Get)
				r.Patch("/{review_id}", reviewsH.Update)
				r.Delete("/{review_id}", reviewsH.Delete)

				r.Get("/{review_id}/comments", commentsH.List)
				r.Post("/{review_id}/comments", commentsH.Create)
				r.Get("/{review_id}/comments/{comment_id}", commentsH.Get)
				r.Patch("/{review_id}/comments/{comment_id}", commentsH.Update)
				r.Delete("/{review_id}/comments/{comment_id}", commentsH.Delete)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
