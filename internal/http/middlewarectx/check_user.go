package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/permissions"
	"github.com/magabrotheeeer/yamdb/internal/services"
)

// Rule правило доступа к маршруту по методу и пользователю.
type Rule func(method string, actor *models.User) permissions.Decision

// Authorize пропускает запрос, только если rule разрешает его пользователю
// из контекста. Иначе отдаёт 401 или 403.
func Authorize(log *slog.Logger, rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := UserFromContext(r.Context())
			if err := services.Check(rule(r.Method, actor)); err != nil {
				response.Fail(w, r, log.With(
					slog.String("op", "middlewarectx.Authorize"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				), err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly правило для маршрутов администратора.
func AdminOnly(_ string, actor *models.User) permissions.Decision {
	return permissions.AdminOnly(actor)
}

// Authenticated правило для маршрутов любого вошедшего пользователя.
func Authenticated(_ string, actor *models.User) permissions.Decision {
	return permissions.Authenticated(actor)
}
