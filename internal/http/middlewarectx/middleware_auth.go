// Package middlewarectx содержит HTTP middleware API.
//
// JWTMiddleware проверяет Bearer токен из заголовка Authorization и кладёт
// пользователя в контекст запроса. Запрос без заголовка проходит анонимно,
// право на действие проверяет Authorize или сервис.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ для *models.User в контексте.
const User Key = "user"

// Authenticator проверяет токен и возвращает его пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// WithUser возвращает контекст с пользователем.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, User, user)
}

// UserFromContext возвращает пользователя запроса или nil для анонима.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(User).(*models.User)
	return user
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Без заголовка запрос передаётся дальше без пользователя. Заголовок не Bearer,
// недействительный или просроченный токен дают 401.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				log.Info("invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			user, err := auth.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				response.Fail(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
