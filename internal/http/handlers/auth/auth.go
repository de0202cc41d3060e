// Package auth реализует HTTP-обработчики регистрации и выдачи токена.
//
// Signup создаёт пользователя или повторно высылает код подтверждения,
// Token обменивает код на JWT.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/validation"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service описывает бизнес-логику регистрации.
type Service interface {
	Signup(ctx context.Context, in models.Signup) error
	Token(ctx context.Context, in models.TokenRequest) (string, error)
}

// Handler обрабатывает запросы /auth.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// TokenResponse тело успешного ответа /auth/token.
type TokenResponse struct {
	Token string `json:"token"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// Signup godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя и отправляет код подтверждения на email. Повторный запрос с той же парой высылает новый код.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Signup true "Имя пользователя и email"
// @Success 200 {object} response.Response "Код отправлен"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или имя/email заняты"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Signup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Signup
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}

	if err := h.service.Signup(r.Context(), req); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("confirmation code sent", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(req))
}

// Token godoc
// @Summary Получение JWT
// @Description Обменивает код подтверждения на токен. Код одноразовый.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.TokenRequest true "Имя пользователя и код"
// @Success 200 {object} TokenResponse "Токен"
// @Failure 400 {object} response.ErrorResponse "Неверный код"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/token [post]
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Token"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.TokenRequest
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}

	token, err := h.service.Token(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("token issued", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(TokenResponse{Token: token}))
}
