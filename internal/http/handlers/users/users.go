// Package users реализует HTTP-обработчики управления пользователями
// и собственным профилем (/users/me).
package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/validation"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
)

// Service описывает бизнес-логику пользователей.
type Service interface {
	List(ctx context.Context, search string, page models.Page) (models.PageResult[models.User], error)
	Create(ctx context.Context, in models.NewUser) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error)
	UpdateMe(ctx context.Context, actor *models.User, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

// Handler обрабатывает запросы /users.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	pagination config.Pagination
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, pagination config.Pagination) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validation.New(),
		pagination: pagination,
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Param search query string false "Подстрока имени"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.List")

	page, err := response.ParsePage(r, h.pagination)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	res, err := h.service.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	out, err := response.NewPage(r, page, res)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(out))
}

// Create godoc
// @Summary Создать пользователя
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.NewUser true "Пользователь"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Create")

	var req models.NewUser
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}
	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user created", slog.String("username", user.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(user))
}

// Get godoc
// @Summary Пользователь по имени
// @Tags Users
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users/{username} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Get")

	user, err := h.service.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(user))
}

// Update godoc
// @Summary Частично изменить пользователя
// @Tags Users
// @Accept  json
// @Produce  json
// @Param username path string true "Имя пользователя"
// @Param request body models.UserPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users/{username} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Update")

	var patch models.UserPatch
	if !response.Decode(w, r, log, &patch) || !response.Validate(w, r, log, h.validate, patch) {
		return
	}
	user, err := h.service.Update(r.Context(), chi.URLParam(r, "username"), patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user updated", slog.String("username", user.Username))
	render.JSON(w, r, response.StatusOKWithData(user))
}

// Delete godoc
// @Summary Удалить пользователя
// @Tags Users
// @Param username path string true "Имя пользователя"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users/{username} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Delete")

	username := chi.URLParam(r, "username")
	if err := h.service.Delete(r.Context(), username); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user deleted", slog.String("username", username))
	render.NoContent(w, r)
}

// Me godoc
// @Summary Свой профиль
// @Tags Users
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Me")

	actor := middlewarectx.UserFromContext(r.Context())
	if actor == nil {
		response.Fail(w, r, log, services.ErrUnauthenticated)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(actor))
}

// UpdateMe godoc
// @Summary Изменить свой профиль
// @Description Роль изменить нельзя, поле role игнорируется.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.UserPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /users/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.UpdateMe")

	actor := middlewarectx.UserFromContext(r.Context())
	if actor == nil {
		response.Fail(w, r, log, services.ErrUnauthenticated)
		return
	}

	var patch models.UserPatch
	if !response.Decode(w, r, log, &patch) {
		return
	}
	patch.Role = nil
	if !response.Validate(w, r, log, h.validate, patch) {
		return
	}
	user, err := h.service.UpdateMe(r.Context(), actor, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("profile updated", slog.String("username", user.Username))
	render.JSON(w, r, response.StatusOKWithData(user))
}
