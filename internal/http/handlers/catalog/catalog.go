// Package catalog реализует HTTP-обработчики категорий и жанров.
// Оба справочника устроены одинаково, обработчик получает нужный сервис.
package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/validation"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service описывает бизнес-логику справочника.
type Service interface {
	List(ctx context.Context, search string, page models.Page) (models.PageResult[models.NameSlug], error)
	Create(ctx context.Context, item models.NameSlug) (models.NameSlug, error)
	Delete(ctx context.Context, slug string) error
}

// Handler обрабатывает запросы /categories или /genres.
type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	pagination config.Pagination
	kind       string
}

// New создает Handler. kind попадает в op логов: categories или genres.
func New(log *slog.Logger, service Service, pagination config.Pagination, kind string) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validation.New(),
		pagination: pagination,
		kind:       kind,
	}
}

// List godoc
// @Summary Список категорий или жанров
// @Tags Catalog
// @Produce  json
// @Param search query string false "Подстрока названия"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Нет такой страницы"
// @Router /categories [get]
// @Router /genres [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	op := "handlers." + h.kind + ".List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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
// @Summary Добавить категорию или жанр
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Param request body models.NameSlug true "Название и слаг"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или слаг занят"
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /categories [post]
// @Router /genres [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	op := "handlers." + h.kind + ".Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.NameSlug
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}
	item, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("created", slog.String("slug", item.Slug))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(item))
}

// Delete godoc
// @Summary Удалить категорию или жанр
// @Tags Catalog
// @Param slug path string true "Слаг"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /categories/{slug} [delete]
// @Router /genres/{slug} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	op := "handlers." + h.kind + ".Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	if err := h.service.Delete(r.Context(), slug); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("deleted", slog.String("slug", slug))
	render.NoContent(w, r)
}
