// Package titles реализует HTTP-обработчики произведений.
package titles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/validation"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
)

// Service описывает бизнес-логику произведений.
type Service interface {
	List(ctx context.Context, f models.TitleFilter, page models.Page) (models.PageResult[models.Title], error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, in models.NewTitle) (*models.Title, error)
	Update(ctx context.Context, id int64, patch models.TitlePatch) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

// Handler обрабатывает запросы /titles.
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

// parseFilter читает фильтры списка. Нечисловой year даёт ошибку поля.
func parseFilter(r *http.Request) (models.TitleFilter, error) {
	q := r.URL.Query()
	f := models.TitleFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return f, services.NewFieldError("year", "Enter a number.", err)
		}
		f.Year = &year
	}
	return f, nil
}

// List godoc
// @Summary Список произведений
// @Tags Titles
// @Produce  json
// @Param name query string false "Подстрока названия"
// @Param year query int false "Год"
// @Param category query string false "Слаг категории"
// @Param genre query string false "Слаг жанра"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Нет такой страницы"
// @Router /titles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := parseFilter(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	page, err := response.ParsePage(r, h.pagination)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	res, err := h.service.List(r.Context(), filter, page)
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

// Get godoc
// @Summary Произведение по ID
// @Tags Titles
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := response.PathID(r, "title_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	title, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(title))
}

// Create godoc
// @Summary Добавить произведение
// @Description Жанры и категория передаются слагами.
// @Tags Titles
// @Accept  json
// @Produce  json
// @Param request body models.NewTitle true "Произведение"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.NewTitle
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}
	title, err := h.service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("title created", slog.Int64("id", title.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(title))
}

// Update godoc
// @Summary Частично изменить произведение
// @Tags Titles
// @Accept  json
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param request body models.TitlePatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := response.PathID(r, "title_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var patch models.TitlePatch
	if !response.Decode(w, r, log, &patch) || !response.Validate(w, r, log, h.validate, patch) {
		return
	}
	title, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("title updated", slog.Int64("id", id))
	render.JSON(w, r, response.StatusOKWithData(title))
}

// Delete godoc
// @Summary Удалить произведение
// @Description Вместе с произведением удаляются его отзывы и комментарии.
// @Tags Titles
// @Param title_id path int true "ID произведения"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.titles.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := response.PathID(r, "title_id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("title deleted", slog.Int64("id", id))
	render.NoContent(w, r)
}
