// Package reviews реализует HTTP-обработчики отзывов на произведение.
//
// Права проверяет сервис: читать может любой, создавать только вошедший
// пользователь, менять и удалять автор, модератор или администратор.
package reviews

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/validation"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service описывает бизнес-логику отзывов.
type Service interface {
	ListReviews(ctx context.Context, titleID int64, page models.Page) (models.PageResult[models.Review], error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	CreateReview(ctx context.Context, actor *models.User, titleID int64, in models.ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, actor *models.User, titleID, reviewID int64, patch models.ReviewPatch) (*models.Review, error)
	DeleteReview(ctx context.Context, actor *models.User, titleID, reviewID int64) error
}

// Handler обрабатывает запросы /titles/{title_id}/reviews.
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

// ids читает title_id и, если нужен, review_id.
func ids(r *http.Request, withReview bool) (titleID, reviewID int64, err error) {
	if titleID, err = response.PathID(r, "title_id"); err != nil {
		return 0, 0, err
	}
	if withReview {
		if reviewID, err = response.PathID(r, "review_id"); err != nil {
			return 0, 0, err
		}
	}
	return titleID, reviewID, nil
}

// List godoc
// @Summary Отзывы на произведение
// @Tags Reviews
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	titleID, _, err := ids(r, false)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	page, err := response.ParsePage(r, h.pagination)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	res, err := h.service.ListReviews(r.Context(), titleID, page)
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
// @Summary Отзыв по ID
// @Tags Reviews
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	titleID, reviewID, err := ids(r, true)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	review, err := h.service.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(review))
}

// Create godoc
// @Summary Оставить отзыв
// @Description Один отзыв на произведение от одного автора.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param request body models.ReviewInput true "Текст и оценка 1..10"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id}/reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	titleID, _, err := ids(r, false)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var req models.ReviewInput
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}
	review, err := h.service.CreateReview(r.Context(), middlewarectx.UserFromContext(r.Context()), titleID, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("review created", slog.Int64("title_id", titleID), slog.Int64("id", review.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(review))
}

// Update godoc
// @Summary Изменить отзыв
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param request body models.ReviewPatch true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id}/reviews/{review_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	titleID, reviewID, err := ids(r, true)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var patch models.ReviewPatch
	if !response.Decode(w, r, log, &patch) || !response.Validate(w, r, log, h.validate, patch) {
		return
	}
	review, err := h.service.UpdateReview(r.Context(), middlewarectx.UserFromContext(r.Context()), titleID, reviewID, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("review updated", slog.Int64("id", reviewID))
	render.JSON(w, r, response.StatusOKWithData(review))
}

// Delete godoc
// @Summary Удалить отзыв
// @Tags Reviews
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Success 204
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id}/reviews/{review_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reviews.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	titleID, reviewID, err := ids(r, true)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.DeleteReview(r.Context(), middlewarectx.UserFromContext(r.Context()), titleID, reviewID); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("review deleted", slog.Int64("id", reviewID))
	render.NoContent(w, r)
}
