// Package comments реализует HTTP-обработчики комментариев к отзывам.
package comments

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

// Service описывает бизнес-логику комментариев.
type Service interface {
	ListComments(ctx context.Context, titleID, reviewID int64, page models.Page) (models.PageResult[models.Comment], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	CreateComment(ctx context.Context, actor *models.User, titleID, reviewID int64, in models.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, patch models.CommentPatch) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error
}

// Handler обрабатывает запросы /titles/{title_id}/reviews/{review_id}/comments.
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

type path struct {
	titleID, reviewID, commentID int64
}

func parsePath(r *http.Request, withComment bool) (path, error) {
	var (
		p   path
		err error
	)
	if p.titleID, err = response.PathID(r, "title_id"); err != nil {
		return p, err
	}
	if p.reviewID, err = response.PathID(r, "review_id"); err != nil {
		return p, err
	}
	if withComment {
		if p.commentID, err = response.PathID(r, "comment_id"); err != nil {
			return p, err
		}
	}
	return p, nil
}

// List godoc
// @Summary Комментарии к отзыву
// @Tags Comments
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.List"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := parsePath(r, false)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	page, err := response.ParsePage(r, h.pagination)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	res, err := h.service.ListComments(r.Context(), p.titleID, p.reviewID, page)
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
// @Summary Комментарий по ID
// @Tags Comments
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := parsePath(r, true)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	comment, err := h.service.GetComment(r.Context(), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(comment))
}

// Create godoc
// @Summary Оставить комментарий
// @Tags Comments
// @Accept  json
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param request body models.CommentInput true "Текст"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id}/reviews/{review_id}/comments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := parsePath(r, false)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var req models.CommentInput
	if !response.Decode(w, r, log, &req) || !response.Validate(w, r, log, h.validate, req) {
		return
	}
	comment, err := h.service.CreateComment(r.Context(), middlewarectx.UserFromContext(r.Context()), p.titleID, p.reviewID, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("comment created", slog.Int64("review_id", p.reviewID), slog.Int64("id", comment.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(comment))
}

// Update godoc
// @Summary Изменить комментарий
// @Tags Comments
// @Accept  json
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Param request body models.CommentPatch true "Текст"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := parsePath(r, true)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var patch models.CommentPatch
	if !response.Decode(w, r, log, &patch) || !response.Validate(w, r, log, h.validate, patch) {
		return
	}
	comment, err := h.service.UpdateComment(r.Context(), middlewarectx.UserFromContext(r.Context()),
		p.titleID, p.reviewID, p.commentID, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("comment updated", slog.Int64("id", p.commentID))
	render.JSON(w, r, response.StatusOKWithData(comment))
}

// Delete godoc
// @Summary Удалить комментарий
// @Tags Comments
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Success 204
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Delete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, err := parsePath(r, true)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	err = h.service.DeleteComment(r.Context(), middlewarectx.UserFromContext(r.Context()), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("comment deleted", slog.Int64("id", p.commentID))
	render.NoContent(w, r)
}
