// Package reviews отзывы на произведения и комментарии к отзывам.
// Изменять и удалять их могут автор, модератор и администратор.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/permissions"
	"github.com/magabrotheeeer/yamdb/internal/services"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

const (
	msgReviewExists = "You have already reviewed this title."
	msgScoreRange   = "Ensure this value is between 1 and 10."
)

// Repository хранилище отзывов и комментариев.
type Repository interface {
	TitleExists(ctx context.Context, id int64) (bool, error)

	ListReviews(ctx context.Context, titleID int64, page models.Page) (models.PageResult[models.Review], error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	CreateReview(ctx context.Context, review models.Review) (*models.Review, error)
	UpdateReview(ctx context.Context, review models.Review) error
	DeleteReview(ctx context.Context, titleID, reviewID int64) error

	ListComments(ctx context.Context, reviewID int64, page models.Page) (models.PageResult[models.Comment], error)
	GetComment(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment models.Comment) error
	DeleteComment(ctx context.Context, reviewID, commentID int64) error
}

// Service бизнес-логика отзывов и комментариев.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) ensureTitle(ctx context.Context, titleID int64) error {
	ok, err := s.repo.TitleExists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("title %d: %w", titleID, storage.ErrNotFound)
	}
	return nil
}

// ListReviews возвращает отзывы на произведение.
func (s *Service) ListReviews(ctx context.Context, titleID int64, page models.Page) (models.PageResult[models.Review], error) {
	const op = "reviews.ListReviews"
	var res models.PageResult[models.Review]
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.repo.ListReviews(ctx, titleID, page)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetReview возвращает отзыв, если он относится к произведению titleID.
func (s *Service) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "reviews.GetReview"
	r, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// CreateReview публикует отзыв actor. Второй отзыв на то же произведение запрещён.
func (s *Service) CreateReview(ctx context.Context, actor *models.User, titleID int64, in models.ReviewInput) (*models.Review, error) {
	const op = "reviews.CreateReview"
	if err := services.Check(permissions.Authenticated(actor)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r, err := s.repo.CreateReview(ctx, models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     in.Text,
		Score:    in.Score,
	})
	if errors.Is(err, storage.ErrReviewExists) {
		return nil, fmt.Errorf("%s: %w", op, services.NewFieldError(services.NonFieldErrors, msgReviewExists, err))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.Author = actor.Username
	s.log.Info("review created", slog.Int64("title_id", titleID), slog.Int64("id", r.ID))
	return r, nil
}

// UpdateReview частично изменяет текст и оценку.
func (s *Service) UpdateReview(ctx context.Context, actor *models.User, titleID, reviewID int64, patch models.ReviewPatch) (*models.Review, error) {
	const op = "reviews.UpdateReview"
	if err := services.NotBlank("text", patch.Text); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Score != nil && (*patch.Score < 1 || *patch.Score > 10) {
		return nil, fmt.Errorf("%s: %w", op, services.NewFieldError("score", msgScoreRange, nil))
	}
	r, err := s.editableReview(ctx, http.MethodPatch, actor, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Text != nil {
		r.Text = *patch.Text
	}
	if patch.Score != nil {
		r.Score = *patch.Score
	}
	if err = s.repo.UpdateReview(ctx, *r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// DeleteReview удаляет отзыв вместе с комментариями.
func (s *Service) DeleteReview(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	const op = "reviews.DeleteReview"
	if _, err := s.editableReview(ctx, http.MethodDelete, actor, titleID, reviewID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteReview(ctx, titleID, reviewID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("review deleted", slog.Int64("title_id", titleID), slog.Int64("id", reviewID))
	return nil
}

// editableReview загружает отзыв и проверяет право actor его менять.
// Анонимный запрос отклоняется до обращения к хранилищу.
func (s *Service) editableReview(ctx context.Context, method string, actor *models.User, titleID, reviewID int64) (*models.Review, error) {
	if err := services.Check(permissions.Authenticated(actor)); err != nil {
		return nil, err
	}
	r, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err = services.Check(permissions.AuthorOrStaff(method, actor, r.AuthorID)); err != nil {
		return nil, err
	}
	return r, nil
}

// ListComments возвращает комментарии к отзыву reviewID произведения titleID.
func (s *Service) ListComments(ctx context.Context, titleID, reviewID int64, page models.Page) (models.PageResult[models.Comment], error) {
	const op = "reviews.ListComments"
	var res models.PageResult[models.Comment]
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.repo.ListComments(ctx, reviewID, page)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetComment возвращает комментарий, проверяя всю цепочку произведение, отзыв, комментарий.
func (s *Service) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	const op = "reviews.GetComment"
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.repo.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// CreateComment публикует комментарий actor к отзыву.
func (s *Service) CreateComment(ctx context.Context, actor *models.User, titleID, reviewID int64, in models.CommentInput) (*models.Comment, error) {
	const op = "reviews.CreateComment"
	if err := services.Check(permissions.Authenticated(actor)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.repo.CreateComment(ctx, models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     in.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.Author = actor.Username
	return c, nil
}

// UpdateComment изменяет текст комментария.
func (s *Service) UpdateComment(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, patch models.CommentPatch) (*models.Comment, error) {
	const op = "reviews.UpdateComment"
	if err := services.NotBlank("text", patch.Text); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.editableComment(ctx, http.MethodPatch, actor, titleID, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if patch.Text != nil {
		c.Text = *patch.Text
	}
	if err = s.repo.UpdateComment(ctx, *c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// DeleteComment удаляет комментарий.
func (s *Service) DeleteComment(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error {
	const op = "reviews.DeleteComment"
	if _, err := s.editableComment(ctx, http.MethodDelete, actor, titleID, reviewID, commentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteComment(ctx, reviewID, commentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) editableComment(ctx context.Context, method string, actor *models.User, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := services.Check(permissions.Authenticated(actor)); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.repo.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err = services.Check(permissions.AuthorOrStaff(method, actor, c.AuthorID)); err != nil {
		return nil, err
	}
	return c, nil
}
