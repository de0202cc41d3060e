// Package titles произведения: список с фильтрами, карточка с рейтингом, изменение.
package titles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

// Repository хранилище произведений.
type Repository interface {
	ListTitles(ctx context.Context, f models.TitleFilter, page models.Page) (models.PageResult[models.Title], error)
	GetTitle(ctx context.Context, id int64) (*models.Title, error)
	CreateTitle(ctx context.Context, in models.NewTitle) (int64, error)
	UpdateTitle(ctx context.Context, id int64, patch models.TitlePatch) error
	DeleteTitle(ctx context.Context, id int64) error
}

// Service бизнес-логика произведений.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает страницу произведений по фильтру.
func (s *Service) List(ctx context.Context, f models.TitleFilter, page models.Page) (models.PageResult[models.Title], error) {
	const op = "titles.List"
	res, err := s.repo.ListTitles(ctx, f, page)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Get возвращает произведение с рейтингом, жанрами и категорией.
func (s *Service) Get(ctx context.Context, id int64) (*models.Title, error) {
	const op = "titles.Get"
	t, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// Create добавляет произведение и возвращает его в виде для чтения.
func (s *Service) Create(ctx context.Context, in models.NewTitle) (*models.Title, error) {
	const op = "titles.Create"
	id, err := s.repo.CreateTitle(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, slugFieldError(err))
	}
	s.log.Info("title created", slog.Int64("id", id))
	return s.Get(ctx, id)
}

// Update частично изменяет произведение. Переданный список жанров заменяет текущий.
func (s *Service) Update(ctx context.Context, id int64, patch models.TitlePatch) (*models.Title, error) {
	const op = "titles.Update"
	if err := checkPatch(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateTitle(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, slugFieldError(err))
	}
	return s.Get(ctx, id)
}

// Delete удаляет произведение вместе с отзывами и комментариями.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "titles.Delete"
	if err := s.repo.DeleteTitle(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("title deleted", slog.Int64("id", id))
	return nil
}

func checkPatch(patch models.TitlePatch) error {
	if err := services.NotBlank("name", patch.Name); err != nil {
		return err
	}
	if err := services.NotBlank("category", patch.Category); err != nil {
		return err
	}
	if patch.Genre != nil && len(patch.Genre) == 0 {
		return services.NewFieldError("genre", "This list may not be empty.", nil)
	}
	return nil
}

func slugFieldError(err error) error {
	var slugErr *storage.SlugNotFoundError
	if errors.As(err, &slugErr) {
		msg := fmt.Sprintf("Object with slug=%s does not exist.", slugErr.Slug)
		return services.NewFieldError(slugErr.Field, msg, err)
	}
	return err
}
