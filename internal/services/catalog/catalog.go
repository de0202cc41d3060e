// Package catalog справочники категорий и жанров.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

const msgSlugTaken = "An object with this slug already exists."

// Repository хранилище справочников.
type Repository interface {
	ListNameSlugs(ctx context.Context, c storage.Catalog, search string, page models.Page) (models.PageResult[models.NameSlug], error)
	CreateNameSlug(ctx context.Context, c storage.Catalog, item models.NameSlug) (models.NameSlug, error)
	DeleteNameSlug(ctx context.Context, c storage.Catalog, slug string) error
}

// Service работает с одним справочником: категориями или жанрами.
type Service struct {
	repo    Repository
	catalog storage.Catalog
	log     *slog.Logger
}

// New создает Service для справочника c.
func New(repo Repository, c storage.Catalog, log *slog.Logger) *Service {
	return &Service{repo: repo, catalog: c, log: log}
}

// List возвращает страницу записей с поиском по подстроке названия.
func (s *Service) List(ctx context.Context, search string, page models.Page) (models.PageResult[models.NameSlug], error) {
	const op = "catalog.List"
	res, err := s.repo.ListNameSlugs(ctx, s.catalog, search, page)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Create добавляет запись. Занятый слаг возвращается как ошибка поля slug.
func (s *Service) Create(ctx context.Context, item models.NameSlug) (models.NameSlug, error) {
	const op = "catalog.Create"
	created, err := s.repo.CreateNameSlug(ctx, s.catalog, item)
	if errors.Is(err, storage.ErrSlugTaken) {
		return created, fmt.Errorf("%s: %w", op, services.NewFieldError("slug", msgSlugTaken, err))
	}
	if err != nil {
		return created, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("catalog item created", slog.String("catalog", string(s.catalog)), slog.String("slug", item.Slug))
	return created, nil
}

// Delete удаляет запись по слагу.
func (s *Service) Delete(ctx context.Context, slug string) error {
	const op = "catalog.Delete"
	if err := s.repo.DeleteNameSlug(ctx, s.catalog, slug); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("catalog item deleted", slog.String("catalog", string(s.catalog)), slog.String("slug", slug))
	return nil
}
