package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Catalog таблица справочника «название + слаг».
type Catalog string

const (
	// Categories справочник категорий.
	Categories Catalog = "categories"
	// Genres справочник жанров.
	Genres Catalog = "genres"
)

// ListNameSlugs возвращает страницу справочника с поиском по подстроке названия.
func (s *Storage) ListNameSlugs(ctx context.Context, c Catalog, search string, page models.Page) (models.PageResult[models.NameSlug], error) {
	const op = "storage.ListNameSlugs"
	var res models.PageResult[models.NameSlug]

	where := `WHERE ($1 = '' OR name ILIKE $2)`
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, c, where)
	if err := s.DB.QueryRowContext(ctx, countQuery, search, likePattern(search)).Scan(&res.Count); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	query := fmt.Sprintf(`SELECT id, name, slug FROM %s %s ORDER BY id LIMIT $3 OFFSET $4`, c, where)
	rows, err := s.DB.QueryContext(ctx, query, search, likePattern(search), page.Limit(), page.Offset())
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var item models.NameSlug
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug); err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		res.Items = append(res.Items, item)
	}
	if err = rows.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// CreateNameSlug добавляет запись в справочник. Занятый слаг возвращает ErrSlugTaken.
func (s *Storage) CreateNameSlug(ctx context.Context, c Catalog, item models.NameSlug) (models.NameSlug, error) {
	const op = "storage.CreateNameSlug"

	query := fmt.Sprintf(`INSERT INTO %s (name, slug) VALUES ($1, $2) RETURNING id`, c)
	if err := s.DB.QueryRowContext(ctx, query, item.Name, item.Slug).Scan(&item.ID); err != nil {
		return item, fmt.Errorf("%s: %w", op, classify(err))
	}
	return item, nil
}

// DeleteNameSlug удаляет запись справочника по слагу.
// Произведения не удаляются: категория обнуляется, связь с жанром исчезает.
func (s *Storage) DeleteNameSlug(ctx context.Context, c Catalog, slug string) error {
	const op = "storage.DeleteNameSlug"

	res, err := s.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE slug = $1`, c), slug)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
