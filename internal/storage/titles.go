package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Рейтинг считается при каждом чтении и нигде не хранится.
const titleSelect = `SELECT t.id, t.name, t.year, t.description,
		c.id, c.name, c.slug,
		(SELECT AVG(r.score)::float8 FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

const titleFilter = `
	WHERE ($1 = '' OR t.name ILIKE $2)
	  AND ($3::int IS NULL OR t.year = $3::int)
	  AND ($4 = '' OR c.slug = $4)
	  AND ($5 = '' OR EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $5))`

func scanTitle(row rowScanner) (*models.Title, error) {
	var (
		t            models.Title
		categoryID   sql.NullInt64
		categoryName sql.NullString
		categorySlug sql.NullString
		rating       sql.NullFloat64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Year, &t.Description,
		&categoryID, &categoryName, &categorySlug, &rating); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		t.Category = &models.NameSlug{ID: categoryID.Int64, Name: categoryName.String, Slug: categorySlug.String}
	}
	if rating.Valid {
		t.Rating = &rating.Float64
	}
	t.Genre = []models.NameSlug{}
	return &t, nil
}

// ListTitles возвращает страницу произведений с рейтингом, отсортированную по названию.
func (s *Storage) ListTitles(ctx context.Context, f models.TitleFilter, page models.Page) (models.PageResult[models.Title], error) {
	const op = "storage.ListTitles"
	var res models.PageResult[models.Title]

	args := []any{f.Name, likePattern(f.Name), f.Year, f.Category, f.Genre}

	countQuery := `SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id` + titleFilter
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&res.Count); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	query := titleSelect + titleFilter + `
	ORDER BY t.name, t.id
	LIMIT $6 OFFSET $7`
	rows, err := s.DB.QueryContext(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		res.Items = append(res.Items, *t)
	}
	if err = rows.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]int64, 0, len(res.Items))
	for _, t := range res.Items {
		ids = append(ids, t.ID)
	}
	genres, err := loadGenres(ctx, s.DB, ids)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	for i := range res.Items {
		if g, ok := genres[res.Items[i].ID]; ok {
			res.Items[i].Genre = g
		}
	}
	return res, nil
}

// GetTitle возвращает произведение с жанрами, категорией и рейтингом.
func (s *Storage) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	const op = "storage.GetTitle"

	t, err := scanTitle(s.DB.QueryRowContext(ctx, titleSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	genres, err := loadGenres(ctx, s.DB, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if g, ok := genres[id]; ok {
		t.Genre = g
	}
	return t, nil
}

// TitleExists проверяет наличие произведения.
func (s *Storage) TitleExists(ctx context.Context, id int64) (bool, error) {
	const op = "storage.TitleExists"

	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateTitle создаёт произведение и связи с жанрами в одной транзакции.
// Неизвестные слаги возвращают *SlugNotFoundError.
func (s *Storage) CreateTitle(ctx context.Context, in models.NewTitle) (int64, error) {
	const op = "storage.CreateTitle"

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		categoryID, err := resolveCategory(ctx, tx, in.Category)
		if err != nil {
			return err
		}
		genreIDs, err := resolveGenres(ctx, tx, in.Genre)
		if err != nil {
			return err
		}

		query := `INSERT INTO titles (name, year, description, category_id)
				  VALUES ($1, $2, $3, $4)
				  RETURNING id`
		if err = tx.QueryRowContext(ctx, query, in.Name, *in.Year, in.Description, categoryID).Scan(&id); err != nil {
			return classify(err)
		}
		return linkGenres(ctx, tx, id, genreIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateTitle применяет частичное изменение. Переданный список жанров заменяет текущий.
func (s *Storage) UpdateTitle(ctx context.Context, id int64, patch models.TitlePatch) error {
	const op = "storage.UpdateTitle"

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var locked int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM titles WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return classify(err)
		}

		var (
			sets []string
			args []any
		)
		add := func(column string, value any) {
			args = append(args, value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
		if patch.Name != nil {
			add("name", *patch.Name)
		}
		if patch.Year != nil {
			add("year", *patch.Year)
		}
		if patch.Description != nil {
			add("description", *patch.Description)
		}
		if patch.Category != nil {
			categoryID, err := resolveCategory(ctx, tx, *patch.Category)
			if err != nil {
				return err
			}
			add("category_id", categoryID)
		}
		if len(sets) > 0 {
			args = append(args, id)
			query := fmt.Sprintf(`UPDATE titles SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return classify(err)
			}
		}

		if patch.Genre != nil {
			genreIDs, err := resolveGenres(ctx, tx, patch.Genre)
			if err != nil {
				return err
			}
			if _, err = tx.ExecContext(ctx, `DELETE FROM title_genres WHERE title_id = $1`, id); err != nil {
				return err
			}
			return linkGenres(ctx, tx, id, genreIDs)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteTitle удаляет произведение. Отзывы и комментарии удаляются каскадно.
func (s *Storage) DeleteTitle(ctx context.Context, id int64) error {
	const op = "storage.DeleteTitle"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func resolveCategory(ctx context.Context, q querier, slug string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE slug = $1`, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &SlugNotFoundError{Field: "category", Slug: slug}
	}
	return id, err
}

func resolveGenres(ctx context.Context, q querier, slugs []string) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, slug FROM genres WHERE slug = ANY($1)`, slugs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	found := make(map[string]int64, len(slugs))
	for rows.Next() {
		var (
			id   int64
			slug string
		)
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, err
		}
		found[slug] = id
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(slugs))
	seen := make(map[int64]bool, len(slugs))
	for _, slug := range slugs {
		id, ok := found[slug]
		if !ok {
			return nil, &SlugNotFoundError{Field: "genre", Slug: slug}
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func linkGenres(ctx context.Context, q querier, titleID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2)`, titleID, genreID); err != nil {
			return classify(err)
		}
	}
	return nil
}

// loadGenres возвращает жанры для набора произведений, упорядоченные по ID жанра.
func loadGenres(ctx context.Context, q querier, titleIDs []int64) (map[int64][]models.NameSlug, error) {
	res := make(map[int64][]models.NameSlug, len(titleIDs))
	if len(titleIDs) == 0 {
		return res, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = ANY($1)
		ORDER BY g.id`, titleIDs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var (
			titleID int64
			g       models.NameSlug
		)
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		res[titleID] = append(res[titleID], g)
	}
	return res, rows.Err()
}
