package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

func scanReview(row rowScanner) (*models.Review, error) {
	var r models.Review
	if err := row.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.PubDate); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviews возвращает страницу отзывов произведения в порядке создания.
func (s *Storage) ListReviews(ctx context.Context, titleID int64, page models.Page) (models.PageResult[models.Review], error) {
	const op = "storage.ListReviews"
	var res models.PageResult[models.Review]

	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID).Scan(&res.Count); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, reviewSelect+`
		WHERE r.title_id = $1
		ORDER BY r.id
		LIMIT $2 OFFSET $3`, titleID, page.Limit(), page.Offset())
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		res.Items = append(res.Items, *r)
	}
	if err = rows.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetReview возвращает отзыв, если он относится к указанному произведению.
func (s *Storage) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "storage.GetReview"

	r, err := scanReview(s.DB.QueryRowContext(ctx,
		reviewSelect+` WHERE r.id = $1 AND r.title_id = $2`, reviewID, titleID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return r, nil
}

// CreateReview сохраняет отзыв. Повторный отзыв автора на то же произведение
// отклоняется ограничением unique_review_per_author и возвращает ErrReviewExists.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	const op = "storage.CreateReview"

	query := `INSERT INTO reviews (title_id, author_id, text, score)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, pub_date`
	if err := s.DB.QueryRowContext(ctx, query,
		review.TitleID, review.AuthorID, review.Text, review.Score).Scan(&review.ID, &review.PubDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return &review, nil
}

// UpdateReview сохраняет текст и оценку отзыва.
func (s *Storage) UpdateReview(ctx context.Context, review models.Review) error {
	const op = "storage.UpdateReview"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE reviews SET text = $1, score = $2 WHERE id = $3 AND title_id = $4`,
		review.Text, review.Score, review.ID, review.TitleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteReview удаляет отзыв вместе с комментариями.
func (s *Storage) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	const op = "storage.DeleteReview"

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND title_id = $2`, reviewID, titleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
