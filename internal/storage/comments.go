package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments возвращает страницу комментариев к отзыву в порядке создания.
func (s *Storage) ListComments(ctx context.Context, reviewID int64, page models.Page) (models.PageResult[models.Comment], error) {
	const op = "storage.ListComments"
	var res models.PageResult[models.Comment]

	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE review_id = $1`, reviewID).Scan(&res.Count); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, commentSelect+`
		WHERE c.review_id = $1
		ORDER BY c.id
		LIMIT $2 OFFSET $3`, reviewID, page.Limit(), page.Offset())
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		res.Items = append(res.Items, *c)
	}
	if err = rows.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetComment возвращает комментарий, если он относится к указанному отзыву.
func (s *Storage) GetComment(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	const op = "storage.GetComment"

	c, err := scanComment(s.DB.QueryRowContext(ctx,
		commentSelect+` WHERE c.id = $1 AND c.review_id = $2`, commentID, reviewID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return c, nil
}

// CreateComment сохраняет комментарий.
func (s *Storage) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage.CreateComment"

	query := `INSERT INTO comments (review_id, author_id, text)
			  VALUES ($1, $2, $3)
			  RETURNING id, pub_date`
	if err := s.DB.QueryRowContext(ctx, query,
		comment.ReviewID, comment.AuthorID, comment.Text).Scan(&comment.ID, &comment.PubDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return &comment, nil
}

// UpdateComment сохраняет текст комментария.
func (s *Storage) UpdateComment(ctx context.Context, comment models.Comment) error {
	const op = "storage.UpdateComment"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE comments SET text = $1 WHERE id = $2 AND review_id = $3`,
		comment.Text, comment.ID, comment.ReviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteComment удаляет комментарий.
func (s *Storage) DeleteComment(ctx context.Context, reviewID, commentID int64) error {
	const op = "storage.DeleteComment"

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND review_id = $2`, commentID, reviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
