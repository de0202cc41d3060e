package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_superuser, confirmation_code, date_joined`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio,
		&u.Role, &u.IsSuperuser, &u.ConfirmationCode, &u.DateJoined); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Занятые username или email возвращают ErrUsernameTaken или ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.Bio,
		user.Role, user.IsSuperuser).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(err))
	}
	return id, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей, отфильтрованных по подстроке username.
func (s *Storage) ListUsers(ctx context.Context, search string, page models.Page) (models.PageResult[models.User], error) {
	const op = "storage.ListUsers"
	var res models.PageResult[models.User]

	where := `WHERE ($1 = '' OR username ILIKE $2)`
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where,
		search, likePattern(search)).Scan(&res.Count); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where + `
			  ORDER BY id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, search, likePattern(search), page.Limit(), page.Offset())
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		res.Items = append(res.Items, *u)
	}
	if err = rows.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateUser перезаписывает профиль пользователя с ID user.ID.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) error {
	const op = "storage.UpdateUser"

	query := `UPDATE users
			  SET username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6
			  WHERE id = $7`
	res, err := s.DB.ExecContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.Bio, user.Role, user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет пользователя по username вместе с его отзывами и комментариями.
func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	const op = "storage.DeleteUser"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetConfirmationCode сохраняет хэш кода подтверждения. nil сбрасывает код.
func (s *Storage) SetConfirmationCode(ctx context.Context, userID int64, codeHash *string) error {
	const op = "storage.SetConfirmationCode"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET confirmation_code = $1 WHERE id = $2`, codeHash, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeConfirmationCode сбрасывает код, только если сохранён именно codeHash.
// ErrNotFound: код уже использован или заменён новым.
func (s *Storage) ConsumeConfirmationCode(ctx context.Context, userID int64, codeHash string) error {
	const op = "storage.ConsumeConfirmationCode"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET confirmation_code = NULL WHERE id = $1 AND confirmation_code = $2`, userID, codeHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mustAffect(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
