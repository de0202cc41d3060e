// Package storage реализует хранилище данных на основе PostgreSQL:
// пользователи, категории, жанры, произведения, отзывы и комментарии.
// Уникальность и ссылочная целостность обеспечиваются ограничениями БД,
// нарушения переводятся в сигнальные ошибки пакета.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken email уже занят.
	ErrEmailTaken = errors.New("email already taken")
	// ErrSlugTaken слаг категории или жанра уже занят.
	ErrSlugTaken = errors.New("slug already taken")
	// ErrReviewExists пользователь уже оставил отзыв на это произведение.
	ErrReviewExists = errors.New("review already exists")
)

// SlugNotFoundError ссылка на несуществующую категорию или жанр.
type SlugNotFoundError struct {
	Field string
	Slug  string
}

func (e *SlugNotFoundError) Error() string {
	return fmt.Sprintf("%s: object with slug %q does not exist", e.Field, e.Slug)
}

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// querier общий интерфейс *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// classify переводит ошибки PostgreSQL в сигнальные ошибки пакета.
// Неизвестные ошибки возвращаются без изменений.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case "users_username_key":
			return fmt.Errorf("%w: %w", ErrUsernameTaken, err)
		case "users_email_key":
			return fmt.Errorf("%w: %w", ErrEmailTaken, err)
		case "categories_slug_key", "genres_slug_key":
			return fmt.Errorf("%w: %w", ErrSlugTaken, err)
		case "unique_review_per_author":
			return fmt.Errorf("%w: %w", ErrReviewExists, err)
		}
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// mustAffect возвращает ErrNotFound, если запрос не затронул ни одной строки.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// withTx выполняет fn в транзакции. Ошибка fn откатывает транзакцию.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// likeEscaper экранирует спецсимволы LIKE. Обратная косая черта
// в PostgreSQL экранирующий символ по умолчанию.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern строит шаблон ILIKE для поиска подстроки.
// % и _ в search ищутся как обычные символы.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
