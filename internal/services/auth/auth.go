// Package auth регистрация по email с кодом подтверждения, выдача JWT
// и аутентификация запросов по токену.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/lib/confirm"
	"github.com/magabrotheeeer/yamdb/internal/lib/jwt"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
	"github.com/magabrotheeeer/yamdb/internal/services/mailer"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

var (
	// ErrInvalidCode код подтверждения не совпадает или уже использован.
	ErrInvalidCode = errors.New("invalid confirmation code")
	// ErrInvalidToken токен не прошёл проверку или его пользователь удалён.
	ErrInvalidToken = errors.New("invalid token")
)

const msgInvalidCode = "Invalid confirmation code."

// UserRepository хранилище пользователей для регистрации.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetConfirmationCode(ctx context.Context, userID int64, codeHash *string) error
	ConsumeConfirmationCode(ctx context.Context, userID int64, codeHash string) error
}

// UserLookup загружает пользователя для аутентифицированного запроса.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service отвечает за регистрацию, выдачу и проверку JWT.
type Service struct {
	users    UserRepository
	lookup   UserLookup
	mailer   mailer.Mailer
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает Service.
func New(users UserRepository, lookup UserLookup, m mailer.Mailer, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		lookup:   lookup,
		mailer:   m,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Signup регистрирует пользователя с ролью user и отправляет код подтверждения.
// Повторный запрос с той же парой username/email выдаёт новый код.
func (s *Service) Signup(ctx context.Context, in models.Signup) error {
	const op = "auth.Signup"

	byName, err := s.find(ctx, s.users.GetUserByUsername, in.Username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	byEmail, err := s.find(ctx, s.users.GetUserByEmail, in.Email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var user *models.User
	switch {
	case byName != nil && byName.Email == in.Email:
		user = byName
	case byName != nil:
		return fmt.Errorf("%s: %w", op, services.UserFieldError(storage.ErrUsernameTaken))
	case byEmail != nil:
		return fmt.Errorf("%s: %w", op, services.UserFieldError(storage.ErrEmailTaken))
	default:
		user = &models.User{Username: in.Username, Email: in.Email, Role: models.RoleUser}
		id, err := s.users.CreateUser(ctx, *user)
		if err != nil {
			return fmt.Errorf("%s: %w", op, services.UserFieldError(err))
		}
		user.ID = id
		s.log.Info("user registered", slog.String("username", user.Username))
	}

	if err = s.issueCode(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) find(ctx context.Context, get func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	u, err := get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Service) issueCode(ctx context.Context, user *models.User) error {
	code, hash, err := confirm.Generate()
	if err != nil {
		return err
	}
	if err = s.users.SetConfirmationCode(ctx, user.ID, &hash); err != nil {
		return err
	}
	msg := models.ConfirmationMessage{Username: user.Username, Email: user.Email, Code: code}
	if err = s.mailer.SendConfirmationCode(ctx, msg); err != nil {
		s.log.Error("failed to deliver confirmation code", slog.String("username", user.Username), sl.Err(err))
		return err
	}
	return nil
}

// Token обменивает код подтверждения на JWT. Код одноразовый.
func (s *Service) Token(ctx context.Context, in models.TokenRequest) (string, error) {
	const op = "auth.Token"

	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err = confirm.Compare(user.ConfirmationCode, in.ConfirmationCode); err != nil {
		return "", fmt.Errorf("%s: %w", op, invalidCode())
	}
	// Код гасится условным UPDATE: из параллельных обменов токен получит один.
	err = s.users.ConsumeConfirmationCode(ctx, user.ID, *user.ConfirmationCode)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, invalidCode())
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

func invalidCode() error {
	return services.NewFieldError("confirmation_code", msgInvalidCode, ErrInvalidCode)
}

// Authenticate проверяет токен и загружает его пользователя.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	user, err := s.lookup.GetByUsername(ctx, claims.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w: user not found", op, ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if id, err := claims.UserID(); err != nil || id != user.ID {
		return nil, fmt.Errorf("%s: %w: subject mismatch", op, ErrInvalidToken)
	}
	return user, nil
}
