// Package users управление пользователями и собственным профилем.
// Пользователь по имени кешируется: он загружается при каждом запросе с токеном.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/metrics"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services"
)

// Repository хранилище пользователей.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, search string, page models.Page) (models.PageResult[models.User], error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, username string) error
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// cachedUser снимок пользователя в кеше. Код подтверждения не кешируется.
type cachedUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Bio         string `json:"bio"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
}

func toCached(u *models.User) cachedUser {
	return cachedUser{
		ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName,
		LastName: u.LastName, Bio: u.Bio, Role: u.Role, IsSuperuser: u.IsSuperuser,
	}
}

func (c cachedUser) user() *models.User {
	return &models.User{
		ID: c.ID, Username: c.Username, Email: c.Email, FirstName: c.FirstName,
		LastName: c.LastName, Bio: c.Bio, Role: c.Role, IsSuperuser: c.IsSuperuser,
	}
}

func cacheKey(username string) string {
	return "user:" + username
}

// Service бизнес-логика пользователей.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// New создает Service. ttl время жизни записи пользователя в кеше.
func New(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}
}

// GetByUsername возвращает пользователя, используя кеш или репозиторий.
// Ошибки кеша не прерывают запрос.
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "users.GetByUsername"

	var cached cachedUser
	found, err := s.cache.Get(ctx, cacheKey(username), &cached)
	switch {
	case err != nil:
		metrics.UserCacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("failed to read user from cache", slog.String("username", username), sl.Err(err))
	case found:
		metrics.UserCacheLookups.WithLabelValues("hit").Inc()
		return cached.user(), nil
	default:
		metrics.UserCacheLookups.WithLabelValues("miss").Inc()
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, cacheKey(username), toCached(user), s.ttl); err != nil {
		s.log.Warn("failed to cache user", slog.String("username", username), sl.Err(err))
	}
	return user, nil
}

// List возвращает страницу пользователей с поиском по подстроке имени.
func (s *Service) List(ctx context.Context, search string, page models.Page) (models.PageResult[models.User], error) {
	const op = "users.List"
	res, err := s.repo.ListUsers(ctx, search, page)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Create создаёт пользователя от имени администратора. Пустая роль означает user.
func (s *Service) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	const op = "users.Create"
	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, services.UserFieldError(err))
	}
	user.ID = id
	s.log.Info("user created", slog.String("username", user.Username), slog.String("role", user.Role))
	return &user, nil
}

// Update частично изменяет пользователя, включая роль.
func (s *Service) Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	const op = "users.Update"
	user, err := s.update(ctx, username, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateMe частично изменяет собственный профиль. Роль изменить нельзя.
func (s *Service) UpdateMe(ctx context.Context, actor *models.User, patch models.UserPatch) (*models.User, error) {
	const op = "users.UpdateMe"
	patch.Role = nil
	user, err := s.update(ctx, actor.Username, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *Service) update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	if err := services.NotBlank("username", patch.Username); err != nil {
		return nil, err
	}
	if err := services.NotBlank("email", patch.Email); err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	patch.Apply(user)
	if err = s.repo.UpdateUser(ctx, *user); err != nil {
		return nil, services.UserFieldError(err)
	}
	s.invalidate(ctx, username, user.Username)
	return user, nil
}

// Delete удаляет пользователя вместе с его отзывами и комментариями.
func (s *Service) Delete(ctx context.Context, username string) error {
	const op = "users.Delete"
	if err := s.repo.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, username)
	s.log.Info("user deleted", slog.String("username", username))
	return nil
}

func (s *Service) invalidate(ctx context.Context, usernames ...string) {
	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		keys = append(keys, cacheKey(u))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate user cache", slog.Any("keys", keys), sl.Err(err))
	}
}
