// Package models содержит доменные структуры API: пользователей, категории,
// жанры, произведения, отзывы и комментарии.
package models

import (
	"strings"
	"time"
)

// Роли пользователей.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ReservedUsername нельзя использовать как имя пользователя:
// путь /users/me занят под собственный профиль.
const ReservedUsername = "me"

// User представляет зарегистрированного пользователя.
type User struct {
	ID               int64     `json:"-"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Bio              string    `json:"bio"`
	Role             string    `json:"role"`
	IsSuperuser      bool      `json:"-"`
	ConfirmationCode *string   `json:"-"` // bcrypt-хэш последнего выданного кода
	DateJoined       time.Time `json:"-"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.IsSuperuser)
}

// IsModerator сообщает, является ли пользователь модератором.
func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}

// IsReservedUsername проверяет имя на совпадение с зарезервированным без учёта регистра.
func IsReservedUsername(username string) bool {
	return strings.EqualFold(username, ReservedUsername)
}

// UserPatch описывает частичное изменение профиля. nil: поле не меняется.
type UserPatch struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username,notme"`
	Email     *string `json:"email" validate:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// Apply переносит заданные поля патча в пользователя.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// NewUser входные данные для создания пользователя администратором.
type NewUser struct {
	Username  string `json:"username" validate:"required,max=150,username,notme"`
	Email     string `json:"email" validate:"required,max=254,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// Signup входные данные для регистрации.
type Signup struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

// TokenRequest входные данные для обмена кода подтверждения на токен.
type TokenRequest struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// ConfirmationMessage письмо с кодом подтверждения. Сериализуется в очередь.
type ConfirmationMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}
