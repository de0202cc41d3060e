// Package services общие ошибки бизнес-слоя. Конкретные сервисы лежат в подпакетах.
package services

import (
	"errors"

	"github.com/magabrotheeeer/yamdb/internal/permissions"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

var (
	// ErrUnauthenticated действие требует аутентификации.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrForbidden недостаточно прав для действия над объектом.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// NonFieldErrors поле для ошибок, не относящихся к конкретному полю запроса.
const NonFieldErrors = "non_field_errors"

// FieldError ошибка проверки, привязанная к полю запроса. HTTP слой отдаёт её как 400.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// NewFieldError создаёт FieldError с причиной err.
func NewFieldError(field, message string, err error) *FieldError {
	return &FieldError{Field: field, Message: message, Err: err}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// MsgBlank сообщение о пустом значении обязательного поля.
const MsgBlank = "This field may not be blank."

// NotBlank запрещает явно переданное пустое значение в частичном обновлении.
func NotBlank(field string, v *string) error {
	if v != nil && *v == "" {
		return NewFieldError(field, MsgBlank, nil)
	}
	return nil
}

// Check переводит решение проверки доступа в ошибку.
func Check(d permissions.Decision) error {
	switch d {
	case permissions.Allow:
		return nil
	case permissions.Unauthenticated:
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}

// UserFieldError переводит нарушение уникальности имени или email в ошибку поля.
// Остальные ошибки возвращаются без изменений.
func UserFieldError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		return NewFieldError("username", "A user with that username already exists.", err)
	case errors.Is(err, storage.ErrEmailTaken):
		return NewFieldError("email", "A user with that email already exists.", err)
	}
	return err
}
