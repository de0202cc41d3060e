// Package permissions содержит правила доступа к ресурсам API.
// Правила чистые: по методу запроса, пользователю и автору объекта
// возвращают решение, которое HTTP слой переводит в 401 или 403.
package permissions

import (
	"net/http"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Decision результат проверки доступа.
type Decision int

const (
	// Allow доступ разрешён.
	Allow Decision = iota
	// Unauthenticated нужна аутентификация.
	Unauthenticated
	// Forbidden пользователь известен, но прав недостаточно.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// IsSafe сообщает, что метод только читает данные.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Authenticated разрешает любому вошедшему пользователю.
func Authenticated(actor *models.User) Decision {
	if actor == nil {
		return Unauthenticated
	}
	return Allow
}

// AdminOnly разрешает только администраторам и суперпользователям.
func AdminOnly(actor *models.User) Decision {
	if actor == nil {
		return Unauthenticated
	}
	if !actor.IsAdmin() {
		return Forbidden
	}
	return Allow
}

// AdminOrReadOnly читать может любой, менять только администратор.
func AdminOrReadOnly(method string, actor *models.User) Decision {
	if IsSafe(method) {
		return Allow
	}
	return AdminOnly(actor)
}

// ReadOrAuthenticated читать может любой, писать только вошедший пользователь.
func ReadOrAuthenticated(method string, actor *models.User) Decision {
	if IsSafe(method) {
		return Allow
	}
	return Authenticated(actor)
}

// AuthorOrStaff изменять объект могут автор, модератор и администратор.
func AuthorOrStaff(method string, actor *models.User, authorID int64) Decision {
	if IsSafe(method) {
		return Allow
	}
	if actor == nil {
		return Unauthenticated
	}
	if actor.ID == authorID || actor.IsModerator() || actor.IsAdmin() {
		return Allow
	}
	return Forbidden
}
