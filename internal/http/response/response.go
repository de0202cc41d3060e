// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/services"
	"github.com/magabrotheeeer/yamdb/internal/services/auth"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Fields заполняется при ошибках проверки: поле запроса и список сообщений.
type Response struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
	Data   any                 `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string              `json:"status" example:"Error"`
	Error  string              `json:"error" example:"invalid request body"`
	Fields map[string][]string `json:"fields,omitempty"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// FieldError ошибка, относящаяся к одному полю запроса.
func FieldError(field, msg string) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Fields: map[string][]string{field: {msg}},
	}
}

// ValidationError формирует ответ с сообщениями по каждому полю.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string][]string, len(errs))
	for _, err := range errs {
		fields[err.Field()] = append(fields[err.Field()], message(err))
	}
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Fields: fields,
	}
}

func message(err validator.FieldError) string {
	switch err.ActualTag() {
	case "required":
		return "This field is required."
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", err.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", err.Param())
	case "min":
		switch err.Kind() {
		case reflect.Slice:
			return "This list may not be empty."
		case reflect.String:
			return "This field may not be blank."
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", err.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "notme":
		return "Username 'me' is reserved."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "pastyear":
		return "Year cannot be in the future."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", err.Param())
	default:
		return "Invalid value."
	}
}

// Validate отдаёт 400 при ошибке проверки запроса. Возвращает false, если ответ уже записан.
func Validate(w http.ResponseWriter, r *http.Request, log *slog.Logger, v *validator.Validate, req any) bool {
	err := v.Struct(req)
	if err == nil {
		return true
	}
	log.Info("validation failed", sl.Err(err))
	var verrs validator.ValidationErrors
	render.Status(r, http.StatusBadRequest)
	if errors.As(err, &verrs) {
		render.JSON(w, r, ValidationError(verrs))
	} else {
		render.JSON(w, r, Error("invalid request"))
	}
	return false
}

// Decode разбирает JSON тело запроса. Возвращает false, если ответ 400 уже записан.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Error("invalid request body"))
		return false
	}
	return true
}

// Fail переводит ошибку бизнес-слоя в HTTP ответ. Неизвестные ошибки
// логируются и отдаются как 500 без подробностей.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, resp := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

func classify(err error) (int, Response) {
	var fe *services.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, FieldError(fe.Field, fe.Message)
	case errors.Is(err, ErrInvalidPage):
		return http.StatusNotFound, Error("invalid page")
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, Error(services.ErrUnauthenticated.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, Error(auth.ErrInvalidToken.Error())
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, Error(services.ErrForbidden.Error())
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}
