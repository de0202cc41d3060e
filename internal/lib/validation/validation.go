// Package validation настраивает go-playground/validator под правила API:
// имена полей берутся из json-тегов, добавлены проверки логина, слага и года.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

var (
	// Буквы и цифры любого алфавита, как \w в Unicode-режиме.
	usernameRe = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// now подменяется в тестах.
var now = time.Now

// New возвращает валидатор с зарегистрированными тегами
// username, notme, slug и pastyear.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Ошибки регистрации возможны только при пустом имени тега.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notme", func(fl validator.FieldLevel) bool {
		return !models.IsReservedUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pastyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(now().Year())
	})

	return v
}
