// Package confirm выдаёт одноразовые коды подтверждения и хранит их в виде bcrypt-хэша.
package confirm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch код не совпадает с сохранённым хэшем.
var ErrMismatch = errors.New("confirmation code mismatch")

// Generate возвращает новый код и его хэш для сохранения.
func Generate() (code, hash string, err error) {
	const op = "confirm.Generate"
	code = uuid.NewString()
	hash, err = Hash(code)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return code, hash, nil
}

// Hash возвращает bcrypt-хэш кода.
func Hash(code string) (string, error) {
	const op = "confirm.Hash"
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(h), nil
}

// Compare проверяет код по хэшу. Отсутствующий хэш никогда не совпадает.
func Compare(hash *string, code string) error {
	const op = "confirm.Compare"
	if hash == nil || *hash == "" || code == "" {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(code)); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMismatch, err)
	}
	return nil
}
