// Package jwt выпускает и проверяет access-токены API.
package jwt

import (
	"time"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateToken(user *models.User) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
