package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret хеширует секрет API-клиента
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования секрета: %w", err)
	}
	return string(hash), nil
}

// CheckSecretHash сравнивает секрет с сохранённым хешем
func CheckSecretHash(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
