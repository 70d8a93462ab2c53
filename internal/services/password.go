package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Размер токена "запомнить меня" в байтах до кодирования.
const rememberTokenBytes = 32

// HashPassword хеширует пароль с солью через bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword сообщает, соответствует ли пароль хешу.
// Принимает и хеши вида $2y$, созданные старой версией приложения.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// newRememberToken генерирует непредсказуемый токен в hex-кодировке.
func newRememberToken() (string, error) {
	b := make([]byte, rememberTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("ошибка генерации токена: %w", err)
	}
	return hex.EncodeToString(b), nil
}
