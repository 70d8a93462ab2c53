package session

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kirangautam45/userprofile/models"
)

// Минимальная длина секрета подписи.
const MinSecretLen = 32

// Структура данных сессии в JWT (claims).
type sessionClaims struct {
	UserID   int64         `json:"uid,omitempty"`
	Username string        `json:"username,omitempty"`
	Epoch    int64         `json:"epoch,omitempty"`
	Flash    *models.Flash `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

// CookieStore хранит всю сессию в подписанном HS256 JWT внутри cookie.
type CookieStore struct {
	secret []byte
	opts   CookieOptions
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore создает хранилище сессий в cookie.
func NewCookieStore(secret []byte, opts CookieOptions) (*CookieStore, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	return &CookieStore{secret: secret, opts: opts}, nil
}

// Load разбирает и проверяет JWT из cookie.
// Поддельный, чужой или истекший токен дает пустую сессию.
func (c *CookieStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return New(), nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		// Убеждаемся, что метод подписи - HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		log.Printf("[Session] Невалидная cookie сессии: %v", err)
		return New(), nil
	}

	return &Session{data: data{
		UserID:   claims.UserID,
		Username: claims.Username,
		Epoch:    claims.Epoch,
		Flash:    claims.Flash,
	}}, nil
}

// Save подписывает сессию и выставляет cookie на 24 часа.
func (c *CookieStore) Save(w http.ResponseWriter, _ *http.Request, s *Session) error {
	if s.isEmpty() {
		c.opts.clear(w, CookieName)
		return nil
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)
	claims := sessionClaims{
		UserID:   s.data.UserID,
		Username: s.data.Username,
		Epoch:    s.data.Epoch,
		Flash:    s.data.Flash,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("ошибка подписи сессии: %w", err)
	}

	c.opts.set(w, CookieName, signed, expiresAt)
	s.renew = false
	return nil
}

// Destroy очищает сессию и удаляет cookie.
// Копия cookie остается подписанной до истечения срока, поэтому при выходе
// поколение сессий пользователя увеличивается и RequireAuth ее отвергает.
func (c *CookieStore) Destroy(w http.ResponseWriter, _ *http.Request, s *Session) error {
	s.Clear()
	s.renew = false
	c.opts.clear(w, CookieName)
	return nil
}

// Кастомные ошибки сессий.
var (
	ErrWeakSecret = errors.New("секрет сессии должен быть не короче 32 байт")
)
