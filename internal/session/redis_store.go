package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore хранит сессии в Redis, в cookie лежит только идентификатор.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	opts   CookieOptions
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore создает хранилище сессий в Redis.
func NewRedisStore(client redis.Cmdable, opts CookieOptions) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
		opts:   opts,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Load читает сессию по идентификатору из cookie.
// Неизвестный или некорректный идентификатор дает пустую сессию.
func (r *RedisStore) Load(req *http.Request) (*Session, error) {
	cookie, err := req.Cookie(IDCookieName)
	if err != nil || cookie.Value == "" {
		return New(), nil
	}
	if _, err = uuid.Parse(cookie.Value); err != nil {
		return New(), nil
	}

	val, err := r.client.Get(req.Context(), r.key(cookie.Value)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сессии из Redis: %w", err)
	}

	s := &Session{id: cookie.Value}
	if err = json.Unmarshal(val, &s.data); err != nil {
		log.Printf("[Session] Поврежденная сессия %s: %v", cookie.Value, err)
		return New(), nil
	}
	return s, nil
}

// Save записывает сессию с TTL 24 часа. При смене личности выдается новый идентификатор.
func (r *RedisStore) Save(w http.ResponseWriter, req *http.Request, s *Session) error {
	ctx := req.Context()

	if s.id != "" && s.renew {
		if err := r.client.Del(ctx, r.key(s.id)).Err(); err != nil {
			log.Printf("[Session] Ошибка удаления старой сессии %s: %v", s.id, err)
		}
		s.id = ""
		if s.isEmpty() {
			s.renew = false
			r.opts.clear(w, IDCookieName)
			return nil
		}
	}
	if s.id == "" {
		if s.isEmpty() {
			return nil
		}
		s.id = uuid.NewString()
	}

	payload, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	if err = r.client.Set(ctx, r.key(s.id), payload, sessionTTL).Err(); err != nil {
		return fmt.Errorf("ошибка записи сессии в Redis: %w", err)
	}

	r.opts.set(w, IDCookieName, s.id, time.Now().Add(sessionTTL))
	s.renew = false
	return nil
}

// Destroy удаляет сессию из Redis и cookie.
func (r *RedisStore) Destroy(w http.ResponseWriter, req *http.Request, s *Session) error {
	if s.id != "" {
		if err := r.client.Del(req.Context(), r.key(s.id)).Err(); err != nil {
			return fmt.Errorf("ошибка удаления сессии из Redis: %w", err)
		}
	}
	s.Clear()
	s.id = ""
	s.renew = false
	r.opts.clear(w, IDCookieName)
	return nil
}
