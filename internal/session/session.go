// Package session хранит состояние браузерной сессии: вошедшего пользователя и флеш-сообщение.
package session

import (
	"net/http"
	"time"

	"github.com/kirangautam45/userprofile/models"
)

// Время жизни сессии, продлевается при каждом сохранении.
const sessionTTL = 24 * time.Hour

// Store определяет интерфейс хранилища сессий.
type Store interface {
	// Load загружает сессию запроса. Отсутствующая или невалидная сессия
	// возвращается пустой, ошибка означает сбой самого хранилища.
	Load(r *http.Request) (*Session, error)
	// Save сохраняет сессию и выставляет cookie.
	Save(w http.ResponseWriter, r *http.Request, s *Session) error
	// Destroy удаляет сессию и cookie.
	Destroy(w http.ResponseWriter, r *http.Request, s *Session) error
}

// data - сериализуемое содержимое сессии.
type data struct {
	UserID   int64         `json:"user_id,omitempty"`
	Username string        `json:"username,omitempty"`
	Epoch    int64         `json:"epoch,omitempty"`
	Flash    *models.Flash `json:"flash,omitempty"`
}

// Session - состояние одного браузера.
type Session struct {
	id    string // Идентификатор в серверном хранилище, пустой для cookie-сессий
	data  data
	renew bool // Требуется новый идентификатор (после смены личности)
}

// New создает пустую анонимную сессию.
func New() *Session {
	return &Session{}
}

// Authenticate связывает сессию с пользователем и текущим поколением его сессий.
func (s *Session) Authenticate(user *models.User) {
	if s.data.UserID != user.ID || s.data.Username != user.Username {
		s.renew = true
	}
	s.data.UserID = user.ID
	s.data.Username = user.Username
	s.data.Epoch = user.SessionEpoch
}

// Identity возвращает пользователя, к которому привязана сессия.
func (s *Session) Identity() models.Identity {
	return models.Identity{UserID: s.data.UserID, Username: s.data.Username, Epoch: s.data.Epoch}
}

// Username возвращает имя вошедшего пользователя или пустую строку.
func (s *Session) Username() string {
	return s.data.Username
}

// IsAuthenticated сообщает, вошел ли пользователь.
func (s *Session) IsAuthenticated() bool {
	return s.data.Username != ""
}

// SetFlash запоминает сообщение для следующей страницы, заменяя предыдущее.
func (s *Session) SetFlash(kind, message string) {
	s.data.Flash = &models.Flash{Type: kind, Message: message}
}

// PopFlash возвращает флеш-сообщение и удаляет его из сессии.
func (s *Session) PopFlash() *models.Flash {
	f := s.data.Flash
	s.data.Flash = nil
	return f
}

// Clear сбрасывает личность и флеш-сообщение.
func (s *Session) Clear() {
	if s.data.Username != "" {
		s.renew = true
	}
	s.data = data{}
}

func (s *Session) isEmpty() bool {
	return s.data.Username == "" && s.data.Flash == nil
}
