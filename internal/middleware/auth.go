package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/internal/session"
	"github.com/kirangautam45/userprofile/models"
)

// Тип для ключа контекста.
type contextKey string

// Ключи для хранения сессии и пользователя в контексте.
const (
	SessionKey contextKey = "session"
	UserKey    contextKey = "user"
)

// LoginPath - страница, на которую отправляются анонимные пользователи.
const LoginPath = "/login"

// UserResolver находит пользователя по имени из сессии.
type UserResolver interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Sessions загружает сессию запроса и кладет ее в контекст.
func Sessions(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if err != nil {
				log.Printf("[SessionMiddleware] Ошибка загрузки сессии: %v", err)
				http.Error(w, services.MsgSomethingWrong, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// RequireAuth пропускает только вошедших пользователей.
// Сессия каждый раз сверяется с хранилищем: пользователь должен существовать,
// иметь тот же ID и то же поколение сессий. Иначе (переименование в другом
// браузере, имя занято новым пользователем, выход) личность сбрасывается.
func RequireAuth(store session.Store, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if !sess.IsAuthenticated() {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			user, err := users.GetUser(r.Context(), sess.Username())
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				log.Printf("[AuthMiddleware] Пользователь '%s' из сессии больше не существует", sess.Username())
				dropIdentity(w, r, store, sess)
				return
			case err != nil:
				log.Printf("[AuthMiddleware] Ошибка проверки пользователя '%s': %v", sess.Username(), err)
				http.Error(w, services.MsgSomethingWrong, http.StatusInternalServerError)
				return
			case !sess.Identity().Matches(user):
				log.Printf("[AuthMiddleware] Сессия пользователя '%s' отозвана или выдана другому пользователю", sess.Username())
				dropIdentity(w, r, store, sess)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserKey, user)))
		})
	}
}

// dropIdentity сбрасывает личность в сессии и отправляет на страницу входа.
func dropIdentity(w http.ResponseWriter, r *http.Request, store session.Store, sess *session.Session) {
	sess.Clear()
	if err := store.Save(w, r, sess); err != nil {
		log.Printf("[AuthMiddleware] Ошибка сохранения сессии: %v", err)
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// WithSession возвращает контекст с сессией.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// GetSession извлекает сессию из контекста.
// Без middleware Sessions возвращается новая пустая сессия.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(SessionKey).(*session.Session); ok && sess != nil {
		return sess
	}
	return session.New()
}

// GetUserFromContext извлекает пользователя, проверенного RequireAuth.
// Возвращает пользователя и true, если он найден, иначе nil и false.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}
