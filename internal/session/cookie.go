package session

import (
	"net/http"
	"time"
)

// Имена cookie.
const (
	CookieName         = "session"
	IDCookieName       = "session_id"
	RememberCookieName = "remember_token"
)

// Время жизни cookie "запомнить меня".
const RememberTTL = 30 * 24 * time.Hour

// CookieOptions определяет параметры выдаваемых cookie.
type CookieOptions struct {
	Secure bool // Только по HTTPS
}

func (o CookieOptions) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) set(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, o.cookie(name, value, expires))
}

func (o CookieOptions) clear(w http.ResponseWriter, name string) {
	c := o.cookie(name, "", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// SetRememberCookie выдает cookie "запомнить меня" на 30 дней.
func SetRememberCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	opts.set(w, RememberCookieName, token, time.Now().Add(RememberTTL))
}

// ClearRememberCookie немедленно удаляет cookie "запомнить меня".
func ClearRememberCookie(w http.ResponseWriter, opts CookieOptions) {
	opts.clear(w, RememberCookieName)
}

// RememberToken возвращает значение cookie "запомнить меня" или пустую строку.
func RememberToken(r *http.Request) string {
	c, err := r.Cookie(RememberCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
