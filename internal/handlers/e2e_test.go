package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kirangautam45/userprofile/internal/handlers"
	"github.com/kirangautam45/userprofile/internal/repository"
	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/internal/session"
	"github.com/kirangautam45/userprofile/internal/storage"
)

// sessionBackend - хранилище сессий, на котором прогоняются сквозные тесты.
type sessionBackend struct {
	name   string
	cookie string // Имя cookie сессии
	store  func(t *testing.T) session.Store
}

// sessionBackends возвращает cookie-хранилище и, при заданном REDIS_ADDR, Redis.
func sessionBackends() []sessionBackend {
	backends := []sessionBackend{{
		name:   "cookie",
		cookie: session.CookieName,
		store: func(t *testing.T) session.Store {
			store, err := session.NewCookieStore(testSecret, session.CookieOptions{})
			require.NoError(t, err)
			return store
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		backends = append(backends, sessionBackend{
			name:   "redis",
			cookie: session.IDCookieName,
			store: func(t *testing.T) session.Store {
				client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
				t.Cleanup(func() { _ = client.Close() })
				return session.NewRedisStore(client, session.CookieOptions{})
			},
		})
	}
	return backends
}

// forEachSessionBackend запускает тест на каждом доступном хранилище сессий.
func forEachSessionBackend(t *testing.T, fn func(t *testing.T, backend sessionBackend)) {
	for _, backend := range sessionBackends() {
		t.Run(backend.name, func(t *testing.T) {
			fn(t, backend)
		})
	}
}

// newAppServer поднимает приложение на JSON-хранилище и локальном диске.
func newAppServer(t *testing.T, backend sessionBackend) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()

	users, err := repository.NewJSONUserRepository(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	uploads := filepath.Join(dir, "uploads")
	avatars, err := storage.NewLocalStorage(uploads, "/uploads")
	require.NoError(t, err)
	store := backend.store(t)

	svc := services.NewAccountService(users, avatars, services.AccountConfig{BcryptCost: bcrypt.MinCost})

	r := chi.NewRouter()
	handlers.NewAccountHandler(svc, store, session.CookieOptions{}).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, uploads
}

// browser - http-клиент с cookie jar, который следует редиректам.
type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: srv.URL}
}

// page - итоговая страница после всех редиректов.
type page struct {
	path string
	body string
}

func (b *browser) read(resp *http.Response, err error) page {
	b.t.Helper()
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{path: resp.Request.URL.Path, body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	return b.read(b.client.Get(b.base + path))
}

func (b *browser) post(path string, values url.Values) page {
	b.t.Helper()
	return b.read(b.client.PostForm(b.base+path, values))
}

func (b *browser) upload(path, filename string, content []byte) page {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("profile_pic", filename)
	require.NoError(b.t, err)
	_, err = part.Write(content)
	require.NoError(b.t, err)
	require.NoError(b.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.base+path, &body)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.read(b.client.Do(req))
}

// withCookie создает новый браузер, у которого есть только указанная cookie.
func withCookie(t *testing.T, srv *httptest.Server, c *http.Cookie) *browser {
	t.Helper()
	b := newBrowser(t, srv)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: c.Name, Value: c.Value}})
	return b
}

func (b *browser) cookie(name string) *http.Cookie {
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (b *browser) login(username, password string, remember bool) page {
	b.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	if remember {
		form.Set("remember", "1")
	}
	return b.post("/login", form)
}

func registerAlice(t *testing.T, b *browser) {
	t.Helper()
	p := b.post("/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@x.com"},
		"password": {"secret1"},
		"confirm":  {"secret1"},
	})
	require.Equal(t, "/login", p.path)
	require.Contains(t, p.body, services.MsgRegistered)
}

func TestEndToEnd_AccountFlow(t *testing.T) {
	forEachSessionBackend(t, testAccountFlow)
}

func testAccountFlow(t *testing.T, backend sessionBackend) {
	srv, uploads := newAppServer(t, backend)
	b := newBrowser(t, srv)

	registerAlice(t, b)

	// Повторная регистрация с тем же email в другом регистре
	p := b.post("/register", url.Values{
		"username": {"alice2"}, "email": {"ALICE@x.com"}, "password": {"secret1"}, "confirm": {"secret1"},
	})
	assert.Equal(t, "/register", p.path)
	assert.Contains(t, p.body, services.MsgEmailExists)

	p = b.login("alice", "wrongpass", false)
	assert.Equal(t, "/login", p.path)
	assert.Contains(t, p.body, services.MsgInvalidCredentials)
	assert.Equal(t, "/login", b.get("/profile").path, "неудачный вход не создает сессию")

	p = b.login("alice", "secret1", false)
	require.Equal(t, "/profile", p.path)
	assert.Contains(t, p.body, "Welcome back, alice!")
	assert.Contains(t, p.body, "Logged in as <strong>alice</strong>")

	// Flash показывается один раз
	p = b.get("/profile")
	assert.NotContains(t, p.body, "Welcome back")

	p = b.post("/change-password", url.Values{
		"current_password": {"secret1"}, "new_password": {"short"}, "confirm_password": {"short"},
	})
	assert.Contains(t, p.body, services.MsgNewPasswordShort)

	p = b.post("/logout", nil)
	assert.Equal(t, "/login", p.path)
	p = b.get("/profile")
	assert.Equal(t, "/login", p.path)

	// Старый пароль все еще действует
	p = b.login("alice", "secret1", false)
	require.Equal(t, "/profile", p.path)

	p = b.upload("/profile/avatar", "me.png", pngContent)
	require.Equal(t, "/profile", p.path)
	assert.Contains(t, p.body, services.MsgAvatarUpdated)
	assert.Contains(t, p.body, `src="/uploads/alice_`)
	entries, err := os.ReadDir(uploads)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	p = b.upload("/profile/avatar", "me.txt", []byte("hello"))
	assert.Contains(t, p.body, services.MsgAvatarExtension)
}

func TestEndToEnd_RegisterDoesNotLogIn(t *testing.T) {
	srv, _ := newAppServer(t, sessionBackends()[0])
	b := newBrowser(t, srv)

	registerAlice(t, b)
	assert.Nil(t, b.cookie(session.CookieName), "после показа flash cookie сессии удаляется")
	assert.Equal(t, "/login", b.get("/profile").path)
}

func TestEndToEnd_RenameMovesIdentity(t *testing.T) {
	forEachSessionBackend(t, func(t *testing.T, backend sessionBackend) {
		srv, _ := newAppServer(t, backend)
		first := newBrowser(t, srv)
		second := newBrowser(t, srv)

		registerAlice(t, first)
		require.Equal(t, "/profile", first.login("alice", "secret1", false).path)
		require.Equal(t, "/profile", second.login("alice", "secret1", false).path)

		p := first.post("/profile/info", url.Values{"new_username": {"alicia"}, "email": {"alicia@x.com"}})
		require.Equal(t, "/profile", p.path)
		assert.Contains(t, p.body, services.MsgProfileUpdated)
		assert.Contains(t, p.body, "Logged in as <strong>alicia</strong>")

		// Вторая сессия указывает на старое имя, которого больше нет
		p = second.get("/profile")
		assert.Equal(t, "/login", p.path)

		p = second.login("alicia", "secret1", false)
		assert.Equal(t, "/profile", p.path)
	})
}

func TestEndToEnd_LogoutRevokesCopiedSession(t *testing.T) {
	forEachSessionBackend(t, func(t *testing.T, backend sessionBackend) {
		srv, _ := newAppServer(t, backend)
		b := newBrowser(t, srv)
		registerAlice(t, b)

		require.Equal(t, "/profile", b.login("alice", "secret1", false).path)
		copied := b.cookie(backend.cookie)
		require.NotNil(t, copied)

		require.Equal(t, "/login", b.post("/logout", nil).path)
		assert.Equal(t, "/login", b.get("/profile").path)

		p := withCookie(t, srv, copied).get("/profile")
		assert.Equal(t, "/login", p.path)
		assert.NotContains(t, p.body, "Logged in as")

		// Новый вход не возвращает силу старой копии
		require.Equal(t, "/profile", b.login("alice", "secret1", false).path)
		p = withCookie(t, srv, copied).get("/profile")
		assert.Equal(t, "/login", p.path)
		assert.Equal(t, "/profile", b.get("/profile").path)
	})
}

func TestEndToEnd_FreedUsernameDoesNotInheritSession(t *testing.T) {
	forEachSessionBackend(t, func(t *testing.T, backend sessionBackend) {
		srv, _ := newAppServer(t, backend)
		owner := newBrowser(t, srv)
		registerAlice(t, owner)

		require.Equal(t, "/profile", owner.login("alice", "secret1", false).path)
		copied := owner.cookie(backend.cookie)
		require.NotNil(t, copied)

		p := owner.post("/profile/info", url.Values{"new_username": {"alice2"}, "email": {"alice@x.com"}})
		require.Equal(t, "/profile", p.path)

		// Освободившееся имя регистрирует другой человек
		newcomer := newBrowser(t, srv)
		p = newcomer.post("/register", url.Values{
			"username": {"alice"}, "email": {"mallory@x.com"}, "password": {"secret2"}, "confirm": {"secret2"},
		})
		require.Equal(t, "/login", p.path)

		p = withCookie(t, srv, copied).get("/profile")
		assert.Equal(t, "/login", p.path)
		assert.NotContains(t, p.body, "mallory@x.com")

		// Владелец продолжает работать под новым именем
		p = owner.get("/profile")
		assert.Equal(t, "/profile", p.path)
		assert.Contains(t, p.body, "Logged in as <strong>alice2</strong>")

		p = newcomer.login("alice", "secret2", false)
		require.Equal(t, "/profile", p.path)
		assert.Contains(t, p.body, "mallory@x.com")
	})
}

func TestEndToEnd_RememberMe(t *testing.T) {
	forEachSessionBackend(t, func(t *testing.T, backend sessionBackend) {
		srv, _ := newAppServer(t, backend)
		b := newBrowser(t, srv)
		registerAlice(t, b)

		require.Equal(t, "/profile", b.login("alice", "secret1", true).path)
		remember := b.cookie(session.RememberCookieName)
		require.NotNil(t, remember)

		// Новый браузер только с cookie "запомнить меня"
		returning := withCookie(t, srv, remember)
		p := returning.get("/login")
		assert.Equal(t, "/profile", p.path)
		assert.Contains(t, p.body, "Logged in as <strong>alice</strong>")

		// Выход отзывает токен и сессии, выданные по нему
		b.post("/logout", nil)
		assert.Nil(t, b.cookie(session.RememberCookieName))
		assert.Equal(t, "/login", returning.get("/profile").path)

		stale := withCookie(t, srv, remember)
		p = stale.get("/login")
		assert.Equal(t, "/login", p.path)
		assert.Nil(t, stale.cookie(session.RememberCookieName), "устаревший cookie удаляется")
	})
}
