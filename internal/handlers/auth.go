package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/kirangautam45/userprofile/internal/middleware"
	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/internal/session"
	"github.com/kirangautam45/userprofile/models"
)

// Пути страниц, между которыми перенаправляются формы.
const (
	pathLogin   = middleware.LoginPath
	pathProfile = "/profile"
)

// AccountHandler обрабатывает формы регистрации, входа и профиля.
type AccountHandler struct {
	service  services.AccountService
	sessions session.Store
	cookies  session.CookieOptions
}

// NewAccountHandler создает новый экземпляр AccountHandler.
func NewAccountHandler(s services.AccountService, store session.Store, cookies session.CookieOptions) *AccountHandler {
	return &AccountHandler{service: s, sessions: store, cookies: cookies}
}

// Index отправляет пользователя в профиль или на страницу входа.
func (h *AccountHandler) Index(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()).IsAuthenticated() {
		redirect(w, r, pathProfile)
		return
	}
	redirect(w, r, pathLogin)
}

// RegisterForm показывает форму регистрации.
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess.IsAuthenticated() {
		redirect(w, r, pathProfile)
		return
	}
	h.renderPage(w, r, sess, http.StatusOK, pageRegister, pageData{})
}

// Register обрабатывает отправку формы регистрации.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess.IsAuthenticated() {
		redirect(w, r, pathProfile)
		return
	}

	upload, cleanup, err := h.parseUpload(w, r)
	form := map[string]string{
		"username": r.PostFormValue("username"),
		"email":    r.PostFormValue("email"),
	}
	if err != nil {
		h.renderError(w, r, sess, pageRegister, pageData{Form: form}, err)
		return
	}
	defer cleanup()

	in := models.RegisterInput{
		Username: form["username"],
		Email:    form["email"],
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
		Avatar:   upload,
	}
	if err = h.service.Register(r.Context(), in); err != nil {
		log.Printf("[AccountHandler:Register] Регистрация '%s' отклонена: %v", strings.TrimSpace(in.Username), err)
		h.renderError(w, r, sess, pageRegister, pageData{Form: form}, err)
		return
	}

	sess.SetFlash(models.FlashSuccess, services.MsgRegistered)
	if !h.commit(w, r, sess) {
		return
	}
	redirect(w, r, pathLogin)
}

// LoginForm показывает форму входа.
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if h.rememberMe(w, r, sess) {
		return
	}
	if sess.IsAuthenticated() {
		redirect(w, r, pathProfile)
		return
	}
	h.renderPage(w, r, sess, http.StatusOK, pageLogin, pageData{})
}

// Login обрабатывает отправку формы входа.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if h.rememberMe(w, r, sess) {
		return
	}
	if sess.IsAuthenticated() {
		redirect(w, r, pathProfile)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	form := map[string]string{"username": username}

	user, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		log.Printf("[AccountHandler:Login] Неудачная попытка входа '%s': %v", username, err)
		h.renderError(w, r, sess, pageLogin, pageData{Form: form}, err)
		return
	}

	sess.Authenticate(user)
	if r.PostFormValue("remember") != "" {
		token, tokenErr := h.service.IssueRememberToken(r.Context(), user)
		if tokenErr != nil {
			// Вход состоится и без долгоживущего cookie
			log.Printf("[AccountHandler:Login] Не удалось выдать токен 'запомнить меня' для '%s': %v", user.Username, tokenErr)
		} else {
			session.SetRememberCookie(w, token, h.cookies)
		}
	}
	sess.SetFlash(models.FlashSuccess, fmt.Sprintf(services.MsgWelcomeBack, user.Username))
	if !h.commit(w, r, sess) {
		return
	}
	log.Printf("[AccountHandler:Login] Пользователь '%s' вошел в систему", user.Username)
	redirect(w, r, pathProfile)
}

// Logout завершает сессию и отзывает токен "запомнить меня".
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess.IsAuthenticated() {
		if err := h.service.Logout(r.Context(), sess.Identity()); err != nil {
			log.Printf("[AccountHandler:Logout] Ошибка отзыва токена для '%s': %v", sess.Username(), err)
		}
	}
	session.ClearRememberCookie(w, h.cookies)
	if err := h.sessions.Destroy(w, r, sess); err != nil {
		log.Printf("[AccountHandler:Logout] Ошибка удаления сессии: %v", err)
	}
	redirect(w, r, pathLogin)
}

// rememberMe пытается войти по cookie "запомнить меня".
// Невалидный cookie удаляется, даже если сессия уже аутентифицирована.
// Возвращает true, если ответ уже отправлен.
func (h *AccountHandler) rememberMe(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	token := session.RememberToken(r)
	if token == "" {
		return false
	}

	user, err := h.service.LoginWithRememberToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRememberToken) {
			log.Printf("[AccountHandler:RememberMe] Невалидный cookie 'запомнить меня', удаляем")
			session.ClearRememberCookie(w, h.cookies)
		} else {
			log.Printf("[AccountHandler:RememberMe] Ошибка проверки токена 'запомнить меня': %v", err)
		}
		return false
	}
	if sess.IsAuthenticated() {
		return false
	}

	sess.Authenticate(user)
	if !h.commit(w, r, sess) {
		return true
	}
	log.Printf("[AccountHandler:RememberMe] Пользователь '%s' вошел по токену 'запомнить меня'", user.Username)
	redirect(w, r, pathProfile)
	return true
}

// renderPage показывает страницу вместе с flash-сообщением, если оно есть.
func (h *AccountHandler) renderPage(
	w http.ResponseWriter,
	r *http.Request,
	sess *session.Session,
	status int,
	page string,
	data pageData,
) {
	if flash := sess.PopFlash(); flash != nil {
		data.Flash = flash
		if !h.commit(w, r, sess) {
			return
		}
	}
	if data.Title == "" {
		data.Title = pageTitle(page)
	}
	if data.MaxAvatarMB == "" {
		data.MaxAvatarMB = services.FormatMB(h.service.MaxAvatarSize())
	}
	render(w, status, page, data)
}

// renderError показывает форму с текстом ошибки.
// Ошибки хранилища скрываются за общим сообщением.
func (h *AccountHandler) renderError(
	w http.ResponseWriter,
	r *http.Request,
	sess *session.Session,
	page string,
	data pageData,
	err error,
) {
	status := http.StatusOK
	data.Error = services.UserMessage(err, services.MsgSomethingWrong)
	if data.Error == services.MsgSomethingWrong {
		status = http.StatusInternalServerError
		if errors.Is(err, errBadForm) {
			status = http.StatusBadRequest
		}
	}
	h.renderPage(w, r, sess, status, page, data)
}

// commit сохраняет сессию. При ошибке отвечает 500 и возвращает false.
func (h *AccountHandler) commit(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := h.sessions.Save(w, r, sess); err != nil {
		log.Printf("[AccountHandler] Ошибка сохранения сессии: %v", err)
		http.Error(w, services.MsgSomethingWrong, http.StatusInternalServerError)
		return false
	}
	return true
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func pageTitle(page string) string {
	switch page {
	case pageRegister:
		return "Register"
	case pageLogin:
		return "Login"
	case pageChangePassword:
		return "Change password"
	default:
		return "Profile"
	}
}
