package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kirangautam45/userprofile/internal/middleware"
	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/models"
)

const (
	// Часть multipart-формы, которая держится в памяти, остальное уходит во временные файлы.
	formMemory = 1 << 20
	// Запас на текстовые поля формы сверх максимального размера аватара.
	formOverhead = 64 << 10
	// Имя поля формы с файлом аватара.
	avatarField = "profile_pic"
)

var errBadForm = errors.New("не удалось разобрать форму")

// Profile показывает страницу профиля текущего пользователя.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		redirect(w, r, pathLogin)
		return
	}
	h.renderProfile(w, r, user, nil, nil)
}

// UpdateProfileInfo меняет имя пользователя и email.
func (h *AccountHandler) UpdateProfileInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		redirect(w, r, pathLogin)
		return
	}
	sess := middleware.GetSession(r.Context())

	in := models.ProfileInput{
		Username: r.PostFormValue("new_username"),
		Email:    r.PostFormValue("email"),
	}
	updated, err := h.service.UpdateProfile(r.Context(), user.Username, in)
	if err != nil {
		log.Printf("[AccountHandler:UpdateProfileInfo] Обновление профиля '%s' отклонено: %v", user.Username, err)
		form := map[string]string{"new_username": in.Username, "email": in.Email}
		h.renderProfile(w, r, user, form, err)
		return
	}

	// Сессия переключается на новое имя в том же запросе
	sess.Authenticate(updated)
	sess.SetFlash(models.FlashSuccess, services.MsgProfileUpdated)
	if !h.commit(w, r, sess) {
		return
	}
	redirect(w, r, pathProfile)
}

// UpdateAvatar загружает новую картинку профиля.
func (h *AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		redirect(w, r, pathLogin)
		return
	}
	sess := middleware.GetSession(r.Context())

	upload, cleanup, err := h.parseUpload(w, r)
	if err != nil {
		h.renderProfile(w, r, user, nil, err)
		return
	}
	defer cleanup()

	updated, err := h.service.UpdateAvatar(r.Context(), user.Username, upload)
	if err != nil {
		log.Printf("[AccountHandler:UpdateAvatar] Загрузка аватара '%s' отклонена: %v", user.Username, err)
		h.renderProfile(w, r, user, nil, err)
		return
	}

	log.Printf("[AccountHandler:UpdateAvatar] Аватар '%s' обновлен", updated.Username)
	sess.SetFlash(models.FlashSuccess, services.MsgAvatarUpdated)
	if !h.commit(w, r, sess) {
		return
	}
	redirect(w, r, pathProfile)
}

// ChangePasswordForm показывает форму смены пароля.
func (h *AccountHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, middleware.GetSession(r.Context()), http.StatusOK, pageChangePassword, pageData{})
}

// ChangePassword меняет пароль и показывает результат на той же странице.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		redirect(w, r, pathLogin)
		return
	}
	sess := middleware.GetSession(r.Context())

	in := models.ChangePasswordInput{
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	if err := h.service.ChangePassword(r.Context(), user.Username, in); err != nil {
		log.Printf("[AccountHandler:ChangePassword] Смена пароля '%s' отклонена: %v", user.Username, err)
		h.renderError(w, r, sess, pageChangePassword, pageData{}, err)
		return
	}

	log.Printf("[AccountHandler:ChangePassword] Пользователь '%s' сменил пароль", user.Username)
	h.renderPage(w, r, sess, http.StatusOK, pageChangePassword, pageData{Success: services.MsgPasswordChanged})
}

// renderProfile показывает профиль. form переопределяет значения полей, err - текст ошибки.
func (h *AccountHandler) renderProfile(
	w http.ResponseWriter,
	r *http.Request,
	user *models.User,
	form map[string]string,
	err error,
) {
	if form == nil {
		form = map[string]string{"new_username": user.Username, "email": user.Email}
	}
	data := pageData{
		User:      user,
		AvatarURL: h.service.AvatarURL(user),
		Form:      form,
	}
	sess := middleware.GetSession(r.Context())
	if err != nil {
		h.renderError(w, r, sess, pageProfile, data, err)
		return
	}
	h.renderPage(w, r, sess, http.StatusOK, pageProfile, data)
}

// parseUpload разбирает форму и возвращает файл аватара, если он был выбран.
// Тело запроса ограничено максимальным размером аватара с запасом на остальные поля.
// Обычная (не multipart) форма тоже принимается, в этом случае файла нет.
func (h *AccountHandler) parseUpload(w http.ResponseWriter, r *http.Request) (*models.AvatarUpload, func(), error) {
	maxSize := h.service.MaxAvatarSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	noop := func() {}
	if err := r.ParseMultipartForm(formMemory); err != nil {
		switch {
		case isTooLarge(err):
			return nil, noop, &services.ValidationError{Message: services.AvatarTooLargeMessage(maxSize)}
		case errors.Is(err, http.ErrNotMultipart):
			if err = r.ParseForm(); err != nil {
				return nil, noop, fmt.Errorf("%w: %w", errBadForm, err)
			}
			return nil, noop, nil
		default:
			return nil, noop, fmt.Errorf("%w: %w", errBadForm, err)
		}
	}

	cleanup := func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Printf("[AccountHandler] Ошибка удаления временных файлов формы: %v", err)
		}
	}

	file, header, err := r.FormFile(avatarField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("%w: %w", errBadForm, err)
	}

	return &models.AvatarUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}, func() {
			closeFile(file)
			cleanup()
		}, nil
}

func closeFile(f multipart.File) {
	if err := f.Close(); err != nil {
		log.Printf("[AccountHandler] Ошибка закрытия загруженного файла: %v", err)
	}
}

// isTooLarge сообщает, что тело запроса превысило лимит MaxBytesReader.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
