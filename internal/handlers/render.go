package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Имена шаблонов страниц.
const (
	pageRegister       = "register"
	pageLogin          = "login"
	pageProfile        = "profile"
	pageChangePassword = "change-password"
)

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// pageData - данные, передаваемые в шаблон страницы.
type pageData struct {
	Title       string
	Flash       *models.Flash
	Error       string
	Success     string
	User        *models.User
	AvatarURL   string
	MaxAvatarMB string
	Form        map[string]string // Значения полей для повторного заполнения формы
}

// render выполняет шаблон в буфер, ответ пишется только при успехе.
func render(w http.ResponseWriter, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, page, data); err != nil {
		log.Printf("[AccountHandler] Ошибка рендеринга шаблона '%s': %v", page, err)
		http.Error(w, services.MsgSomethingWrong, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
