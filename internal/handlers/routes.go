package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/kirangautam45/userprofile/internal/middleware"
)

// RegisterRoutes подключает страницы аккаунта к роутеру.
// Все маршруты получают сессию, страницы профиля доступны только после входа.
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Sessions(h.sessions))

		// Публичные маршруты
		r.Get("/", h.Index)
		r.Get("/register", h.RegisterForm)
		r.Post("/register", h.Register)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/logout", h.Logout)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.sessions, h.service))

			r.Get("/profile", h.Profile)
			r.Post("/profile/info", h.UpdateProfileInfo)
			r.Post("/profile/avatar", h.UpdateAvatar)
			r.Get("/change-password", h.ChangePasswordForm)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}
