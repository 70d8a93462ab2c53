package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kirangautam45/userprofile/internal/mocks"
	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/models"
)

func testAlice() *models.User {
	return &models.User{
		ID:        1,
		Username:  "alice",
		Email:     "alice@x.com",
		AvatarKey: models.StringPtr("alice_1700000000.png"),
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// expectAlice настраивает проверку пользователя в RequireAuth.
func expectAlice(svc *mocks.AccountService) *models.User {
	alice := testAlice()
	svc.EXPECT().GetUser(mock.Anything, "alice").Return(alice, nil).Once()
	svc.EXPECT().AvatarURL(mock.Anything).Return("/uploads/alice_1700000000.png").Maybe()
	return alice
}

func TestAccountHandler_Profile(t *testing.T) {
	t.Run("Страница профиля", func(t *testing.T) {
		env := newTestEnv(t)
		expectAlice(env.svc)

		rec := env.serve(env.loggedIn(t, httptest.NewRequest(http.MethodGet, "/profile", nil), "alice"))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Logged in as <strong>alice</strong>")
		assert.Contains(t, body, "Member since 2024-03-01")
		assert.Contains(t, body, `src="/uploads/alice_1700000000.png"`)
		assert.Contains(t, body, `value="alice@x.com"`)
	})

	t.Run("Анонимный пользователь перенаправляется на вход", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.serve(httptest.NewRequest(http.MethodGet, "/profile", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

func TestAccountHandler_UpdateProfileInfo(t *testing.T) {
	tests := []struct {
		name             string
		form             url.Values
		mockSetup        func(svc *mocks.AccountService)
		expectedStatus   int
		expectedLocation string
		expectedBody     []string
		expectedUser     string
	}{
		{
			name: "Переименование переключает сессию",
			form: url.Values{"new_username": {"alicia"}, "email": {"alicia@x.com"}},
			mockSetup: func(svc *mocks.AccountService) {
				expectAlice(svc)
				svc.EXPECT().UpdateProfile(mock.Anything, "alice", models.ProfileInput{
					Username: "alicia", Email: "alicia@x.com",
				}).Return(&models.User{ID: 1, Username: "alicia", Email: "alicia@x.com"}, nil).Once()
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/profile",
			expectedUser:     "alicia",
		},
		{
			name: "Занятое имя",
			form: url.Values{"new_username": {"bob"}, "email": {"alice@x.com"}},
			mockSetup: func(svc *mocks.AccountService) {
				expectAlice(svc)
				svc.EXPECT().UpdateProfile(mock.Anything, "alice", mock.Anything).
					Return(nil, &services.ValidationError{Message: services.MsgProfileUsernameUsed}).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Username already taken.", `value="bob"`},
		},
		{
			name: "Ошибка хранилища",
			form: url.Values{"new_username": {"alicia"}, "email": {"alice@x.com"}},
			mockSetup: func(svc *mocks.AccountService) {
				expectAlice(svc)
				svc.EXPECT().UpdateProfile(mock.Anything, "alice", mock.Anything).Return(nil, storageFault()).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{services.MsgSomethingWrong},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.mockSetup(env.svc)

			rec := env.serve(env.loggedIn(t, formRequest("/profile/info", tt.form), "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedLocation != "" {
				assert.Equal(t, tt.expectedLocation, rec.Header().Get("Location"))
			}
			for _, s := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), s)
			}
			if tt.expectedUser != "" {
				sess := env.sessionFrom(t, rec)
				assert.Equal(t, tt.expectedUser, sess.Username())
				assert.Equal(t, int64(1), sess.Identity().UserID)
				flash := sess.PopFlash()
				require.NotNil(t, flash)
				assert.Equal(t, services.MsgProfileUpdated, flash.Message)
			}
		})
	}
}

func TestAccountHandler_UpdateAvatar(t *testing.T) {
	tests := []struct {
		name             string
		filename         string
		content          []byte
		mockSetup        func(svc *mocks.AccountService)
		expectedStatus   int
		expectedLocation string
		expectedBody     string
	}{
		{
			name:     "Успешная загрузка",
			filename: "me.png",
			content:  pngContent,
			mockSetup: func(svc *mocks.AccountService) {
				alice := expectAlice(svc)
				svc.EXPECT().UpdateAvatar(mock.Anything, "alice", mock.MatchedBy(func(u *models.AvatarUpload) bool {
					return u != nil && u.Filename == "me.png" && u.Size == int64(len(pngContent))
				})).Return(alice, nil).Once()
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/profile",
		},
		{
			name: "Файл не выбран",
			mockSetup: func(svc *mocks.AccountService) {
				expectAlice(svc)
				svc.EXPECT().UpdateAvatar(mock.Anything, "alice", (*models.AvatarUpload)(nil)).
					Return(nil, &services.ValidationError{Message: services.MsgAvatarMissing}).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   services.MsgAvatarMissing,
		},
		{
			name:     "Недопустимое расширение",
			filename: "me.bmp",
			content:  pngContent,
			mockSetup: func(svc *mocks.AccountService) {
				expectAlice(svc)
				svc.EXPECT().UpdateAvatar(mock.Anything, "alice", mock.Anything).
					Return(nil, &services.ValidationError{Message: services.MsgAvatarExtension}).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   services.MsgAvatarExtension,
		},
		{
			name:     "Файл больше лимита",
			filename: "big.png",
			content:  make([]byte, 3<<20),
			mockSetup: func(svc *mocks.AccountService) {
				expectAlice(svc)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "File too large! Max 2MB.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.mockSetup(env.svc)

			req := multipartRequest(t, "/profile/avatar", nil, tt.filename, tt.content)
			rec := env.serve(env.loggedIn(t, req, "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedLocation != "" {
				assert.Equal(t, tt.expectedLocation, rec.Header().Get("Location"))
				flash := env.sessionFrom(t, rec).PopFlash()
				require.NotNil(t, flash)
				assert.Equal(t, services.MsgAvatarUpdated, flash.Message)
			}
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestAccountHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name           string
		mockSetup      func(svc *mocks.AccountService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Пароль изменен",
			mockSetup: func(svc *mocks.AccountService) {
				svc.EXPECT().ChangePassword(mock.Anything, "alice", models.ChangePasswordInput{
					CurrentPassword: "secret1", NewPassword: "secret9", ConfirmPassword: "secret9",
				}).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   services.MsgPasswordChanged,
		},
		{
			name: "Неверный текущий пароль",
			mockSetup: func(svc *mocks.AccountService) {
				svc.EXPECT().ChangePassword(mock.Anything, "alice", mock.Anything).
					Return(&services.ValidationError{Message: services.MsgCurrentPassword}).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   services.MsgCurrentPassword,
		},
		{
			name: "Ошибка хранилища",
			mockSetup: func(svc *mocks.AccountService) {
				svc.EXPECT().ChangePassword(mock.Anything, "alice", mock.Anything).Return(storageFault()).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   services.MsgSomethingWrong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			expectAlice(env.svc)
			tt.mockSetup(env.svc)

			form := url.Values{
				"current_password": {"secret1"},
				"new_password":     {"secret9"},
				"confirm_password": {"secret9"},
			}
			rec := env.serve(env.loggedIn(t, formRequest("/change-password", form), "alice"))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}

	t.Run("Форма смены пароля", func(t *testing.T) {
		env := newTestEnv(t)
		expectAlice(env.svc)
		rec := env.serve(env.loggedIn(t, httptest.NewRequest(http.MethodGet, "/change-password", nil), "alice"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>Change password</h1>")
	})
}
