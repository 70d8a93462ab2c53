package services

import (
	"errors"
	"fmt"
)

// Сообщения, которые видит пользователь.
const (
	MsgUsernameRequired    = "Username is required!"
	MsgUsernameSpaces      = "Username cannot contain spaces!"
	MsgUsernameExists      = "Username already exists!"
	MsgEmailRequired       = "Email is required!"
	MsgEmailInvalid        = "Please enter a valid email address!"
	MsgEmailExists         = "Email already registered!"
	MsgPasswordShort       = "Password must be at least 6 characters!"
	MsgPasswordMismatch    = "Passwords do not match!"
	MsgPasswordTooLong     = "Password must be at most 72 bytes!"
	MsgAvatarExtension     = "Only JPG, PNG, GIF allowed!"
	MsgAvatarTooLarge      = "File too large! Max %sMB."
	MsgAvatarSaveFailed    = "Failed to save profile picture. Please try again."
	MsgAvatarMissing       = "Please choose a file to upload."
	MsgInvalidCredentials  = "Invalid username or password!"
	MsgCurrentPassword     = "Current password is incorrect!"
	MsgNewPasswordShort    = "New password must be at least 6 characters!"
	MsgNewPasswordMismatch = "New passwords do not match!"
	MsgProfileRequired     = "Email and username are required."
	MsgProfileEmail        = "Please enter a valid email address."
	MsgProfileUsername     = "Username can only contain letters, numbers, and underscores."
	MsgProfileUsernameUsed = "Username already taken."
	MsgProfileEmailUsed    = "Email already registered."
	MsgSomethingWrong      = "Something went wrong. Please try again."

	MsgRegistered      = "Registration successful! Please login."
	MsgWelcomeBack     = "Welcome back, %s!"
	MsgPasswordChanged = "Password changed successfully!"
	MsgProfileUpdated  = "Profile updated successfully!"
	MsgAvatarUpdated   = "Profile picture updated successfully!"
)

// ValidationError - ошибка ввода, текст которой показывается пользователю как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// UserMessage возвращает текст ошибки для пользователя.
// Для ошибок без пользовательского текста возвращается fallback.
func UserMessage(err error, fallback string) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return MsgInvalidCredentials
	}
	return fallback
}

// AvatarTooLargeMessage возвращает сообщение о превышении размера аватара.
func AvatarTooLargeMessage(maxSize int64) string {
	return fmt.Sprintf(MsgAvatarTooLarge, FormatMB(maxSize))
}

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials   = errors.New("неверное имя пользователя или пароль")
	ErrInvalidRememberToken = errors.New("невалидный токен запомнить меня")
	ErrUserNotFound         = errors.New("пользователь не найден")
	ErrStorage              = errors.New("ошибка хранилища")
)
