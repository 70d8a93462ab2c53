package models

import (
	"io"
	"time"
)

// User представляет учетную запись пользователя.
// Тэги `db` используются для маппинга с полями БД с помощью sqlx.
// Тэги `json` используются для (де)сериализации JSON.
type User struct {
	ID            int64     `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`  // Не отдаем хеш пароля наружу
	AvatarKey     *string   `db:"avatar_key" json:"-"`     // Ключ аватара в хранилище, может быть NULL
	RememberToken *string   `db:"remember_token" json:"-"` // Токен "запомнить меня", может быть NULL
	SessionEpoch  int64     `db:"session_epoch" json:"-"`  // Поколение сессий, увеличивается при выходе
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Avatar возвращает ключ аватара или пустую строку.
func (u *User) Avatar() string {
	if u == nil || u.AvatarKey == nil {
		return ""
	}
	return *u.AvatarKey
}

// UserUpdate описывает частичное обновление пользователя.
// Поля со значением nil не изменяются. Пустая строка в AvatarKey
// или RememberToken очищает значение.
type UserUpdate struct {
	Username      *string
	Email         *string
	PasswordHash  *string
	AvatarKey     *string
	RememberToken *string
	SessionEpoch  *int64
}

// IsEmpty сообщает, что обновление не затрагивает ни одного поля.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil &&
		u.AvatarKey == nil && u.RememberToken == nil && u.SessionEpoch == nil
}

// Identity - пользователь, к которому привязана сессия.
type Identity struct {
	UserID   int64
	Username string
	Epoch    int64
}

// Matches сообщает, что сессия выдана именно этому пользователю и с тех пор не отозвана.
// Имя пользователя может освободиться и достаться другому, поэтому сверяется ID.
func (i Identity) Matches(u *User) bool {
	return u != nil && i.UserID != 0 && i.UserID == u.ID && i.Epoch == u.SessionEpoch
}

// StringPtr возвращает указатель на копию строки.
func StringPtr(s string) *string {
	return &s
}

// AvatarUpload представляет загруженный через форму файл аватара.
type AvatarUpload struct {
	Filename string    // Исходное имя файла у клиента
	Size     int64     // Размер в байтах
	Content  io.Reader // Содержимое файла
}

// RegisterInput представляет данные формы регистрации.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Confirm  string
	Avatar   *AvatarUpload // Необязательный аватар
}

// ChangePasswordInput представляет данные формы смены пароля.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ProfileInput представляет данные формы редактирования профиля.
type ProfileInput struct {
	Username string
	Email    string
}
