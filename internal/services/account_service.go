package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kirangautam45/userprofile/internal/repository"
	"github.com/kirangautam45/userprofile/internal/storage"
	"github.com/kirangautam45/userprofile/models"
	"golang.org/x/crypto/bcrypt"
)

// Ограничения на пароль.
const (
	minPasswordLen   = 6
	maxPasswordBytes = 72 // Больше bcrypt не принимает
)

// Размеры аватаров по умолчанию.
const (
	DefaultLocalAvatarSize  int64 = 2 << 20
	DefaultRemoteAvatarSize int64 = 5 << 20
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// AccountService определяет интерфейс сервиса учетных записей.
type AccountService interface {
	Register(ctx context.Context, in models.RegisterInput) error
	Login(ctx context.Context, username, password string) (*models.User, error)
	IssueRememberToken(ctx context.Context, user *models.User) (string, error)
	LoginWithRememberToken(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, identity models.Identity) error
	ChangePassword(ctx context.Context, username string, in models.ChangePasswordInput) error
	UpdateProfile(ctx context.Context, username string, in models.ProfileInput) (*models.User, error)
	UpdateAvatar(ctx context.Context, username string, upload *models.AvatarUpload) (*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	AvatarURL(user *models.User) string
	MaxAvatarSize() int64
}

// AccountConfig содержит настройки сервиса учетных записей.
type AccountConfig struct {
	MaxAvatarSize  int64            // Максимальный размер аватара в байтах
	StorageTimeout time.Duration    // Таймаут операций с хранилищем аватаров
	BcryptCost     int              // Стоимость bcrypt, по умолчанию bcrypt.DefaultCost
	Now            func() time.Time // Источник времени, подменяется в тестах
}

// Убедимся, что accountService удовлетворяет интерфейсу AccountService.
var _ AccountService = (*accountService)(nil)

type accountService struct {
	users   repository.UserRepository
	avatars storage.AvatarStorage
	cfg     AccountConfig
}

// NewAccountService создает новый экземпляр сервиса учетных записей.
func NewAccountService(
	users repository.UserRepository,
	avatars storage.AvatarStorage,
	cfg AccountConfig,
) AccountService {
	if cfg.MaxAvatarSize <= 0 {
		cfg.MaxAvatarSize = DefaultLocalAvatarSize
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &accountService{users: users, avatars: avatars, cfg: cfg}
}

// Register регистрирует нового пользователя.
// Проверки выполняются по порядку, возвращается первая неудачная.
func (s *accountService) Register(ctx context.Context, in models.RegisterInput) error {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" {
		return invalid(MsgUsernameRequired)
	}
	if strings.ContainsFunc(username, unicode.IsSpace) {
		return invalid(MsgUsernameSpaces)
	}
	taken, err := s.usernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return invalid(MsgUsernameExists)
	}
	if email == "" {
		return invalid(MsgEmailRequired)
	}
	if !validEmail(email) {
		return invalid(MsgEmailInvalid)
	}
	taken, err = s.emailTaken(ctx, email, 0)
	if err != nil {
		return err
	}
	if taken {
		return invalid(MsgEmailExists)
	}
	if err = checkNewPassword(in.Password, in.Confirm, MsgPasswordShort, MsgPasswordMismatch); err != nil {
		return err
	}

	var ext string
	if in.Avatar != nil {
		if ext, err = s.checkAvatar(in.Avatar); err != nil {
			return err
		}
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return s.storageFault("хеширования пароля", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.cfg.Now().UTC(),
	}
	if in.Avatar != nil {
		key, storeErr := s.storeAvatar(ctx, username, ext, in.Avatar)
		if storeErr != nil {
			return storeErr
		}
		user.AvatarKey = &key
	}

	if _, err = s.users.Create(ctx, user); err != nil {
		if user.AvatarKey != nil {
			s.removeAvatar(ctx, *user.AvatarKey)
		}
		var dupErr *repository.DuplicateError
		if errors.As(err, &dupErr) {
			log.Printf("[AccountService] Гонка при регистрации '%s': поле %s уже занято", username, dupErr.Field)
			if dupErr.Field == repository.FieldEmail {
				return invalid(MsgEmailExists)
			}
			return invalid(MsgUsernameExists)
		}
		return s.storageFault("создания пользователя", err)
	}

	log.Printf("[AccountService] Пользователь '%s' успешно зарегистрирован", username)
	return nil
}

// Login проверяет имя пользователя и пароль.
// Для несуществующего пользователя и неверного пароля возвращается одна и та же ошибка.
func (s *accountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AccountService] Попытка входа несуществующего пользователя: %s", username)
			return nil, ErrInvalidCredentials
		}
		return nil, s.storageFault("поиска пользователя", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		log.Printf("[AccountService] Неверный пароль для пользователя: %s", username)
		return nil, ErrInvalidCredentials
	}

	log.Printf("[AccountService] Пользователь '%s' успешно аутентифицирован", username)
	return user, nil
}

// IssueRememberToken выдает пользователю новый токен "запомнить меня", заменяя прежний.
func (s *accountService) IssueRememberToken(ctx context.Context, user *models.User) (string, error) {
	token, err := newRememberToken()
	if err != nil {
		return "", s.storageFault("генерации токена", err)
	}

	if err = s.users.Update(ctx, user.ID, models.UserUpdate{RememberToken: &token}); err != nil {
		return "", s.storageFault("сохранения токена", err)
	}

	user.RememberToken = &token
	return token, nil
}

// LoginWithRememberToken находит пользователя по токену из cookie.
func (s *accountService) LoginWithRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidRememberToken
	}

	user, err := s.users.FindByRememberToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("[AccountService] Предъявлен неизвестный токен запомнить меня")
			return nil, ErrInvalidRememberToken
		}
		return nil, s.storageFault("поиска по токену", err)
	}

	log.Printf("[AccountService] Пользователь '%s' вошел по токену запомнить меня", user.Username)
	return user, nil
}

// Logout отзывает все сессии пользователя и его токен "запомнить меня".
// Сессия, которая уже не соответствует пользователю, ничего не отзывает.
func (s *accountService) Logout(ctx context.Context, identity models.Identity) error {
	if identity.Username == "" {
		return nil
	}

	user, err := s.users.FindByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return s.storageFault("поиска пользователя", err)
	}
	if !identity.Matches(user) {
		log.Printf("[AccountService] Выход по устаревшей сессии '%s', отзывать нечего", identity.Username)
		return nil
	}

	epoch := user.SessionEpoch + 1
	upd := models.UserUpdate{SessionEpoch: &epoch}
	if user.RememberToken != nil {
		upd.RememberToken = models.StringPtr("")
	}
	if err = s.users.Update(ctx, user.ID, upd); err != nil {
		return s.storageFault("отзыва сессий", err)
	}

	log.Printf("[AccountService] Пользователь '%s' вышел", identity.Username)
	return nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *accountService) ChangePassword(ctx context.Context, username string, in models.ChangePasswordInput) error {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		return err
	}

	if !VerifyPassword(user.PasswordHash, in.CurrentPassword) {
		return invalid(MsgCurrentPassword)
	}
	if err = checkNewPassword(in.NewPassword, in.ConfirmPassword, MsgNewPasswordShort, MsgNewPasswordMismatch); err != nil {
		return err
	}

	hash, err := HashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return s.storageFault("хеширования пароля", err)
	}
	if err = s.users.Update(ctx, user.ID, models.UserUpdate{PasswordHash: &hash}); err != nil {
		return s.storageFault("смены пароля", err)
	}

	log.Printf("[AccountService] Пользователь '%s' сменил пароль", username)
	return nil
}

// UpdateProfile меняет имя пользователя и email.
// Возвращает обновленного пользователя, вызывающий переводит сессию на новое имя.
func (s *accountService) UpdateProfile(ctx context.Context, username string, in models.ProfileInput) (*models.User, error) {
	newUsername := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if newUsername == "" || email == "" {
		return nil, invalid(MsgProfileRequired)
	}
	if !validEmail(email) {
		return nil, invalid(MsgProfileEmail)
	}
	if !usernamePattern.MatchString(newUsername) {
		return nil, invalid(MsgProfileUsername)
	}

	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	upd := models.UserUpdate{Email: &email}
	if newUsername != user.Username {
		taken, takenErr := s.usernameTaken(ctx, newUsername)
		if takenErr != nil {
			return nil, takenErr
		}
		if taken {
			return nil, invalid(MsgProfileUsernameUsed)
		}
		upd.Username = &newUsername
	}
	taken, err := s.emailTaken(ctx, email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid(MsgProfileEmailUsed)
	}

	if err = s.users.Update(ctx, user.ID, upd); err != nil {
		var dupErr *repository.DuplicateError
		if errors.As(err, &dupErr) {
			if dupErr.Field == repository.FieldEmail {
				return nil, invalid(MsgProfileEmailUsed)
			}
			return nil, invalid(MsgProfileUsernameUsed)
		}
		return nil, s.storageFault("обновления профиля", err)
	}

	if upd.Username != nil {
		log.Printf("[AccountService] Пользователь '%s' переименован в '%s'", username, newUsername)
	}
	user.Username = newUsername
	user.Email = email
	return user, nil
}

// UpdateAvatar сохраняет новый аватар и удаляет прежний.
func (s *accountService) UpdateAvatar(ctx context.Context, username string, upload *models.AvatarUpload) (*models.User, error) {
	if upload == nil {
		return nil, invalid(MsgAvatarMissing)
	}
	ext, err := s.checkAvatar(upload)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	// Прежний файл удаляется до записи нового, ошибка удаления не критична
	if old := user.Avatar(); old != "" {
		s.removeAvatar(ctx, old)
	}

	key, err := s.storeAvatar(ctx, user.Username, ext, upload)
	if err != nil {
		return nil, err
	}
	if err = s.users.Update(ctx, user.ID, models.UserUpdate{AvatarKey: &key}); err != nil {
		return nil, s.storageFault("сохранения аватара", err)
	}

	log.Printf("[AccountService] Пользователь '%s' обновил аватар: %s", user.Username, key)
	user.AvatarKey = &key
	return user, nil
}

// GetUser возвращает пользователя по имени.
func (s *accountService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.storageFault("поиска пользователя", err)
	}
	return user, nil
}

// AvatarURL возвращает публичный адрес аватара пользователя.
func (s *accountService) AvatarURL(user *models.User) string {
	return s.avatars.URL(user.Avatar())
}

// MaxAvatarSize возвращает максимальный размер аватара в байтах.
func (s *accountService) MaxAvatarSize() int64 {
	return s.cfg.MaxAvatarSize
}

func (s *accountService) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrUserNotFound):
		return false, nil
	default:
		return false, s.storageFault("проверки имени пользователя", err)
	}
}

// emailTaken проверяет, занят ли email другим пользователем (не excludeID).
func (s *accountService) emailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	found, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return found.ID != excludeID, nil
	case errors.Is(err, repository.ErrUserNotFound):
		return false, nil
	default:
		return false, s.storageFault("проверки email", err)
	}
}

// checkAvatar проверяет расширение и размер до любой записи в хранилище.
func (s *accountService) checkAvatar(upload *models.AvatarUpload) (string, error) {
	ext, err := storage.ValidateExtension(upload.Filename)
	if err != nil {
		return "", invalid(MsgAvatarExtension)
	}
	if upload.Size > s.cfg.MaxAvatarSize {
		return "", invalid(AvatarTooLargeMessage(s.cfg.MaxAvatarSize))
	}
	return ext, nil
}

func (s *accountService) storeAvatar(ctx context.Context, username, ext string, upload *models.AvatarUpload) (string, error) {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	contentType, r, err := storage.DetectContentType(upload.Content)
	if err != nil {
		log.Printf("[AccountService] Ошибка чтения аватара '%s': %v", upload.Filename, err)
		return "", invalid(MsgAvatarSaveFailed)
	}

	key, err := s.avatars.Store(ctx, r, upload.Size, storage.AvatarFilename(username, ext, s.cfg.Now()), contentType)
	if err != nil {
		log.Printf("[AccountService] Ошибка сохранения аватара пользователя '%s': %v", username, err)
		return "", invalid(MsgAvatarSaveFailed)
	}
	return key, nil
}

func (s *accountService) removeAvatar(ctx context.Context, key string) {
	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.avatars.Remove(ctx, key); err != nil {
		log.Printf("[AccountService] Не удалось удалить аватар '%s': %v", key, err)
	}
}

func (s *accountService) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StorageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StorageTimeout)
}

func (s *accountService) storageFault(op string, err error) error {
	log.Printf("[AccountService] Ошибка %s: %v", op, err)
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func checkNewPassword(password, confirm, shortMsg, mismatchMsg string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return invalid(shortMsg)
	}
	if password != confirm {
		return invalid(mismatchMsg)
	}
	if len(password) > maxPasswordBytes {
		return invalid(MsgPasswordTooLong)
	}
	return nil
}

// validEmail проверяет, что строка - голый адрес вида local@domain.tld.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// FormatMB печатает размер в мегабайтах без лишних нулей: 2, 5, 1.5.
func FormatMB(size int64) string {
	return strconv.FormatFloat(float64(size)/(1<<20), 'f', -1, 64)
}
