package repository

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/kirangautam45/userprofile/models"
)

// Форматы даты создания: старые документы хранят только дату.
const (
	jsonDateLayout = "2006-01-02"
	jsonTimeLayout = time.RFC3339
)

// jsonRecord - запись пользователя в JSON-документе.
// Документ - объект, ключами которого являются имена пользователей.
type jsonRecord struct {
	ID            int64  `json:"id,omitempty"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	ProfilePic    string `json:"profile_pic"`
	RememberToken string `json:"remember_token,omitempty"`
	SessionEpoch  int64  `json:"session_epoch,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type jsonDocument map[string]*jsonRecord

// jsonUserRepository реализует UserRepository поверх одного JSON-файла.
// Документ целиком читается, изменяется в памяти и перезаписывается при каждом изменении.
// Цикл чтение-изменение-запись защищен мьютексом и файловой блокировкой.
type jsonUserRepository struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewJSONUserRepository создает репозиторий пользователей поверх JSON-файла.
// Отсутствующий файл считается пустым хранилищем, поврежденный - ошибкой.
func NewJSONUserRepository(path string) (UserRepository, error) {
	if path == "" {
		return nil, errors.New("не указан путь к файлу пользователей")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога для файла пользователей: %w", err)
	}

	r := &jsonUserRepository{
		path: path,
		lock: flock.New(path + ".lock"),
	}

	// Проверяем, что существующий документ читается
	if _, err := r.read(); err != nil {
		return nil, err
	}

	log.Printf("[JSONRepo] Хранилище пользователей: %s", path)
	return r, nil
}

// FindByUsername находит пользователя по его имени.
func (r *jsonUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	var user *models.User
	err := r.view(func(doc jsonDocument) error {
		rec, ok := doc[username]
		if !ok {
			return ErrUserNotFound
		}
		user = toUser(username, rec)
		return nil
	})
	return user, err
}

// FindByEmail находит пользователя по email без учета регистра.
func (r *jsonUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.view(func(doc jsonDocument) error {
		for username, rec := range doc {
			if strings.EqualFold(rec.Email, email) {
				user = toUser(username, rec)
				return nil
			}
		}
		return ErrUserNotFound
	})
	return user, err
}

// FindByRememberToken находит пользователя по токену "запомнить меня".
func (r *jsonUserRepository) FindByRememberToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}

	var user *models.User
	err := r.view(func(doc jsonDocument) error {
		for username, rec := range doc {
			if rec.RememberToken != "" &&
				subtle.ConstantTimeCompare([]byte(rec.RememberToken), []byte(token)) == 1 {
				user = toUser(username, rec)
				return nil
			}
		}
		return ErrUserNotFound
	})
	return user, err
}

// Create добавляет пользователя в документ.
func (r *jsonUserRepository) Create(_ context.Context, user *models.User) (int64, error) {
	var userID int64
	err := r.modify(func(doc jsonDocument) error {
		if err := doc.checkUnique(user.Username, user.Email, 0); err != nil {
			return err
		}

		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}

		userID = doc.maxID() + 1
		doc[user.Username] = &jsonRecord{
			ID:            userID,
			Password:      user.PasswordHash,
			Email:         user.Email,
			ProfilePic:    user.Avatar(),
			RememberToken: deref(user.RememberToken),
			SessionEpoch:  user.SessionEpoch,
			CreatedAt:     user.CreatedAt.Format(jsonTimeLayout),
		}
		return nil
	})
	if err != nil {
		log.Printf("[JSONRepo] Ошибка создания пользователя '%s': %v", user.Username, err)
		return 0, err
	}

	user.ID = userID
	log.Printf("[JSONRepo] Пользователь '%s' успешно создан с ID %d", user.Username, userID)
	return userID, nil
}

// Update частично обновляет пользователя с указанным ID.
func (r *jsonUserRepository) Update(_ context.Context, id int64, upd models.UserUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	err := r.modify(func(doc jsonDocument) error {
		username, rec := doc.byID(id)
		if rec == nil {
			return ErrUserNotFound
		}

		if upd.Username != nil || upd.Email != nil {
			if err := doc.checkUnique(deref(upd.Username), deref(upd.Email), id); err != nil {
				return err
			}
		}

		if upd.Email != nil {
			rec.Email = *upd.Email
		}
		if upd.PasswordHash != nil {
			rec.Password = *upd.PasswordHash
		}
		if upd.AvatarKey != nil {
			rec.ProfilePic = *upd.AvatarKey
		}
		if upd.RememberToken != nil {
			rec.RememberToken = *upd.RememberToken
		}
		if upd.SessionEpoch != nil {
			rec.SessionEpoch = *upd.SessionEpoch
		}
		if upd.Username != nil && *upd.Username != username {
			delete(doc, username)
			doc[*upd.Username] = rec
		}
		return nil
	})
	if err != nil {
		log.Printf("[JSONRepo] Ошибка обновления пользователя ID %d: %v", id, err)
		return err
	}
	return nil
}

// view выполняет fn над документом под разделяемой блокировкой.
func (r *jsonUserRepository) view(fn func(doc jsonDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.lock.RLock(); err != nil {
		return fmt.Errorf("ошибка блокировки файла пользователей: %w", err)
	}
	defer r.unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	return fn(doc)
}

// modify выполняет fn над документом под эксклюзивной блокировкой и перезаписывает файл.
func (r *jsonUserRepository) modify(fn func(doc jsonDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки файла пользователей: %w", err)
	}
	defer r.unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	if err = fn(doc); err != nil {
		return err
	}
	return r.write(doc)
}

func (r *jsonUserRepository) unlock() {
	if err := r.lock.Unlock(); err != nil {
		log.Printf("[JSONRepo] Ошибка снятия блокировки файла пользователей: %v", err)
	}
}

// read читает документ с диска. Отсутствующий или пустой файл - пустой документ.
func (r *jsonUserRepository) read() (jsonDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return jsonDocument{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла пользователей: %w", err)
	}

	doc := jsonDocument{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла пользователей: %w", err)
	}

	doc.assignIDs()
	return doc, nil
}

// write атомарно перезаписывает документ: временный файл и переименование.
func (r *jsonUserRepository) write(doc jsonDocument) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации пользователей: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка записи временного файла: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка замены файла пользователей: %w", err)
	}
	return nil
}

// assignIDs выдает ID записям без него (документы старого формата).
// Порядок по имени пользователя делает выдачу детерминированной между чтениями.
func (doc jsonDocument) assignIDs() {
	var missing []string
	for username, rec := range doc {
		if rec.ID == 0 {
			missing = append(missing, username)
		}
	}
	if len(missing) == 0 {
		return
	}
	sort.Strings(missing)

	next := doc.maxID()
	for _, username := range missing {
		next++
		doc[username].ID = next
	}
}

func (doc jsonDocument) maxID() int64 {
	var maxID int64
	for _, rec := range doc {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}
	return maxID
}

func (doc jsonDocument) byID(id int64) (string, *jsonRecord) {
	for username, rec := range doc {
		if rec.ID == id {
			return username, rec
		}
	}
	return "", nil
}

// checkUnique проверяет за один проход имя пользователя и email.
func (doc jsonDocument) checkUnique(username, email string, excludeID int64) error {
	if username != "" {
		if rec, ok := doc[username]; ok && rec.ID != excludeID {
			return &DuplicateError{Field: FieldUsername}
		}
	}
	if email != "" {
		for _, rec := range doc {
			if rec.ID != excludeID && strings.EqualFold(rec.Email, email) {
				return &DuplicateError{Field: FieldEmail}
			}
		}
	}
	return nil
}

func toUser(username string, rec *jsonRecord) *models.User {
	user := &models.User{
		ID:           rec.ID,
		Username:     username,
		Email:        rec.Email,
		PasswordHash: rec.Password,
		SessionEpoch: rec.SessionEpoch,
		CreatedAt:    parseCreatedAt(rec.CreatedAt),
	}
	if rec.ProfilePic != "" {
		user.AvatarKey = models.StringPtr(rec.ProfilePic)
	}
	if rec.RememberToken != "" {
		user.RememberToken = models.StringPtr(rec.RememberToken)
	}
	return user
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range []string{jsonTimeLayout, jsonDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
