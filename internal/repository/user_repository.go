package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kirangautam45/userprofile/models"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Коды ошибок PostgreSQL.
const (
	pgUniqueViolationCode = "23505"
)

// Поля, по которым проверяется уникальность.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldEither   = "either" // Хранилище не смогло определить, какое поле занято
)

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRememberToken(ctx context.Context, token string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (int64, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) error
}

// DuplicateError сообщает о нарушении уникальности имени пользователя или email.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("нарушение уникальности: поле %s уже занято", e.Field)
}

// Is позволяет сравнивать ошибку с ErrDuplicate через errors.Is.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

const userColumns = `id, username, email, password_hash, avatar_key, remember_token, session_epoch, created_at`

// sqlUserRepository реализует UserRepository поверх sqlx (PostgreSQL или SQLite).
type sqlUserRepository struct {
	db *sqlx.DB
}

// NewSQLUserRepository создает новый экземпляр репозитория пользователей для реляционной БД.
func NewSQLUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

// FindByUsername находит пользователя по его имени.
func (r *sqlUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, `username = ?`, username)
}

// FindByEmail находит пользователя по email без учета регистра.
func (r *sqlUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `LOWER(email) = LOWER(?)`, email)
}

// FindByRememberToken находит пользователя по токену "запомнить меня".
func (r *sqlUserRepository) FindByRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, `remember_token = ?`, token)
}

// findOne выполняет выборку одного пользователя по условию.
// Условие всегда константа из этого файла, значение передается параметром.
func (r *sqlUserRepository) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	var user models.User

	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		log.Printf("[Repo] Ошибка при поиске пользователя (%s): %v", where, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}

	return &user, nil
}

// Create создает нового пользователя в базе данных.
// Возвращает ID созданного пользователя или ошибку (*DuplicateError при занятом имени или email).
func (r *sqlUserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	if err := r.checkUnique(ctx, user.Username, user.Email, 0); err != nil {
		return 0, err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`INSERT INTO users (username, email, password_hash, avatar_key, remember_token, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	var userID int64

	err := r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		nullable(user.AvatarKey),
		nullable(user.RememberToken),
		user.CreatedAt,
	).Scan(&userID)
	if err != nil {
		if dupErr := duplicateFromDriver(err); dupErr != nil {
			log.Printf("[Repo] Ошибка создания пользователя '%s': %v", user.Username, dupErr)
			return 0, dupErr
		}
		log.Printf("[Repo] Непредвиденная ошибка при создании пользователя '%s': %v", user.Username, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}

	user.ID = userID
	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %d", user.Username, userID)
	return userID, nil
}

// Update частично обновляет пользователя с указанным ID.
func (r *sqlUserRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	if upd.Username != nil || upd.Email != nil {
		if err := r.checkUnique(ctx, deref(upd.Username), deref(upd.Email), id); err != nil {
			return err
		}
	}

	var (
		sets []string
		args []any
	)
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.AvatarKey != nil {
		sets = append(sets, "avatar_key = ?")
		args = append(args, nullable(upd.AvatarKey))
	}
	if upd.RememberToken != nil {
		sets = append(sets, "remember_token = ?")
		args = append(args, nullable(upd.RememberToken))
	}
	if upd.SessionEpoch != nil {
		sets = append(sets, "session_epoch = ?")
		args = append(args, *upd.SessionEpoch)
	}
	args = append(args, id)

	query := r.db.Rebind(`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dupErr := duplicateFromDriver(err); dupErr != nil {
			log.Printf("[Repo] Ошибка обновления пользователя ID %d: %v", id, dupErr)
			return dupErr
		}
		log.Printf("[Repo] Непредвиденная ошибка при обновлении пользователя ID %d: %v", id, err)
		return fmt.Errorf("ошибка выполнения запроса на обновление пользователя: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества обновленных строк: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	log.Printf("[Repo] Пользователь ID %d обновлен (%s)", id, strings.Join(sets, ", "))
	return nil
}

type uniqueRow struct {
	Username string `db:"username"`
	Email    string `db:"email"`
}

// checkUnique проверяет одним запросом, заняты ли имя пользователя и email другими записями.
// Пустые значения не проверяются. excludeID исключает из проверки саму обновляемую запись.
func (r *sqlUserRepository) checkUnique(ctx context.Context, username, email string, excludeID int64) error {
	var (
		conds []string
		args  []any
	)
	if username != "" {
		conds = append(conds, "username = ?")
		args = append(args, username)
	}
	if email != "" {
		conds = append(conds, "LOWER(email) = LOWER(?)")
		args = append(args, email)
	}
	if len(conds) == 0 {
		return nil
	}
	args = append(args, excludeID)

	query := r.db.Rebind(`SELECT username, email FROM users WHERE (` + strings.Join(conds, " OR ") + `) AND id <> ?`)
	var rows []uniqueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		log.Printf("[Repo] Ошибка проверки уникальности '%s'/'%s': %v", username, email, err)
		return fmt.Errorf("ошибка выполнения запроса на проверку уникальности: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if username != "" && row.Username == username {
			return &DuplicateError{Field: FieldUsername}
		}
	}
	return &DuplicateError{Field: FieldEmail}
}

// duplicateFromDriver превращает нарушение ограничения уникальности в *DuplicateError.
func duplicateFromDriver(err error) *DuplicateError {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return &DuplicateError{Field: fieldFromConstraint(pgErr.Constraint)}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &DuplicateError{Field: fieldFromConstraint(liteErr.Error())}
	}

	return nil
}

func fieldFromConstraint(s string) string {
	switch {
	case strings.Contains(s, "username"):
		return FieldUsername
	case strings.Contains(s, "email"):
		return FieldEmail
	default:
		return FieldEither
	}
}

// nullable превращает пустое значение в NULL.
func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound = errors.New("пользователь не найден")
	ErrDuplicate    = errors.New("пользователь с такими данными уже существует")
)
