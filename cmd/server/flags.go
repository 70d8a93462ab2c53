package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/kirangautam45/userprofile/internal/repository"
	"github.com/kirangautam45/userprofile/internal/session"
)

// Бэкенды хранилищ.
const (
	userStoreJSON = "json"

	avatarStoreLocal    = "local"
	avatarStoreSupabase = "supabase"
	avatarStoreMinio    = "minio"

	sessionStoreCookie = "cookie"
	sessionStoreRedis  = "redis"
)

const (
	defaultServerPort     = "8080"
	defaultUserStore      = userStoreJSON
	defaultUsersFile      = "users.json"
	defaultAvatarStore    = avatarStoreLocal
	defaultUploadDir      = "uploads"
	defaultStorageTimeout = "10s"
	defaultBucket         = "avatars"
	defaultSessionStore   = sessionStoreCookie

	// Переменные окружения.
	envServerPort     = "SERVER_PORT"
	envTLSCertFile    = "TLS_CERT_FILE"
	envTLSKeyFile     = "TLS_KEY_FILE"
	envUserStore      = "USER_STORE"
	envUsersFile      = "USERS_FILE"
	envDatabaseDSN    = "DATABASE_URL"
	envAvatarStore    = "AVATAR_STORE"
	envUploadDir      = "UPLOAD_DIR"
	envAvatarMaxSize  = "AVATAR_MAX_SIZE"
	envStorageTimeout = "STORAGE_TIMEOUT"
	envSupabaseURL    = "SUPABASE_URL"
	envSupabaseKey    = "SUPABASE_KEY"
	envSupabaseBucket = "SUPABASE_BUCKET"
	envMinioEndpoint  = "MINIO_ENDPOINT"
	envMinioUser      = "MINIO_USER"
	envMinioPassword  = "MINIO_PASSWORD" //nolint:gosec // Имя переменной окружения, а не секрет
	envMinioBucket    = "MINIO_BUCKET"
	envMinioUseSSL    = "MINIO_USE_SSL"
	envMinioPublicURL = "MINIO_PUBLIC_URL"
	envSessionStore   = "SESSION_STORE"
	envSessionSecret  = "SESSION_SECRET" //nolint:gosec // Имя переменной окружения, а не секрет
	envRedisAddr      = "REDIS_ADDR"
	envRedisPassword  = "REDIS_PASSWORD" //nolint:gosec // Имя переменной окружения, а не секрет
)

// config хранит конфигурацию сервера.
type config struct {
	Port     string
	CertFile string
	KeyFile  string

	UserStore   string
	UsersFile   string
	DatabaseDSN string

	AvatarStore    string
	UploadDir      string
	AvatarMaxSize  int64 // 0 - значение по умолчанию для выбранного бэкенда
	StorageTimeout time.Duration

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	MinioEndpoint  string
	MinioUser      string
	MinioPassword  string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	SessionStore  string
	SessionSecret string
	RedisAddr     string
	RedisPassword string
}

// TLSEnabled сообщает, что сервер запускается по HTTPS.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Флаги имеют приоритет над переменными окружения.
func parseFlags() (*config, error) {
	cfg := &config{}
	var avatarMaxSize, storageTimeout, minioUseSSL string

	// Определяем флаги
	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт HTTP(S)-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.UserStore, "user-store", "",
		fmt.Sprintf("Хранилище пользователей: json, postgres, sqlite3 (env: %s, default: %s)", envUserStore, defaultUserStore))
	flag.StringVar(&cfg.UsersFile, "users-file", "",
		fmt.Sprintf("Путь к JSON-файлу пользователей (env: %s, default: %s)", envUsersFile, defaultUsersFile))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.AvatarStore, "avatar-store", "",
		fmt.Sprintf("Хранилище аватаров: local, supabase, minio (env: %s, default: %s)", envAvatarStore, defaultAvatarStore))
	flag.StringVar(&cfg.UploadDir, "upload-dir", "",
		fmt.Sprintf("Каталог локальных аватаров (env: %s, default: %s)", envUploadDir, defaultUploadDir))
	flag.StringVar(&avatarMaxSize, "avatar-max-size", "",
		fmt.Sprintf("Максимальный размер аватара в байтах (env: %s)", envAvatarMaxSize))
	flag.StringVar(&storageTimeout, "storage-timeout", "",
		fmt.Sprintf("Таймаут удаленного хранилища (env: %s, default: %s)", envStorageTimeout, defaultStorageTimeout))
	flag.StringVar(&cfg.SupabaseURL, "supabase-url", "",
		fmt.Sprintf("Базовый URL Supabase (env: %s)", envSupabaseURL))
	flag.StringVar(&cfg.SupabaseKey, "supabase-key", "",
		fmt.Sprintf("Ключ API Supabase (env: %s)", envSupabaseKey))
	flag.StringVar(&cfg.SupabaseBucket, "supabase-bucket", "",
		fmt.Sprintf("Бакет Supabase (env: %s, default: %s)", envSupabaseBucket, defaultBucket))
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "",
		fmt.Sprintf("Адрес MinIO host:port (env: %s)", envMinioEndpoint))
	flag.StringVar(&cfg.MinioUser, "minio-user", "",
		fmt.Sprintf("Ключ доступа MinIO (env: %s)", envMinioUser))
	flag.StringVar(&cfg.MinioPassword, "minio-password", "",
		fmt.Sprintf("Секретный ключ MinIO (env: %s)", envMinioPassword))
	flag.StringVar(&cfg.MinioBucket, "minio-bucket", "",
		fmt.Sprintf("Бакет MinIO (env: %s, default: %s)", envMinioBucket, defaultBucket))
	flag.StringVar(&minioUseSSL, "minio-ssl", "",
		fmt.Sprintf("Подключаться к MinIO по HTTPS (env: %s)", envMinioUseSSL))
	flag.StringVar(&cfg.MinioPublicURL, "minio-public-url", "",
		fmt.Sprintf("Публичный адрес MinIO для ссылок на аватары (env: %s)", envMinioPublicURL))
	flag.StringVar(&cfg.SessionStore, "session-store", "",
		fmt.Sprintf("Хранилище сессий: cookie, redis (env: %s, default: %s)", envSessionStore, defaultSessionStore))
	flag.StringVar(&cfg.SessionSecret, "session-secret", "",
		fmt.Sprintf("Секрет подписи cookie сессии, не короче %d байт (env: %s)", session.MinSecretLen, envSessionSecret))
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "",
		fmt.Sprintf("Адрес Redis host:port (env: %s)", envRedisAddr))
	flag.StringVar(&cfg.RedisPassword, "redis-password", "",
		fmt.Sprintf("Пароль Redis (env: %s)", envRedisPassword))

	// Парсим флаги
	flag.Parse()

	// Применяем переменные окружения, если флаги не заданы
	withEnv(&cfg.Port, envServerPort, defaultServerPort)
	withEnv(&cfg.CertFile, envTLSCertFile, "")
	withEnv(&cfg.KeyFile, envTLSKeyFile, "")
	withEnv(&cfg.UserStore, envUserStore, defaultUserStore)
	withEnv(&cfg.UsersFile, envUsersFile, defaultUsersFile)
	withEnv(&cfg.DatabaseDSN, envDatabaseDSN, "")
	withEnv(&cfg.AvatarStore, envAvatarStore, defaultAvatarStore)
	withEnv(&cfg.UploadDir, envUploadDir, defaultUploadDir)
	withEnv(&avatarMaxSize, envAvatarMaxSize, "")
	withEnv(&storageTimeout, envStorageTimeout, defaultStorageTimeout)
	withEnv(&cfg.SupabaseURL, envSupabaseURL, "")
	withEnv(&cfg.SupabaseKey, envSupabaseKey, "")
	withEnv(&cfg.SupabaseBucket, envSupabaseBucket, defaultBucket)
	withEnv(&cfg.MinioEndpoint, envMinioEndpoint, "")
	withEnv(&cfg.MinioUser, envMinioUser, "")
	withEnv(&cfg.MinioPassword, envMinioPassword, "")
	withEnv(&cfg.MinioBucket, envMinioBucket, defaultBucket)
	withEnv(&minioUseSSL, envMinioUseSSL, "false")
	withEnv(&cfg.MinioPublicURL, envMinioPublicURL, "")
	withEnv(&cfg.SessionStore, envSessionStore, defaultSessionStore)
	withEnv(&cfg.SessionSecret, envSessionSecret, "")
	withEnv(&cfg.RedisAddr, envRedisAddr, "")
	withEnv(&cfg.RedisPassword, envRedisPassword, "")

	var err error
	if avatarMaxSize != "" {
		cfg.AvatarMaxSize, err = strconv.ParseInt(avatarMaxSize, 10, 64)
		if err != nil || cfg.AvatarMaxSize <= 0 {
			return nil, fmt.Errorf("некорректный максимальный размер аватара: %q", avatarMaxSize)
		}
	}
	cfg.StorageTimeout, err = time.ParseDuration(storageTimeout)
	if err != nil || cfg.StorageTimeout <= 0 {
		return nil, fmt.Errorf("некорректный таймаут хранилища: %q", storageTimeout)
	}
	cfg.MinioUseSSL, err = strconv.ParseBool(minioUseSSL)
	if err != nil {
		return nil, fmt.Errorf("некорректное значение %s: %q", envMinioUseSSL, minioUseSSL)
	}

	// Проверяем обязательные параметры
	if err = cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate проверяет согласованность параметров выбранных бэкендов.
func (c *config) validate() error {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("пути к сертификату (--cert-file) и ключу (--key-file) задаются только вместе")
	}

	switch c.UserStore {
	case userStoreJSON:
		if c.UsersFile == "" {
			return errors.New("не указан путь к файлу пользователей (--users-file или " + envUsersFile + ")")
		}
	case repository.DriverPostgres, repository.DriverSQLite:
		if c.DatabaseDSN == "" {
			return errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
		}
		if c.UserStore == repository.DriverPostgres {
			if err := validatePostgresDSN(c.DatabaseDSN); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("неизвестное хранилище пользователей: %q", c.UserStore)
	}

	switch c.AvatarStore {
	case avatarStoreLocal:
		if c.UploadDir == "" {
			return errors.New("не указан каталог аватаров (--upload-dir или " + envUploadDir + ")")
		}
	case avatarStoreSupabase:
		if err := validateHTTPURL(c.SupabaseURL); err != nil {
			return fmt.Errorf("некорректный адрес Supabase (--supabase-url или %s): %w", envSupabaseURL, err)
		}
		if c.SupabaseKey == "" {
			return errors.New("не указан ключ Supabase (--supabase-key или " + envSupabaseKey + ")")
		}
	case avatarStoreMinio:
		if c.MinioEndpoint == "" || c.MinioUser == "" || c.MinioPassword == "" {
			return fmt.Errorf("для MinIO нужны адрес и учетные данные (%s, %s, %s)",
				envMinioEndpoint, envMinioUser, envMinioPassword)
		}
		if c.MinioPublicURL != "" {
			if err := validateHTTPURL(c.MinioPublicURL); err != nil {
				return fmt.Errorf("некорректный публичный адрес MinIO: %w", err)
			}
		}
	default:
		return fmt.Errorf("неизвестное хранилище аватаров: %q", c.AvatarStore)
	}

	switch c.SessionStore {
	case sessionStoreCookie:
		if len(c.SessionSecret) < session.MinSecretLen {
			return fmt.Errorf("секрет сессии (--session-secret или %s) должен быть не короче %d байт",
				envSessionSecret, session.MinSecretLen)
		}
	case sessionStoreRedis:
		if c.RedisAddr == "" {
			return errors.New("не указан адрес Redis (--redis-addr или " + envRedisAddr + ")")
		}
	default:
		return fmt.Errorf("неизвестное хранилище сессий: %q", c.SessionStore)
	}
	return nil
}

// validatePostgresDSN требует DSN в виде URL с хостом и пользователем.
func validatePostgresDSN(dsn string) error {
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("некорректная строка подключения к БД: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("строка подключения к БД должна начинаться с postgres://, получено %q", u.Scheme)
	}
	if u.Host == "" || u.User == nil || u.User.Username() == "" {
		return errors.New("в строке подключения к БД должны быть указаны хост и пользователь")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ожидается http(s)-адрес, получено %q", raw)
	}
	return nil
}

// withEnv подставляет значение переменной окружения или значение по умолчанию,
// если флаг не задан.
func withEnv(value *string, key, fallback string) {
	if *value != "" {
		return
	}
	if v, ok := os.LookupEnv(key); ok {
		*value = v
		return
	}
	*value = fallback
}
