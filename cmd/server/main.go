package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Драйвер PostgreSQL
	_ "github.com/mattn/go-sqlite3" // Драйвер SQLite
	"github.com/redis/go-redis/v9"

	"github.com/kirangautam45/userprofile/internal/handlers"
	"github.com/kirangautam45/userprofile/internal/repository"
	"github.com/kirangautam45/userprofile/internal/services"
	"github.com/kirangautam45/userprofile/internal/session"
	"github.com/kirangautam45/userprofile/internal/storage"
)

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	// Запас сверх таймаута хранилища, чтобы успеть показать ошибку сохранения аватара.
	storageTimeoutMargin = 10 * time.Second

	// Префикс URL, под которым раздаются локальные аватары.
	uploadsURLPrefix = "/uploads"
)

// Подменяются в тестах.
var (
	newDB         = repository.NewDB
	runMigrations = repository.RunMigrations
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db             *sqlx.DB      // nil для JSON-хранилища
	redis          *redis.Client // nil для cookie-сессий
	uploadDir      string        // Пусто, если аватары хранятся удаленно
	accountHandler *handlers.AccountHandler
}

// close освобождает соединения с БД и Redis.
func (d *dependencies) close() {
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Printf("Ошибка закрытия соединения с БД: %v", err)
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Printf("Ошибка закрытия соединения с Redis: %v", err)
		}
	}
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера профилей пользователей...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация зависимостей
	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.close()

	readTimeout, writeTimeout := serverTimeouts(cfg.StorageTimeout)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			log.Printf("Запуск HTTPS-сервера на порту %s (сертификат: %s, ключ: %s)", cfg.Port, cfg.CertFile, cfg.KeyFile)
			serveErr <- server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
			return
		}
		log.Printf("Запуск HTTP-сервера на порту %s", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Получен сигнал завершения, останавливаем сервер...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	log.Println("Сервер остановлен.")
	return nil
}

// serverTimeouts подбирает таймауты HTTP-сервера под таймаут хранилища аватаров.
// Замена аватара делает до двух обращений к хранилищу (удаление и загрузка),
// и ответ с ошибкой должен успеть уйти до WriteTimeout.
func serverTimeouts(storageTimeout time.Duration) (read, write time.Duration) {
	read, write = defaultReadTimeout, defaultWriteTimeout
	if need := 2*storageTimeout + storageTimeoutMargin; need > write {
		write = need
	}
	if need := storageTimeout + storageTimeoutMargin; need > read {
		read = need
	}
	return read, write
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config) (_ *dependencies, err error) {
	deps := &dependencies{}
	// При ошибке закрываем уже открытые соединения
	defer func() {
		if err != nil {
			deps.close()
		}
	}()

	// 1. Хранилище пользователей
	var users repository.UserRepository
	switch cfg.UserStore {
	case userStoreJSON:
		users, err = repository.NewJSONUserRepository(cfg.UsersFile)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации JSON-хранилища: %w", err)
		}
		log.Printf("Пользователи хранятся в файле %s", cfg.UsersFile)
	default:
		deps.db, err = newDB(cfg.UserStore, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
		}
		if err = runMigrations(ctx, deps.db); err != nil {
			return nil, fmt.Errorf("ошибка применения миграций: %w", err)
		}
		users = repository.NewSQLUserRepository(deps.db)
		log.Printf("Соединение с БД (%s) успешно установлено.", cfg.UserStore)
	}

	// 2. Хранилище аватаров
	avatars, maxSize, err := setupAvatarStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AvatarStore == avatarStoreLocal {
		deps.uploadDir = cfg.UploadDir
	}

	// 3. Хранилище сессий
	cookies := session.CookieOptions{Secure: cfg.TLSEnabled()}
	var sessions session.Store
	switch cfg.SessionStore {
	case sessionStoreRedis:
		deps.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err = deps.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}
		sessions = session.NewRedisStore(deps.redis, cookies)
		log.Printf("Сессии хранятся в Redis %s", cfg.RedisAddr)
	default:
		sessions, err = session.NewCookieStore([]byte(cfg.SessionSecret), cookies)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации cookie-сессий: %w", err)
		}
	}

	// 4. Сервис и обработчики
	accountService := services.NewAccountService(users, avatars, services.AccountConfig{
		MaxAvatarSize:  maxSize,
		StorageTimeout: cfg.StorageTimeout,
	})
	deps.accountHandler = handlers.NewAccountHandler(accountService, sessions, cookies)

	return deps, nil
}

// setupAvatarStorage создает хранилище аватаров и определяет лимит размера файла.
func setupAvatarStorage(ctx context.Context, cfg *config) (storage.AvatarStorage, int64, error) {
	maxSize := cfg.AvatarMaxSize
	if maxSize == 0 {
		maxSize = services.DefaultRemoteAvatarSize
		if cfg.AvatarStore == avatarStoreLocal {
			maxSize = services.DefaultLocalAvatarSize
		}
	}

	switch cfg.AvatarStore {
	case avatarStoreSupabase:
		log.Printf("Аватары хранятся в Supabase, бакет %s", cfg.SupabaseBucket)
		return storage.NewSupabaseStorage(storage.SupabaseConfig{
			BaseURL: cfg.SupabaseURL,
			Key:     cfg.SupabaseKey,
			Bucket:  cfg.SupabaseBucket,
			Timeout: cfg.StorageTimeout,
		}), maxSize, nil
	case avatarStoreMinio:
		client, err := storage.NewMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucket,
			PublicURL:       cfg.MinioPublicURL,
			Timeout:         cfg.StorageTimeout,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
		}
		log.Printf("Аватары хранятся в MinIO %s, бакет %s", cfg.MinioEndpoint, cfg.MinioBucket)
		return client, maxSize, nil
	default:
		local, err := storage.NewLocalStorage(cfg.UploadDir, uploadsURLPrefix)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка инициализации каталога аватаров: %w", err)
		}
		log.Printf("Аватары хранятся в каталоге %s", cfg.UploadDir)
		return local, maxSize, nil
	}
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Маршруты --- //
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong\n"))
	})

	// Локальные аватары раздаются как статика, без листинга каталога
	if deps.uploadDir != "" {
		files := http.StripPrefix(uploadsURLPrefix+"/", http.FileServer(http.Dir(deps.uploadDir)))
		r.Get(uploadsURLPrefix+"/*", func(w http.ResponseWriter, req *http.Request) {
			if strings.HasSuffix(req.URL.Path, "/") {
				http.NotFound(w, req)
				return
			}
			files.ServeHTTP(w, req)
		})
	}

	deps.accountHandler.RegisterRoutes(r)
	return r
}
