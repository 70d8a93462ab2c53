package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Драйвер PostgreSQL, импортируем для регистрации
	_ "github.com/mattn/go-sqlite3" // Драйвер SQLite, импортируем для регистрации
	"github.com/pressly/goose/v3"
)

// Поддерживаемые драйверы реляционного хранилища.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const (
	maxOpenConns    = 25              // Максимальное количество открытых соединений
	maxIdleConns    = 25              // Максимальное количество простаивающих соединений
	connMaxLifetime = 5 * time.Minute // Максимальное время жизни соединения
	connMaxIdleTime = 5 * time.Minute // Максимальное время простоя соединения
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// gooseUpContext - шов для подмены goose.UpContext в тестах.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewDB создает и возвращает новое подключение к реляционной БД.
// Поддерживаются драйверы postgres и sqlite3.
func NewDB(driver, dsn string) (*sqlx.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("неподдерживаемый драйвер БД: %q", driver)
	}

	log.Printf("Подключение к БД (%s)...", driver)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Проверка соединения
	if err = db.Ping(); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Printf("Ошибка закрытия соединения с БД после неудачного пинга: %v", closeErr)
		}
		return nil, fmt.Errorf("ошибка проверки соединения с БД (ping): %w", err)
	}

	if driver == DriverSQLite {
		// SQLite не любит конкурентную запись, а in-memory база живет в рамках одного соединения
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxIdleConns)
		db.SetConnMaxLifetime(connMaxLifetime)
		db.SetConnMaxIdleTime(connMaxIdleTime)
	}

	log.Printf("Подключение к БД (%s) успешно установлено.", driver)
	return db, nil
}

// RunMigrations применяет встроенные миграции схемы для драйвера подключения.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	driver := db.DriverName()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("ошибка выбора диалекта миграций: %w", err)
	}

	if err := gooseUpContext(ctx, db.DB, path.Join("migrations", driver)); err != nil {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	log.Printf("Миграции (%s) успешно применены.", driver)
	return nil
}
