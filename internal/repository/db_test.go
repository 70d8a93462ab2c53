package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/kirangautam45/userprofile/internal/repository"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteDB открывает in-memory SQLite и применяет миграции.
func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repository.NewDB(repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repository.RunMigrations(context.Background(), db))
	return db
}

func TestNewDB(t *testing.T) {
	t.Run("Успешное подключение к SQLite", func(t *testing.T) {
		db, err := repository.NewDB(repository.DriverSQLite, ":memory:")
		require.NoError(t, err)
		require.NotNil(t, db)

		require.NoError(t, db.Ping(), "Не удалось пинговать БД после создания")
		require.NoError(t, db.Close(), "Ошибка при закрытии соединения с БД")
	})

	t.Run("Успешное подключение к PostgreSQL", func(t *testing.T) {
		// Этот тест требует запущенной PostgreSQL базы данных
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			t.Skip("Пропуск теста: переменная окружения DATABASE_URL не установлена")
		}

		db, err := repository.NewDB(repository.DriverPostgres, dsn)
		require.NoError(t, err)
		require.NoError(t, repository.RunMigrations(context.Background(), db))
		require.NoError(t, db.Close())
	})

	t.Run("Ошибка: Невалидный DSN", func(t *testing.T) {
		db, err := repository.NewDB(repository.DriverPostgres, "это точно не dsn")

		require.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "ошибка подключения к БД")
	})

	t.Run("Ошибка: Неподдерживаемый драйвер", func(t *testing.T) {
		db, err := repository.NewDB("mysql", "user:pass@/db")

		require.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "неподдерживаемый драйвер БД")
	})
}

func TestRunMigrations(t *testing.T) {
	db := newSQLiteDB(t)

	// Повторный запуск не должен ничего ломать
	require.NoError(t, repository.RunMigrations(context.Background(), db))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 0, count)
}

func TestRunMigrations_Error(t *testing.T) {
	restore := repository.SetGooseUpContext(func(_ context.Context, _ *sql.DB, _ string, _ ...goose.OptionsFunc) error {
		return errors.New("migration failed")
	})
	defer restore()

	db, err := repository.NewDB(repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	err = repository.RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка применения миграций")
}
