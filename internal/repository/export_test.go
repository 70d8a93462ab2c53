package repository

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

// SetGooseUpContext подменяет запуск миграций в тестах и возвращает функцию восстановления.
func SetGooseUpContext(fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) func() {
	original := gooseUpContext
	gooseUpContext = fn
	return func() { gooseUpContext = original }
}

// DuplicateFromDriver экспортирует duplicateFromDriver для тестов.
var DuplicateFromDriver = duplicateFromDriver
