package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage хранит аватары в публичном каталоге на локальном диске.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

var _ AvatarStorage = (*LocalStorage)(nil)

// NewLocalStorage создает хранилище в каталоге dir, создавая его при необходимости.
// urlPrefix - путь, по которому роутер раздает каталог (например, "/uploads").
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога загрузок '%s': %w", dir, err)
	}
	log.Printf("[Storage] Локальное хранилище аватаров: %s", dir)
	return &LocalStorage{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Store записывает содержимое во временный файл в каталоге и переименовывает его в filename.
func (s *LocalStorage) Store(_ context.Context, r io.Reader, _ int64, filename, _ string) (string, error) {
	if !validKey(filename) {
		return "", ErrInvalidKey
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		log.Printf("[Storage] Ошибка создания временного файла: %v", err)
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, filepath.Join(s.dir, filename))
	}
	if err != nil {
		_ = os.Remove(tmpName)
		log.Printf("[Storage] Ошибка сохранения файла '%s': %v", filename, err)
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	log.Printf("[Storage] Файл '%s' сохранен, размер: %d", filename, written)
	return filename, nil
}

// URL возвращает путь к файлу под префиксом раздачи.
func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.urlPrefix + "/" + url.PathEscape(key)
}

// Remove удаляет файл. Отсутствующий файл ошибкой не считается.
func (s *LocalStorage) Remove(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	if !validKey(key) {
		return ErrInvalidKey
	}

	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка удаления файла '%s': %w", key, err)
	}
	return nil
}
