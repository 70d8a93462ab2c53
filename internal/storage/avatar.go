package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Размер заголовка файла, по которому определяется MIME-тип.
const sniffLen = 512

// Допустимые расширения аватаров.
var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
}

// AvatarStorage определяет интерфейс хранилища аватаров.
type AvatarStorage interface {
	// Store сохраняет содержимое под именем filename и возвращает ключ сохраненного объекта.
	Store(ctx context.Context, r io.Reader, size int64, filename, contentType string) (string, error)
	// URL возвращает публичный адрес аватара. Для пустого ключа - пустая строка.
	URL(key string) string
	// Remove удаляет ранее сохраненный аватар.
	Remove(ctx context.Context, key string) error
}

// ValidateExtension проверяет расширение имени файла без учета регистра
// и возвращает его в нижнем регистре без точки.
func ValidateExtension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return ext, nil
}

// AvatarFilename формирует имя файла аватара вида {username}_{unix}.{ext}.
func AvatarFilename(username, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%d.%s", username, now.Unix(), ext)
}

// DetectContentType определяет MIME-тип по первым байтам содержимого.
// Возвращает reader, который заново отдает прочитанные байты.
func DetectContentType(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("ошибка чтения заголовка файла: %w", err)
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// validKey проверяет, что ключ - простое имя файла без пути.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}

// Кастомные ошибки хранилища.
var (
	ErrInvalidExtension = errors.New("недопустимое расширение файла")
	ErrInvalidKey       = errors.New("недопустимое имя файла")
	ErrUploadFailed     = errors.New("ошибка загрузки файла в хранилище")
)
