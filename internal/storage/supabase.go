package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseConfig содержит параметры подключения к Supabase Storage.
type SupabaseConfig struct {
	BaseURL string        // Адрес проекта, например https://xyz.supabase.co
	Key     string        // Сервисный ключ с правом записи
	Bucket  string        // Публичный бакет аватаров
	Timeout time.Duration // Таймаут HTTP-запроса
}

// SupabaseStorage загружает аватары в Supabase Storage через REST API.
type SupabaseStorage struct {
	client  *http.Client
	baseURL string
	key     string
	bucket  string
}

var _ AvatarStorage = (*SupabaseStorage)(nil)

// NewSupabaseStorage создает клиент Supabase Storage.
func NewSupabaseStorage(cfg SupabaseConfig) *SupabaseStorage {
	log.Printf("[Storage] Supabase Storage: %s, бакет '%s'", cfg.BaseURL, cfg.Bucket)
	return &SupabaseStorage{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.Key,
		bucket:  cfg.Bucket,
	}
}

// Store отправляет файл одним POST-запросом с перезаписью существующего объекта.
// Любой ответ, кроме 200, считается ошибкой загрузки.
func (s *SupabaseStorage) Store(ctx context.Context, r io.Reader, size int64, filename, contentType string) (string, error) {
	if !validKey(filename) {
		return "", ErrInvalidKey
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), url.PathEscape(filename))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if size > 0 {
		req.ContentLength = size
	}
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("ApiKey", s.key)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Storage] Ошибка загрузки '%s' в Supabase: %v", filename, err)
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Storage] Supabase отклонил загрузку '%s': статус %d", filename, resp.StatusCode)
		return "", fmt.Errorf("%w: статус ответа %d", ErrUploadFailed, resp.StatusCode)
	}

	log.Printf("[Storage] Файл '%s' загружен в Supabase", filename)
	return filename, nil
}

// URL строит публичный адрес объекта без обращения к сети.
func (s *SupabaseStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), url.PathEscape(key))
}

// Remove ничего не делает: объекты перезаписываются при загрузке.
func (s *SupabaseStorage) Remove(_ context.Context, _ string) error {
	return nil
}
