package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Политика анонимного чтения объектов бакета, чтобы аватары открывались по прямой ссылке.
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinioClient реализует AvatarStorage для MinIO и других S3-совместимых хранилищ.
type MinioClient struct {
	client     *minio.Client
	bucketName string
	publicURL  string
	timeout    time.Duration
}

var _ AvatarStorage = (*MinioClient)(nil)

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string        // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string        // Логин
	SecretAccessKey string        // Пароль
	UseSSL          bool          // Использовать SSL (обычно false для локальной разработки)
	BucketName      string        // Имя бакета для хранения аватаров
	Region          string        // Регион (не обязательно для MinIO, но может требоваться)
	PublicURL       string        // Публичный адрес, по которому браузер видит хранилище
	Timeout         time.Duration // Таймаут операций с хранилищем
}

// NewMinioClient создает новый клиент MinIO и при необходимости создает публичный бакет.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*MinioClient, error) {
	log.Printf("Инициализация клиента MinIO для эндпоинта %s...", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		log.Printf("Бакет '%s' не найден, попытка создания...", cfg.BucketName)
		err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
		if err = minioClient.SetBucketPolicy(ctx, cfg.BucketName, fmt.Sprintf(publicReadPolicy, cfg.BucketName)); err != nil {
			return nil, fmt.Errorf("ошибка установки политики бакета '%s': %w", cfg.BucketName, err)
		}
		log.Printf("Бакет '%s' успешно создан.", cfg.BucketName)
	} else {
		log.Printf("Бакет '%s' уже существует.", cfg.BucketName)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = minioClient.EndpointURL().String()
	}

	log.Printf("Клиент MinIO успешно инициализирован для бакета '%s'.", cfg.BucketName)
	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
		publicURL:  strings.TrimRight(publicURL, "/"),
		timeout:    cfg.Timeout,
	}, nil
}

// Store загружает аватар в бакет под ключом filename.
func (c *MinioClient) Store(
	ctx context.Context,
	reader io.Reader,
	size int64,
	filename string,
	contentType string,
) (string, error) {
	if !validKey(filename) {
		return "", ErrInvalidKey
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	log.Printf("[Minio] Загрузка файла '%s' в бакет '%s'...", filename, c.bucketName)

	if size <= 0 {
		size = -1 // Размер неизвестен, minio-go загрузит поток частями
	}
	uploadInfo, err := c.client.PutObject(ctx, c.bucketName, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("[Minio] Ошибка загрузки файла '%s': %v", filename, err)
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	log.Printf("[Minio] Файл '%s' успешно загружен, размер: %d, ETag: %s", filename, uploadInfo.Size, uploadInfo.ETag)
	return filename, nil
}

// URL возвращает публичный адрес объекта вида {publicURL}/{bucket}/{key}.
func (c *MinioClient) URL(key string) string {
	if key == "" {
		return ""
	}
	return c.publicURL + "/" + url.PathEscape(c.bucketName) + "/" + url.PathEscape(key)
}

// Remove удаляет объект из бакета. Отсутствующий объект ошибкой не считается.
func (c *MinioClient) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	err := c.client.RemoveObject(ctx, c.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		var minioErr minio.ErrorResponse
		if errors.As(err, &minioErr) && minioErr.Code == "NoSuchKey" {
			return nil
		}
		log.Printf("[Minio] Ошибка удаления файла '%s': %v", key, err)
		return fmt.Errorf("ошибка удаления файла из MinIO: %w", err)
	}
	return nil
}

func (c *MinioClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
