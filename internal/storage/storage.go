package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"jobboard_backend/internal/config"
)

var ErrFileNotFound = errors.New("file not found")

// Storage - контракт хранилища файлов: положить, отдать, удалить, получить URL
type Storage interface {
	// Save сохраняет файл по относительному пути
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete удаляет файл. Отсутствующий файл не ошибка.
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// GetURL - постоянный публичный URL
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL - временный URL для приватных файлов
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// Disks - два логических хранилища приложения.
// Private - CV (выдаются только по подписанной ссылке), Public - фото профилей.
type Disks struct {
	Private Storage
	Public  Storage
}

// NewStorage создает хранилище по настройкам диска.
// signingKey используется локальным диском для подписанных ссылок.
func NewStorage(disk config.StorageDisk, signingKey string) (Storage, error) {
	switch disk.Type {
	case "", "local":
		return NewLocalStorage(disk, signingKey)
	case "s3", "cloudflare_r2", "minio":
		return NewS3Storage(disk)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", disk.Type)
	}
}

func NewDisks(cfg *config.Config) (*Disks, error) {
	private, err := NewStorage(cfg.Storage.Private, cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("private disk: %w", err)
	}
	public, err := NewStorage(cfg.Storage.Public, cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("public disk: %w", err)
	}
	return &Disks{Private: private, Public: public}, nil
}
