package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"jobboard_backend/internal/config"
)

// LocalStorage хранит файлы на диске сервера
type LocalStorage struct {
	basePath   string
	baseURL    string
	signingKey []byte
	now        func() time.Time
}

func NewLocalStorage(disk config.StorageDisk, signingKey string) (*LocalStorage, error) {
	if disk.BasePath == "" {
		disk.BasePath = "./storage"
	}

	if err := os.MkdirAll(disk.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:   disk.BasePath,
		baseURL:    strings.TrimSuffix(disk.BaseURL, "/"),
		signingKey: []byte(signingKey),
		now:        time.Now,
	}, nil
}

// BasePath - корень диска, нужен роутеру для раздачи публичных файлов
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// resolve не дает выйти за пределы basePath через ".."
func (s *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("invalid file path: %q", path)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *LocalStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	// недописанный файл не должен остаться на диске
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *LocalStorage) GetURL(ctx context.Context, path string) (string, error) {
	return fmt.Sprintf("%s/%s", s.baseURL, strings.TrimPrefix(path, "/")), nil
}

// GetSignedURL добавляет к URL срок действия и HMAC подпись.
// Проверяет подпись VerifySignature в обработчике скачивания.
func (s *LocalStorage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	base, err := s.GetURL(ctx, path)
	if err != nil {
		return "", err
	}

	expires := strconv.FormatInt(s.now().Add(expiry).Unix(), 10)
	query := url.Values{}
	query.Set("expires", expires)
	query.Set("signature", s.sign(path, expires))
	return base + "?" + query.Encode(), nil
}

// VerifySignature проверяет подпись и срок ссылки из GetSignedURL
func (s *LocalStorage) VerifySignature(path, expires, signature string) bool {
	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > unix {
		return false
	}
	expected := s.sign(path, expires)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *LocalStorage) sign(path, expires string) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(strings.TrimPrefix(path, "/") + "|" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}
