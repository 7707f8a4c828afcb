package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"kidtales-server/internal/models"
)

// Relocator переносит объект с времянки провайдера в durable-хранилище.
//
//go:generate mockery --name Relocator --output ./mocks --outpkg mocks --case=underscore
type Relocator interface {
	// Relocate скачивает объект по sourceURL и загружает его в бакет.
	// Возвращает публичный durable URL. Исходный URL провайдера
	// остается нетронутым.
	Relocate(ctx context.Context, sourceURL string) (string, error)
}

// Config - настройки relocator-а (Firebase service account + бакет).
type Config struct {
	CredentialsPath string
	Bucket          string
}

type firebaseRelocator struct {
	bucketName string
	bucket     *gcs.BucketHandle
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFirebaseRelocator создает relocator поверх Firebase Storage.
// Требует путь к файлу ключа сервис-аккаунта Firebase в cfg.CredentialsPath.
func NewFirebaseRelocator(ctx context.Context, cfg Config, logger *zap.Logger) (Relocator, error) {
	opts := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.Bucket}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App из файла '%s': %w", cfg.CredentialsPath, err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения Storage client: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения бакета '%s': %w", cfg.Bucket, err)
	}

	logger.Info("Firebase Storage relocator успешно инициализирован", zap.String("bucket", cfg.Bucket))
	return &firebaseRelocator{
		bucketName: cfg.Bucket,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.Named("FirebaseRelocator"),
	}, nil
}

func (r *firebaseRelocator) Relocate(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build download request: %w", models.ErrStorageRelocation, err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to download source object: %w", models.ErrStorageRelocation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: source returned status %d", models.ErrStorageRelocation, resp.StatusCode)
	}

	// Имя объекта не зависит от исходного URL: времянка провайдера не
	// обязана иметь стабильный путь.
	objectName := fmt.Sprintf("images/%s%s", uuid.NewString(), objectExt(sourceURL))

	w := r.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = resp.Header.Get("Content-Type")
	if w.ContentType == "" {
		w.ContentType = "image/png"
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Close()
		return "", fmt.Errorf("%w: failed to upload object %s: %w", models.ErrStorageRelocation, objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to finalize object %s: %w", models.ErrStorageRelocation, objectName, err)
	}

	if err := r.bucket.Object(objectName).ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("%w: failed to publish object %s: %w", models.ErrStorageRelocation, objectName, err)
	}

	durableURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", r.bucketName, objectName)
	r.logger.Info("Object relocated",
		zap.String("object", objectName),
		zap.String("durable_url", durableURL))
	return durableURL, nil
}

// objectExt вытаскивает расширение файла из URL, по умолчанию .png.
func objectExt(sourceURL string) string {
	ext := path.Ext(sourceURL)
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return ext
	}
	return ".png"
}
