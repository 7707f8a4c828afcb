package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	"kidtales-server/internal/utils"
)

// Config содержит конфигурацию сервиса KidTales.
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"SERVER_PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis (лизы рестайла)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string

	// Настройки RabbitMQ
	RabbitMQURL      string `envconfig:"RABBITMQ_URL" required:"true"`
	StoryEventsQueue string `envconfig:"STORY_EVENTS_QUEUE" default:"story_events"`

	// Настройки провайдера генерации изображений (Replicate)
	ReplicateBaseURL      string        `envconfig:"REPLICATE_BASE_URL" default:"https://api.replicate.com/v1"`
	ReplicateModel        string        `envconfig:"REPLICATE_MODEL" default:"black-forest-labs/flux-schnell"`
	ReplicatePollInterval time.Duration `envconfig:"REPLICATE_POLL_INTERVAL" default:"1s"`
	ReplicateMaxPolls     int           `envconfig:"REPLICATE_MAX_POLLS" default:"120"`
	// Секретное поле БЕЗ envconfig тега
	ReplicateAPIToken string

	// Настройки AI-генерации текста историй
	AIBaseURL string `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel   string `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Настройки durable-хранилища изображений (Firebase Storage)
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH" default:""`
	FirebaseStorageBucket   string `envconfig:"FIREBASE_STORAGE_BUCKET" required:"true"`

	// CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации kidtales-server: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.ReplicateAPIToken, loadErr = utils.ReadSecret("replicate_api_token")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AIAPIKey, loadErr = utils.ReadSecret("ai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	// Пароль Redis опционален (локальный Redis без авторизации)
	cfg.RedisPassword, _ = utils.ReadSecret("redis_password")

	log.Printf("Конфигурация KidTales Server загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Redis: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  Story Events Queue: %s", cfg.StoryEventsQueue)
	log.Printf("  Replicate Model: %s", cfg.ReplicateModel)
	log.Printf("  Replicate Max Polls: %d (interval %v)", cfg.ReplicateMaxPolls, cfg.ReplicatePollInterval)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  Firebase Bucket: %s", cfg.FirebaseStorageBucket)

	return &cfg, nil
}
