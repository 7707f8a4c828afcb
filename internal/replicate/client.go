package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

// Статусы предсказания Replicate. Терминальные - succeeded/failed/canceled.
const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
	statusCanceled  = "canceled"
)

// Client определяет интерфейс адаптера провайдера генерации изображений.
//
//go:generate mockery --name Client --output ./mocks --outpkg mocks --case=underscore
type Client interface {
	// SubmitAndAwaitImage отправляет задачу генерации и опрашивает ее
	// статус до терминального состояния. Возвращает URL первого
	// изображения-кандидата. Провайдер отдает времянку: URL живет
	// ограниченное время и подлежит релокации в durable-хранилище.
	SubmitAndAwaitImage(ctx context.Context, prompt, negativePrompt string) (string, error)
}

// Config - настройки клиента Replicate.
type Config struct {
	BaseURL      string
	Model        string
	APIToken     string
	PollInterval time.Duration
	MaxPolls     int
}

type clientImpl struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создает новый клиент Replicate.
func NewClient(cfg Config, logger *zap.Logger) Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = 120
	}
	return &clientImpl{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Named("ReplicateClient"),
	}
}

// predictionInput - фиксированные выходные параметры модели.
type predictionInput struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	OutputFormat   string `json:"output_format"`
	OutputQuality  int    `json:"output_quality"`
	AspectRatio    string `json:"aspect_ratio"`
}

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

func (c *clientImpl) SubmitAndAwaitImage(ctx context.Context, prompt, negativePrompt string) (string, error) {
	pred, err := c.createPrediction(ctx, prompt, negativePrompt)
	if err != nil {
		return "", err
	}

	log := c.logger.With(zap.String("prediction_id", pred.ID))
	log.Info("Prediction submitted", zap.String("status", pred.Status))

	// Fire-and-poll: опрашиваем с фиксированным интервалом до терминального
	// статуса, но не дольше MaxPolls попыток.
	for attempt := 0; !isTerminal(pred.Status); attempt++ {
		if attempt >= c.cfg.MaxPolls {
			log.Warn("Prediction polling ceiling reached", zap.Int("attempts", attempt))
			return "", fmt.Errorf("%w: prediction %s still %s after %d polls",
				models.ErrGenerationTimeout, pred.ID, pred.Status, attempt)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", models.ErrImageGeneration, ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}

		pred, err = c.getPrediction(ctx, pred.ID)
		if err != nil {
			return "", err
		}
	}

	if pred.Status != statusSucceeded {
		detail := ""
		if pred.Error != nil {
			detail = ": " + *pred.Error
		}
		log.Warn("Prediction finished without success", zap.String("status", pred.Status))
		return "", fmt.Errorf("%w: prediction %s %s%s", models.ErrImageGeneration, pred.ID, pred.Status, detail)
	}

	// Успешный output должен быть непустым списком URL-кандидатов
	var urls []string
	if err := json.Unmarshal(pred.Output, &urls); err != nil || len(urls) == 0 || urls[0] == "" {
		log.Warn("Prediction succeeded with malformed output", zap.ByteString("output", pred.Output))
		return "", fmt.Errorf("%w: prediction %s returned no valid image URL", models.ErrImageGeneration, pred.ID)
	}

	log.Info("Prediction succeeded", zap.String("image_url", urls[0]))
	return urls[0], nil
}

func (c *clientImpl) createPrediction(ctx context.Context, prompt, negativePrompt string) (*prediction, error) {
	reqBody := predictionRequest{
		Input: predictionInput{
			Prompt:         prompt,
			NegativePrompt: negativePrompt,
			OutputFormat:   "png",
			OutputQuality:  80,
			AspectRatio:    "1:1",
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal prediction request: %w", models.ErrImageGeneration, err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.cfg.BaseURL, c.cfg.Model)
	return c.doPredictionRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
}

func (c *clientImpl) getPrediction(ctx context.Context, id string) (*prediction, error) {
	url := fmt.Sprintf("%s/predictions/%s", c.cfg.BaseURL, id)
	return c.doPredictionRequest(ctx, http.MethodGet, url, nil)
}

func (c *clientImpl) doPredictionRequest(ctx context.Context, method, url string, body io.Reader) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", models.ErrImageGeneration, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to provider failed: %w", models.ErrImageGeneration, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read provider response: %w", models.ErrImageGeneration, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Provider returned non-2xx status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", url))
		return nil, fmt.Errorf("%w: provider returned status %d", models.ErrImageGeneration, resp.StatusCode)
	}

	var pred prediction
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("%w: failed to decode provider response: %w", models.ErrImageGeneration, err)
	}
	return &pred, nil
}

func isTerminal(status string) bool {
	return status == statusSucceeded || status == statusFailed || status == statusCanceled
}
