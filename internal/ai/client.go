package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"kidtales-server/internal/models"
)

// Цены за 1М токенов в USD (входные/выходные)
const (
	pricePerMillionInputTokensUSD  = 0.1
	pricePerMillionOutputTokensUSD = 0.4
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kidtales_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kidtales_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kidtales_ai_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(350, 350, 20),
		},
		[]string{"model"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kidtales_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of AI requests in USD.",
		},
		[]string{"model"},
	)
)

// UsageInfo содержит информацию об использовании токенов и стоимости.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// StoryTextClient генерирует текст сказки (заголовок, главы, словарь)
// в виде структурированного StoryOutput.
//
//go:generate mockery --name StoryTextClient --output ./mocks --outpkg mocks --case=underscore
type StoryTextClient interface {
	GenerateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryOutput, UsageInfo, error)
}

// Config - настройки AI клиента.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

type openAIStoryClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// NewStoryTextClient создает клиента поверх OpenAI-совместимого API.
func NewStoryTextClient(cfg Config, logger *zap.Logger) StoryTextClient {
	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	logger.Info("AI клиент создан",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model))
	return &openAIStoryClient{
		client: openaigo.NewClientWithConfig(openaiConfig),
		model:  cfg.Model,
		logger: logger.Named("StoryTextClient"),
	}
}

const storySystemPrompt = `You are a children's story writer. Respond with a single JSON object, no markdown, matching exactly this shape:
{"title": string, "moral": string, "vocabulary": [string], "coverImage": string, "chapters": [{"title": string, "text": string, "imagePrompt": string}]}
coverImage is a one-sentence visual description of the cover scene, not a URL.
Write 5 chapters. Keep language appropriate for the requested age group. Each chapter's imagePrompt describes the chapter scene without naming the characters' appearance.`

func (c *openAIStoryClient) GenerateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryOutput, UsageInfo, error) {
	usage := UsageInfo{}

	userPrompt := buildStoryUserPrompt(req)

	start := time.Now()
	c.logger.Info("Отправка запроса к AI",
		zap.String("model", c.model),
		zap.String("story_type", req.StoryType),
		zap.String("age_group", req.AgeGroup))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: storySystemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 1.0,
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Ошибка от AI API", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return nil, usage, fmt.Errorf("%w: %v", models.ErrStoryGeneration, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("AI API вернул пустой ответ", zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return nil, usage, fmt.Errorf("%w: получен пустой ответ", models.ErrStoryGeneration)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	content := resp.Choices[0].Message.Content

	usage.PromptTokens = resp.Usage.PromptTokens
	usage.CompletionTokens = resp.Usage.CompletionTokens
	usage.TotalTokens = resp.Usage.TotalTokens
	if usage.TotalTokens == 0 {
		// Некоторые OpenAI-совместимые провайдеры не возвращают Usage -
		// оцениваем через tiktoken.
		if tke, tkErr := tiktoken.GetEncoding("cl100k_base"); tkErr == nil {
			usage.PromptTokens = len(tke.Encode(storySystemPrompt+userPrompt, nil, nil))
			usage.CompletionTokens = len(tke.Encode(content, nil, nil))
			usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		}
	}
	usage.EstimatedCostUSD = calculateCost(usage.PromptTokens, usage.CompletionTokens)
	if usage.TotalTokens > 0 {
		aiTotalTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(usage.TotalTokens))
	}
	if usage.EstimatedCostUSD > 0 {
		aiEstimatedCostUSD.With(prometheus.Labels{"model": c.model}).Add(usage.EstimatedCostUSD)
	}

	output, err := ParseStoryOutput(content)
	if err != nil {
		c.logger.Error("Не удалось распарсить ответ AI", zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_parse"}).Inc()
		return nil, usage, err
	}

	c.logger.Info("Сказка сгенерирована",
		zap.Duration("duration", duration),
		zap.String("title", output.Title),
		zap.Int("chapters", len(output.Chapters)),
		zap.Int("total_tokens", usage.TotalTokens))
	return output, usage, nil
}

func buildStoryUserPrompt(req models.CreateStoryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s story about: %s. Age group: %s.", req.StoryType, req.StorySubject, req.AgeGroup)
	if req.CharacterData != nil && req.CharacterData.Name != "" {
		fmt.Fprintf(&b, " The main character is named %s.", req.CharacterData.Name)
	}
	return b.String()
}

// ParseStoryOutput разбирает ответ модели в StoryOutput. Терпим к
// markdown-обвязке: срезаем code fence и все вне внешних фигурных скобок.
func ParseStoryOutput(content string) (*models.StoryOutput, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: в ответе AI нет JSON объекта", models.ErrStoryGeneration)
	}
	cleaned = cleaned[start : end+1]

	var output models.StoryOutput
	if err := json.Unmarshal([]byte(cleaned), &output); err != nil {
		return nil, fmt.Errorf("%w: некорректный JSON в ответе AI: %v", models.ErrStoryGeneration, err)
	}
	if output.Title == "" || len(output.Chapters) == 0 {
		return nil, fmt.Errorf("%w: в ответе AI нет заголовка или глав", models.ErrStoryGeneration)
	}
	return &output, nil
}

func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}
