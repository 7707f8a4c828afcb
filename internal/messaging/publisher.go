package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Типы событий жизненного цикла истории.
const (
	EventStoryCreated  = "story.created"
	EventStoryRestyled = "story.restyled"
)

// StoryEvent - событие жизненного цикла истории, публикуемое в очередь
// для downstream-потребителей (нотификации, аналитика).
type StoryEvent struct {
	Type      string    `json:"type"`
	StoryID   string    `json:"storyId"`
	UserEmail string    `json:"userEmail,omitempty"`
	Style     string    `json:"style,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StoryEventPublisher defines the interface for publishing story lifecycle events.
type StoryEventPublisher interface {
	PublishStoryEvent(ctx context.Context, event StoryEvent) error
}

// rabbitMQPublisher implements StoryEventPublisher for RabbitMQ.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQStoryEventPublisher creates a new instance of StoryEventPublisher.
// Паблишер объявляет очередь сам: это делает систему устойчивой к порядку
// запуска сервисов. Параметры очереди должны совпадать с консьюмером.
func NewRabbitMQStoryEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (StoryEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("story event publisher: не удалось открыть канал: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("story event publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}

	log := logger.Named("StoryEventPublisher")
	log.Info("Очередь успешно объявлена/найдена", zap.String("queue", queueName))
	return &rabbitMQPublisher{channel: ch, queueName: queueName, logger: log}, nil
}

// PublishStoryEvent publishes a story lifecycle event.
func (p *rabbitMQPublisher) PublishStoryEvent(ctx context.Context, event StoryEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Ошибка сериализации StoryEvent",
			zap.String("type", event.Type),
			zap.String("story_id", event.StoryID),
			zap.Error(err))
		return fmt.Errorf("ошибка сериализации события %s для истории %s: %w", event.Type, event.StoryID, err)
	}

	if err := p.publishMessage(ctx, body); err != nil {
		p.logger.Error("Ошибка публикации StoryEvent",
			zap.String("type", event.Type),
			zap.String("story_id", event.StoryID),
			zap.Error(err))
		return fmt.Errorf("ошибка публикации события %s для истории %s: %w", event.Type, event.StoryID, err)
	}
	return nil
}

// publishMessage is a helper method for publishing a message.
func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		return errors.New("канал RabbitMQ не инициализирован")
	}
	// Таймаут на публикацию
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := p.channel.PublishWithContext(ctx,
		"",          // exchange (используем default)
		p.queueName, // routing key (имя очереди)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "kidtales-server",
		},
	)
	if err != nil {
		return fmt.Errorf("ошибка публикации в очередь %s: %w", p.queueName, err)
	}

	p.logger.Debug("Сообщение успешно опубликовано", zap.String("queue", p.queueName))
	return nil
}
