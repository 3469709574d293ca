package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/models"
)

const DefaultTopic = "atlas.articles.located"

// ArticleLocated is emitted after an article is located and stored.
type ArticleLocated struct {
	Type       string                `json:"type"`
	RunID      string                `json:"run_id,omitempty"`
	Article    models.LocatedArticle `json:"article"`
	OccurredAt time.Time             `json:"occurred_at"`
}

const TypeArticleLocated = "article.located"

// Publisher delivers pipeline events to downstream consumers.
type Publisher interface {
	PublishLocated(ctx context.Context, runID string, article models.LocatedArticle) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishLocated(context.Context, string, models.LocatedArticle) error { return nil }
func (NopPublisher) Close() error                                                      { return nil }

// KafkaPublisher writes events to a Kafka topic, keyed by article ID so
// updates to one article land on one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a synchronous producer to brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishLocated(ctx context.Context, runID string, article models.LocatedArticle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ArticleLocated{
		Type:       TypeArticleLocated,
		RunID:      runID,
		Article:    article,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(article.ID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish article %s: %w", article.ID, err)
	}

	log.Debug().
		Str("topic", p.topic).
		Str("article_id", article.ID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Published located article")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
