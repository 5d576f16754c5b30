package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leaderboard-watcher/internal/domain"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EventType string

const (
	EventGameRecord EventType = "game_record"
	EventRanking    EventType = "win_ranking"
	EventCycleError EventType = "cycle_error"
)

// Event is the envelope written to the topic.
type Event struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type RankingData struct {
	Window  string            `json:"window"`
	Ranking []domain.WinCount `json:"ranking"`
}

type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaSink connects a synchronous producer; sarama retries sends itself.
func NewKafkaSink(brokers []string, topic string, attempts int, delay time.Duration, logger zerolog.Logger) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = attempts
	config.Producer.Retry.Backoff = delay

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newKafkaSink(producer, topic, logger), nil
}

func newKafkaSink(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "kafka").Str("topic", topic).Logger(),
	}
}

func (k *KafkaSink) Name() string {
	return "kafka:" + k.topic
}

func (k *KafkaSink) SendRecords(ctx context.Context, records []domain.GameRecord) error {
	msgs := make([]*sarama.ProducerMessage, 0, len(records))
	for _, r := range records {
		msg, err := k.message(r.Fingerprint(), EventGameRecord, r)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := k.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("failed to publish records: %w", err)
	}
	k.logger.Debug().Int("records", len(records)).Msg("records published")
	return nil
}

func (k *KafkaSink) SendRanking(ctx context.Context, ranking []domain.WinCount, window time.Duration) error {
	msg, err := k.message("ranking", EventRanking, RankingData{Window: window.String(), Ranking: ranking})
	if err != nil {
		return err
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish ranking: %w", err)
	}
	return nil
}

func (k *KafkaSink) SendText(ctx context.Context, text string) error {
	msg, err := k.message("error", EventCycleError, map[string]string{"message": text})
	if err != nil {
		return err
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish text: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	return k.producer.Close()
}

func (k *KafkaSink) message(key string, eventType EventType, data any) (*sarama.ProducerMessage, error) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}, nil
}
