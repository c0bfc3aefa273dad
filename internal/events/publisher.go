// Package events announces source refreshes on a Redis stream so other
// North Cloud services can react to new headlines.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/models"
)

// EventLinksRefreshed is the only event type published today.
const EventLinksRefreshed = "links.refreshed"

const asyncPublishTimeout = 5 * time.Second

// RefreshEvent is the JSON payload stored under the "event" field.
type RefreshEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	LinkCount int       `json:"link_count"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes RefreshEvents to a Redis stream. A nil *Publisher is a
// valid no-op, which is what callers get when Redis is disabled.
type Publisher struct {
	client *redis.Client
	stream string
	log    logger.Logger
}

// NewPublisher returns nil when client is nil.
func NewPublisher(client *redis.Client, stream string, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{client: client, stream: stream, log: log}
}

// NewRefreshEvent stamps an event for source.
func NewRefreshEvent(source string, linkCount int) RefreshEvent {
	return RefreshEvent{
		EventID:   uuid.New(),
		EventType: EventLinksRefreshed,
		Source:    source,
		LinkCount: linkCount,
		Timestamp: time.Now().UTC(),
	}
}

// Publish appends event to the stream.
func (p *Publisher) Publish(ctx context.Context, event RefreshEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"event": string(payload)},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("publish to stream %s: %w", p.stream, err)
	}

	p.log.Debug("Published refresh event",
		logger.String("source", event.Source),
		logger.String("stream_id", result.Val()),
	)
	return nil
}

// OnRefresh matches registry.RefreshHook. Publishing happens in the
// background so a slow Redis never delays a refresh.
func (p *Publisher) OnRefresh(_ context.Context, source string, links []models.Link) {
	if p == nil {
		return
	}

	event := NewRefreshEvent(source, len(links))
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.log.Warn("Async publish failed",
				logger.String("source", source),
				logger.Error(err),
			)
		}
	}()
}
