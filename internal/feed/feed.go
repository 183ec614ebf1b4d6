// Package feed translates push change events from the backing store into
// cache mutations. Events already reflect durable writes, so the adapter
// never re-invokes persistence.
package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// EventType enumerates change feed operations.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Envelope is the change notification published on the feed channel. Insert
// and update events carry the new row; delete events carry the old one.
type Envelope struct {
	EventType EventType         `json:"event_type"`
	New       *domain.RawTicket `json:"new,omitempty"`
	Old       *domain.RawTicket `json:"old,omitempty"`
}

// TicketSink is the cache surface the adapter writes into.
type TicketSink interface {
	ApplyRemoteInsert(raw domain.RawTicket)
	ApplyRemoteUpdate(raw domain.RawTicket)
	ApplyRemoteDelete(id string)
}

// ExternalSync subscribes once to the change channel and applies envelopes
// to the cache for as long as its context lives.
type ExternalSync struct {
	client  *redis.Client
	channel string
	sink    TicketSink
	logger  *zap.Logger
}

// NewExternalSync builds the adapter.
func NewExternalSync(client *redis.Client, channel string, sink TicketSink, logger *zap.Logger) *ExternalSync {
	return &ExternalSync{client: client, channel: channel, sink: sink, logger: logger}
}

// Start subscribes and consumes envelopes until ctx is cancelled. The
// subscription is closed on exit.
func (s *ExternalSync) Start(ctx context.Context) {
	pubsub := s.client.Subscribe(ctx, s.channel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.handle(msg.Payload)
			}
		}
	}()

	s.logger.Info("subscribed to change feed", zap.String("channel", s.channel))
}

// handle decodes one envelope and applies it. Malformed payloads are logged
// and skipped so the feed keeps flowing.
func (s *ExternalSync) handle(payload string) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		s.logger.Warn("malformed change envelope", zap.Error(err))
		return
	}
	Apply(s.sink, envelope, s.logger)
}

// Apply routes one envelope into the sink. Insert and update both upsert, so
// an update for a ticket that raced the initial load still lands.
func Apply(sink TicketSink, envelope Envelope, logger *zap.Logger) {
	switch envelope.EventType {
	case EventInsert:
		if envelope.New == nil {
			logger.Warn("insert envelope without new record")
			return
		}
		sink.ApplyRemoteInsert(*envelope.New)
	case EventUpdate:
		if envelope.New == nil {
			logger.Warn("update envelope without new record")
			return
		}
		sink.ApplyRemoteUpdate(*envelope.New)
	case EventDelete:
		if envelope.Old == nil {
			logger.Warn("delete envelope without old record")
			return
		}
		sink.ApplyRemoteDelete(envelope.Old.ID)
	default:
		logger.Warn("unknown change event type", zap.String("event_type", string(envelope.EventType)))
	}
}
