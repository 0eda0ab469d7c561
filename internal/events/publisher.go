package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeRequestAccepted  = "buddy_request.accepted"
	TypeBuddyRemoved     = "buddy.removed"
	TypeUserBlocked      = "user.blocked"
	TypeUserUnblocked    = "user.unblocked"
	TypeBuddiesRemoved   = "buddies.removed"
	TypeAdminMakeBuddy   = "admin.make_buddy"
	TypeAdminRemoveBuddy = "admin.remove_buddy"
	TypeAdminBuddiesEdit = "admin.buddies_edit"
)

// RelationshipEvent is the audit record published after a successful
// relationship mutation.
type RelationshipEvent struct {
	Type     string    `json:"type"`
	Actor    string    `json:"actor,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	TargetID string    `json:"target_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher delivers relationship events. Publishing is best-effort: a
// failure is logged, never surfaced to the request that triggered it.
type Publisher interface {
	Publish(ctx context.Context, ev RelationshipEvent)
}

type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev RelationshipEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("failed to marshal relationship event", zap.Error(err))
		return
	}
	msg := kafka.Message{Key: []byte(ev.Type), Value: b, Time: ev.At}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("failed to publish relationship event",
			zap.String("type", ev.Type), zap.Error(err))
	}
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// Nop discards events; used when no brokers are configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, RelationshipEvent) {}
