package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/vuhoang/marketplace-backend/pkg/db/models"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
	"github.com/vuhoang/marketplace-backend/pkg/outbox"
)

// Consumer drains notification events from the subscription and persists one
// Notification row per message.
type Consumer struct {
	sub  *pubsubv2.Subscriber
	repo Repository
	logg *logger.Logger
}

func NewConsumer(sub *pubsubv2.Subscriber, repo Repository, logg *logger.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, fmt.Errorf("subscriber required")
	}
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{sub: sub, repo: repo, logg: logg}, nil
}

// Run blocks receiving messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.sub.Receive(ctx, func(ctx context.Context, msg *pubsubv2.Message) {
		if err := c.Process(ctx, msg.Data); err != nil {
			c.logg.Error(ctx, "processing notification event", err)
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Process decodes an outbox envelope and persists the notification it
// carries. Events without a recipient are dropped, not retried.
func (c *Consumer) Process(ctx context.Context, data []byte) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decoding envelope: %w", err)
	}
	var payload EventPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		return fmt.Errorf("decoding notification payload: %w", err)
	}
	if payload.RecipientID == uuid.Nil {
		c.logg.Warn(ctx, fmt.Sprintf("notification event %s has no recipient, dropping", envelope.EventID))
		return nil
	}

	_, err := c.repo.Create(ctx, &models.Notification{
		CreatorID:   payload.CreatorID,
		RecipientID: payload.RecipientID,
		Title:       payload.Title,
		Content:     payload.Content,
		Link:        payload.Link,
		IsRead:      payload.IsRead,
	})
	if err != nil {
		return fmt.Errorf("persisting notification: %w", err)
	}
	return nil
}
