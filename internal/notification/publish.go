package notification

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is a pub/sub transport (see store/redis.Publisher).
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PublishNotifier sends each message as JSON on a pub/sub channel so other
// services can consume alerts without polling.
type PublishNotifier struct {
	pub     Publisher
	channel string
}

// NewPublishNotifier creates a notifier publishing on channel.
func NewPublishNotifier(pub Publisher, channel string) *PublishNotifier {
	return &PublishNotifier{pub: pub, channel: channel}
}

func (p *PublishNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("publish: marshal: %w", err)
	}
	if err := p.pub.Publish(ctx, p.channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
