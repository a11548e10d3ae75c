// Package redis publishes session events on a Redis pub/sub channel so other
// local processes (lighting, dashboards) can follow the music.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

const DefaultChannel = "moodtrack:events"

type Publisher struct {
	client  *goredis.Client
	channel string
	owned   bool
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewPublisher connects to addr and verifies the server answers PING.
func NewPublisher(ctx context.Context, addr, channel string) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	p := NewPublisherWithClient(client, channel)
	p.owned = true
	return p, nil
}

// NewPublisherWithClient wraps an existing client. Close leaves it open.
func NewPublisherWithClient(client *goredis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Channel() string {
	return p.channel
}

// Publish sends e as JSON.
func (p *Publisher) Publish(ctx context.Context, e domain.SessionEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis: encode %s event: %w", e.Kind, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s event: %w", e.Kind, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.client.Close()
}
