package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// PublishEvent sends payload to every subscriber of channel.
func (c *Client) PublishEvent(ctx context.Context, channel string, payload []byte) error {
	return c.Publish(ctx, channel, payload).Err()
}

// Listen subscribes to channel and forwards message payloads until ctx is
// cancelled or the returned close function is called. It returns once the
// server has confirmed the subscription, so anything published afterwards is
// delivered.
func (c *Client) Listen(ctx context.Context, channel string) (<-chan string, func() error, error) {
	pubsub := c.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	out := make(chan string)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close, nil
}

func TrackingChannel(code string) string {
	return fmt.Sprintf("tracking:%s", code)
}

// CheckHealth pings the server.
func (c *Client) CheckHealth(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
