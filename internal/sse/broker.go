package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/aeroway/aeroway-api/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
	clientBufferSize  = 16
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Transport fans events out across server instances.
// *redisclient.Client implements it.
type Transport interface {
	PublishEvent(ctx context.Context, channel string, payload []byte) error
	Listen(ctx context.Context, channel string) (<-chan string, func() error, error)
}

var _ Transport = (*redisclient.Client)(nil)

type Client struct {
	Code   string
	Events chan Event
	Done   chan struct{}
}

type topic struct {
	clients map[*Client]struct{}
	cancel  context.CancelFunc

	// ready is closed once the transport subscription is established or has
	// failed with err.
	ready chan struct{}
	err   error
}

// Broker delivers tracking events to SSE clients grouped by tracking code.
// One transport subscription is held per code while it has local clients.
type Broker struct {
	transport Transport
	topics    map[string]*topic
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewBroker(transport Transport) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		transport: transport,
		topics:    make(map[string]*topic),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Subscribe registers a client for code. It returns after the transport
// subscription for code is live, so events published from then on reach the
// client.
func (b *Broker) Subscribe(ctx context.Context, code string) (*Client, error) {
	client := &Client{
		Code:   code,
		Events: make(chan Event, clientBufferSize),
		Done:   make(chan struct{}),
	}

	b.mu.Lock()
	t, ok := b.topics[code]
	if !ok {
		topicCtx, cancel := context.WithCancel(b.ctx)
		t = &topic{
			clients: make(map[*Client]struct{}),
			cancel:  cancel,
			ready:   make(chan struct{}),
		}
		b.topics[code] = t
		go b.listen(topicCtx, code, t)
	}
	t.clients[client] = struct{}{}
	clientCount := len(t.clients)
	b.mu.Unlock()

	select {
	case <-t.ready:
	case <-ctx.Done():
		b.Unsubscribe(client)
		return nil, ctx.Err()
	}
	if t.err != nil {
		return nil, t.err
	}

	log.Info().
		Str("code", code).
		Int("clientCount", clientCount).
		Msg("sse client subscribed")

	return client, nil
}

func (b *Broker) Unsubscribe(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[client.Code]
	if !ok {
		return
	}
	if _, ok := t.clients[client]; !ok {
		return
	}
	delete(t.clients, client)
	close(client.Done)

	if len(t.clients) == 0 {
		t.cancel()
		delete(b.topics, client.Code)
	}

	log.Info().
		Str("code", client.Code).
		Int("clientCount", len(t.clients)).
		Msg("sse client unsubscribed")
}

func (b *Broker) Publish(ctx context.Context, code string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.transport.PublishEvent(ctx, redisclient.TrackingChannel(code), data)
}

func (b *Broker) listen(ctx context.Context, code string, t *topic) {
	channel := redisclient.TrackingChannel(code)
	messages, closeFn, err := b.transport.Listen(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("redis pubsub subscribe failed")
		b.dropTopic(code, t, err)
		return
	}
	defer closeFn()
	close(t.ready)

	log.Debug().
		Str("code", code).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	for {
		select {
		case <-ctx.Done():
			return

		case payload, ok := <-messages:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal event")
				continue
			}

			b.broadcast(code, event)
		}
	}
}

// dropTopic forgets a topic whose subscription could not be established and
// fails its waiting subscribers.
func (b *Broker) dropTopic(code string, t *topic, err error) {
	b.mu.Lock()
	if b.topics[code] == t {
		delete(b.topics, code)
	}
	b.mu.Unlock()

	t.cancel()
	t.err = err
	close(t.ready)
}

func (b *Broker) broadcast(code string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.topics[code]
	if !ok {
		return
	}
	for client := range t.clients {
		select {
		case client.Events <- event:
		default:
			log.Warn().
				Str("code", code).
				Msg("client event buffer full, dropping event")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range b.topics {
		for client := range t.clients {
			close(client.Done)
		}
	}
	b.topics = make(map[string]*topic)
}

func (b *Broker) ClientCount(code string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if t, ok := b.topics[code]; ok {
		return len(t.clients)
	}
	return 0
}

func (b *Broker) TotalClients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, t := range b.topics {
		total += len(t.clients)
	}
	return total
}
