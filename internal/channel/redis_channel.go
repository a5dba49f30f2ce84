package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisConfig struct {
	ServerChannel     string
	BroadcastChannel  string
	UserChannelPrefix string
}

// RedisChannel publishes outbound events on the server channel and listens on the broadcast
// channel plus a per-user channel. Inbound events are dispatched one at a time, in arrival order.
type RedisChannel struct {
	rdb    *redis.Client
	cfg    RedisConfig
	userID string
	log    zerolog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler

	subscribed atomic.Bool
	healthy    atomic.Bool

	cancel    context.CancelFunc
	pubsub    *redis.PubSub
	done      chan struct{}
	closeOnce sync.Once
}

func NewRedisChannel(rdb *redis.Client, cfg RedisConfig, userID string, log zerolog.Logger) *RedisChannel {
	return &RedisChannel{
		rdb:      rdb,
		cfg:      cfg,
		userID:   userID,
		log:      log.With().Str("component", "channel").Str("user_id", userID).Logger(),
		handlers: make(map[string][]Handler),
	}
}

func (c *RedisChannel) userChannel() string {
	return c.cfg.UserChannelPrefix + c.userID
}

// Connect subscribes and starts the listener goroutine. A failed first subscribe still leaves the
// listener running: go-redis keeps re-dialing and resubscribing, and the channel comes online with
// the first subscription confirmation. Frames published while offline are not recovered.
func (c *RedisChannel) Connect(ctx context.Context) error {
	pubsub := c.rdb.Subscribe(ctx, c.cfg.BroadcastChannel, c.userChannel())
	_, err := pubsub.Receive(ctx)
	if err == nil {
		c.markSubscribed()
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.pubsub = pubsub
	c.done = make(chan struct{})
	go c.listen(listenCtx, pubsub.ChannelWithSubscriptions())

	if err != nil {
		return fmt.Errorf("subscribe to realtime channels: %w", err)
	}
	c.log.Info().Msg("connected")
	return nil
}

func (c *RedisChannel) markSubscribed() {
	c.subscribed.Store(true)
	c.healthy.Store(true)
}

func (c *RedisChannel) listen(ctx context.Context, ch <-chan interface{}) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				c.subscribed.Store(false)
				return
			}
			switch m := raw.(type) {
			case *redis.Subscription:
				if m.Kind != "subscribe" {
					continue
				}
				if !c.subscribed.Load() {
					c.log.Info().Str("channel", m.Channel).Msg("subscribed")
				}
				c.markSubscribed()
			case *redis.Message:
				c.dispatch(ctx, m.Payload)
			}
		}
	}
}

func (c *RedisChannel) dispatch(ctx context.Context, payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		c.log.Warn().Err(err).Msg("invalid frame")
		return
	}

	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers[env.Event]...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.log.Debug().Str("event", env.Event).Msg("no handler")
		return
	}
	for _, h := range handlers {
		h(ctx, env.Data)
	}
}

func (c *RedisChannel) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

func (c *RedisChannel) Emit(ctx context.Context, event string, payload any) error {
	if !c.subscribed.Load() {
		return ErrDisconnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, UserID: c.userID, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", event, err)
	}

	if err := c.rdb.Publish(ctx, c.cfg.ServerChannel, string(frame)).Err(); err != nil {
		// A caller giving up says nothing about the connection.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("publish %s: %w", event, err)
		}
		c.healthy.Store(false)
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	c.healthy.Store(true)
	return nil
}

func (c *RedisChannel) Connected() bool {
	return c.subscribed.Load() && c.healthy.Load()
}

func (c *RedisChannel) Close() error {
	if c.pubsub == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		c.subscribed.Store(false)
		c.cancel()
		err = c.pubsub.Close()
		<-c.done
		c.log.Info().Msg("disconnected")
	})
	return err
}
