package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/config"
)

// RedisNotifier fans sign-in events out over Redis Pub/Sub so every server
// instance sees them.
type RedisNotifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(rdb *redis.Client, log zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{
		rdb: rdb,
		log: log.With().Str("component", "auth_notifier").Logger(),
	}
}

// Publish sends ev to the user's channel.
func (n *RedisNotifier) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal auth event: %w", err)
	}
	if err := n.rdb.Publish(ctx, config.CacheKey.AuthEventsChannel(ev.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish auth event: %w", err)
	}
	return nil
}

// Subscribe listens on the user's channel.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID string) (<-chan Event, func()) {
	ctx, cancel := context.WithCancel(ctx)
	pubsub := n.rdb.Subscribe(ctx, config.CacheKey.AuthEventsChannel(userID))
	out := make(chan Event, 4)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		defer stop()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					n.log.Warn().Err(err).Str("channel", msg.Channel).Msg("Dropping malformed auth event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, stop
}
