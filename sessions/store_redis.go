package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Fixed, well-known keys. A schema change requires new keys; there is
// no versioning or migration logic.
const (
	redisSessionKey  = "league:session"
	redisLockoutKey  = "league:lockout"
	redisChangesChan = "league:session:changes"
)

const redisOpTimeout = 3 * time.Second

// RedisStore shares the session across devices' execution contexts
// through a Redis instance. Each handle subscribes to a pub/sub channel
// carrying writer origin IDs, so a writer never observes its own
// change. The session key carries the inactivity threshold as its TTL;
// every renewal rewrite pushes it forward, matching the sliding window.
type RedisStore struct {
	client  *redis.Client
	id      string
	log     zerolog.Logger
	pubsub  *redis.PubSub
	changes chan Change
}

var _ Store = (*RedisStore)(nil)

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

func WithRedisLogger(log zerolog.Logger) RedisStoreOption {
	return func(rs *RedisStore) { rs.log = log }
}

// NewRedisStore verifies connectivity and subscribes to the change
// channel.
func NewRedisStore(client *redis.Client, options ...RedisStoreOption) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	rs := &RedisStore{
		client:  client,
		id:      uuid.New().String(),
		log:     zerolog.Nop(),
		changes: make(chan Change, 8),
	}
	for _, opt := range options {
		opt(rs)
	}

	rs.pubsub = client.Subscribe(context.Background(), redisChangesChan)
	go rs.listen()
	return rs, nil
}

func (rs *RedisStore) Read() (Session, bool) {
	ctx, cancel := rs.opContext()
	defer cancel()
	data, err := rs.client.Get(ctx, redisSessionKey).Bytes()
	if err == redis.Nil {
		return Session{}, false
	}
	if err != nil {
		// Unreachable backend degrades to "no session"; the sweep
		// re-reads on its next pass.
		rs.log.Warn().Err(err).Msg("reading session from redis")
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		rs.log.Warn().Err(err).Msg("discarding malformed session record")
		return Session{}, false
	}
	return s, true
}

func (rs *RedisStore) Write(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	ctx, cancel := rs.opContext()
	defer cancel()
	if err := rs.client.Set(ctx, redisSessionKey, data, InactivityThreshold).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	rs.publish(ctx)
	return nil
}

func (rs *RedisStore) Clear() error {
	ctx, cancel := rs.opContext()
	defer cancel()
	if err := rs.client.Del(ctx, redisSessionKey).Err(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	rs.publish(ctx)
	return nil
}

func (rs *RedisStore) ReadLockoutMeta(email string) LockoutMeta {
	ctx, cancel := rs.opContext()
	defer cancel()
	data, err := rs.client.HGet(ctx, redisLockoutKey, MetaKey(email)).Result()
	if err == redis.Nil {
		return LockoutMeta{}
	}
	if err != nil {
		rs.log.Warn().Err(err).Msg("reading lockout meta from redis")
		return LockoutMeta{}
	}
	var meta LockoutMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		rs.log.Warn().Err(err).Msg("discarding malformed lockout record")
		return LockoutMeta{}
	}
	return meta
}

func (rs *RedisStore) WriteLockoutMeta(email string, meta LockoutMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding lockout meta: %w", err)
	}
	ctx, cancel := rs.opContext()
	defer cancel()
	if err := rs.client.HSet(ctx, redisLockoutKey, MetaKey(email), data).Err(); err != nil {
		return fmt.Errorf("storing lockout meta: %w", err)
	}
	return nil
}

func (rs *RedisStore) ResetLockoutMeta(email string) error {
	return rs.WriteLockoutMeta(email, LockoutMeta{})
}

func (rs *RedisStore) Changes() <-chan Change {
	return rs.changes
}

func (rs *RedisStore) Close() error {
	// Closing the subscription ends the listen goroutine, which closes
	// the changes channel on its way out.
	return rs.pubsub.Close()
}

func (rs *RedisStore) publish(ctx context.Context) {
	if err := rs.client.Publish(ctx, redisChangesChan, rs.id).Err(); err != nil {
		// Siblings fall back to the periodic sweep.
		rs.log.Warn().Err(err).Msg("publishing session change")
	}
}

func (rs *RedisStore) listen() {
	defer close(rs.changes)
	for msg := range rs.pubsub.Channel() {
		if msg.Payload == rs.id {
			continue
		}
		select {
		case rs.changes <- Change{Origin: msg.Payload, At: time.Now()}:
		default:
		}
	}
}

func (rs *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}
