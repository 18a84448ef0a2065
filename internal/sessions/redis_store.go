package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yoockh/admission/internal/chatbot"
)

// compare-and-delete so a lock that expired and was re-taken is never released by the old owner
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisStore struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	lockTTL  time.Duration
	retry    time.Duration
	lockWait time.Duration
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		rdb:      rdb,
		prefix:   prefix,
		ttl:      ttl,
		lockTTL:  DefaultLockTTL,
		retry:    50 * time.Millisecond,
		lockWait: 30 * time.Second,
	}
}

func (r *RedisStore) key(id string) string     { return r.prefix + "chat:session:" + id }
func (r *RedisStore) lockKey(id string) string { return r.prefix + "chat:lock:" + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*chatbot.Session, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s chatbot.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *chatbot.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(s.ID), b, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}

func (r *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	key := r.lockKey(id)
	deadline := time.Now().Add(r.lockWait)

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrBusy
		}
		select {
		case <-ctx.Done():
			return nil, ErrBusy
		case <-time.After(r.retry):
		}
	}

	return func() {
		// release even if the request context is already cancelled
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(rctx, r.rdb, []string{key}, token).Err()
	}, nil
}
