package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// Locker hands out named, expiring locks. ok is false when the lock is held
// elsewhere.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Local always grants the lock. It is used when no Redis is configured.
type Local struct{}

func (Local) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
} // ./Acquire

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
} // ./NewRedisLocker

// Acquire sets the lock key only if absent. The key holds a random token so
// a release after expiry never drops another holder's lock.
func (r *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	key := keyPrefix + name
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrapf(err, "acquire %s", key)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		err := releaseScript.Run(ctx, r.client, []string{key}, token).Err()
		if err != nil && err != redis.Nil {
			return errors.Wrapf(err, "release %s", key)
		}
		return nil
	}
	return release, true, nil
} // ./Acquire

// Dial connects to the Redis server at url (redis://...) and pings it.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
} // ./Dial

// Open returns a RedisLocker when url is set and Local otherwise. The
// returned close func releases the Redis connection.
func Open(ctx context.Context, url string) (Locker, func() error, error) {
	if url == "" {
		return Local{}, func() error { return nil }, nil
	}
	client, err := Dial(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return NewRedisLocker(client), client.Close, nil
} // ./Open
