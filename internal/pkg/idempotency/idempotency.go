// Package idempotency guards side effects so that a key runs at most once
// successfully, backed by redis.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrInProgress = errors.New("idempotency: operation in progress")
	ErrCompleted  = errors.New("idempotency: operation already completed")
	ErrEmptyKey   = errors.New("idempotency: empty key")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

const (
	DefaultLockTTL = time.Minute
	DefaultDoneTTL = 24 * time.Hour
	keyPrefix      = "idempotency:"
)

// Guard runs fn only when key has not completed and is not running elsewhere.
type Guard interface {
	State(ctx context.Context, key string) (State, error)
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

type Option func(*options)

type options struct {
	lockTTL time.Duration
	doneTTL time.Duration
}

// WithLockTTL bounds how long a crashed worker keeps the key locked.
func WithLockTTL(d time.Duration) Option {
	return func(o *options) { o.lockTTL = d }
}

// WithDoneTTL sets how long a completed key is remembered.
func WithDoneTTL(d time.Duration) Option {
	return func(o *options) { o.doneTTL = d }
}

// swaps the value only while it still holds ARGV[1].
var transition = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
if ARGV[2] == "" then
	redis.call("DEL", KEYS[1])
else
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
end
return 1
`)

type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) State(ctx context.Context, key string) (State, error) {
	v, err := r.client.Get(ctx, keyPrefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return StateNone, nil
	case err != nil:
		return StateNone, fmt.Errorf("idempotency: get state: %w", err)
	case v == string(StateCompleted):
		return StateCompleted, nil
	default:
		return StateInProgress, nil
	}
}

// Exec locks key, runs fn and records completion. When fn fails the lock is
// released so a later delivery can retry.
func (r *Redis) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	if key == "" {
		return ErrEmptyKey
	}

	o := options{lockTTL: DefaultLockTTL, doneTTL: DefaultDoneTTL}
	for _, opt := range opts {
		opt(&o)
	}

	fk := keyPrefix + key
	lock := string(StateInProgress) + ":" + time.Now().UTC().Format(time.RFC3339Nano)

	ok, err := r.client.SetNX(ctx, fk, lock, o.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("idempotency: acquire: %w", err)
	}
	if !ok {
		st, err := r.State(ctx, key)
		if err != nil {
			return err
		}
		if st == StateCompleted {
			return ErrCompleted
		}
		return ErrInProgress
	}

	if fnErr := fn(ctx); fnErr != nil {
		// release with a fresh context; the caller's may already be done
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := transition.Run(relCtx, r.client, []string{fk}, lock, "", 0).Err(); err != nil {
			return errors.Join(fnErr, fmt.Errorf("idempotency: release: %w", err))
		}
		return fnErr
	}

	if err := transition.Run(ctx, r.client, []string{fk}, lock, string(StateCompleted), o.doneTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("idempotency: complete: %w", err)
	}
	return nil
}
