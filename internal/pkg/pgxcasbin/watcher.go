package pgxcasbin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/casbin/casbin/v3/persist"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

const DefaultChannel = "auth_casbin_policy"

var _ persist.Watcher = (*Watcher)(nil)

type notice struct {
	Origin string `json:"origin"`
}

// Watcher tells other processes to reload their policy after a local change.
// Notices sent by this process are ignored.
type Watcher struct {
	pool    *pgxpool.Pool
	channel string
	origin  string

	mu       sync.RWMutex
	callback func(string)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher starts listening on channel. origin identifies this process.
func NewWatcher(ctx context.Context, pool *pgxpool.Pool, channel, origin string) *Watcher {
	if channel == "" {
		channel = DefaultChannel
	}

	lctx, cancel := context.WithCancel(ctx)
	w := &Watcher{pool: pool, channel: channel, origin: origin, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)

		b := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(200*time.Millisecond))
		err := retry.Do(lctx, b, func(ctx context.Context) error {
			if err := w.listen(ctx); err != nil && ctx.Err() == nil {
				slog.WarnContext(ctx, "casbin watcher listen failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("casbin watcher stopped", "error", err)
		}
	}()

	return w
}

func (w *Watcher) listen(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("pgxcasbin: acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+w.channel); err != nil {
		return fmt.Errorf("pgxcasbin: listen: %w", err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("pgxcasbin: wait: %w", err)
		}

		var msg notice
		if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil || msg.Origin == w.origin {
			continue
		}

		w.mu.RLock()
		cb := w.callback
		w.mu.RUnlock()
		if cb != nil {
			cb(n.Payload)
		}
	}
}

func (w *Watcher) SetUpdateCallback(cb func(string)) error {
	w.mu.Lock()
	w.callback = cb
	w.mu.Unlock()
	return nil
}

// Update is called by the enforcer after a local policy write.
func (w *Watcher) Update() error {
	payload, err := json.Marshal(notice{Origin: w.origin})
	if err != nil {
		return err
	}
	if _, err := w.pool.Exec(context.Background(), "SELECT pg_notify($1, $2)", w.channel, string(payload)); err != nil {
		return fmt.Errorf("pgxcasbin: notify: %w", err)
	}
	return nil
}

func (w *Watcher) Close() {
	w.cancel()
	<-w.done
}

// Reload returns a callback that reloads the whole policy of e.
func Reload(e interface{ LoadPolicy() error }) func(string) {
	return func(string) {
		if err := e.LoadPolicy(); err != nil {
			slog.Error("casbin policy reload failed", "error", err)
		}
	}
}
