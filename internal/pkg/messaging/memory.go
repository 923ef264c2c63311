package messaging

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrBufferFull is returned by Memory.Publish when a consumer group, or the
// backlog of a topic nobody consumes yet, has no room left.
var ErrBufferFull = errors.New("messaging: memory buffer full")

// Memory delivers in process. Each consumer group receives every message
// once; a failed handler gets the message again up to maxMemoryAttempts.
// Messages published before the first group subscribes are kept as a backlog
// and handed to that group. Publish never blocks.
type Memory struct {
	mu      sync.RWMutex
	groups  map[string]map[string]chan *Message
	backlog map[string][]*Message
	closed  bool
	seq     atomic.Uint64
}

const (
	maxMemoryAttempts = 3
	memoryBuffer      = 64
)

func NewMemory() *Memory {
	return &Memory{
		groups:  make(map[string]map[string]chan *Message),
		backlog: make(map[string][]*Message),
	}
}

func (m *Memory) Publish(ctx context.Context, topic string, msg *Message) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	id := strconv.FormatUint(m.seq.Add(1), 10)
	newCopy := func() *Message {
		return &Message{ID: id, Topic: topic, Key: slices.Clone(msg.Key), Body: slices.Clone(msg.Body), Headers: maps.Clone(msg.Headers)}
	}

	if len(m.groups[topic]) == 0 {
		if len(m.backlog[topic]) >= memoryBuffer {
			return ErrBufferFull
		}
		m.backlog[topic] = append(m.backlog[topic], newCopy())
		return nil
	}

	for _, ch := range m.groups[topic] {
		if len(ch) == cap(ch) {
			return ErrBufferFull
		}
	}
	// channels are only sent to under mu, so the capacity check holds
	for _, ch := range m.groups[topic] {
		ch <- newCopy()
	}
	return nil
}

func (m *Memory) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(topic, h); err != nil {
		return err
	}
	co := newConsumeOptions(opts)

	ch, err := m.subscribe(topic, co.group)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					for range maxMemoryAttempts {
						if dispatch(ctx, DriverMemory, h, msg) == nil {
							break
						}
					}
				}
			}
		})
	}
	wg.Wait()

	return ctx.Err()
}

func (m *Memory) subscribe(topic, group string) (chan *Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.groups[topic] == nil {
		m.groups[topic] = make(map[string]chan *Message)
	}
	ch, ok := m.groups[topic][group]
	if !ok {
		ch = make(chan *Message, memoryBuffer)
		for _, msg := range m.backlog[topic] {
			ch <- msg
		}
		delete(m.backlog, topic)
		m.groups[topic][group] = ch
	}
	return ch, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for _, groups := range m.groups {
		for _, ch := range groups {
			close(ch)
		}
	}
	return nil
}
