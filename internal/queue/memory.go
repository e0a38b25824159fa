package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a channel-backed broker used in tests. It mimics the
// delivery contract of the NATS client: per-queue FIFO, one message
// in flight at a time, redelivery when the handler errors.
type Memory struct {
	mu        sync.Mutex
	queues    map[string]chan []byte
	published map[string][][]byte
}

func NewMemory() *Memory {
	return &Memory{
		queues:    make(map[string]chan []byte),
		published: make(map[string][][]byte),
	}
}

func (m *Memory) channel(queue string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.queues[queue]
	if !ok {
		ch = make(chan []byte, 256)
		m.queues[queue] = ch
	}
	return ch
}

func (m *Memory) Publish(_ context.Context, queue string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	select {
	case m.channel(queue) <- data:
	default:
		return fmt.Errorf("queue %s full", queue)
	}

	m.mu.Lock()
	m.published[queue] = append(m.published[queue], data)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Consume(ctx context.Context, queue string, h Handler) error {
	ch := m.channel(queue)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				if err := h(ctx, data); err != nil {
					// Redeliver, preserving at-least-once semantics.
					select {
					case ch <- data:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return nil
}

// Published returns every payload ever published to the queue, in
// order, regardless of whether a consumer has drained it.
func (m *Memory) Published(queue string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.published[queue]))
	copy(out, m.published[queue])
	return out
}
