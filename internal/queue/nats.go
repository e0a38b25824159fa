package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"vehicle-access-service/internal/metrics"
)

// NATSClient is a long-lived JetStream connection shared by all the
// workers of one service. Each queue maps to a file-backed stream with
// a single subject, giving durable at-least-once FIFO delivery.
type NATSClient struct {
	nc             *nats.Conn
	js             nats.JetStreamContext
	log            zerolog.Logger
	publishRetries int

	mu      sync.Mutex
	streams map[string]bool
}

// ConnectNATS dials the broker with bounded exponential backoff. A
// broker that stays down past the retry budget fails startup instead
// of letting a half-wired service run.
func ConnectNATS(url string, connectRetries, publishRetries int, log zerolog.Logger) (*NATSClient, error) {
	var nc *nats.Conn
	var err error

	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= connectRetries; attempt++ {
		nc, err = nats.Connect(url, nats.Name("vehicle-access-service"))
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("nats connect failed, retrying")
		time.Sleep(backoff)
		backoff *= 2
	}
	if err != nil {
		return nil, fmt.Errorf("nats connect after %d attempts: %w", connectRetries+1, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	return &NATSClient{
		nc:             nc,
		js:             js,
		log:            log,
		publishRetries: publishRetries,
		streams:        make(map[string]bool),
	}, nil
}

func (c *NATSClient) Close() {
	c.nc.Close()
}

// Publish marshals the payload and writes it to the queue's stream,
// retrying with linear backoff before giving up. Callers must not ack
// the message that triggered the publish until this returns nil.
func (c *NATSClient) Publish(ctx context.Context, queue string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := c.ensureStream(queue); err != nil {
		return err
	}

	for i := 0; i <= c.publishRetries; i++ {
		_, err = c.js.Publish(queue, data, nats.Context(ctx))
		if err == nil {
			metrics.MessagesPublished.WithLabelValues(queue).Inc()
			return nil
		}
		time.Sleep(time.Duration(i*100) * time.Millisecond)
	}

	metrics.PublishFailures.WithLabelValues(queue).Inc()
	return fmt.Errorf("publish to %s failed after %d retries: %w", queue, c.publishRetries, err)
}

// Consume binds a durable consumer to the queue. MaxAckPending(1)
// keeps processing strictly sequential per queue. A handler error
// nacks the message so the broker redelivers it.
func (c *NATSClient) Consume(ctx context.Context, queue string, h Handler) error {
	if err := c.ensureStream(queue); err != nil {
		return err
	}

	sub, err := c.js.Subscribe(queue, func(m *nats.Msg) {
		metrics.MessagesConsumed.WithLabelValues(queue).Inc()
		if err := h(ctx, m.Data); err != nil {
			c.log.Error().Err(err).Str("queue", queue).Msg("handler failed, message will be redelivered")
			if nakErr := m.Nak(); nakErr != nil {
				c.log.Error().Err(nakErr).Str("queue", queue).Msg("nak failed")
			}
			return
		}
		if ackErr := m.Ack(); ackErr != nil {
			c.log.Error().Err(ackErr).Str("queue", queue).Msg("ack failed")
		}
	},
		nats.Durable(durableName(queue)),
		nats.ManualAck(),
		nats.AckExplicit(),
		nats.MaxAckPending(1),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", queue, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			c.log.Warn().Err(err).Str("queue", queue).Msg("drain failed")
		}
	}()

	c.log.Info().Str("queue", queue).Msg("consumer started")
	return nil
}

func (c *NATSClient) ensureStream(queue string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.streams[queue] {
		return nil
	}

	name := streamName(queue)
	_, err := c.js.StreamInfo(name)
	if errors.Is(err, nats.ErrStreamNotFound) {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{queue},
			Storage:  nats.FileStorage,
		})
	}
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", name, err)
	}

	c.streams[queue] = true
	return nil
}

// Stream and durable names may not contain dots, unlike subjects.
func streamName(queue string) string {
	return strings.ToUpper(sanitize(queue))
}

func durableName(queue string) string {
	return sanitize(queue) + "_worker"
}

func sanitize(queue string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, queue)
}
