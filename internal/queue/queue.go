package queue

import "context"

// Handler processes one message body. A nil return acknowledges the
// message; an error leaves it un-acked for broker redelivery.
type Handler func(ctx context.Context, data []byte) error

// Publisher writes a JSON payload to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload interface{}) error
}

// Consumer binds a handler to a named queue. Messages are delivered
// strictly one at a time, in order, until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, queue string, h Handler) error
}

// Broker is the full client surface a pipeline service needs.
type Broker interface {
	Publisher
	Consumer
}
