package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMemory()
	got := make(chan []byte, 1)
	require.NoError(t, m.Consume(ctx, "q", func(_ context.Context, data []byte) error {
		got <- data
		return nil
	}))

	require.NoError(t, m.Publish(ctx, "q", map[string]string{"plate_number": "ABC-1234"}))

	select {
	case data := <-got:
		assert.JSONEq(t, `{"plate_number":"ABC-1234"}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemoryRedeliversOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMemory()
	var attempts int32
	require.NoError(t, m.Consume(ctx, "q", func(_ context.Context, _ []byte) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("transient failure")
		}
		return nil
	}))

	require.NoError(t, m.Publish(ctx, "q", "payload"))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryPublishedTracksOrder(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Publish(context.Background(), "q", 1))
	require.NoError(t, m.Publish(context.Background(), "q", 2))

	published := m.Published("q")
	require.Len(t, published, 2)
	assert.Equal(t, "1", string(published[0]))
	assert.Equal(t, "2", string(published[1]))
	assert.Empty(t, m.Published("other"))
}
