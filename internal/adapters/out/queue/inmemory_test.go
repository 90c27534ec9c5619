package queue

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

func testLogger() zerowrap.Logger {
	return zerowrap.Default()
}

func startQueue(t *testing.T, cfg Config) *InMemory {
	t.Helper()

	q := NewInMemory(cfg, testLogger())
	require.NoError(t, q.Start())
	t.Cleanup(func() { _ = q.Stop() })
	return q
}

func receive(t *testing.T, q *InMemory) out.Delivery {
	t.Helper()

	select {
	case d, ok := <-q.Deliveries():
		require.True(t, ok, "deliveries channel closed")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery received")
		return nil
	}
}

func assertNoDelivery(t *testing.T, q *InMemory, wait time.Duration) {
	t.Helper()

	select {
	case d := <-q.Deliveries():
		t.Fatalf("unexpected delivery of %s", d.Message().EntityID)
	case <-time.After(wait):
	}
}

func TestInMemory_PublishAndAck(t *testing.T) {
	q := startQueue(t, Config{})

	require.NoError(t, q.Publish(context.Background(), domain.EntityDeposit, "dep-1"))

	d := receive(t, q)
	msg := d.Message()
	assert.Equal(t, domain.EntityDeposit, msg.Kind)
	assert.Equal(t, "dep-1", msg.EntityID)
	assert.NotEmpty(t, msg.ID)
	assert.Zero(t, msg.Redelivered)
	assert.Equal(t, 1, q.Unacked())

	require.NoError(t, d.Ack())
	assert.Zero(t, q.Unacked())
	assert.ErrorIs(t, d.Ack(), ErrAlreadySettled)
	assert.ErrorIs(t, d.Nack(), ErrAlreadySettled)

	assertNoDelivery(t, q, 50*time.Millisecond)
}

func TestInMemory_PublishRejectsInvalidMessage(t *testing.T) {
	q := startQueue(t, Config{})

	err := q.Publish(context.Background(), domain.EntityKind("user"), "u-1")
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)

	err = q.Publish(context.Background(), domain.EntityDeposit, "")
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)
}

func TestInMemory_NackRedeliversWithBackoff(t *testing.T) {
	q := startQueue(t, Config{InitialRedelivery: 20 * time.Millisecond, MaxRedelivery: 40 * time.Millisecond})

	require.NoError(t, q.Publish(context.Background(), domain.EntityDeposit, "dep-1"))

	first := receive(t, q)
	require.NoError(t, first.Nack())

	second := receive(t, q)
	assert.Equal(t, first.Message().ID, second.Message().ID)
	assert.Equal(t, 1, second.Message().Redelivered)

	require.NoError(t, second.Nack())
	third := receive(t, q)
	assert.Equal(t, 2, third.Message().Redelivered)
	require.NoError(t, third.Ack())
}

func TestInMemory_VisibilityTimeoutRedelivers(t *testing.T) {
	q := startQueue(t, Config{VisibilityTimeout: 50 * time.Millisecond})

	require.NoError(t, q.Publish(context.Background(), domain.EntitySubmission, "sub-1"))

	lost := receive(t, q)
	again := receive(t, q)

	assert.Equal(t, lost.Message().ID, again.Message().ID)
	assert.Equal(t, 1, again.Message().Redelivered)

	// The first hand-out expired; settling it late must not drop the redelivery.
	assert.ErrorIs(t, lost.Ack(), ErrAlreadySettled)
	require.NoError(t, again.Ack())
}

func TestInMemory_PublishTimesOutWhenFull(t *testing.T) {
	// Not started: nothing drains the buffer.
	q := NewInMemory(Config{Buffer: 1, PublishTimeout: 20 * time.Millisecond}, testLogger())

	require.NoError(t, q.Publish(context.Background(), domain.EntityDeposit, "dep-1"))
	err := q.Publish(context.Background(), domain.EntityDeposit, "dep-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
	assert.Equal(t, 1, q.Ready())
}

func TestInMemory_PublishHonoursContext(t *testing.T) {
	q := NewInMemory(Config{Buffer: 1, PublishTimeout: time.Second}, testLogger())
	require.NoError(t, q.Publish(context.Background(), domain.EntityDeposit, "dep-1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Publish(ctx, domain.EntityDeposit, "dep-2"), context.Canceled)
}

func TestInMemory_StopClosesDeliveries(t *testing.T) {
	q := NewInMemory(Config{}, testLogger())
	require.NoError(t, q.Start())
	require.Error(t, q.Start())

	require.NoError(t, q.Stop())
	require.NoError(t, q.Stop())

	_, ok := <-q.Deliveries()
	assert.False(t, ok)
	assert.ErrorIs(t, q.Publish(context.Background(), domain.EntityDeposit, "dep-1"), ErrStopped)
}

func TestInMemory_RedeliveryDelay(t *testing.T) {
	q := NewInMemory(Config{InitialRedelivery: time.Second, MaxRedelivery: 5 * time.Second}, testLogger())

	assert.Equal(t, time.Second, q.redeliveryDelay(1))
	assert.Equal(t, 1500*time.Millisecond, q.redeliveryDelay(2))
	assert.Equal(t, 2250*time.Millisecond, q.redeliveryDelay(3))
	assert.Equal(t, 5*time.Second, q.redeliveryDelay(10))
}

func TestJittered(t *testing.T) {
	assert.Equal(t, time.Second, jittered(time.Second, 0))
	assert.Equal(t, time.Second, jittered(time.Second, -1))

	for i := 0; i < 100; i++ {
		d := jittered(time.Second, 0.2)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}
