// Package queue implements an in-process, at-least-once message queue.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/bnema/ferry/internal/adapters/out/telemetry"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

// ErrAlreadySettled is returned when a delivery is acked or nacked twice, or
// after its visibility timeout expired and it was handed out again.
var ErrAlreadySettled = errors.New("delivery already settled")

// ErrStopped is returned by Publish once the queue is stopped.
var ErrStopped = errors.New("queue is stopped")

// Config tunes buffering and redelivery.
type Config struct {
	Buffer int `mapstructure:"buffer"`
	// InitialRedelivery and MaxRedelivery bound the exponential delay
	// applied before a nacked message is handed out again.
	InitialRedelivery time.Duration `mapstructure:"initial"`
	MaxRedelivery     time.Duration `mapstructure:"max"`
	// Jitter stretches each redelivery delay by a random fraction up to
	// this value, so deferred deposits to one repository spread out.
	Jitter float64 `mapstructure:"jitter"`
	// VisibilityTimeout is how long a delivery may stay unsettled before
	// it is redelivered to another worker.
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
	// PublishTimeout bounds how long Publish waits on a full buffer.
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

func (c Config) withDefaults() Config {
	if c.Buffer <= 0 {
		c.Buffer = 100
	}
	if c.InitialRedelivery <= 0 {
		c.InitialRedelivery = time.Second
	}
	if c.MaxRedelivery <= 0 {
		c.MaxRedelivery = time.Minute
	}
	if c.MaxRedelivery < c.InitialRedelivery {
		c.MaxRedelivery = c.InitialRedelivery
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = 10 * time.Minute
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
	return c
}

// Ensure InMemory implements out.MessageQueue.
var _ out.MessageQueue = (*InMemory)(nil)

// InMemory is a MessageQueue backed by channels. Messages live only in
// process memory: unsettled messages are lost with the process, exactly like
// a crash before acknowledgement.
type InMemory struct {
	ready      chan domain.Message
	deliveries chan out.Delivery
	done       chan struct{}

	mu       sync.Mutex
	unacked  map[uint64]*delivery
	seq      uint64
	started  bool
	stopOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cfg     Config
	log     zerowrap.Logger
	metrics *telemetry.Metrics
}

// NewInMemory creates a new in-memory queue.
func NewInMemory(cfg Config, log zerowrap.Logger) *InMemory {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &InMemory{
		ready:      make(chan domain.Message, cfg.Buffer),
		deliveries: make(chan out.Delivery),
		done:       make(chan struct{}),
		unacked:    make(map[uint64]*delivery),
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		log:        log,
	}
}

// SetMetrics sets the telemetry metrics for the queue.
// Must be called before Start() to avoid data races on q.metrics reads.
func (q *InMemory) SetMetrics(m *telemetry.Metrics) {
	q.mu.Lock()
	q.metrics = m
	q.mu.Unlock()
}

// Publish enqueues an entity-changed message.
func (q *InMemory) Publish(ctx context.Context, kind domain.EntityKind, entityID string) error {
	msg := domain.Message{
		ID:        uuid.New().String(),
		Kind:      kind,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := q.enqueue(ctx, msg); err != nil {
		return err
	}

	q.log.Debug().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "queue").
		Str("message_id", msg.ID).
		Str(zerowrap.FieldEvent, string(msg.Kind)).
		Str(zerowrap.FieldEntityID, msg.EntityID).
		Msg("message published")
	return nil
}

func (q *InMemory) enqueue(ctx context.Context, msg domain.Message) error {
	timer := time.NewTimer(q.cfg.PublishTimeout)
	defer timer.Stop()

	select {
	case <-q.ctx.Done():
		return ErrStopped
	default:
	}

	select {
	case q.ready <- msg:
		return nil
	case <-q.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		q.log.Error().
			Str(zerowrap.FieldLayer, "adapter").
			Str(zerowrap.FieldAdapter, "queue").
			Str("message_id", msg.ID).
			Str(zerowrap.FieldEvent, string(msg.Kind)).
			Str(zerowrap.FieldEntityID, msg.EntityID).
			Dur(zerowrap.FieldDuration, q.cfg.PublishTimeout).
			Msg("queue is full, dropping message")

		if q.metrics != nil {
			q.metrics.RecordDropped(context.Background(), msg.Kind)
		}
		return fmt.Errorf("queue is full, dropping message %s", msg.ID)
	}
}

// Deliveries returns the channel workers consume from. It is closed once
// the queue is stopped.
func (q *InMemory) Deliveries() <-chan out.Delivery {
	return q.deliveries
}

// Unacked returns the number of deliveries handed out and not yet settled.
func (q *InMemory) Unacked() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.unacked)
}

// Ready returns the number of messages waiting to be handed out.
func (q *InMemory) Ready() int {
	return len(q.ready)
}

// Start starts the delivery loop and the visibility reaper.
func (q *InMemory) Start() error {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return fmt.Errorf("queue already started")
	}
	q.started = true
	q.mu.Unlock()

	q.log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "queue").
		Int("buffer_size", q.cfg.Buffer).
		Dur("visibility_timeout", q.cfg.VisibilityTimeout).
		Msg("starting message queue")

	q.wg.Add(2)
	go q.deliver()
	go q.reap()

	go func() {
		q.wg.Wait()
		close(q.deliveries)
		close(q.done)
	}()
	return nil
}

// Stop stops handing out messages. Unsettled messages are discarded.
func (q *InMemory) Stop() error {
	q.stopOnce.Do(func() {
		q.log.Info().
			Str(zerowrap.FieldLayer, "adapter").
			Str(zerowrap.FieldAdapter, "queue").
			Int("unacked", q.Unacked()).
			Int("ready", q.Ready()).
			Msg("stopping message queue")
		q.cancel()
	})

	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-q.done:
		q.log.Info().
			Str(zerowrap.FieldLayer, "adapter").
			Str(zerowrap.FieldAdapter, "queue").
			Msg("message queue stopped")
		return nil
	case <-time.After(5 * time.Second):
		q.log.Warn().
			Str(zerowrap.FieldLayer, "adapter").
			Str(zerowrap.FieldAdapter, "queue").
			Msg("message queue stop timeout")
		return fmt.Errorf("timeout waiting for message queue to stop")
	}
}

func (q *InMemory) deliver() {
	defer q.wg.Done()

	for {
		var msg domain.Message
		select {
		case msg = <-q.ready:
		case <-q.ctx.Done():
			return
		}

		d := q.track(msg)
		select {
		case q.deliveries <- d:
		case <-q.ctx.Done():
			return
		}
	}
}

// track registers d as unacked. The visibility clock starts when the
// delivery is created, right before it is handed out.
func (q *InMemory) track(msg domain.Message) *delivery {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	d := &delivery{queue: q, msg: msg, token: q.seq, handedAt: time.Now()}
	q.unacked[d.token] = d
	return d
}

func (q *InMemory) reap() {
	defer q.wg.Done()

	interval := q.cfg.VisibilityTimeout / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for _, d := range q.expired(now) {
				q.log.Warn().
					Str(zerowrap.FieldLayer, "adapter").
					Str(zerowrap.FieldAdapter, "queue").
					Str("message_id", d.msg.ID).
					Str(zerowrap.FieldEntityID, d.msg.EntityID).
					Dur(zerowrap.FieldDuration, now.Sub(d.handedAt)).
					Msg("delivery not settled within visibility timeout, redelivering")
				q.redeliver(d.msg, "visibility-timeout", 0)
			}
		case <-q.ctx.Done():
			return
		}
	}
}

func (q *InMemory) expired(now time.Time) []*delivery {
	q.mu.Lock()
	defer q.mu.Unlock()

	var stale []*delivery
	for token, d := range q.unacked {
		if now.Sub(d.handedAt) >= q.cfg.VisibilityTimeout {
			delete(q.unacked, token)
			stale = append(stale, d)
		}
	}
	return stale
}

// settle removes d from the unacked set. It fails if d was already
// settled or reaped.
func (q *InMemory) settle(d *delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unacked[d.token] != d {
		return ErrAlreadySettled
	}
	delete(q.unacked, d.token)
	return nil
}

// redeliver schedules msg to be handed out again after delay.
func (q *InMemory) redeliver(msg domain.Message, reason string, delay time.Duration) {
	msg.Redelivered++

	if q.metrics != nil {
		q.metrics.RecordRedelivery(context.Background(), msg.Kind, reason)
	}

	requeue := func() {
		if err := q.enqueue(q.ctx, msg); err != nil && !errors.Is(err, ErrStopped) && !errors.Is(err, context.Canceled) {
			q.log.Error().
				Str(zerowrap.FieldLayer, "adapter").
				Str(zerowrap.FieldAdapter, "queue").
				Str("message_id", msg.ID).
				Err(err).
				Msg("failed to requeue message")
		}
	}

	if delay <= 0 {
		go requeue()
		return
	}
	time.AfterFunc(delay, requeue)
}

// redeliveryDelay returns the backoff before the n-th redelivery (n >= 1).
func (q *InMemory) redeliveryDelay(n int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     q.cfg.InitialRedelivery,
		RandomizationFactor: 0,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         q.cfg.MaxRedelivery,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	delay := b.NextBackOff()
	for i := 1; i < n; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

// jittered adds up to fraction*d of random delay to d.
func jittered(d time.Duration, fraction float64) time.Duration {
	spread := int64(float64(d) * fraction)
	if spread <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(spread+1))
}

// delivery is one hand-out of a message.
type delivery struct {
	queue    *InMemory
	msg      domain.Message
	token    uint64
	handedAt time.Time
}

func (d *delivery) Message() domain.Message {
	return d.msg
}

// Ack removes the message from the queue for good.
func (d *delivery) Ack() error {
	return d.queue.settle(d)
}

// Nack schedules the message for redelivery after an exponential backoff.
func (d *delivery) Nack() error {
	if err := d.queue.settle(d); err != nil {
		return err
	}

	delay := jittered(d.queue.redeliveryDelay(d.msg.Redelivered+1), d.queue.cfg.Jitter)
	d.queue.log.Debug().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "queue").
		Str("message_id", d.msg.ID).
		Int("redelivered", d.msg.Redelivered).
		Dur("delay", delay).
		Msg("message nacked, scheduling redelivery")

	d.queue.redeliver(d.msg, "nack", delay)
	return nil
}
