// Package notify queues outbound chat messages and delivers them from a
// single consumer loop, so slow delivery never holds up command handling.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

// DefaultInterval is how long the consumer sleeps when the queue is empty.
const DefaultInterval = 5 * time.Second

// Sender delivers one message to a destination (a chat channel).
type Sender interface {
	Send(ctx context.Context, destination, text string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, destination, text string) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, destination, text string) error {
	return f(ctx, destination, text)
}

// Message is a queued outbound message.
type Message struct {
	Destination string
	Text        string
}

// Notifier is a FIFO outbound queue with one consumer.
type Notifier struct {
	sender   Sender
	interval time.Duration
	clock    clock.Clock
	log      logr.Logger

	mu      sync.Mutex
	queue   []Message
	running bool
	stop    chan struct{}
	done    chan struct{}
	err     error

	// wake nudges a sleeping consumer; buffered so Enqueue never blocks.
	wake chan struct{}
	// deliver serializes the consumer loop and Drain.
	deliver sync.Mutex
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithInterval sets the empty-queue sleep.
func WithInterval(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.interval = d
		}
	}
}

// WithClock sets the clock the idle consumer sleeps on.
func WithClock(c clock.Clock) Option {
	return func(n *Notifier) {
		n.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(n *Notifier) {
		n.log = l
	}
}

// New returns a stopped Notifier delivering through sender.
func New(sender Sender, opts ...Option) *Notifier {
	n := &Notifier{
		sender:   sender,
		interval: DefaultInterval,
		clock:    clock.RealClock{},
		log:      logr.Discard(),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enqueue appends a message to the tail of the queue.
func (n *Notifier) Enqueue(destination, text string) {
	n.mu.Lock()
	n.queue = append(n.queue, Message{Destination: destination, Text: text})
	depth := len(n.queue)
	n.mu.Unlock()

	queueDepth.Set(float64(depth))

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Progress returns a callback that enqueues each text for destination.
func (n *Notifier) Progress(destination string) func(string) {
	return func(text string) {
		n.Enqueue(destination, text)
	}
}

// Len returns the number of queued messages.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Running reports whether the consumer loop is active.
func (n *Notifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// Err returns the delivery error that ended the last consumer loop.
func (n *Notifier) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Start launches the consumer loop. Anything queued before Start is
// discarded. Calling Start while running does nothing.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return
	}
	n.queue = nil
	n.err = nil
	n.running = true
	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	queueDepth.Set(0)

	go n.loop(ctx, n.stop, n.done)
}

// Stop asks the consumer loop to exit and waits until it has.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if !n.running {
		done := n.done
		n.mu.Unlock()
		if done != nil {
			<-done
		}
		return
	}
	n.running = false
	close(n.stop)
	done := n.done
	n.mu.Unlock()

	<-done
}

// Drain delivers everything currently queued once. It returns the first
// delivery error; messages after it stay queued.
func (n *Notifier) Drain(ctx context.Context) error {
	n.deliver.Lock()
	defer n.deliver.Unlock()
	return n.drain(ctx, nil)
}

func (n *Notifier) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	defer func() {
		n.mu.Lock()
		n.running = false
		n.mu.Unlock()
	}()

	timer := n.clock.NewTimer(n.interval)
	defer timer.Stop()

	for {
		if n.Len() == 0 {
			if !timer.Stop() {
				select {
				case <-timer.C():
				default:
				}
			}
			timer.Reset(n.interval)

			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-n.wake:
			case <-timer.C():
			}
			continue
		}

		n.deliver.Lock()
		err := n.drain(ctx, stop)
		n.deliver.Unlock()

		if err != nil {
			if errors.Is(err, errStopped) || ctx.Err() != nil {
				return
			}
			n.log.Error(err, "outbound delivery failed, notifier stopped")
			n.mu.Lock()
			n.err = err
			n.mu.Unlock()
			return
		}
	}
}

var errStopped = errors.New("notifier stopped")

// drain pops and sends messages until the queue is empty.
func (n *Notifier) drain(ctx context.Context, stop chan struct{}) error {
	for {
		if stop != nil {
			select {
			case <-stop:
				return errStopped
			default:
			}
		}

		n.mu.Lock()
		if len(n.queue) == 0 {
			n.mu.Unlock()
			queueDepth.Set(0)
			return nil
		}
		msg := n.queue[0]
		n.queue = n.queue[1:]
		depth := len(n.queue)
		n.mu.Unlock()
		queueDepth.Set(float64(depth))

		if err := n.sender.Send(ctx, msg.Destination, msg.Text); err != nil {
			recordDeliveryMetric(resultError)
			return fmt.Errorf("failed to deliver message to %s: %w", msg.Destination, err)
		}
		recordDeliveryMetric(resultSuccess)
		n.log.V(1).Info("message delivered", "destination", msg.Destination)
	}
}
