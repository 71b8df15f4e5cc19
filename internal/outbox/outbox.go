// Package outbox queues mirror operations for background delivery to the
// storefront API. Local store state is committed before an op is enqueued;
// the outbox only replicates it remotely, so a dropped op never rolls back
// anything. Ops drain strictly in FIFO order so the remote store observes
// mutations in the order they happened locally.
package outbox

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/orderhai/storefront-client/pkg/errors"
	"github.com/orderhai/storefront-client/pkg/logger"
	"github.com/orderhai/storefront-client/pkg/metrics"

	"github.com/orderhai/storefront-client/pkg/enums"
)

const (
	defaultMaxAttempts = 5
	defaultBaseBackoff = 200 * time.Millisecond
	maxBackoff         = 10 * time.Second
	jitterWindow       = 50 * time.Millisecond
	submitTimeout      = 15 * time.Second
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))
var jitterMu sync.Mutex

// Op is one pending mirror operation. Ref identifies the domain entity the
// op concerns (a product ID, usually) so drop handlers can name it.
type Op struct {
	ID       uuid.UUID
	Kind     enums.SyncOpKind
	Ref      string
	Submit   func(ctx context.Context) error
	Attempts int
}

// DropFunc observes ops the outbox gives up on, after the final attempt.
type DropFunc func(op Op, err error)

// Options configures a Queue.
type Options struct {
	// StoreName labels logs and metrics ("cart", "favorites").
	StoreName   string
	Logger      *logger.Logger
	Metrics     *metrics.SyncMetrics
	MaxAttempts int
	BaseBackoff time.Duration
	OnDrop      DropFunc
}

// Queue is an in-memory FIFO of pending mirror ops with a single background
// drainer. Enqueue never blocks; delivery is at-least-once while an op is
// pending (retried up to MaxAttempts, then dropped for good).
type Queue struct {
	name        string
	logg        *logger.Logger
	metrics     *metrics.SyncMetrics
	maxAttempts int
	baseBackoff time.Duration
	onDrop      DropFunc

	mu      sync.Mutex
	pending []*Op
	closed  bool

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewQueue builds a queue and starts its drainer.
func NewQueue(opts Options) *Queue {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseBackoff := opts.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:        opts.StoreName,
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		onDrop:      opts.OnDrop,
		wake:        make(chan struct{}, 1),
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go q.drain(ctx)
	return q
}

// Enqueue appends a mirror op. Returns false once the queue is closed.
func (q *Queue) Enqueue(kind enums.SyncOpKind, ref string, submit func(ctx context.Context) error) bool {
	if q == nil || submit == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, &Op{ID: uuid.New(), Kind: kind, Ref: ref, Submit: submit})
	depth := len(q.pending)
	q.mu.Unlock()

	q.metrics.SetQueueDepth(q.name, depth)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Depth reports the number of pending ops.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain blocks until the queue is empty or the context ends. Intended for
// tests and graceful shutdown; normal operation never waits on the outbox.
func (q *Queue) Drain(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		if q.Depth() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops the drainer after the in-flight op finishes. Pending ops are
// discarded; the local store they mirrored remains authoritative.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	<-q.done
}

func (q *Queue) drain(ctx context.Context) {
	defer close(q.done)
	backoff := q.baseBackoff

	for {
		op := q.peek()
		if op == nil {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
			}
			continue
		}

		err := q.submit(ctx, op)
		if err == nil {
			q.pop()
			q.metrics.IncFlushSuccess(q.name, op.Kind.String())
			backoff = q.baseBackoff
			continue
		}

		if ctx.Err() != nil {
			return
		}

		op.Attempts++
		q.metrics.IncFlushFailure(q.name, op.Kind.String())

		if !pkgerrors.Retryable(err) || op.Attempts >= q.maxAttempts {
			q.pop()
			q.dropOp(ctx, op, err)
			backoff = q.baseBackoff
			continue
		}

		q.metrics.IncRetry(q.name, op.Kind.String())
		q.logRetry(ctx, op, err)
		if !q.sleep(ctx, withJitter(backoff)) {
			return
		}
		backoff = nextBackoff(backoff, q.baseBackoff, maxBackoff)
	}
}

func (q *Queue) submit(ctx context.Context, op *Op) error {
	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	return op.Submit(submitCtx)
}

func (q *Queue) peek() *Op {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	return q.pending[0]
}

func (q *Queue) pop() {
	q.mu.Lock()
	if len(q.pending) > 0 {
		q.pending = q.pending[1:]
	}
	depth := len(q.pending)
	q.mu.Unlock()
	q.metrics.SetQueueDepth(q.name, depth)
}

func (q *Queue) dropOp(ctx context.Context, op *Op, err error) {
	q.metrics.IncDropped(q.name, op.Kind.String())
	if q.logg != nil {
		fields := map[string]any{
			"store":    q.name,
			"op_id":    op.ID.String(),
			"op_kind":  op.Kind.String(),
			"op_ref":   op.Ref,
			"attempts": op.Attempts,
		}
		logCtx := q.logg.WithFields(ctx, fields)
		logCtx = q.logg.WithField(logCtx, "error", err.Error())
		q.logg.Warn(logCtx, "mirror op dropped; local state stands, remote may drift")
	}
	if q.onDrop != nil {
		q.onDrop(*op, err)
	}
}

func (q *Queue) logRetry(ctx context.Context, op *Op, err error) {
	if q.logg == nil {
		return
	}
	fields := map[string]any{
		"store":    q.name,
		"op_id":    op.ID.String(),
		"op_kind":  op.Kind.String(),
		"op_ref":   op.Ref,
		"attempts": op.Attempts,
	}
	logCtx := q.logg.WithFields(ctx, fields)
	logCtx = q.logg.WithField(logCtx, "error", err.Error())
	q.logg.Warn(logCtx, "mirror op failed, will retry")
}

func (q *Queue) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitterMu.Lock()
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	jitterMu.Unlock()
	return d + jitter
}
