package telemetry

import (
	"sync"

	"github.com/verte-zerg/runlog/internal/model"
)

// Appender accepts telemetry rows.
type Appender interface {
	Append(row model.TelemetryRow) error
}

// Queue hands rows to a single background goroutine so Append never blocks
// on disk. Rows reach the wrapped Appender in call order.
type Queue struct {
	next  Appender
	onErr func(error)

	mu     sync.Mutex
	closed bool
	rows   chan model.TelemetryRow
	done   chan struct{}
}

const queueSize = 64

// NewQueue starts the writer goroutine. onErr receives write failures and
// may be nil.
func NewQueue(next Appender, onErr func(error)) *Queue {
	q := &Queue{
		next:  next,
		onErr: onErr,
		rows:  make(chan model.TelemetryRow, queueSize),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for row := range q.rows {
		if err := q.next.Append(row); err != nil && q.onErr != nil {
			q.onErr(err)
		}
	}
}

// Append enqueues row. It returns ErrQueueClosed after Close.
func (q *Queue) Append(row model.TelemetryRow) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.rows <- row
	return nil
}

// Close stops accepting rows and waits for pending ones to be written.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.rows)
	}
	q.mu.Unlock()
	<-q.done
	return nil
}
