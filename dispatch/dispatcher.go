// Package dispatch demultiplexes the ordered record stream into
// per-subscription-queue buffers.
//
// Queues in the log are interleaved in write order, not in consumption
// order: one handler may need records far ahead of another. The Dispatcher
// pulls records on demand on behalf of whichever queue is being drained,
// buffering records for the other registered queues as they fly past, and
// bounds that read-ahead with a lookahead horizon derived from the status
// queue's time watermark.
package dispatch

import (
	"encoding/json"

	"github.com/arloliu/motan/errs"
	"github.com/arloliu/motan/format"
	"github.com/arloliu/motan/internal/options"
)

// DefaultLookahead is the default read-ahead horizon in seconds. It is tuned
// to the status update cadence of the logging system: one status snapshot
// per second means a queue can lag the watermark by at most one status
// period before its data must have appeared.
const DefaultLookahead = 1.0

// RecordSource yields parsed records in stream order. *stream.Reader
// implements it.
type RecordSource interface {
	Next() (*format.Record, error)
}

// Dispatcher routes records from a single source into per-queue buffers.
//
// The Dispatcher is single-threaded and pull-based: records are only read
// from the source inside Pull, and only as far as the lookahead horizon
// allows.
type Dispatcher struct {
	source       RecordSource
	queues       map[string][]json.RawMessage
	lastReadTime float64
	lookahead    float64
	eof          bool
}

// Option is a functional option for the Dispatcher.
type Option = options.Option[*Dispatcher]

// WithLookahead sets the read-ahead horizon in seconds. Pull gives up on a
// queue once the status watermark passes the requested time plus this
// horizon.
func WithLookahead(seconds float64) Option {
	return options.NoError(func(d *Dispatcher) {
		d.lookahead = seconds
	})
}

// New creates a Dispatcher over the given record source.
//
// The reserved status queue is registered from the start; it both feeds the
// time watermark and retains status records for any consumer draining it.
func New(source RecordSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		source:    source,
		queues:    map[string][]json.RawMessage{format.QueueStatus: nil},
		lookahead: DefaultLookahead,
	}
	_ = options.Apply(d, opts...)

	return d
}

// AddQueue registers a consumer for the given queue id. Records for ids with
// no registered consumer are discarded to bound memory, so AddQueue must be
// called before any record of interest streams past.
func (d *Dispatcher) AddQueue(id string) {
	if _, ok := d.queues[id]; !ok {
		d.queues[id] = nil
	}
}

// Pull returns the next unread record payload for the given queue.
//
// It reads and routes further records from the source until one for this
// queue appears, the source is exhausted, or the status watermark shows that
// no record relevant to reqTime can remain within the lookahead horizon.
// The latter two cases return (nil, nil): data exhaustion is a well-defined
// condition, not an error.
//
// Parameters:
//   - reqTime: Query time the caller is reconstructing, in seconds
//   - id: Queue id previously registered via AddQueue
//
// Returns:
//   - json.RawMessage: Payload of the next record, or nil
//   - error: errs.ErrQueueNotRegistered, or a source read error
func (d *Dispatcher) Pull(reqTime float64, id string) (json.RawMessage, error) {
	if _, ok := d.queues[id]; !ok {
		return nil, errs.Setup(errs.ErrQueueNotRegistered, id)
	}
	for {
		if q := d.queues[id]; len(q) > 0 {
			msg := q[0]
			d.queues[id] = q[1:]

			return msg, nil
		}
		if reqTime+d.lookahead < d.lastReadTime {
			return nil, nil
		}

		rec, err := d.source.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			d.eof = true

			return nil, nil
		}

		mq, ok := d.queues[rec.Queue]
		if !ok {
			continue
		}
		d.queues[rec.Queue] = append(mq, rec.Params)
		if rec.Queue == format.QueueStatus && rec.Toolhead != nil && rec.Toolhead.EstimatedPrintTime != nil {
			d.lastReadTime = *rec.Toolhead.EstimatedPrintTime
		}
	}
}

// EndOfData reports whether the source is exhausted and every buffered queue
// has been drained.
func (d *Dispatcher) EndOfData() bool {
	if !d.eof {
		return false
	}
	for _, q := range d.queues {
		if len(q) > 0 {
			return false
		}
	}

	return true
}
