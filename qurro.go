package qurro

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cameronmartino/qurro/engine"
	"github.com/cameronmartino/qurro/metadata"
	"github.com/cameronmartino/qurro/model"
	"github.com/cameronmartino/qurro/table"
)

// Slot aliases for callers of SubmitQuery and Clear.
const (
	Numerator   = model.SlotNumerator
	Denominator = model.SlotDenominator
)

// Qurro is one interactive log-ratio session: an immutable abundance table
// and metadata index, plus the link controller driving the selection state.
//
// All methods are safe for concurrent use. Events are processed one at a
// time; with WithWorkers, computations run in the background and results
// are reconciled by generation.
type Qurro struct {
	opts options

	tbl  *table.Table
	idx  *metadata.Index
	ctrl *engine.Controller
	pool *engine.WorkerPool

	packets chan model.Packet
	closed  atomic.Bool
}

// New creates a session from the loader's snapshots. Both inputs are
// read-only from here on; the session never mutates or persists them.
func New(tbl *table.Table, idx *metadata.Index, optFns ...Option) (*Qurro, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}
	if idx == nil {
		return nil, ErrNilIndex
	}

	o := applyOptions(optFns)
	q := &Qurro{opts: o, tbl: tbl, idx: idx}
	if o.onPacket == nil {
		q.packets = make(chan model.Packet, o.packetBuffer)
	}

	ctrlOpts := []engine.ControllerOption{
		engine.WithControllerLogger(o.logger.Logger),
		engine.WithDiscardHook(func(gen model.Generation) {
			o.metricsCollector.RecordDiscard(gen)
		}),
	}
	if o.workers > 0 {
		q.pool = engine.NewWorkerPool(o.workers)
		ctrlOpts = append(ctrlOpts, engine.WithWorkerPool(q.pool))
	}
	q.ctrl = engine.NewController(idx, tbl, q.emit, ctrlOpts...)

	// Features carrying metadata but no abundance row sum to zero when
	// selected; flag them once at startup.
	missing := 0
	for _, id := range idx.IDs() {
		if _, ok := tbl.FeatureOrdinal(id); !ok {
			missing++
		}
	}
	if missing > 0 {
		o.logger.Warn("features in metadata index without abundance rows",
			"count", missing,
		)
	}

	return q, nil
}

// emit forwards a packet to the configured sink. With the channel sink, the
// oldest buffered packet is dropped when the subscriber falls behind; the
// newest packet always gets through.
func (q *Qurro) emit(pkt model.Packet) {
	q.opts.logger.LogPacket(pkt)
	if q.opts.onPacket != nil {
		q.opts.onPacket(pkt)
		return
	}
	for {
		select {
		case q.packets <- pkt:
			return
		default:
			select {
			case <-q.packets:
			default:
			}
		}
	}
}

// Packets returns the output packet stream, or nil when WithOnPacket is
// configured. The channel is closed by Close.
func (q *Qurro) Packets() <-chan model.Packet {
	return q.packets
}

// ClickFeature handles a feature click in the rank display. The first empty
// slot receives {id}; with both slots set, the click replaces the
// denominator and the numerator stays sticky.
func (q *Qurro) ClickFeature(ctx context.Context, id model.FeatureID) error {
	if q.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	err := translateError(q.ctrl.ClickFeature(ctx, id))
	q.opts.metricsCollector.RecordClick(time.Since(start), err)
	q.opts.logger.LogClick(id, err)
	return err
}

// SubmitQuery replaces one slot's feature group with the features matching
// a textual query. On failure the slot is left untouched, the session moves
// to Error (retaining the prior Ready result for display), and the error is
// returned.
func (q *Qurro) SubmitQuery(ctx context.Context, query string, slot model.Slot) error {
	if q.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	err := translateError(q.ctrl.SubmitQuery(ctx, query, slot))
	q.opts.metricsCollector.RecordQuery(slot, time.Since(start), err)
	q.opts.logger.LogQuery(slot, query, err)
	return err
}

// Clear empties one selection slot, moving the session to Idle. The emitted
// packet carries no per-sample ratios.
func (q *Qurro) Clear(slot model.Slot) error {
	if q.closed.Load() {
		return ErrClosed
	}
	err := translateError(q.ctrl.Clear(slot))
	if err == nil {
		q.opts.metricsCollector.RecordClear(slot)
	}
	return err
}

// State returns the session's current state.
func (q *Qurro) State() model.State { return q.ctrl.State() }

// Generation returns the last assigned generation.
func (q *Qurro) Generation() model.Generation { return q.ctrl.Generation() }

// Selection returns the feature ids currently in a slot, in rank-display
// (index) order.
func (q *Qurro) Selection(slot model.Slot) []model.FeatureID {
	return q.ctrl.Selection(slot)
}

// Query returns the query text a slot's group was derived from, or "" for
// click-derived and empty slots.
func (q *Qurro) Query(slot model.Slot) string { return q.ctrl.Query(slot) }

// MarshalPacket encodes a packet with the session's codec, for hosts that
// ship packets to an out-of-process renderer.
func (q *Qurro) MarshalPacket(pkt model.Packet) ([]byte, error) {
	return q.opts.codec.Marshal(pkt)
}

// Close stops background workers and closes the Packets channel. Callers
// must stop submitting events first; events after Close return ErrClosed.
func (q *Qurro) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	if q.pool != nil {
		q.pool.Close()
	}
	if q.packets != nil {
		close(q.packets)
	}
	return nil
}
