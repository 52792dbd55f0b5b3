package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cameronmartino/qurro/metadata"
	"github.com/cameronmartino/qurro/model"
	"github.com/cameronmartino/qurro/table"
)

// PacketFunc receives output packets. It is invoked synchronously with the
// controller's internal lock held, so it must be fast and must not call back
// into the controller; hand the packet off to a channel or queue instead.
type PacketFunc func(model.Packet)

// computeFunc matches Compute; the controller keeps it swappable for tests.
type computeFunc func(context.Context, *roaring.Bitmap, *roaring.Bitmap, *metadata.Index, *table.Table) (*model.Result, error)

// selection is one slot's feature group: an explicit id set from clicks, or
// a query-derived set remembering its source text.
type selection struct {
	set   *roaring.Bitmap
	query string
}

func (s selection) empty() bool { return s.set == nil || s.set.IsEmpty() }

// Controller is the state machine linking user selections to log-ratio
// output. It is the single writer of the selection state; events may arrive
// from any goroutine.
type Controller struct {
	idx  *metadata.Index
	tbl  *table.Table
	emit PacketFunc

	pool      *WorkerPool
	logger    *slog.Logger
	onDiscard func(model.Generation)
	compute   computeFunc

	mu      sync.Mutex
	state   model.State
	gen     model.Generation // last assigned generation
	applied model.Generation // highest generation applied to output
	num     selection
	den     selection

	// Retained Ready result, displayed alongside an error indicator while
	// the controller is in StateError.
	readyRatios   map[model.SampleID]model.Ratio
	readyExcluded int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the structured logger. Defaults to slog.Default.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkerPool offloads computations to pool instead of running them
// inline on the event goroutine. The controller does not own the pool.
func WithWorkerPool(pool *WorkerPool) ControllerOption {
	return func(c *Controller) { c.pool = pool }
}

// WithDiscardHook registers a callback invoked (with the lock held) whenever
// a superseded computation result is discarded.
func WithDiscardHook(fn func(model.Generation)) ControllerOption {
	return func(c *Controller) { c.onDiscard = fn }
}

// NewController creates a controller in the Idle state with both slots
// empty. emit receives a packet on every transition into Ready or Error,
// and on Clear (an Idle packet carrying no per-sample ratios).
func NewController(idx *metadata.Index, tbl *table.Table, emit PacketFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		idx:     idx,
		tbl:     tbl,
		emit:    emit,
		logger:  slog.Default(),
		compute: Compute,
		state:   model.StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClickFeature handles a feature click: the first empty slot is filled with
// {id}; if both slots are already set, the click replaces the denominator,
// leaving the numerator sticky.
func (c *Controller) ClickFeature(ctx context.Context, id model.FeatureID) error {
	ord, ok := c.idx.Ordinal(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}

	c.mu.Lock()
	set := roaring.BitmapOf(uint32(ord))
	switch {
	case c.num.empty():
		c.num = selection{set: set}
	case c.den.empty():
		c.den = selection{set: set}
	default:
		c.den = selection{set: set}
	}
	gen := c.bumpLocked()
	num, den, launch := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("feature clicked", "feature", id, "generation", gen)
	if !launch {
		return nil
	}
	return c.launch(ctx, gen, num, den)
}

// SubmitQuery evaluates a query and replaces the slot's group with the
// matching feature set. Failures (syntax, unknown field, empty match) leave
// the slot untouched, move the controller to Error, and are returned to the
// caller; the prior Ready result is retained in the error packet.
func (c *Controller) SubmitQuery(ctx context.Context, text string, slot model.Slot) error {
	if slot != model.SlotNumerator && slot != model.SlotDenominator {
		return fmt.Errorf("unknown slot %v", slot)
	}

	set, err := c.idx.Evaluate(text)
	if err == nil && set.IsEmpty() {
		err = &GroupEmptyError{Slot: slot}
	}
	if err != nil {
		c.mu.Lock()
		c.state = model.StateError
		pkt := c.packetLocked(model.StateError, c.gen, c.num.set, c.den.set, err.Error())
		c.emitLocked(pkt)
		c.mu.Unlock()
		c.logger.Warn("query rejected", "slot", slot, "error", err)
		return err
	}

	c.mu.Lock()
	if slot == model.SlotNumerator {
		c.num = selection{set: set, query: text}
	} else {
		c.den = selection{set: set, query: text}
	}
	gen := c.bumpLocked()
	num, den, launch := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("query applied", "slot", slot, "matches", set.GetCardinality(), "generation", gen)
	if !launch {
		return nil
	}
	return c.launch(ctx, gen, num, den)
}

// Clear empties one slot and moves the controller to Idle. The emitted Idle
// packet carries the remaining selection and no per-sample ratios.
func (c *Controller) Clear(slot model.Slot) error {
	if slot != model.SlotNumerator && slot != model.SlotDenominator {
		return fmt.Errorf("unknown slot %v", slot)
	}

	c.mu.Lock()
	if slot == model.SlotNumerator {
		c.num = selection{}
	} else {
		c.den = selection{}
	}
	gen := c.bumpLocked()
	// Fence off any in-flight computation for the old selection.
	c.applied = gen
	c.state = model.StateIdle
	c.readyRatios = nil
	c.readyExcluded = 0
	pkt := c.packetLocked(model.StateIdle, gen, c.num.set, c.den.set, "")
	c.emitLocked(pkt)
	c.mu.Unlock()

	c.logger.Debug("slot cleared", "slot", slot, "generation", gen)
	return nil
}

// State returns the controller's current state.
func (c *Controller) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the last assigned generation.
func (c *Controller) Generation() model.Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Selection returns the feature ids currently in a slot, in index order.
func (c *Controller) Selection(slot model.Slot) []model.FeatureID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot == model.SlotNumerator {
		return c.featureIDs(c.num.set)
	}
	return c.featureIDs(c.den.set)
}

// Query returns the query text a slot's group was derived from, or "" for
// click-derived and empty slots.
func (c *Controller) Query(slot model.Slot) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot == model.SlotNumerator {
		return c.num.query
	}
	return c.den.query
}

// bumpLocked assigns the next generation. Generations strictly increase and
// are never reused.
func (c *Controller) bumpLocked() model.Generation {
	c.gen++
	return c.gen
}

// snapshotLocked clones both slots for a computation. launch is false when
// either slot is empty, in which case the controller stays (or becomes) Idle.
func (c *Controller) snapshotLocked() (num, den *roaring.Bitmap, launch bool) {
	if c.num.empty() || c.den.empty() {
		c.state = model.StateIdle
		return nil, nil, false
	}
	return c.num.set.Clone(), c.den.set.Clone(), true
}

// launch runs one generation-tagged computation, inline or on the pool.
func (c *Controller) launch(ctx context.Context, gen model.Generation, num, den *roaring.Bitmap) error {
	run := func() {
		res, err := c.compute(ctx, num, den, c.idx, c.tbl)
		c.applyResult(gen, num, den, res, err)
	}
	if c.pool == nil {
		run()
		return nil
	}
	if err := c.pool.Submit(ctx, run); err != nil {
		c.logger.Warn("computation not scheduled", "generation", gen, "error", err)
		return err
	}
	return nil
}

// applyResult applies one computation outcome under the generation rule:
// last-writer-by-generation wins, regardless of completion order.
func (c *Controller) applyResult(gen model.Generation, num, den *roaring.Bitmap, res *model.Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.applied {
		c.logger.Debug("superseded result discarded", "generation", gen, "applied", c.applied)
		if c.onDiscard != nil {
			c.onDiscard(gen)
		}
		return
	}

	if err != nil {
		var ge *GroupEmptyError
		if errors.As(err, &ge) {
			// Defensive: launch never dispatches an empty side. No stale
			// packet; the selection offers nothing to display.
			c.applied = gen
			c.state = model.StateIdle
			return
		}
		// Advisory cancellation: the result is simply never applied.
		c.logger.Debug("computation abandoned", "generation", gen, "error", err)
		return
	}

	c.applied = gen
	c.state = model.StateReady
	c.readyRatios = res.Samples
	c.readyExcluded = res.ExcludedCount

	pkt := c.packetLocked(model.StateReady, gen, num, den, "")
	c.emitLocked(pkt)
}

// packetLocked assembles an output packet for the given selection snapshot.
// Ready and Error packets carry the retained per-sample ratios; Idle packets
// carry none.
func (c *Controller) packetLocked(state model.State, gen model.Generation, num, den *roaring.Bitmap, detail string) model.Packet {
	pkt := model.Packet{
		Generation:            gen,
		State:                 state,
		NumeratorFeatureIDs:   c.featureIDs(num),
		DenominatorFeatureIDs: c.featureIDs(den),
		ErrorDetail:           detail,
	}
	if state != model.StateIdle {
		pkt.PerSampleLogRatio = c.readyRatios
		pkt.ExcludedSampleCount = c.readyExcluded
	}
	return pkt
}

func (c *Controller) emitLocked(pkt model.Packet) {
	if c.emit != nil {
		c.emit(pkt)
	}
}

// featureIDs resolves a bitmap of ordinals to feature ids in index order.
func (c *Controller) featureIDs(bm *roaring.Bitmap) []model.FeatureID {
	if bm == nil {
		return []model.FeatureID{}
	}
	ids := make([]model.FeatureID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		if id, ok := c.idx.ID(model.Ordinal(it.Next())); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
