package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"fx-dashboard/src/cursor"
	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
	"fx-dashboard/src/series"
	"fx-dashboard/src/utils"
)

// Activation lifecycle states. Filtered is reported separately.
const (
	StateLoading    = "LOADING"
	StateReady      = "READY"
	StateRefreshing = "REFRESHING"
)

type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrevious
)

var (
	ErrControllerStopped = errors.New("sync controller is not running")
	ErrAlreadyRunning    = errors.New("sync controller already running")
)

// commandQueueSize bounds commands waiting for the loop
const commandQueueSize = 64

// -----------------------------------------------------------------------------
// SyncController keeps the active series in step with the backend.
//
// All mutable state (cursor, buffer, generation, filter, state) is owned by
// the Run loop. Public methods enqueue commands; gateway calls run on their
// own goroutines and post their results back to the loop tagged with the
// generation that issued them. A result whose generation is no longer current
// is dropped without touching the buffer or the renderer.
// -----------------------------------------------------------------------------

type SyncController struct {
	gateway  interfaces.IGateway
	renderer interfaces.IRenderer
	logger   *logger.Logger
	location *time.Location

	instruments []string
	cmds        chan func()
	done        chan struct{}
	started     atomic.Bool
	running     atomic.Bool
	ctx         context.Context

	// loop-owned
	cursor         *cursor.InstrumentCursor
	buffer         *series.Buffer
	generation     uint64
	state          string
	filter         *models.MDateRange
	inFlight       int
	inflightTicks  int
	historyPending bool
	heldTicks      []models.MSamplePoint
}

type Options struct {
	Instruments    []string
	BufferCapacity int
	Location       *time.Location
}

// -----------------------------------------------------------------------------

func NewSyncController(gateway interfaces.IGateway, renderer interfaces.IRenderer, opts Options, log *logger.Logger) (*SyncController, error) {
	cur, err := cursor.NewInstrumentCursor(opts.Instruments)
	if err != nil {
		return nil, err
	}

	capacity := opts.BufferCapacity
	if capacity <= 0 {
		capacity = utils.DefaultBufferCapacity
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	buffer := series.NewBuffer(capacity)
	buffer.Reset(cur.Current())

	return &SyncController{
		gateway:     gateway,
		renderer:    renderer,
		logger:      log,
		location:    loc,
		instruments: cur.Instruments(),
		cmds:        make(chan func(), commandQueueSize),
		done:        make(chan struct{}),
		cursor:      cur,
		buffer:      buffer,
		state:       StateLoading,
	}, nil
}

// -----------------------------------------------------------------------------

// Run activates the current instrument and processes commands until ctx is
// cancelled. It may only be called once.
func (c *SyncController) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	c.ctx = ctx
	c.running.Store(true)
	defer func() {
		c.running.Store(false)
		close(c.done)
	}()

	c.logger.Info("Sync controller started on %s (%d instruments)", c.cursor.Current(), len(c.instruments))
	c.activate(c.cursor.Current())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Sync controller stopped")
			return nil
		case cmd := <-c.cmds:
			cmd()
		}
	}
}

// Running reports whether the loop is processing commands.
func (c *SyncController) Running() bool {
	return c.running.Load()
}

// Instruments returns the configured instrument set in order.
func (c *SyncController) Instruments() []string {
	return slices.Clone(c.instruments)
}

// -----------------------------------------------------------------------------
// Public operations
// -----------------------------------------------------------------------------

// Activate makes instrument the active one and reloads it from scratch.
func (c *SyncController) Activate(instrument string) error {
	if !slices.Contains(c.instruments, instrument) {
		return fmt.Errorf("%w: %s", helpers.ErrUnknownInstrument, instrument)
	}
	return c.post(func() {
		if err := c.cursor.Select(instrument); err != nil {
			c.logger.Error("Activate %s: %v", instrument, err)
			return
		}
		c.activate(instrument)
	})
}

// PeriodicTick samples the instrument that is active when the tick is handled.
func (c *SyncController) PeriodicTick() error {
	return c.post(c.tick)
}

// ApplyFilter reloads the active instrument restricted to dateRange.
func (c *SyncController) ApplyFilter(dateRange models.MDateRange) error {
	return c.post(func() { c.applyFilter(dateRange) })
}

// ClearFilter re-activates the active instrument without a range.
func (c *SyncController) ClearFilter() error {
	return c.post(func() { c.activate(c.cursor.Current()) })
}

// SwitchInstrument moves the cursor and activates the result. Any filter is
// dropped: a switch always shows the default window.
func (c *SyncController) SwitchInstrument(direction Direction) error {
	return c.post(func() {
		var next string
		if direction == DirectionPrevious {
			next = c.cursor.Previous()
		} else {
			next = c.cursor.Next()
		}
		c.activate(next)
	})
}

// DeleteRange deletes persisted points of instrument inside dateRange, then
// reloads the range so the view shows what the store kept. At least one bound
// is required; otherwise nothing is sent.
func (c *SyncController) DeleteRange(instrument string, dateRange models.MDateRange) error {
	if dateRange.IsEmpty() {
		return helpers.NewInvalidRange("select at least one date to delete")
	}
	if !slices.Contains(c.instruments, instrument) {
		return fmt.Errorf("%w: %s", helpers.ErrUnknownInstrument, instrument)
	}
	return c.post(func() { c.deleteRange(instrument, dateRange) })
}

// -----------------------------------------------------------------------------

// Status returns a consistent view of the loop-owned state.
func (c *SyncController) Status(ctx context.Context) (models.MDashboardStatus, error) {
	reply := make(chan models.MDashboardStatus, 1)
	err := c.postCtx(ctx, func() {
		var filter *models.MDateRange
		if c.filter != nil {
			f := *c.filter
			filter = &f
		}
		reply <- models.MDashboardStatus{
			Instrument:  c.buffer.Instrument(),
			Instruments: c.cursor.Instruments(),
			Generation:  c.generation,
			State:       c.state,
			Filter:      filter,
			InFlight:    c.inFlight,
			Points:      c.buffer.Snapshot(),
		}
	})
	if err != nil {
		return models.MDashboardStatus{}, err
	}

	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return models.MDashboardStatus{}, ctx.Err()
	case <-c.done:
		return models.MDashboardStatus{}, ErrControllerStopped
	}
}

// -----------------------------------------------------------------------------
// Loop plumbing
// -----------------------------------------------------------------------------

func (c *SyncController) post(cmd func()) error {
	return c.postCtx(context.Background(), cmd)
}

func (c *SyncController) postCtx(ctx context.Context, cmd func()) error {
	select {
	case <-c.done:
		return ErrControllerStopped
	default:
	}

	select {
	case c.cmds <- cmd:
		return nil
	case <-c.done:
		return ErrControllerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// spawn runs work off the loop and applies its result on the loop.
func (c *SyncController) spawn(work func(ctx context.Context) func()) {
	c.inFlight++
	ctx := c.ctx
	go func() {
		apply := work(ctx)
		_ = c.post(func() {
			c.inFlight--
			apply()
		})
	}()
}

// -----------------------------------------------------------------------------
// Loop-side handlers
// -----------------------------------------------------------------------------

func (c *SyncController) begin(instrument string, filter *models.MDateRange) uint64 {
	c.generation++
	c.buffer.Reset(instrument)
	c.filter = filter
	c.state = StateLoading
	c.inflightTicks = 0
	c.historyPending = true
	c.heldTicks = nil

	c.logger.Debug("Generation %d: loading %s (filtered=%t)", c.generation, instrument, filter != nil)
	c.emit(models.FrameReset, 0)
	return c.generation
}

// -----------------------------------------------------------------------------

func (c *SyncController) activate(instrument string) {
	gen := c.begin(instrument, nil)

	c.spawn(func(ctx context.Context) func() {
		points, err := c.gateway.FetchHistory(ctx, instrument, nil)
		return func() { c.onActivateHistory(gen, instrument, points, err) }
	})
}

func (c *SyncController) onActivateHistory(gen uint64, instrument string, points []models.MSamplePoint, err error) {
	if gen != c.generation {
		c.logger.Debug("Dropping stale history for %s (generation %d, current %d)", instrument, gen, c.generation)
		return
	}
	if err != nil {
		// history is best effort; the fresh sample may still give the user a point
		c.logger.Warning("History for %s unavailable: %v", instrument, err)
	}

	c.appendHistory(points)

	c.spawn(func(ctx context.Context) func() {
		point, err := c.gateway.FetchAndPersistFreshSample(ctx, instrument)
		return func() { c.onActivateSample(gen, instrument, point, err) }
	})
}

func (c *SyncController) onActivateSample(gen uint64, instrument string, point *models.MSamplePoint, err error) {
	if gen != c.generation {
		c.logger.Debug("Dropping stale sample for %s (generation %d, current %d)", instrument, gen, c.generation)
		return
	}

	c.state = c.settledState()
	switch {
	case err != nil:
		c.logger.Warning("Fresh sample for %s unavailable: %v", instrument, err)
		c.emit(models.FrameAppend, 0)
	case point == nil:
		c.emit(models.FrameAppend, 0)
	default:
		c.buffer.AppendOne(*point)
		c.emit(models.FrameAppend, 1)
	}
}

// -----------------------------------------------------------------------------

func (c *SyncController) applyFilter(dateRange models.MDateRange) {
	var filter *models.MDateRange
	if !dateRange.IsEmpty() {
		f := dateRange
		filter = &f
	}

	instrument := c.cursor.Current()
	gen := c.begin(instrument, filter)

	c.spawn(func(ctx context.Context) func() {
		points, err := c.gateway.FetchHistory(ctx, instrument, &dateRange)
		return func() { c.onFilterHistory(gen, instrument, points, err) }
	})
}

func (c *SyncController) onFilterHistory(gen uint64, instrument string, points []models.MSamplePoint, err error) {
	if gen != c.generation {
		c.logger.Debug("Dropping stale filtered history for %s (generation %d, current %d)", instrument, gen, c.generation)
		return
	}
	if err != nil {
		c.logger.Warning("Filtered history for %s unavailable: %v", instrument, err)
	}

	c.state = c.settledState()
	c.appendHistory(points)
}

// -----------------------------------------------------------------------------

func (c *SyncController) tick() {
	// instrument and generation are read when the tick is handled, not captured earlier
	instrument := c.buffer.Instrument()
	gen := c.generation

	c.inflightTicks++
	if c.state == StateReady {
		c.state = StateRefreshing
	}

	c.spawn(func(ctx context.Context) func() {
		point, err := c.gateway.FetchAndPersistFreshSample(ctx, instrument)
		return func() { c.onTick(gen, instrument, point, err) }
	})
}

func (c *SyncController) onTick(gen uint64, instrument string, point *models.MSamplePoint, err error) {
	if gen != c.generation {
		c.logger.Debug("Dropping stale tick for %s (generation %d, current %d)", instrument, gen, c.generation)
		return
	}

	c.inflightTicks--
	if c.inflightTicks == 0 && c.state == StateRefreshing {
		c.state = StateReady
	}

	if err != nil {
		c.logger.Warning("Periodic sample for %s unavailable: %v", instrument, err)
		return
	}
	if point == nil {
		return
	}

	if c.historyPending {
		// keep arrival order behind the history batch
		c.heldTicks = append(c.heldTicks, *point)
		return
	}

	c.buffer.AppendOne(*point)
	c.emit(models.FrameAppend, 1)
}

// -----------------------------------------------------------------------------

func (c *SyncController) deleteRange(instrument string, dateRange models.MDateRange) {
	gen := c.generation

	c.spawn(func(ctx context.Context) func() {
		err := c.gateway.DeleteRange(ctx, instrument, dateRange)
		return func() {
			if err != nil {
				c.logger.Warning("Delete of %s range failed: %v", instrument, err)
			} else {
				c.logger.Info("Delete of %s range acknowledged", instrument)
			}

			if gen != c.generation || instrument != c.cursor.Current() {
				c.logger.Debug("View changed since delete of %s was issued; not re-querying", instrument)
				return
			}
			c.applyFilter(dateRange)
		}
	})
}

// -----------------------------------------------------------------------------

func (c *SyncController) appendHistory(points []models.MSamplePoint) {
	c.buffer.AppendMany(points)
	c.buffer.AppendMany(c.heldTicks)
	c.heldTicks = nil
	c.historyPending = false
	c.emit(models.FrameReset, 0)
}

func (c *SyncController) settledState() string {
	if c.inflightTicks > 0 {
		return StateRefreshing
	}
	return StateReady
}

// -----------------------------------------------------------------------------

func (c *SyncController) emit(frameType string, appended int) {
	if c.renderer == nil {
		return
	}

	snapshot := c.buffer.Snapshot()
	points := make([]models.MLabeledPoint, len(snapshot))
	for i, p := range snapshot {
		points[i] = models.MLabeledPoint{Label: utils.LocalLabel(p.TimestampUTC, c.location), Value: p.Value}
	}

	var notice string
	if len(snapshot) == 0 && c.state != StateLoading {
		notice = "No data for " + c.buffer.Instrument()
	}

	c.renderer.Render(models.MDashboardFrame{
		Type:       frameType,
		Instrument: c.buffer.Instrument(),
		Generation: c.generation,
		State:      c.state,
		Filtered:   c.filter != nil,
		Notice:     notice,
		Points:     points,
		Appended:   appended,
		Timestamp:  time.Now().UnixMilli(),
	})
}
