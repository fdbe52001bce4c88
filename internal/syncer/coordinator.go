package syncer

import (
	"context"
	"sync"

	"github.com/JBBSoftech/watter/internal/configstore"
	"github.com/JBBSoftech/watter/internal/models"
	"github.com/JBBSoftech/watter/internal/util"

	"go.uber.org/zap"
)

// ConfigFetcher pulls the full configuration document for the tenant.
type ConfigFetcher interface {
	Fetch(ctx context.Context) (models.ConfigDocument, error)
}

// Coordinator reconciles fetches and realtime events into a single consistent
// config store. It never touches session-local state. Every fetch or channel
// failure is downgraded to "retain last good document, surface the error".
//
// Refetches are coalesced: at most one is in flight, and trigger events
// arriving meanwhile collapse into a single follow-up refetch. A generation
// assigned at initiation guards against an older refetch overwriting a newer
// one when network completion order reorders them; this is bounded staleness,
// not strict initiation-order delivery.
type Coordinator struct {
	fetcher ConfigFetcher
	store   *configstore.Store
	logger  *zap.Logger

	mu           sync.Mutex
	ctx          context.Context
	inFlight     bool
	pending      bool
	nextGen      uint64
	committedGen uint64
	coalesced    uint64
}

// New creates a coordinator over the given fetcher and store.
func New(fetcher ConfigFetcher, store *configstore.Store) *Coordinator {
	return &Coordinator{
		fetcher: fetcher,
		store:   store,
		logger:  util.GetLogger(),
		ctx:     context.Background(),
	}
}

// Bootstrap performs the initial load. On failure the store keeps no document
// and records the error so the UI shows an explicit empty/error state; the
// error is also returned for logging.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.nextGen++
	gen := c.nextGen
	c.mu.Unlock()

	doc, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.store.SetError(err)
		c.logger.Error("Initial config fetch failed", zap.Error(err))
		return err
	}
	if gen > c.committedGen {
		c.committedGen = gen
		c.store.Replace(doc)
	}
	c.logger.Info("Initial configuration loaded",
		zap.Int("pages", len(doc.Pages)))
	return nil
}

// HandleEvent processes one realtime event. Kinds in the refetch allow-list
// trigger a full refetch; everything else is ignored.
func (c *Coordinator) HandleEvent(event models.RealtimeEvent) {
	if !models.TriggersRefetch(event.Kind) {
		return
	}

	util.RefetchTriggersTotal.WithLabelValues(event.Kind).Inc()
	c.logger.Info("Configuration change signalled", zap.String("kind", event.Kind))
	c.triggerRefetch()
}

// Refetch forces a configuration refetch, subject to the same coalescing as
// event-triggered refetches.
func (c *Coordinator) Refetch() {
	c.triggerRefetch()
}

// Generation returns the generation of the most recently committed document.
func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committedGen
}

// InFlight reports whether a refetch is currently running.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Coalesced returns how many refetch triggers collapsed into an already
// running refetch.
func (c *Coordinator) Coalesced() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coalesced
}

func (c *Coordinator) triggerRefetch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		c.pending = true
		c.coalesced++
		util.RefetchesCoalescedTotal.Inc()
		return
	}

	c.startRefetchLocked()
}

func (c *Coordinator) startRefetchLocked() {
	c.inFlight = true
	c.nextGen++
	go c.runRefetch(c.ctx, c.nextGen)
}

func (c *Coordinator) runRefetch(ctx context.Context, gen uint64) {
	ctx, span := util.StartSpan(ctx, "Coordinator.Refetch")
	defer span.End()

	doc, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.store.SetError(err)
		c.logger.Warn("Config refetch failed, retaining previous document",
			zap.Uint64("generation", gen),
			zap.Error(err))
	} else if gen > c.committedGen {
		c.committedGen = gen
		c.store.Replace(doc)
		c.logger.Info("Configuration replaced",
			zap.Uint64("generation", gen),
			zap.Int("pages", len(doc.Pages)))
	} else {
		c.logger.Warn("Discarding stale refetch result",
			zap.Uint64("generation", gen),
			zap.Uint64("committed", c.committedGen))
	}

	c.inFlight = false
	if c.pending {
		c.pending = false
		c.startRefetchLocked()
	}
}
