// Package eventbus receives raw interaction events from registered
// views, resolves them into selection state, and fans the result out
// to every adapter sharing the group. Events for one group are applied
// strictly in emission order by a single dispatcher; groups are fully
// independent of each other.
package eventbus

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"brushlink/internal/adapter"
	"brushlink/internal/domain"
	"brushlink/internal/logging"
	"brushlink/internal/registry"
	"brushlink/internal/resolver"
	"brushlink/internal/store"
)

// Re-export domain types for convenience
type SelectionEvent = domain.SelectionEvent
type EventKind = domain.EventKind

// Config carries the bus's tunables. Zero values select defaults.
type Config struct {
	// QueueSize is the per-group event queue depth.
	QueueSize int
	// ClearOn lists the event kinds that act as a group's "off"
	// trigger. Defaults to unhover and relayout.
	ClearOn []domain.EventKind
	// PaletteColors overrides the default layer color cycle.
	PaletteColors []string
	// SlowRenderWarn is the soft render timeout: a render exceeding
	// it is logged but never aborted, so failure isolation holds.
	SlowRenderWarn time.Duration
	// Logger overrides the default component logger.
	Logger *logrus.Entry
}

const defaultQueueSize = 256

// Bus is the event bus for one session.
type Bus struct {
	reg   *registry.Registry
	store *store.Store
	cfg   Config
	log   *logrus.Entry

	mu     sync.RWMutex
	queues map[domain.GroupID]*groupQueue
	closed bool

	wg     sync.WaitGroup
	nextID atomic.Uint64
}

// queueItem is either an interaction event or a mode change; both go
// through the same per-group queue so ordering is preserved.
type queueItem struct {
	ev   domain.SelectionEvent
	mode *domain.Mode
}

// groupQueue owns one group's ordered dispatch. The dispatcher
// goroutine is the only writer of the group's selection state.
type groupQueue struct {
	group *registry.Group
	items chan queueItem
	quit  chan struct{}

	mu      sync.Mutex
	mode    domain.Mode
	clearOn map[domain.EventKind]bool
	pal     *resolver.Palette
	subs    []*Subscription
}

// Subscription ties one adapter to one group. It carries the adapter's
// lifecycle tracker and the context cancelled on unsubscribe.
type Subscription struct {
	id      uint64
	group   domain.GroupID
	adapter adapter.ViewAdapter
	scope   adapter.Scope
	tracker adapter.Tracker

	// renders is the adapter's private queue: renders stay ordered
	// per adapter while a slow adapter only delays itself.
	renders chan domain.SelectionState

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// State returns the adapter's current lifecycle state.
func (s *Subscription) State() adapter.State {
	return s.tracker.State()
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*Subscription)

// WithScope restricts which event sources the adapter reacts to.
func WithScope(scope adapter.Scope) SubscribeOption {
	return func(s *Subscription) { s.scope = scope }
}

// New creates a bus over the given registry and store.
func New(reg *registry.Registry, st *store.Store, cfg Config) *Bus {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if len(cfg.ClearOn) == 0 {
		cfg.ClearOn = []domain.EventKind{domain.KindUnhover, domain.KindRelayout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger("eventbus")
	}
	return &Bus{
		reg:    reg,
		store:  st,
		cfg:    cfg,
		log:    log,
		queues: make(map[domain.GroupID]*groupQueue),
	}
}

// Emit hands a raw event to the group's dispatcher. It never blocks:
// when the queue is full the event is dropped with a warning. Events
// for unknown groups are discarded.
func (b *Bus) Emit(ev domain.SelectionEvent) {
	q, err := b.queue(ev.Group)
	if err != nil {
		b.log.WithField("group", ev.Group).Warn("dropping event for unknown group")
		return
	}

	// Hover traffic is too frequent to log.
	if ev.Kind != domain.KindHover && ev.Kind != domain.KindUnhover {
		b.log.WithFields(logrus.Fields{
			"group":  ev.Group,
			"kind":   ev.Kind,
			"source": ev.Source,
		}).Debug("event emitted")
	}

	select {
	case q.items <- queueItem{ev: ev}:
	default:
		b.log.WithFields(logrus.Fields{
			"group": ev.Group,
			"kind":  ev.Kind,
		}).Warn("event queue full, dropping event")
	}
}

// Subscribe registers an adapter with a group and installs its event
// delivery. The adapter starts in Registered state and becomes Active
// after its first successful render.
func (b *Bus) Subscribe(group domain.GroupID, va adapter.ViewAdapter, opts ...SubscribeOption) (*Subscription, error) {
	q, err := b.queue(group)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		id:      b.nextID.Add(1),
		group:   group,
		adapter: va,
		renders: make(chan domain.SelectionState, b.cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(sub)
	}
	sub.tracker.Register()

	q.mu.Lock()
	q.subs = append(q.subs, sub)
	q.mu.Unlock()

	b.wg.Add(1)
	go b.renderLoop(sub)

	b.log.WithFields(logrus.Fields{
		"group":   group,
		"adapter": va.ID(),
	}).Debug("adapter subscribed")
	return sub, nil
}

// Unsubscribe removes the adapter and cancels any pending render
// dispatch to it. It is idempotent and safe during view teardown;
// queued events for sibling adapters are unaffected.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		sub.cancel()
		sub.tracker.Unregister()

		b.mu.RLock()
		q := b.queues[sub.group]
		b.mu.RUnlock()
		if q == nil {
			return
		}

		q.mu.Lock()
		for i, s := range q.subs {
			if s.id == sub.id {
				q.subs = append(q.subs[:i], q.subs[i+1:]...)
				break
			}
		}
		q.mu.Unlock()
	})
}

// SetMode changes the group's selection mode. The change rides the
// group's ordered queue, so events emitted before it still resolve
// under the old policy. Switching modes clears the selection.
func (b *Bus) SetMode(group domain.GroupID, mode domain.Mode) error {
	q, err := b.queue(group)
	if err != nil {
		return err
	}
	m := mode
	select {
	case q.items <- queueItem{mode: &m}:
		return nil
	default:
		b.log.WithField("group", group).Warn("event queue full, dropping mode change")
		return nil
	}
}

// Close stops all dispatchers and waits for in-flight work.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	queues := make([]*groupQueue, 0, len(b.queues))
	for _, q := range b.queues {
		queues = append(queues, q)
	}
	b.mu.Unlock()

	for _, q := range queues {
		close(q.quit)
		q.mu.Lock()
		subs := make([]*Subscription, len(q.subs))
		copy(subs, q.subs)
		q.mu.Unlock()
		for _, sub := range subs {
			sub.cancel()
		}
	}
	b.wg.Wait()
}

// queue returns the group's dispatcher, starting it on first use.
func (b *Bus) queue(group domain.GroupID) (*groupQueue, error) {
	b.mu.RLock()
	q, ok := b.queues[group]
	b.mu.RUnlock()
	if ok {
		return q, nil
	}

	g, err := b.reg.Lookup(group)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.queues[group]; ok {
		return q, nil
	}
	if b.closed {
		return nil, domain.UnknownGroup(group)
	}

	q = &groupQueue{
		group:   g,
		items:   make(chan queueItem, b.cfg.QueueSize),
		quit:    make(chan struct{}),
		mode:    domain.ModeTransient,
		clearOn: make(map[domain.EventKind]bool, len(b.cfg.ClearOn)),
		pal:     resolver.NewPalette(b.cfg.PaletteColors...),
	}
	for _, k := range b.cfg.ClearOn {
		q.clearOn[k] = true
	}
	b.store.Reset(group, q.mode)
	b.queues[group] = q

	b.wg.Add(1)
	go b.dispatch(q)
	return q, nil
}

// dispatch applies the group's items strictly in emission order.
func (b *Bus) dispatch(q *groupQueue) {
	defer b.wg.Done()

	for {
		select {
		case item := <-q.items:
			if item.mode != nil {
				b.applyMode(q, *item.mode)
				continue
			}
			b.process(q, item.ev)
		case <-q.quit:
			// Drain remaining items
			for {
				select {
				case <-q.items:
				default:
					return
				}
			}
		}
	}
}

// applyMode installs a new mode and clears the selection for it.
func (b *Bus) applyMode(q *groupQueue, mode domain.Mode) {
	q.mu.Lock()
	q.mode = mode
	q.pal.Reset()
	q.mu.Unlock()

	next := domain.NewSelectionState(mode)
	b.store.Set(q.group.ID, next)

	// A mode change has no originating view, so every adapter gets the
	// cleared state; only sender-only adapters are skipped.
	q.mu.Lock()
	subs := make([]*Subscription, len(q.subs))
	copy(subs, q.subs)
	q.mu.Unlock()
	for _, sub := range subs {
		if sub.scope == adapter.ScopeNone {
			continue
		}
		b.deliver(sub, next)
	}
}

// process resolves one event into the next selection state, commits it
// to the store, and fans it out. The store is written only after the
// resolver completes, so a faulted event never corrupts stored state.
func (b *Bus) process(q *groupQueue, ev domain.SelectionEvent) {
	keys, err := q.group.Index.Resolve(ev.Locator)
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"group":  ev.Group,
			"source": ev.Source,
		}).WithError(err).Warn("locator resolution failed, event skipped")
		return
	}

	current := b.store.Get(q.group.ID)

	q.mu.Lock()
	current.Mode = q.mode
	isClear := q.clearOn[ev.Kind]
	next := resolver.Resolve(current, keys, ev, isClear, q.pal)
	q.mu.Unlock()

	b.store.Set(q.group.ID, next)
	b.fanOut(q, ev, next)
}

// fanOut hands the new state to every subscribed adapter's render
// queue. Queues are independent, so one adapter's latency or failure
// cannot stall delivery to its siblings.
func (b *Bus) fanOut(q *groupQueue, ev domain.SelectionEvent, state domain.SelectionState) {
	q.mu.Lock()
	subs := make([]*Subscription, len(q.subs))
	copy(subs, q.subs)
	q.mu.Unlock()

	for _, sub := range subs {
		if !sub.scope.Wants(sub.adapter.ID(), ev.Source) {
			continue
		}
		b.deliver(sub, state)
	}
}

// deliver enqueues one state onto an adapter's render queue without
// blocking the dispatcher.
func (b *Bus) deliver(sub *Subscription, state domain.SelectionState) {
	select {
	case sub.renders <- state.Clone():
	default:
		b.log.WithFields(logrus.Fields{
			"group":   sub.group,
			"adapter": sub.adapter.ID(),
		}).Warn("render queue full, dropping state update")
	}
}

// renderLoop applies an adapter's renders in order until the
// subscription is cancelled. Cancellation mid-flight drops pending
// renders for this adapter only.
func (b *Bus) renderLoop(sub *Subscription) {
	defer b.wg.Done()

	for {
		select {
		case <-sub.ctx.Done():
			return
		case state := <-sub.renders:
			b.render(sub, state)
		}
	}
}

// render isolates one adapter's render call: panics are recovered and
// attributed to the adapter, slow renders are logged but not aborted.
// A failing adapter stays in its last good state.
func (b *Bus) render(sub *Subscription, state domain.SelectionState) {
	if sub.ctx.Err() != nil {
		return
	}

	sub.tracker.BeginRender()

	var watchdog *time.Timer
	if b.cfg.SlowRenderWarn > 0 {
		watchdog = time.AfterFunc(b.cfg.SlowRenderWarn, func() {
			b.log.WithFields(logrus.Fields{
				"group":   sub.group,
				"adapter": sub.adapter.ID(),
			}).Warnf("render exceeding %s", b.cfg.SlowRenderWarn)
		})
	}

	var renderErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				renderErr = domain.NewRenderError(sub.adapter.ID(), sub.group,
					fmt.Errorf("panic: %v", r))
				b.log.WithFields(logrus.Fields{
					"group":   sub.group,
					"adapter": sub.adapter.ID(),
				}).Errorf("render panic: %v\n%s", r, debug.Stack())
			}
		}()
		renderErr = sub.adapter.Render(sub.ctx, state)
	}()

	if watchdog != nil {
		watchdog.Stop()
	}

	if renderErr != nil {
		if _, wrapped := renderErr.(*domain.RenderError); !wrapped {
			renderErr = domain.NewRenderError(sub.adapter.ID(), sub.group, renderErr)
		}
		b.log.WithField("group", sub.group).WithError(renderErr).Error("render failed")
		sub.tracker.EndRender(false)
		return
	}
	sub.tracker.EndRender(true)
}
