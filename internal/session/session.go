// Package session wires the group registry, selection store and event
// bus into one owned object. Each visualization session gets its own
// Session, so multiple linked-view setups on one page stay isolated;
// nothing here is ambient or global.
package session

import (
	"sync"

	"github.com/sirupsen/logrus"

	"brushlink/internal/adapter"
	"brushlink/internal/config"
	"brushlink/internal/domain"
	"brushlink/internal/eventbus"
	"brushlink/internal/logging"
	"brushlink/internal/registry"
	"brushlink/internal/store"
)

// Session owns all linked-selection state for one visualization page.
type Session struct {
	cfg   *config.Config
	reg   *registry.Registry
	store *store.Store
	bus   *eventbus.Bus
	log   *logrus.Entry

	mu        sync.Mutex
	nextColor map[domain.GroupID]string
	clearOn   map[domain.EventKind]bool
}

// New creates a session from the given configuration; nil selects the
// defaults.
func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	reg := registry.New()
	st := store.New()
	clearOn := make(map[domain.EventKind]bool, len(cfg.Selection.ClearOn))
	for _, k := range cfg.Selection.ClearOn {
		clearOn[domain.EventKind(k)] = true
	}
	return &Session{
		cfg:       cfg,
		reg:       reg,
		store:     st,
		bus:       eventbus.New(reg, st, cfg.BusConfig()),
		log:       logging.NewLogger("session"),
		nextColor: make(map[domain.GroupID]string),
		clearOn:   clearOn,
	}
}

// Registry exposes the session's group registry.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Bus exposes the session's event bus.
func (s *Session) Bus() *eventbus.Bus { return s.bus }

// LoadGroup ingests a data loader's rows as a new shared-data group
// and starts it in the configured default mode.
func (s *Session) LoadGroup(id domain.GroupID, rows []registry.Row, extract registry.KeyExtractor) (*registry.Group, error) {
	g, err := registry.LoadGroup(s.reg, id, rows, extract)
	if err != nil {
		return nil, err
	}
	if mode := s.cfg.Mode(); mode != domain.ModeTransient {
		if err := s.bus.SetMode(id, mode); err != nil {
			return nil, err
		}
	}
	s.log.WithFields(logrus.Fields{
		"group": id,
		"rows":  len(rows),
	}).Info("group loaded")
	return g, nil
}

// Attach subscribes a view adapter to a group.
func (s *Session) Attach(group domain.GroupID, va adapter.ViewAdapter, opts ...eventbus.SubscribeOption) (*eventbus.Subscription, error) {
	return s.bus.Subscribe(group, va, opts...)
}

// Detach unsubscribes a view adapter; idempotent.
func (s *Session) Detach(sub *eventbus.Subscription) {
	s.bus.Unsubscribe(sub)
}

// Emit feeds a raw interaction event into the bus. In dynamic mode a
// pending next-layer color (SetNextColor) is stamped onto events that
// do not carry one; a clear event releases the picker back to the
// default cycle along with the layers it removes.
func (s *Session) Emit(ev domain.SelectionEvent) {
	s.mu.Lock()
	if s.clearOn[ev.Kind] {
		delete(s.nextColor, ev.Group)
	} else if ev.Color == "" {
		ev.Color = s.nextColor[ev.Group]
	}
	s.mu.Unlock()
	s.bus.Emit(ev)
}

// Selection returns a copy of the group's current selection state.
func (s *Session) Selection(group domain.GroupID) domain.SelectionState {
	return s.store.Get(group)
}

// SetMode switches a group's selection mode, clearing its selection
// and releasing any pending picker color.
func (s *Session) SetMode(group domain.GroupID, mode domain.Mode) error {
	s.mu.Lock()
	delete(s.nextColor, group)
	s.mu.Unlock()
	return s.bus.SetMode(group, mode)
}

// SetNextColor picks the color for the next accumulated layer, the
// interactive color-assignment control of dynamic mode. An empty color
// releases the picker back to the default cycle.
func (s *Session) SetNextColor(group domain.GroupID, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if color == "" {
		delete(s.nextColor, group)
		return
	}
	s.nextColor[group] = color
}

// Close tears the session down: the bus stops and all group state is
// dropped. Selection state is session-scoped and rebuilt from the data
// loader on the next session.
func (s *Session) Close() {
	s.bus.Close()
	for _, id := range s.reg.GroupIDs() {
		s.store.Delete(id)
		s.reg.Remove(id)
	}
}
