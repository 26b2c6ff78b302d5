// Package wsbridge links out-of-process renderers (typically
// browser-hosted charting libraries) into a group over a websocket.
// The bridge is an ordinary view adapter: resolved selection state
// goes out as JSON frames, raw interaction events come back in and are
// emitted into the session like any local view's.
package wsbridge

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"brushlink/internal/domain"
	"brushlink/internal/logging"
)

// Emitter receives the events read from remote renderers.
type Emitter interface {
	Emit(ev domain.SelectionEvent)
}

// stateFrame is the outbound message carrying resolved selection state.
type stateFrame struct {
	Type   string       `json:"type"`
	Group  string       `json:"group"`
	Mode   string       `json:"mode"`
	Layers []layerFrame `json:"layers"`
}

type layerFrame struct {
	Keys  []string `json:"keys"`
	Color string   `json:"color"`
}

// eventFrame is the inbound message carrying one remote interaction
// event. Exactly one of Keys, Positions or Region should be set.
type eventFrame struct {
	Type      string       `json:"type"`
	Source    string       `json:"source"`
	Kind      string       `json:"kind"`
	Keys      []string     `json:"keys,omitempty"`
	Positions []int        `json:"positions,omitempty"`
	Region    *regionFrame `json:"region,omitempty"`
	Color     string       `json:"color,omitempty"`
}

type regionFrame struct {
	X0    float64 `json:"x0"`
	X1    float64 `json:"x1"`
	Y0    float64 `json:"y0"`
	Y1    float64 `json:"y1"`
	Space string  `json:"space"`
}

// Bridge is a view adapter backed by websocket connections.
type Bridge struct {
	id      domain.ViewID
	group   domain.GroupID
	emitter Emitter
	log     *logrus.Entry

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New creates a bridge for one group. The bridge's own id is used as
// event source when a remote frame does not name one.
func New(id domain.ViewID, group domain.GroupID, emitter Emitter) *Bridge {
	return &Bridge{
		id:      id,
		group:   group,
		emitter: emitter,
		log:     logging.NewLogger("wsbridge"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ID implements adapter.ViewAdapter.
func (b *Bridge) ID() domain.ViewID { return b.id }

// Render implements adapter.ViewAdapter: the state is written to every
// connected socket. A connection that fails to accept the write is
// dropped; the remaining connections still receive the frame.
func (b *Bridge) Render(ctx context.Context, state domain.SelectionState) error {
	frame := stateFrame{
		Type:   "state",
		Group:  string(b.group),
		Mode:   string(state.Mode),
		Layers: make([]layerFrame, 0, len(state.Layers)),
	}
	for _, l := range state.Layers {
		lf := layerFrame{Color: l.Color, Keys: make([]string, 0, l.Keys.Len())}
		for _, k := range l.Keys.Sorted() {
			lf.Keys = append(lf.Keys, string(k))
		}
		frame.Layers = append(frame.Layers, lf)
	}

	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.WriteJSON(frame); err != nil {
			b.log.WithError(err).Warn("write failed, dropping connection")
			b.drop(c)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and reads remote event frames until
// the connection closes.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()
	b.log.WithField("remote", conn.RemoteAddr().String()).Info("renderer connected")

	go b.readLoop(conn)
}

// Close drops all connections.
func (b *Bridge) Close() {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.conns = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	defer b.drop(conn)

	for {
		var frame eventFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.log.WithError(err).Warn("read failed")
			}
			return
		}
		if frame.Type != "event" {
			continue
		}
		b.emitter.Emit(b.toEvent(frame))
	}
}

// toEvent converts a remote frame into a selection event.
func (b *Bridge) toEvent(frame eventFrame) domain.SelectionEvent {
	source := domain.ViewID(frame.Source)
	if source == "" {
		source = b.id
	}

	var loc domain.Locator
	switch {
	case frame.Region != nil:
		space := domain.CoordSpace(frame.Region.Space)
		if space == "" {
			space = domain.SpaceData
		}
		loc = domain.RegionLocator{
			X0: frame.Region.X0, X1: frame.Region.X1,
			Y0: frame.Region.Y0, Y1: frame.Region.Y1,
			Space: space,
		}
	case frame.Positions != nil:
		loc = domain.PositionLocator(frame.Positions)
	default:
		keys := make(domain.KeyLocator, 0, len(frame.Keys))
		for _, k := range frame.Keys {
			keys = append(keys, domain.Key(k))
		}
		loc = keys
	}

	return domain.SelectionEvent{
		Source:  source,
		Group:   b.group,
		Kind:    domain.EventKind(frame.Kind),
		Locator: loc,
		Color:   frame.Color,
	}
}

func (b *Bridge) drop(conn *websocket.Conn) {
	b.mu.Lock()
	_, ok := b.conns[conn]
	delete(b.conns, conn)
	b.mu.Unlock()
	if ok {
		conn.Close()
	}
}
