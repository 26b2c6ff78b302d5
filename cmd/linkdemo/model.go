package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"brushlink/internal/adapter"
	"brushlink/internal/adapter/wsbridge"
	"brushlink/internal/domain"
	"brushlink/internal/eventbus"
	"brushlink/internal/session"
)

// pane ids double as view ids on the bus
const (
	tableView   = domain.ViewID("table")
	summaryView = domain.ViewID("summary")
	bridgeView  = domain.ViewID("ws-bridge")
)

// selectionMsg delivers a resolved selection state to one pane.
type selectionMsg struct {
	pane  domain.ViewID
	state domain.SelectionState
}

// layerColors are offered on keys 1-8 in dynamic mode
var layerColors = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3",
	"#ff7f00", "#a65628", "#f781bf", "#999999",
}

type styles struct {
	title   lipgloss.Style
	pane    lipgloss.Style
	dim     lipgloss.Style
	help    lipgloss.Style
	swatch  func(color string) lipgloss.Style
	current lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		pane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("241")),
		dim:  lipgloss.NewStyle().Faint(true),
		help: lipgloss.NewStyle().Faint(true).MarginTop(1),
		swatch: func(color string) lipgloss.Style {
			return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		},
		current: lipgloss.NewStyle().Bold(true),
	}
}

// model drives two linked panes over one shared group: the table emits
// interaction events, both panes re-render from the resolved state.
type model struct {
	sess    *session.Session
	mode    domain.Mode
	program *tea.Program
	styles  styles

	cities []string
	pops   []float64
	areas  []float64
	tbl    table.Model

	tableState   domain.SelectionState
	summaryState domain.SelectionState

	subs      []*eventbus.Subscription
	bridge    *wsbridge.Bridge
	nextColor string
}

func newModel(sess *session.Session, mode domain.Mode) *model {
	rows := cityRows()
	cities := make([]string, len(rows))
	pops := make([]float64, len(rows))
	areas := make([]float64, len(rows))
	for i, r := range rows {
		cities[i] = r.Values["city"].(string)
		pops[i] = r.Values["pop"].(float64)
		areas[i] = r.Values["area"].(float64)
	}

	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "City", Width: 14},
		{Title: "Pop (M)", Width: 8},
		{Title: "Area", Width: 6},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(len(rows)),
	)

	m := &model{
		sess:   sess,
		mode:   mode,
		styles: newStyles(),
		cities: cities,
		pops:   pops,
		areas:  areas,
		tbl:    tbl,
	}
	m.refreshRows()
	return m
}

func (m *model) setProgram(p *tea.Program) {
	m.program = p
}

// attach registers both panes as view adapters on the shared group.
// Renders arrive as program messages so bubbletea stays the single
// writer of terminal state.
func (m *model) attach() error {
	for _, pane := range []domain.ViewID{tableView, summaryView} {
		pane := pane
		sub, err := m.sess.Attach(citiesGroup, adapter.Func(pane,
			func(ctx context.Context, state domain.SelectionState) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				m.program.Send(selectionMsg{pane: pane, state: state})
				return nil
			}))
		if err != nil {
			return err
		}
		m.subs = append(m.subs, sub)
	}
	return nil
}

// attachBridge adds the websocket bridge as a third adapter so remote
// renderers receive the same fan-out as the local panes.
func (m *model) attachBridge() (*wsbridge.Bridge, error) {
	m.bridge = wsbridge.New(bridgeView, citiesGroup, m.sess)
	sub, err := m.sess.Attach(citiesGroup, m.bridge)
	if err != nil {
		return nil, err
	}
	m.subs = append(m.subs, sub)
	return m.bridge, nil
}

func (m *model) detach() {
	for _, sub := range m.subs {
		m.sess.Detach(sub)
	}
	if m.bridge != nil {
		m.bridge.Close()
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case selectionMsg:
		switch msg.pane {
		case tableView:
			m.tableState = msg.state
			m.refreshRows()
		case summaryView:
			m.summaryState = msg.state
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.detach()
			return m, tea.Quit

		case "up", "down", "k", "j":
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			// Hover-follows-cursor only makes sense in transient mode;
			// in the accumulating modes it would stack a layer per row.
			if m.mode == domain.ModeTransient {
				m.sess.Emit(domain.SelectionEvent{
					Source:  tableView,
					Group:   citiesGroup,
					Kind:    domain.KindHover,
					Locator: domain.PositionLocator{m.tbl.Cursor()},
				})
			}
			return m, cmd

		case " ", "enter":
			m.sess.Emit(domain.SelectionEvent{
				Source:  tableView,
				Group:   citiesGroup,
				Kind:    domain.KindClick,
				Locator: domain.PositionLocator{m.tbl.Cursor()},
			})
			return m, nil

		case "d":
			// Drag-select stand-in: every city of a million or more
			m.sess.Emit(domain.SelectionEvent{
				Source: tableView,
				Group:  citiesGroup,
				Kind:   domain.KindDragSelect,
				Locator: domain.RegionLocator{
					X0: 1.0, X1: 100,
					Y0: 0, Y1: 1e9,
					Space: domain.SpaceData,
				},
			})
			return m, nil

		case "c":
			// Clearing also releases the picked layer color
			m.nextColor = ""
			m.sess.Emit(domain.SelectionEvent{
				Source: tableView,
				Group:  citiesGroup,
				Kind:   domain.KindRelayout,
			})
			return m, nil

		case "m":
			m.mode = nextMode(m.mode)
			m.nextColor = ""
			m.sess.SetNextColor(citiesGroup, "")
			m.sess.SetMode(citiesGroup, m.mode)
			return m, nil

		case "1", "2", "3", "4", "5", "6", "7", "8":
			if m.mode == domain.ModeDynamic {
				m.nextColor = layerColors[int(msg.String()[0]-'1')]
				m.sess.SetNextColor(citiesGroup, m.nextColor)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	title := m.styles.title.Render("linkdemo — linked selection across views")

	left := m.styles.pane.Render(m.tbl.View())
	right := m.styles.pane.Render(m.summary())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	help := m.styles.help.Render(
		"↑/↓ hover · space select · d drag ≥1M · c clear · m mode · 1-8 layer color · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, panes, help)
}

// refreshRows rebuilds the table with per-layer selection markers.
func (m *model) refreshRows() {
	rows := make([]table.Row, len(m.cities))
	for i, city := range m.cities {
		marker := " "
		for _, layer := range m.tableState.Layers {
			if layer.Keys.Has(domain.Key(city)) {
				marker = m.styles.swatch(layer.Color).Render("●")
			}
		}
		rows[i] = table.Row{
			marker,
			city,
			fmt.Sprintf("%.2f", m.pops[i]),
			fmt.Sprintf("%.0f", m.areas[i]),
		}
	}
	m.tbl.SetRows(rows)
}

// summary renders the second linked view: the layer stack plus a small
// aggregate recomputed from the active keys.
func (m *model) summary() string {
	var b strings.Builder

	b.WriteString(m.styles.current.Render(fmt.Sprintf("mode: %s", m.mode)))
	if m.mode == domain.ModeDynamic && m.nextColor != "" {
		b.WriteString("  next layer: ")
		b.WriteString(m.styles.swatch(m.nextColor).Render("■"))
	}
	b.WriteString("\n\n")

	if len(m.summaryState.Layers) == 0 {
		b.WriteString(m.styles.dim.Render("no selection"))
		return b.String()
	}

	for i, layer := range m.summaryState.Layers {
		names := make([]string, 0, layer.Keys.Len())
		for _, k := range layer.Keys.Sorted() {
			names = append(names, string(k))
		}
		b.WriteString(fmt.Sprintf("%s layer %d: %s\n",
			m.styles.swatch(layer.Color).Render("■"), i+1, strings.Join(names, ", ")))
	}

	active := m.summaryState.Active()
	var sum float64
	for i, city := range m.cities {
		if active.Has(domain.Key(city)) {
			sum += m.pops[i]
		}
	}
	b.WriteString(fmt.Sprintf("\nselected: %d cities, %.2f M total", active.Len(), sum))

	return b.String()
}

func nextMode(m domain.Mode) domain.Mode {
	switch m {
	case domain.ModeTransient:
		return domain.ModePersistent
	case domain.ModePersistent:
		return domain.ModeDynamic
	default:
		return domain.ModeTransient
	}
}
