// Package ui renders the meshdeck console. All views are read-only
// projections of the engine; the only signal flowing back is which
// view the operator has open, which gates unread counting.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"meshdeck/internal/mesh"
	"meshdeck/internal/state"
	"meshdeck/internal/store"
)

// Tab selects the active view.
type Tab int

const (
	TabChannels Tab = iota
	TabNodes
	TabChats
	TabLog
)

var tabNames = []string{"Channels", "Nodes", "Chats", "Log"}

// Options configure the UI.
type Options struct {
	Context context.Context
	Engine  *state.Engine
	Theme   string
}

// Model is the root bubbletea model.
type Model struct {
	engine *state.Engine
	styles Styles

	tab    Tab
	width  int
	height int
	now    time.Time

	channels   []int
	channelIdx int

	convos    []store.Conversation
	convoIdx  int
	convoOpen bool

	nodeFilter textinput.Model
	filtering  bool

	logView viewport.Model
}

// New builds the root model.
func New(opts Options) Model {
	filter := textinput.New()
	filter.Placeholder = "filter nodes"
	filter.CharLimit = 64

	return Model{
		engine:     opts.Engine,
		styles:     GetTheme(opts.Theme).Styles(),
		nodeFilter: filter,
		now:        time.Now(),
	}
}

// Run blocks until the operator quits or the context is cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil) {
		return nil
	}
	return err
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView = viewport.New(msg.Width, maxInt(msg.Height-4, 1))
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		m.refresh()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh re-reads the projections the current frame needs.
func (m *Model) refresh() {
	m.channels = m.engine.Channels()
	if m.channelIdx >= len(m.channels) {
		m.channelIdx = maxInt(len(m.channels)-1, 0)
	}
	if m.tab == TabChannels {
		m.syncActiveView()
	}
	m.convos = m.engine.Conversations()
	if m.convoIdx >= len(m.convos) {
		m.convoIdx = maxInt(len(m.convos)-1, 0)
	}
	if m.tab == TabLog {
		m.logView.SetContent(strings.Join(m.engine.DebugLines(), "\n"))
		m.logView.GotoBottom()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.nodeFilter.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.nodeFilter, cmd = m.nodeFilter.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.setTab(Tab((int(m.tab) + 1) % len(tabNames)))
	case "shift+tab":
		m.setTab(Tab((int(m.tab) + len(tabNames) - 1) % len(tabNames)))
	case "1":
		m.setTab(TabChannels)
	case "2":
		m.setTab(TabNodes)
	case "3":
		m.setTab(TabChats)
	case "4":
		m.setTab(TabLog)

	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)

	case "enter":
		if m.tab == TabChats && len(m.convos) > 0 {
			m.convoOpen = true
			m.engine.OpenConversation(m.convos[m.convoIdx].Partner)
		}
	case "esc":
		if m.convoOpen {
			m.convoOpen = false
		}

	case "/":
		if m.tab == TabNodes {
			m.filtering = true
			m.nodeFilter.Focus()
			return m, textinput.Blink
		}

	case "x":
		if m.tab == TabChannels && len(m.channels) > 0 {
			m.engine.ClearChannel(m.channels[m.channelIdx])
			m.refresh()
		}

	case "pgup", "pgdown":
		if m.tab == TabLog {
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// setTab switches view and tells the engine which channel, if any, is
// now on screen so unread gating stays correct.
func (m *Model) setTab(t Tab) {
	m.tab = t
	m.convoOpen = false
	m.syncActiveView()
	m.refresh()
}

func (m *Model) moveSelection(delta int) {
	switch m.tab {
	case TabChannels:
		m.channelIdx = clamp(m.channelIdx+delta, 0, len(m.channels)-1)
		m.syncActiveView()
	case TabChats:
		m.convoIdx = clamp(m.convoIdx+delta, 0, len(m.convos)-1)
		m.convoOpen = false
	}
}

func (m *Model) syncActiveView() {
	if m.tab == TabChannels && len(m.channels) > 0 {
		m.engine.SetActiveChannel(m.channels[m.channelIdx])
		return
	}
	m.engine.SetActiveChannel(-1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "starting…"
	}

	var body string
	switch m.tab {
	case TabChannels:
		body = m.viewChannels()
	case TabNodes:
		body = m.viewNodes()
	case TabChats:
		body = m.viewChats()
	case TabLog:
		body = m.logView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), body, m.viewFooter())
}

func (m Model) viewTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := name
		switch Tab(i) {
		case TabChannels:
			if n := m.engine.UnreadTotal(); n > 0 {
				label = fmt.Sprintf("%s %s", name, m.styles.Badge.Render(fmt.Sprint(n)))
			}
		case TabChats:
			if n := m.engine.UnreadConversations(); n > 0 {
				label = fmt.Sprintf("%s %s", name, m.styles.Badge.Render(fmt.Sprint(n)))
			}
		}
		if Tab(i) == m.tab {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m Model) viewFooter() string {
	keys := "tab: views  j/k: select  q: quit"
	switch m.tab {
	case TabChannels:
		keys = "tab: views  j/k: channel  x: clear  q: quit"
	case TabNodes:
		keys = "tab: views  /: filter  q: quit"
	case TabChats:
		keys = "tab: views  j/k: select  enter: open  esc: back  q: quit"
	}
	return m.styles.Footer.Render(keys)
}

func (m Model) viewChannels() string {
	if len(m.channels) == 0 {
		return m.styles.Muted.Render("  no channel traffic yet")
	}

	var header []string
	for i, ch := range m.channels {
		label := fmt.Sprintf("ch %d", ch)
		if n := m.engine.ChannelUnread(ch); n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if i == m.channelIdx {
			label = m.styles.Selected.Render(label)
		}
		header = append(header, label)
	}

	transcript := m.viewTranscript(m.engine.ChannelMessages(m.channels[m.channelIdx]))
	return "  " + strings.Join(header, "  ") + "\n\n" + transcript
}

func (m Model) viewTranscript(msgs []mesh.Message) string {
	limit := maxInt(m.height-6, 1)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	var b strings.Builder
	for _, msg := range msgs {
		name := m.engine.NodeLabel(msg.From)
		line := fmt.Sprintf("%s %s: %s",
			m.styles.Muted.Render(timeAgo(msg.RxTime, m.now)),
			m.styles.Accent.Render(truncate(name, 24)),
			wrapBody(msg.Body, m.width-4))
		if msg.Delivery != mesh.DeliveryNone {
			line += " " + m.deliveryBadge(msg.Delivery)
		}
		if len(msg.Reactions) > 0 {
			line += " " + m.styles.Muted.Render(reactionSummary(msg.Reactions))
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func (m Model) deliveryBadge(s mesh.DeliveryState) string {
	switch s {
	case mesh.DeliveryDelivered:
		return m.styles.Success.Render("✓")
	case mesh.DeliveryFailed:
		return m.styles.Danger.Render("✗")
	case mesh.DeliveryPending:
		return m.styles.Warning.Render("…")
	default:
		return ""
	}
}

func reactionSummary(reactions []mesh.Reaction) string {
	counts := make(map[string]int)
	var order []string
	for _, r := range reactions {
		if counts[r.Emoji] == 0 {
			order = append(order, r.Emoji)
		}
		counts[r.Emoji]++
	}
	parts := make([]string, 0, len(order))
	for _, emoji := range order {
		if n := counts[emoji]; n > 1 {
			parts = append(parts, fmt.Sprintf("%s×%d", emoji, n))
		} else {
			parts = append(parts, emoji)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (m Model) viewNodes() string {
	var b strings.Builder
	if m.filtering || m.nodeFilter.Value() != "" {
		b.WriteString("  " + m.nodeFilter.View() + "\n\n")
	}

	list := m.engine.Nodes(m.nodeFilter.Value())
	if len(list) == 0 {
		b.WriteString(m.styles.Muted.Render("  no nodes match"))
		return b.String()
	}

	limit := maxInt(m.height-7, 1)
	if len(list) > limit {
		list = list[:limit]
	}
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %-28s %6s %6s %5s %10s %s\n",
		"NODE", "SNR", "RSSI", "BATT", "DIST", "HEARD")))
	for _, n := range list {
		name := truncate(n.DisplayName(), 26)
		if n.Pinned {
			name = "📌" + name
		}
		batt := "-"
		if n.Battery != nil {
			batt = fmt.Sprintf("%d%%", *n.Battery)
		}
		row := fmt.Sprintf("  %-28s %6s %6s %5s %10s %s",
			name, n.SNRDisplay(), n.RSSIDisplay(), batt,
			n.DistanceDisplay(), timeAgo(n.LastHeard, m.now))
		if n.Relayed {
			row += m.styles.Muted.Render(" (relay)")
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) viewChats() string {
	if len(m.convos) == 0 {
		return m.styles.Muted.Render("  no direct messages yet")
	}

	if m.convoOpen {
		c := m.convos[m.convoIdx]
		title := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Bold(true).Render(c.Name)
		return "  " + title + "\n\n" + m.viewTranscript(c.Messages)
	}

	var b strings.Builder
	for i, c := range m.convos {
		marker := "  "
		if c.Unread {
			marker = m.styles.Danger.Render("● ")
		}
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(truncate(c.Name, 24))
		preview := ""
		if len(c.Messages) > 0 {
			last := c.Messages[len(c.Messages)-1]
			preview = m.styles.Muted.Render(truncate(last.Body, 48))
		}
		line := fmt.Sprintf("%s%-30s %s", marker, name, preview)
		if i == m.convoIdx {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
