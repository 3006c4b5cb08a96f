// Package ui renders the notification dropdown and the full notification
// list in the terminal.
package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/pkg/i18n"
	"seller-dashboard/internal/surface"
)

// SnapshotMsg carries a surface state change into the program.
type SnapshotMsg surface.Snapshot

// mountedMsg reports the result of mounting one surface.
type mountedMsg struct {
	variant surface.Variant
	err     error
}

type Config struct {
	Locale        string
	DropdownLimit int
	PageLimit     int
	Logger        *log.Logger
}

// Model owns one dropdown surface and one full-list surface over the same
// source. Each keeps its own state and its own change feed.
type Model struct {
	ctx     context.Context
	surface [2]*surface.Surface
	snap    [2]surface.Snapshot
	cursor  [2]int
	offline [2]bool
	view    surface.Variant
	updates chan surface.Snapshot

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	locale  string
	now     func() time.Time

	width  int
	height int
}

func New(ctx context.Context, src surface.Source, cfg Config) Model {
	updates := make(chan surface.Snapshot, 64)
	onChange := func(s surface.Snapshot) {
		select {
		case updates <- s:
		case <-ctx.Done():
		}
	}

	dropdown := surface.New(src, surface.Dropdown, surface.Options{
		Limit:    cfg.DropdownLimit,
		Logger:   cfg.Logger,
		OnChange: onChange,
	})
	list := surface.New(src, surface.FullList, surface.Options{
		Limit:    cfg.PageLimit,
		Logger:   cfg.Logger,
		OnChange: onChange,
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	locale := cfg.Locale
	if locale == "" {
		locale = "en"
	}

	return Model{
		ctx:     ctx,
		surface: [2]*surface.Surface{dropdown, list},
		snap:    [2]surface.Snapshot{dropdown.Snapshot(), list.Snapshot()},
		view:    surface.Dropdown,
		updates: updates,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		locale:  locale,
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.mount(surface.Dropdown),
		m.mount(surface.FullList),
		m.waitForSnapshot(),
		m.spinner.Tick,
	)
}

func (m Model) mount(v surface.Variant) tea.Cmd {
	s := m.surface[v]
	return func() tea.Msg {
		return mountedMsg{variant: v, err: s.Mount(m.ctx)}
	}
}

func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(<-m.updates)
	}
}

// Close unmounts both surfaces.
func (m Model) Close() {
	for _, s := range m.surface {
		s.Unmount()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		snap := surface.Snapshot(msg)
		m.snap[snap.Variant] = snap
		m.clampCursor(snap.Variant)
		return m, m.waitForSnapshot()

	case mountedMsg:
		m.offline[msg.variant] = msg.err != nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.surface[m.view]
	snap := m.snap[m.view]

	if snap.Alert != nil {
		return m, func() tea.Msg {
			current.DismissAlert()
			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.SwitchView):
		if m.view == surface.Dropdown {
			m.view = surface.FullList
		} else {
			m.view = surface.Dropdown
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor[m.view]++
		m.clampCursor(m.view)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor[m.view]--
		m.clampCursor(m.view)
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) { current.MarkRead(ctx, n.ID) })

	case key.Matches(msg, m.keys.Delete):
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) { current.Delete(ctx, n.ID) })

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.run(current.MarkAllRead)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(current.Refresh)

	case key.Matches(msg, m.keys.LoadMore):
		if m.view != surface.FullList {
			return m, nil
		}
		return m, m.run(current.LoadMore)

	case key.Matches(msg, m.keys.CycleType):
		if m.view != surface.FullList {
			return m, nil
		}
		filter := snap.Filter
		filter.Type = nextType(filter.Type)
		m.cursor[m.view] = 0
		return m, m.run(func(ctx context.Context) { current.SetFilter(ctx, filter) })

	case key.Matches(msg, m.keys.ToggleUnread):
		if m.view != surface.FullList {
			return m, nil
		}
		filter := snap.Filter
		filter.UnreadOnly = !filter.UnreadOnly
		m.cursor[m.view] = 0
		return m, m.run(func(ctx context.Context) { current.SetFilter(ctx, filter) })
	}

	return m, nil
}

// run performs a surface call off the update loop. Its result arrives as a
// SnapshotMsg.
func (m Model) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return nil
	}
}

func (m Model) selected() (domain.Notification, bool) {
	items := m.snap[m.view].Items
	i := m.cursor[m.view]
	if i < 0 || i >= len(items) {
		return domain.Notification{}, false
	}
	return items[i], true
}

func (m *Model) clampCursor(v surface.Variant) {
	n := len(m.snap[v].Items)
	if m.cursor[v] >= n {
		m.cursor[v] = n - 1
	}
	if m.cursor[v] < 0 {
		m.cursor[v] = 0
	}
}

// nextType cycles all → order → product → customer → system → all.
func nextType(current *domain.NotificationType) *domain.NotificationType {
	if current == nil {
		next := domain.NotificationTypes[0]
		return &next
	}
	for i, t := range domain.NotificationTypes {
		if t == *current && i+1 < len(domain.NotificationTypes) {
			next := domain.NotificationTypes[i+1]
			return &next
		}
	}
	return nil
}

func (m Model) t(key string) string {
	return i18n.Translate(m.locale, key)
}

func (m Model) View() string {
	snap := m.snap[m.view]

	if snap.Alert != nil {
		return m.viewAlert(*snap.Alert)
	}

	var body string
	if m.view == surface.FullList {
		body = m.viewList(snap)
	} else {
		body = m.viewDropdown(snap)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func (m Model) viewAlert(a surface.Alert) string {
	message := a.Message
	if !a.Verbatim {
		message = m.t(string(a.Action))
	}
	return alertStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		message,
		"",
		mutedStyle.Render(m.t("DISMISS")),
	))
}

func (m Model) header(snap surface.Snapshot, extra string) string {
	title := headerStyle.Render(m.t("TITLE"))
	if snap.Unread > 0 {
		title += " " + badgeStyle.Render(fmt.Sprintf("%d %s", snap.Unread, m.t("UNREAD")))
	}
	if extra != "" {
		title += "  " + mutedStyle.Render(extra)
	}
	if m.offline[snap.Variant] {
		title += "  " + mutedStyle.Render(m.t("FEED_OFFLINE"))
	}
	return title
}

func (m Model) viewDropdown(snap surface.Snapshot) string {
	lines := []string{m.header(snap, "")}
	lines = append(lines, m.viewItems(snap, false)...)
	lines = append(lines, "", mutedStyle.Render(m.t("VIEW_ALL")+" (tab)"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewList(snap surface.Snapshot) string {
	typeLabel := m.t("TYPE_ALL")
	if snap.Filter.Type != nil {
		typeLabel = m.typeLabel(*snap.Filter.Type)
	}
	filter := typeLabel
	if snap.Filter.UnreadOnly {
		filter += " · " + m.t("UNREAD_ONLY")
	}

	lines := []string{m.header(snap, filter)}
	lines = append(lines, m.viewItems(snap, true)...)
	if snap.HasMore {
		lines = append(lines, "", mutedStyle.Render(m.t("LOAD_MORE")+" (m)"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewItems(snap surface.Snapshot, detailed bool) []string {
	switch {
	case snap.State == surface.Loading && len(snap.Items) == 0:
		return []string{m.spinner.View() + " " + m.t("LOADING")}
	case snap.State == surface.LoadError:
		return []string{mutedStyle.Render(m.t("LOAD_ERROR"))}
	case len(snap.Items) == 0:
		return []string{mutedStyle.Render(m.t("EMPTY"))}
	}

	now := m.now()
	lines := make([]string, 0, len(snap.Items))
	for i, n := range snap.Items {
		lines = append(lines, m.viewItem(n, now, detailed, i == m.cursor[snap.Variant]))
	}
	return lines
}

func (m Model) viewItem(n domain.Notification, now time.Time, detailed, selected bool) string {
	marker := " "
	title := n.Title
	if !n.Read {
		marker = "●"
		title = unreadStyle.Render(title)
	}

	row := fmt.Sprintf("%s %s %s %s",
		marker,
		typeStyle(n.Type).Render(m.typeLabel(n.Type)),
		title,
		mutedStyle.Render(surface.TimeAgo(n.CreatedAt, now)),
	)

	if detailed {
		if n.Message != nil && *n.Message != "" {
			row += "\n   " + *n.Message
		}
		meta := surface.LinkOrDefault(n)
		if surface.CanReply(n) {
			meta += "  [" + m.t("REPLY") + "]"
		}
		row += "\n   " + mutedStyle.Render(meta)
	}

	if selected {
		return selectedItemStyle.Render(row)
	}
	return itemStyle.Render(row)
}

func (m Model) typeLabel(t domain.NotificationType) string {
	return m.t("TYPE_" + strings.ToUpper(string(t)))
}
