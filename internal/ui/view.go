package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/hoard/internal/session"
)

// renderHeader renders the status bar: logo, server, credential state and
// list position.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("hoard", styles.Logo)}

	origin := m.store.Origin()
	if origin == "" {
		parts = append(parts, bg.Render("no server", styles.MutedText))
	} else {
		parts = append(parts, bg.Render(truncateMiddle(origin, 48), styles.Text))
	}

	if m.store.State() == session.Authenticated {
		parts = append(parts, bg.Render("● key ok", styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("○ no key", styles.DangerText))
	}

	if m.view != ViewSetup {
		chip := styles.BadgeStyle(m.filter.flag()).Render(m.filter.Label())
		if m.scope.kind != scopeFilter {
			chip = styles.BadgeStyle("").Render(truncate(m.scope.name, 24))
		}
		parts = append(parts,
			bg.Render(m.scope.Label()+":", styles.MutedText)+bg.Space()+chip,
			bg.Render("Page:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", m.pager.Page()), styles.Text),
		)
		count := fmt.Sprintf("%d", len(m.page.Bookmarks))
		if m.query != "" {
			count = fmt.Sprintf("%d/%d", len(m.visible()), len(m.page.Bookmarks))
		}
		parts = append(parts, bg.Render("Shown:", styles.MutedText)+bg.Space()+bg.Render(count, styles.Text))
		if m.loading {
			parts = append(parts, bg.Render("loading…", styles.WarningText))
		}
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderCommandBar shows the keys relevant to the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	var hints [][2]string
	switch m.view {
	case ViewSetup:
		hints = [][2]string{{"tab", "switch field"}, {"enter", "connect"}, {"esc", "back"}, {"ctrl+c", "quit"}}
	case ViewLogs:
		hints = [][2]string{{"j/k", "scroll"}, {"l/esc", "back"}, {"h", "help"}, {"e", "quit"}}
	case ViewCollections:
		hints = [][2]string{{"j/k", "move"}, {"enter", "open"}, {"b/esc", "back"}, {"e", "quit"}}
	default:
		hints = [][2]string{
			{"n/p", "page"}, {"f", "filter"}, {"/", "search"}, {"b", "lists"}, {"s", "star"},
			{"a", "archive"}, {"d", "delete"}, {"c", "copy"}, {"h", "help"},
		}
	}
	if m.width > 0 && m.width < LayoutCompactWidth && len(hints) > 4 {
		hints = hints[:4]
	}
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		out = append(out, styles.WarningText.Render("<"+h[0]+">")+" "+styles.MutedText.Render(h[1]))
	}
	return " " + strings.Join(out, "  ")
}

// renderFooter shows the confirm prompt, the search input or the last
// status message.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	switch {
	case m.confirmDeleteID != "":
		title := m.confirmDeleteID
		if b, ok := m.selectedBookmark(); ok && b.ID == m.confirmDeleteID {
			title = titleOf(b)
		}
		return styles.DangerText.Render(fmt.Sprintf(" Delete %q? y to confirm, any other key cancels", truncate(title, 50)))
	case m.searching:
		return " " + m.searchInput.View()
	case m.query != "":
		return styles.MutedText.Render(" search: ") + styles.AccentText.Render(m.query) + styles.FaintText.Render("  (esc clears)")
	case m.status.text != "":
		if m.status.isErr {
			return " " + styles.DangerText.Render(m.status.text)
		}
		return " " + styles.SuccessText.Render(m.status.text)
	}
	return ""
}

// renderSetup renders the server URL and API key form.
func (m Model) renderSetup() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Connect to your bookmark server"))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		line := in.View()
		if i == m.setupFocus {
			line = styles.AccentText.Render("› ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case m.validating:
		b.WriteString(styles.WarningText.Render("Checking key…"))
	case m.setupErr != "":
		b.WriteString(styles.DangerText.Render(m.setupErr))
	default:
		b.WriteString(styles.FaintText.Render("The key is kept in memory only after the server accepts it."))
	}

	panel := styles.FocusedPanel.Width(min(72, max(m.width-4, 20))).Render(b.String())
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, panel)
}

// renderList renders the bookmark rows, scrolled so the selection is
// visible.
func (m Model) renderList() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	items := m.visible()

	if len(items) == 0 {
		msg := "No bookmarks"
		switch {
		case m.loading:
			msg = "Loading…"
		case m.query != "":
			msg = "No matches on this page"
		case m.scope.kind == scopeSearch:
			msg = "Nothing found for " + fmt.Sprintf("%q", m.scope.name)
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	offset := 0
	if m.selected >= height {
		offset = m.selected - height + 1
	}
	end := min(offset+height, len(items))

	compact := m.width < LayoutCompactWidth
	ageWidth := 5
	hostWidth := 0
	if !compact {
		hostWidth = min(28, m.width/4)
	}
	titleWidth := max(m.width-4-hostWidth-ageWidth-4, 10)

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		b := items[i]
		marker := "  "
		switch {
		case b.Favourited:
			marker = "★ "
		case b.Archived:
			marker = "▣ "
		}
		row := marker + padRight(truncate(titleOf(b), titleWidth), titleWidth)
		if !compact {
			row += "  " + padRight(truncate(displayHost(b.URL), hostWidth), hostWidth)
			row += "  " + padRight(humanizeAge(b.CreatedAt, m.now()), ageWidth)
		}
		if i == m.selected {
			lines = append(lines, styles.Selected.Width(m.width).Render(row))
			continue
		}
		switch {
		case b.Favourited:
			lines = append(lines, styles.FlagText("favourited").Render(row))
		case b.Archived:
			lines = append(lines, styles.FaintText.Render(row))
		default:
			lines = append(lines, styles.Text.Render(row))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderCollections renders the list and tag picker.
func (m Model) renderCollections() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	if len(m.collections) == 0 {
		msg := "No lists or tags"
		if m.collLoading {
			msg = "Loading…"
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}

	offset := 0
	if m.collSelected >= height {
		offset = m.collSelected - height + 1
	}
	end := min(offset+height, len(m.collections))
	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		entry := m.collections[i]
		kind := padRight(strings.ToLower(entry.Label()), 5)
		row := "  " + kind + truncate(entry.name, max(m.width-10, 10))
		if i == m.collSelected {
			lines = append(lines, styles.Selected.Width(m.width).Render(row))
			continue
		}
		lines = append(lines, styles.Text.Render(row))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderLogs renders the diagnostics pane.
func (m Model) renderLogs() string {
	if len(m.logLines) == 0 {
		styles := m.theme.Styles()
		msg := "No diagnostics yet"
		if m.log.Path() == "" {
			msg = "Diagnostics file disabled"
		}
		return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}
	return m.logViewport.View()
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = m.width
	m.logViewport.Height = m.contentHeight()
	m.updateLogViewport()
}

// updateLogViewport loads the log lines and follows the tail when the view
// was already at the bottom.
func (m *Model) updateLogViewport() {
	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	styles := m.theme.Styles()
	rendered := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		rendered[i] = colorizeLogLine(line, styles)
	}
	m.logViewport.SetContent(strings.Join(rendered, "\n"))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

var logLevelTokens = []string{" ERROR ", " WARN ", " INFO ", " DEBUG "}

// colorizeLogLine highlights the level token of a formatted diagnostics
// line.
func colorizeLogLine(line string, styles Styles) string {
	for _, token := range logLevelTokens {
		idx := strings.Index(line, token)
		if idx < 0 {
			continue
		}
		style := styles.InfoText
		switch token {
		case " ERROR ":
			style = styles.DangerText
		case " WARN ":
			style = styles.WarningText
		case " DEBUG ":
			style = styles.FaintText
		}
		level := strings.TrimSpace(token)
		return line[:idx+1] + style.Render(level) + line[idx+1+len(level):]
	}
	return line
}
