// Package chatlist renders the searchable conversation list.
package chatlist

import (
	"strings"

	"ai_messenger/pkg/conversation"
	"ai_messenger/pkg/ui/components/utils"
	"ai_messenger/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// SelectMsg is sent when a conversation is opened from the list.
type SelectMsg struct {
	ID string
}

// SearchMsg is sent whenever the search query changes.
type SearchMsg struct {
	Query string
}

// rowHeight is name line + preview line.
const rowHeight = 2

// List is the left pane: a search field over a scrollable list of rows.
type List struct {
	items    conversation.Collection
	query    string
	cursor   int
	scroll   int
	activeID string
	focused  bool
	width    int
	height   int
}

// New creates an empty list.
func New() *List {
	return &List{}
}

// SetItems replaces the visible (already filtered) conversations. The
// cursor stays on the same conversation when it is still listed.
func (l *List) SetItems(items conversation.Collection) {
	var cursorID string
	if l.cursor >= 0 && l.cursor < len(l.items) {
		cursorID = l.items[l.cursor].ID
	}
	l.items = items
	l.cursor = 0
	for i, conv := range items {
		if conv.ID == cursorID {
			l.cursor = i
			break
		}
	}
	l.ensureVisible()
}

// SetActive marks the conversation shown in the chat pane.
func (l *List) SetActive(id string) {
	l.activeID = id
}

// SetFocused toggles key handling highlight.
func (l *List) SetFocused(focused bool) {
	l.focused = focused
}

// SetSize updates the pane dimensions, borders included.
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureVisible()
}

// Query returns the current search text.
func (l *List) Query() string {
	return l.query
}

// Cursor returns the id under the cursor, if any.
func (l *List) Cursor() (string, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return "", false
	}
	return l.items[l.cursor].ID, true
}

// Update handles keys while the list has focus.
func (l *List) Update(msg tea.KeyPressMsg) tea.Cmd {
	visible := l.visibleRows()

	switch msg.String() {
	case "up":
		if l.cursor > 0 {
			l.cursor--
		}
		l.ensureVisible()
		return nil

	case "down":
		if l.cursor < len(l.items)-1 {
			l.cursor++
		}
		l.ensureVisible()
		return nil

	case "pgup":
		l.cursor -= visible
		l.ensureVisible()
		return nil

	case "pgdown":
		l.cursor += visible
		l.ensureVisible()
		return nil

	case "home":
		l.cursor = 0
		l.ensureVisible()
		return nil

	case "end":
		l.cursor = len(l.items) - 1
		l.ensureVisible()
		return nil

	case "enter":
		id, ok := l.Cursor()
		if !ok {
			return nil
		}
		return func() tea.Msg {
			return SelectMsg{ID: id}
		}

	case "backspace":
		if l.query == "" {
			return nil
		}
		runes := []rune(l.query)
		return l.setQuery(string(runes[:len(runes)-1]))

	case "ctrl+u":
		if l.query == "" {
			return nil
		}
		return l.setQuery("")

	default:
		if text := msg.Key().Text; text != "" {
			return l.setQuery(l.query + text)
		}
		return nil
	}
}

func (l *List) setQuery(query string) tea.Cmd {
	l.query = query
	l.cursor = 0
	l.scroll = 0
	return func() tea.Msg {
		return SearchMsg{Query: query}
	}
}

// View renders the pane.
func (l *List) View() string {
	contentWidth, contentHeight := l.contentSize()

	lines := make([]string, 0, contentHeight)
	lines = append(lines, utils.PadStyled(styles.TitleStyle.Render(utils.TruncateToWidth("Chats", contentWidth)), contentWidth))

	if l.query != "" {
		lines = append(lines, utils.PadStyled(styles.FilterStyle.Render(utils.TruncateToWidth("Search: "+l.query, contentWidth)), contentWidth))
	} else {
		lines = append(lines, utils.PadStyled(styles.PlaceholderStyle.Render(utils.TruncateToWidth("Type to search...", contentWidth)), contentWidth))
	}
	lines = append(lines, strings.Repeat("─", contentWidth))

	if len(l.items) == 0 {
		empty := "No conversations"
		if l.query != "" {
			empty = "No matching conversations"
		}
		lines = append(lines, utils.PadStyled(styles.TextMutedStyle.Render(utils.TruncateToWidth(empty, contentWidth)), contentWidth))
	} else {
		end := l.scroll + l.visibleRows()
		if end > len(l.items) {
			end = len(l.items)
		}
		for i := l.scroll; i < end; i++ {
			lines = append(lines, l.renderRow(l.items[i], i == l.cursor, contentWidth)...)
		}
	}

	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", contentWidth))
	}
	if len(lines) > contentHeight {
		lines = lines[:contentHeight]
	}

	style := styles.PaneStyle
	if l.focused {
		style = styles.PaneFocusedStyle
	}
	return style.Width(l.outerWidth()).Render(strings.Join(lines, "\n"))
}

func (l *List) renderRow(conv conversation.Conversation, underCursor bool, width int) []string {
	avatar := conv.Avatar()
	avatarStyle := styles.AvatarStyle
	if conv.IsAI {
		avatarStyle = styles.AvatarAIStyle
	}
	badge := avatarStyle.Render(avatar)
	badgeWidth := lipgloss.Width(badge) + 1

	stamp := shortTime(conv.Timestamp)
	nameWidth := width - badgeWidth - len(stamp) - 1
	name := utils.PadPlain(utils.TruncateToWidth(conv.Name, nameWidth), nameWidth)
	preview := utils.PadPlain(utils.TruncateToWidth(conv.LastMessage, width-badgeWidth), width-badgeWidth)
	indent := strings.Repeat(" ", badgeWidth)

	if underCursor && l.focused {
		top := styles.SelectedStyle.Render(name + " " + stamp)
		return []string{
			utils.PadStyled(badge+" "+top, width),
			utils.PadStyled(indent+styles.SelectedStyle.Render(preview), width),
		}
	}

	nameStyle := styles.TextBoldStyle
	if conv.ID == l.activeID {
		nameStyle = styles.ActiveStyle
	}
	return []string{
		utils.PadStyled(badge+" "+nameStyle.Render(name)+" "+styles.TimestampStyle.Render(stamp), width),
		utils.PadStyled(indent+styles.TextMutedStyle.Render(preview), width),
	}
}

// shortTime keeps the HH:MM part of a "YYYY-MM-DD HH:MM" stamp.
func shortTime(stamp string) string {
	if i := strings.LastIndex(stamp, " "); i >= 0 {
		return stamp[i+1:]
	}
	return stamp
}

func (l *List) ensureVisible() {
	if len(l.items) == 0 {
		l.cursor = 0
		l.scroll = 0
		return
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}

	visible := l.visibleRows()
	maxScroll := len(l.items) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if l.scroll > maxScroll {
		l.scroll = maxScroll
	}
	if l.cursor < l.scroll {
		l.scroll = l.cursor
	}
	if l.cursor >= l.scroll+visible {
		l.scroll = l.cursor - visible + 1
	}
	if l.scroll < 0 {
		l.scroll = 0
	}
}

func (l *List) outerWidth() int {
	if l.width <= 0 {
		return 32
	}
	return l.width
}

// contentSize is the area inside the border.
func (l *List) contentSize() (int, int) {
	width := l.outerWidth() - 2
	if width < 8 {
		width = 8
	}
	height := l.height - 2
	if l.height <= 0 {
		height = 22
	}
	if height < 4 {
		height = 4
	}
	return width, height
}

// visibleRows is how many conversations fit below the header lines.
func (l *List) visibleRows() int {
	_, height := l.contentSize()
	rows := (height - 3) / rowHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}
