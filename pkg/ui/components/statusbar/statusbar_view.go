package statusbar

import (
	"fmt"
	"strings"

	"ai_messenger/pkg/ui/styles"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

const defaultHint = "Tab Switch pane | Ctrl+C Quit"

// StatusBarView renders the bottom line of the messenger.
type StatusBarView struct {
	provider string
	model    string
	chats    int
	hint     string
	message  string
	width    int
	style    lipgloss.Style
}

// NewStatusBarView creates a new status bar view
func NewStatusBarView() *StatusBarView {
	return &StatusBarView{
		hint:  defaultHint,
		width: 80,
		style: styles.StatusBarStyle,
	}
}

// SetProvider updates the active provider and model displayed.
func (s *StatusBarView) SetProvider(provider, model string) {
	s.provider = strings.TrimSpace(provider)
	s.model = strings.TrimSpace(model)
}

// SetChatCount updates the number of conversations listed.
func (s *StatusBarView) SetChatCount(n int) {
	s.chats = n
}

// SetHint replaces the key help shown when no message is set.
func (s *StatusBarView) SetHint(hint string) {
	s.hint = hint
}

// SetMessage sets a temporary message; empty restores the hint.
func (s *StatusBarView) SetMessage(msg string) {
	s.message = msg
}

// Message returns the temporary message, if any.
func (s *StatusBarView) Message() string {
	return s.message
}

// SetWidth updates the width for rendering
func (s *StatusBarView) SetWidth(width int) {
	s.width = width
}

// Render returns the styled status bar string
func (s *StatusBarView) Render() string {
	llm := s.provider
	if llm == "" {
		llm = "unknown"
	}
	if s.model != "" {
		llm += ":" + s.model
	}

	tail := s.hint
	if s.message != "" {
		tail = s.message
	}
	content := fmt.Sprintf("[ai_messenger] %s | %s", llm, chatLabel(s.chats))
	if tail != "" {
		content += " | " + tail
	}

	// Truncate if too long (ANSI-aware width).
	maxWidth := s.width - 2
	if maxWidth < 10 {
		maxWidth = 10
	}
	if ansi.StringWidth(content) > maxWidth {
		content = ansi.Truncate(content, maxWidth, "...")
	}
	if w := ansi.StringWidth(content); w < maxWidth {
		content += strings.Repeat(" ", maxWidth-w)
	}

	return s.style.Render(content)
}

func chatLabel(n int) string {
	if n == 1 {
		return "1 chat"
	}
	return fmt.Sprintf("%d chats", n)
}

// SetTheme allows changing the status bar theme
func (s *StatusBarView) SetTheme(theme string) {
	switch theme {
	case "cyan":
		s.style = styles.StatusBarStyleCyan
	case "dark":
		s.style = styles.StatusBarStyleDark
	default:
		s.style = styles.StatusBarStyle
	}
}
