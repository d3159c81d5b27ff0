package ui

import (
	"charm.land/lipgloss/v2"
)

const (
	minListWidth = 24
	maxListWidth = 40
	minChatWidth = 30
)

// LayoutManager splits the screen into the conversation list, the chat
// pane and the status bar.
type LayoutManager struct {
	width  int
	height int
}

// NewLayoutManager creates a new layout manager
func NewLayoutManager() *LayoutManager {
	return &LayoutManager{
		width:  80,
		height: 24,
	}
}

// SetSize updates the layout dimensions
func (lm *LayoutManager) SetSize(width, height int) {
	lm.width = width
	lm.height = height
}

// PaneHeight returns the height shared by both panes
// (total height minus status bar)
func (lm *LayoutManager) PaneHeight() int {
	if lm.height < 2 {
		return 1
	}
	return lm.height - lm.StatusBarHeight()
}

// StatusBarHeight returns the height for status bar
func (lm *LayoutManager) StatusBarHeight() int {
	return 1
}

// ListWidth is a third of the screen, clamped so the chat pane keeps room.
func (lm *LayoutManager) ListWidth() int {
	w := lm.width / 3
	if w < minListWidth {
		w = minListWidth
	}
	if w > maxListWidth {
		w = maxListWidth
	}
	if lm.width-w < minChatWidth {
		w = lm.width - minChatWidth
	}
	if w < 0 {
		return 0
	}
	return w
}

// ChatWidth is whatever the list leaves.
func (lm *LayoutManager) ChatWidth() int {
	w := lm.width - lm.ListWidth()
	if w < 0 {
		return 0
	}
	return w
}

// RenderLayout places the panes side by side above the status bar.
func (lm *LayoutManager) RenderLayout(listContent, chatContent, statusBarContent string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, listContent, chatContent),
		statusBarContent,
	)
}

// GetDimensions returns current width and height
func (lm *LayoutManager) GetDimensions() (width, height int) {
	return lm.width, lm.height
}
