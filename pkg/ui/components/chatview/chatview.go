// Package chatview renders one conversation and its composer.
package chatview

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ai_messenger/pkg/conversation"
	"ai_messenger/pkg/ui/components/utils"
	"ai_messenger/pkg/ui/styles"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

const (
	composerHeight   = 3
	headerLines      = 2 // title + separator
	footerLines      = 1 // separator above composer
	bubbleMaxPercent = 75

	// EmptyText is shown when no conversation is open.
	EmptyText = "Select a chat to start messaging"
	// TypingText is shown while a reply is pending.
	TypingText = "AI is typing..."

	inputHint    = "Enter Send | Esc Scroll | Tab Chats | Ctrl+X Cancel"
	viewportHint = "Up/Down Scroll | y Copy | i Type | Esc Chats"
)

// FocusTarget indicates which part of the chat pane has focus.
type FocusTarget int

const (
	FocusInput FocusTarget = iota
	FocusViewport
)

// SubmitMsg is sent when the user presses enter on a non-empty composer.
type SubmitMsg struct {
	Content string
}

// BlurMsg asks the parent to move focus back to the conversation list.
type BlurMsg struct{}

// CancelMsg asks the parent to cancel the pending reply.
type CancelMsg struct {
	ConversationID string
}

// CopiedMsg reports a clipboard copy.
type CopiedMsg struct {
	Text string
}

// clipboardOut receives OSC 52 sequences.
var clipboardOut io.Writer = os.Stdout

// ChatView shows messages of the open conversation above a textarea.
type ChatView struct {
	conv    conversation.Conversation
	open    bool
	pending bool
	focused bool
	target  FocusTarget

	textarea textarea.Model
	lines    []string
	scrollY  int
	follow   bool

	width  int
	height int
}

// New creates a chat view with an empty composer.
func New() *ChatView {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(composerHeight)
	return &ChatView{
		textarea: ta,
		follow:   true,
	}
}

// SetConversation replaces the conversation shown. ok=false shows the
// empty placeholder.
func (c *ChatView) SetConversation(conv conversation.Conversation, ok bool) {
	switched := !ok || conv.ID != c.conv.ID
	c.conv = conv
	c.open = ok
	if switched {
		c.follow = true
		c.scrollY = 0
	}
	c.reflow()
}

// ConversationID returns the id of the open conversation.
func (c *ChatView) ConversationID() string {
	if !c.open {
		return ""
	}
	return c.conv.ID
}

// SetPending shows or hides the typing indicator and disables sending.
func (c *ChatView) SetPending(pending bool) {
	if c.pending == pending {
		return
	}
	c.pending = pending
	c.reflow()
}

// Pending reports whether the typing indicator is shown.
func (c *ChatView) Pending() bool {
	return c.pending
}

// SetFocused gives the pane keyboard focus, starting in the composer.
func (c *ChatView) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.focusInput()
		return
	}
	c.textarea.Blur()
}

// Focus returns which part of the pane has focus.
func (c *ChatView) Focus() FocusTarget {
	return c.target
}

func (c *ChatView) focusInput() {
	c.target = FocusInput
	c.textarea.Focus()
}

func (c *ChatView) focusViewport() {
	c.target = FocusViewport
	c.textarea.Blur()
}

// SetSize sets the pane dimensions, borders included.
func (c *ChatView) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.textarea.SetWidth(c.contentWidth())
	c.reflow()
}

// Value returns the composer text.
func (c *ChatView) Value() string {
	return c.textarea.Value()
}

// ResetInput clears the composer after a successful send.
func (c *ChatView) ResetInput() {
	c.textarea.Reset()
}

// HandlePaste routes pasted text to the composer.
func (c *ChatView) HandlePaste(content string) {
	if c.focused && c.target == FocusInput {
		c.textarea.InsertString(content)
	}
}

// CanSend reports whether enter would submit.
func (c *ChatView) CanSend() bool {
	return c.open && !c.pending && strings.TrimSpace(c.textarea.Value()) != ""
}

// Update handles keys while the pane has focus.
func (c *ChatView) Update(msg tea.KeyPressMsg) tea.Cmd {
	if c.target == FocusInput {
		switch msg.String() {
		case "enter":
			if !c.CanSend() {
				return nil
			}
			content := c.textarea.Value()
			return func() tea.Msg {
				return SubmitMsg{Content: content}
			}
		case "esc":
			c.focusViewport()
			return nil
		case "ctrl+x":
			return c.cancel()
		case "up", "down", "pgup", "pgdown":
			if strings.Contains(c.textarea.Value(), "\n") && (msg.String() == "up" || msg.String() == "down") {
				break
			}
			c.handleScroll(msg.String())
			return nil
		}
		if !c.open {
			return nil
		}
		var cmd tea.Cmd
		c.textarea, cmd = c.textarea.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "esc", "tab":
		return func() tea.Msg { return BlurMsg{} }
	case "i", "enter":
		c.focusInput()
	case "up", "down", "pgup", "pgdown", "home", "end":
		c.handleScroll(msg.String())
	case "y":
		return c.copyLastMessage()
	case "ctrl+x":
		return c.cancel()
	}
	return nil
}

func (c *ChatView) cancel() tea.Cmd {
	if !c.open || !c.pending {
		return nil
	}
	id := c.conv.ID
	return func() tea.Msg {
		return CancelMsg{ConversationID: id}
	}
}

func (c *ChatView) handleScroll(key string) {
	maxScroll := c.maxScroll()

	switch key {
	case "up":
		if c.scrollY > 0 {
			c.scrollY--
			c.follow = false
		}
	case "down":
		if c.scrollY < maxScroll {
			c.scrollY++
		}
		c.follow = c.scrollY >= maxScroll
	case "pgup":
		c.scrollY -= c.viewportHeight()
		if c.scrollY < 0 {
			c.scrollY = 0
		}
		c.follow = false
	case "pgdown":
		c.scrollY += c.viewportHeight()
		if c.scrollY > maxScroll {
			c.scrollY = maxScroll
		}
		c.follow = c.scrollY >= maxScroll
	case "home":
		c.scrollY = 0
		c.follow = maxScroll == 0
	case "end":
		c.scrollY = maxScroll
		c.follow = true
	}
}

func (c *ChatView) copyLastMessage() tea.Cmd {
	if !c.open || len(c.conv.Messages) == 0 {
		return nil
	}
	text := c.conv.Messages[len(c.conv.Messages)-1].Content
	return func() tea.Msg {
		_, _ = fmt.Fprint(clipboardOut, osc52.New(text))
		return CopiedMsg{Text: text}
	}
}

// View renders the pane.
func (c *ChatView) View() string {
	contentWidth := c.contentWidth()
	contentHeight := c.contentHeight()

	lines := make([]string, 0, contentHeight)

	if !c.open {
		mid := contentHeight / 2
		for len(lines) < mid {
			lines = append(lines, strings.Repeat(" ", contentWidth))
		}
		lines = append(lines, lipgloss.PlaceHorizontal(contentWidth, lipgloss.Center, styles.PlaceholderStyle.Render(EmptyText)))
		for len(lines) < contentHeight {
			lines = append(lines, strings.Repeat(" ", contentWidth))
		}
		return c.frame(lines)
	}

	lines = append(lines, utils.PadStyled(c.header(contentWidth), contentWidth))
	lines = append(lines, strings.Repeat("─", contentWidth))

	viewportHeight := c.viewportHeight()
	start := c.scrollY
	end := start + viewportHeight
	if end > len(c.lines) {
		end = len(c.lines)
	}
	for i := start; i < end; i++ {
		lines = append(lines, utils.PadStyled(c.lines[i], contentWidth))
	}
	for len(lines) < headerLines+viewportHeight {
		lines = append(lines, strings.Repeat(" ", contentWidth))
	}

	hint := inputHint
	if c.target == FocusViewport {
		hint = viewportHint
	}
	sep := "─ " + utils.TruncateToWidth(hint, contentWidth-3) + " "
	lines = append(lines, styles.FooterStyle.Render(utils.PadPlain(sep, contentWidth)))

	c.textarea.SetWidth(contentWidth)
	for i, line := range strings.Split(c.textarea.View(), "\n") {
		if i >= composerHeight {
			break
		}
		lines = append(lines, utils.PadStyled(line, contentWidth))
	}
	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", contentWidth))
	}

	return c.frame(lines)
}

func (c *ChatView) frame(lines []string) string {
	if len(lines) > c.contentHeight() {
		lines = lines[:c.contentHeight()]
	}
	style := styles.PaneStyle
	if c.focused {
		style = styles.PaneFocusedStyle
	}
	return style.Width(c.outerWidth()).Render(strings.Join(lines, "\n"))
}

func (c *ChatView) header(width int) string {
	avatarStyle := styles.AvatarStyle
	if c.conv.IsAI {
		avatarStyle = styles.AvatarAIStyle
	}
	badge := avatarStyle.Render(c.conv.Avatar())
	name := utils.TruncateToWidth(c.conv.Name, width-lipgloss.Width(badge)-1)
	return badge + " " + styles.TitleStyle.Render(name)
}

// reflow re-renders message bubbles for the current width.
func (c *ChatView) reflow() {
	if !c.open {
		c.lines = nil
		c.scrollY = 0
		return
	}
	c.lines = renderMessages(c.conv.Messages, c.contentWidth())
	if c.pending {
		c.lines = append(c.lines, "", styles.TypingStyle.Render(TypingText))
	}
	if c.follow || c.scrollY > c.maxScroll() {
		c.scrollY = c.maxScroll()
	}
}

// renderMessages lays out bubbles: user messages right-aligned, others left.
func renderMessages(messages []conversation.Message, width int) []string {
	bubbleWidth := width * bubbleMaxPercent / 100
	if bubbleWidth < 10 {
		bubbleWidth = width
	}
	// Bubble padding takes one cell on each side.
	textWidth := bubbleWidth - 2
	if textWidth < 1 {
		textWidth = 1
	}

	var out []string
	for i, msg := range messages {
		if i > 0 {
			out = append(out, "")
		}
		body := utils.WrapToWidth(sanitizeContent(msg.Content), textWidth)
		inner := utils.MaxLineWidth(body)

		style := bubbleStyle(msg)
		right := msg.Sender == conversation.SenderUser
		for _, line := range body {
			rendered := style.Render(utils.PadPlain(line, inner))
			out = append(out, align(rendered, width, right))
		}
		stamp := styles.TimestampStyle.Render(msg.Timestamp)
		out = append(out, align(stamp, width, right))
	}
	return out
}

func bubbleStyle(msg conversation.Message) lipgloss.Style {
	switch msg.Sender {
	case conversation.SenderUser:
		return styles.UserBubbleStyle
	case conversation.SenderAI:
		if strings.HasPrefix(msg.Content, "Error:") {
			return styles.ErrorBubbleStyle
		}
		return styles.AIBubbleStyle
	default:
		return styles.ContactBubbleStyle
	}
}

func align(s string, width int, right bool) string {
	if !right {
		return s
	}
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}

// sanitizeContent drops control characters except newline and tab.
func sanitizeContent(content string) string {
	if content == "" {
		return content
	}
	var sb strings.Builder
	sb.Grow(len(content))
	for _, r := range content {
		switch r {
		case '\n', '\t':
			sb.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (c *ChatView) outerWidth() int {
	if c.width <= 0 {
		return 60
	}
	return c.width
}

func (c *ChatView) contentWidth() int {
	width := c.outerWidth() - 2
	if width < 10 {
		return 10
	}
	return width
}

func (c *ChatView) contentHeight() int {
	if c.height <= 0 {
		return 22
	}
	height := c.height - 2
	if height < headerLines+footerLines+composerHeight+1 {
		return headerLines + footerLines + composerHeight + 1
	}
	return height
}

func (c *ChatView) viewportHeight() int {
	return c.contentHeight() - headerLines - footerLines - composerHeight
}

func (c *ChatView) maxScroll() int {
	limit := len(c.lines) - c.viewportHeight()
	if limit < 0 {
		return 0
	}
	return limit
}
