// Package ui is the Bubble Tea front end of the messenger.
package ui

import (
	"errors"
	"log/slog"

	"ai_messenger/pkg/controller"
	"ai_messenger/pkg/ui/components/chatlist"
	"ai_messenger/pkg/ui/components/chatview"
	"ai_messenger/pkg/ui/components/statusbar"

	tea "charm.land/bubbletea/v2"
)

type pane int

const (
	paneList pane = iota
	paneChat
)

// Options configures the status line and logging of the UI.
type Options struct {
	Provider string
	Model    string
	Theme    string
	Logger   *slog.Logger
}

// replyMsg carries a finished assistant call back into Update.
type replyMsg struct {
	reply controller.Reply
}

// Model represents the Bubble Tea application state
type Model struct {
	ctrl *controller.Controller

	// UI Components
	list      *chatlist.List
	chat      *chatview.ChatView
	statusBar *statusbar.StatusBarView
	layout    *LayoutManager

	focus  pane
	logger *slog.Logger

	// UI state
	width  int
	height int
	ready  bool
}

// NewModel creates a new Bubble Tea model over ctrl.
func NewModel(ctrl *controller.Controller, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sb := statusbar.NewStatusBarView()
	sb.SetProvider(opts.Provider, opts.Model)
	if opts.Theme != "" {
		sb.SetTheme(opts.Theme)
	}
	if !ctrl.HasCredential() {
		sb.SetMessage("No API key: AI chats will reply with an error")
	}

	m := Model{
		ctrl:      ctrl,
		list:      chatlist.New(),
		chat:      chatview.New(),
		statusBar: sb,
		layout:    NewLayoutManager(),
		focus:     paneList,
		logger:    logger,
	}
	m.list.SetFocused(true)
	m.refresh()
	return m
}

// Init initializes the model (Bubble Tea lifecycle method)
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates model state (Bubble Tea lifecycle method)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.PasteMsg:
		if m.focus == paneChat {
			m.chat.HandlePaste(msg.Content)
		}
		return m, nil

	case chatlist.SelectMsg:
		m.ctrl.SelectConversation(msg.ID)
		m.setFocus(paneChat)
		m.refresh()
		return m, nil

	case chatlist.SearchMsg:
		m.ctrl.UpdateSearch(msg.Query)
		m.refresh()
		return m, nil

	case chatview.SubmitMsg:
		return m.submit(msg.Content)

	case chatview.BlurMsg:
		m.setFocus(paneList)
		return m, nil

	case chatview.CancelMsg:
		if m.ctrl.Cancel(msg.ConversationID) {
			m.statusBar.SetMessage("Reply cancelled")
		}
		m.refresh()
		return m, nil

	case chatview.CopiedMsg:
		m.statusBar.SetMessage("Copied last message")
		return m, nil

	case replyMsg:
		if _, err := m.ctrl.Deliver(msg.reply); err != nil && !errors.Is(err, controller.ErrRequestCancelled) {
			m.logger.Warn("assistant_reply_not_delivered", "error", err)
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Close()
		return m, tea.Quit
	case "tab":
		if m.focus == paneList {
			if _, ok := m.ctrl.Selected(); ok {
				m.setFocus(paneChat)
			}
		} else {
			m.setFocus(paneList)
		}
		return m, nil
	}

	if m.focus == paneChat {
		return m, m.chat.Update(msg)
	}
	return m, m.list.Update(msg)
}

// submit appends the composed text and, for AI conversations, starts the
// remote call in a command so the UI stays responsive.
func (m Model) submit(content string) (tea.Model, tea.Cmd) {
	m.ctrl.SetCompose(content)
	req, err := m.ctrl.SendMessage()
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrReplyPending):
			m.statusBar.SetMessage("Wait for the reply or press Ctrl+X to cancel")
		case errors.Is(err, controller.ErrEmptyMessage):
		default:
			m.statusBar.SetMessage(err.Error())
		}
		return m, nil
	}

	m.chat.ResetInput()
	m.statusBar.SetMessage("")
	m.refresh()
	if req == nil {
		return m, nil
	}

	ctrl := m.ctrl
	return m, func() tea.Msg {
		return replyMsg{reply: ctrl.Run(req)}
	}
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	m.list.SetFocused(p == paneList)
	m.chat.SetFocused(p == paneChat)
}

// refresh pushes controller state into the components.
func (m *Model) refresh() {
	m.list.SetItems(m.ctrl.Conversations())
	m.list.SetActive(m.ctrl.SelectedID())

	conv, ok := m.ctrl.Selected()
	m.chat.SetConversation(conv, ok)
	m.chat.SetPending(ok && m.ctrl.Pending(conv.ID))

	m.statusBar.SetChatCount(len(m.ctrl.All()))
}

func (m *Model) resize() {
	m.layout.SetSize(m.width, m.height)
	h := m.layout.PaneHeight()
	m.list.SetSize(m.layout.ListWidth(), h)
	m.chat.SetSize(m.layout.ChatWidth(), h)
	m.statusBar.SetWidth(m.width)
}

// View renders the UI (Bubble Tea lifecycle method)
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.layout.RenderLayout(m.list.View(), m.chat.View(), m.statusBar.Render())
}
