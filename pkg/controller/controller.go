// Package controller owns the interactive state of the messenger: which
// conversation is selected, the compose and search buffers, and the replies
// still outstanding for AI conversations.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"ai_messenger/pkg/assistant"
	"ai_messenger/pkg/conversation"

	"github.com/google/uuid"
)

// MissingCredentialText is appended to AI conversations when no API key is set.
const MissingCredentialText = "Error: No Gemini API key found. Please set GEMINI_API_KEY or AI_MESSENGER_GEMINI_API_KEY in your environment or .env file."

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNoConversation   = errors.New("no conversation selected")
	ErrReplyPending     = errors.New("a reply is still pending for this conversation")
	ErrRequestCancelled = errors.New("request was cancelled")
	ErrRequestDone      = errors.New("request was already delivered")
)

// Completer produces assistant replies.
type Completer interface {
	Complete(ctx context.Context, message string, history []conversation.Message) assistant.Result
}

// Saver persists the whole collection.
type Saver interface {
	Save(ctx context.Context, coll conversation.Collection) error
}

// Options are the controller's collaborators. Nothing is read from the
// environment after construction.
type Options struct {
	Store      Saver
	Assistant  Completer
	Credential string
	Clock      conversation.Clock
	Logger     *slog.Logger
}

// Request is an outstanding remote call for one conversation.
type Request struct {
	ID             string
	ConversationID string
	Message        string
	History        []conversation.Message

	ctx    context.Context
	cancel context.CancelFunc
	done   bool
}

// Context is cancelled when the request is cancelled or the controller closes.
func (r *Request) Context() context.Context {
	return r.ctx
}

// Reply carries a finished remote call back to the controller.
type Reply struct {
	Request *Request
	Result  assistant.Result
}

// Controller is safe for concurrent use. Mutations happen under one lock;
// Run performs the network call without holding it.
type Controller struct {
	mu sync.Mutex

	coll     conversation.Collection
	selected string
	compose  string
	search   string
	pending  map[string]*Request

	store      Saver
	assistant  Completer
	credential string
	messages   *conversation.Factory
	logger     *slog.Logger
}

// New creates a controller over an initial collection.
func New(initial conversation.Collection, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		coll:       initial,
		pending:    make(map[string]*Request),
		store:      opts.Store,
		assistant:  opts.Assistant,
		credential: strings.TrimSpace(opts.Credential),
		messages:   conversation.NewFactory(opts.Clock),
		logger:     logger,
	}
}

// SendMessage appends the compose buffer to the selected conversation. For
// AI conversations with a credential it returns a Request the caller must
// Run and Deliver; otherwise the returned request is nil.
func (c *Controller) SendMessage() (*Request, error) {
	_, req, err := c.sendMessage(context.Background())
	return req, err
}

func (c *Controller) sendMessage(parent context.Context) ([]conversation.Message, *Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content := strings.TrimSpace(c.compose)
	if content == "" {
		return nil, nil, ErrEmptyMessage
	}
	conv, ok := c.coll.Select(c.selected)
	if !ok {
		return nil, nil, ErrNoConversation
	}
	if _, busy := c.pending[conv.ID]; busy {
		c.logger.Debug("send_message_rejected", "conversation_id", conv.ID, "reason", "reply_pending")
		return nil, nil, ErrReplyPending
	}

	c.logger.Debug("send_message_start",
		"conversation_id", conv.ID,
		"is_ai", conv.IsAI,
		"length", len(content),
	)

	history := conv.Messages
	userMsg := c.messages.User(content)
	c.appendLocked(conv.ID, userMsg)
	appended := []conversation.Message{userMsg}
	c.compose = ""

	if !conv.IsAI {
		return appended, nil, nil
	}

	if c.credential == "" {
		c.logger.Warn("send_message_missing_credential", "conversation_id", conv.ID)
		errMsg := c.messages.AIError(MissingCredentialText)
		c.appendLocked(conv.ID, errMsg)
		return append(appended, errMsg), nil, nil
	}

	ctx, cancel := context.WithCancel(parent)
	req := &Request{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Message:        content,
		History:        history,
		ctx:            ctx,
		cancel:         cancel,
	}
	c.pending[conv.ID] = req
	c.logger.Info("assistant_request_pending",
		"conversation_id", conv.ID,
		"request_id", req.ID,
		"history", len(history),
	)
	return appended, req, nil
}

// Run performs the remote call for req. It does not touch controller state.
func (c *Controller) Run(req *Request) Reply {
	if c.assistant == nil {
		return Reply{Request: req, Result: assistant.New(nil).Complete(req.ctx, req.Message, req.History)}
	}
	return Reply{Request: req, Result: c.assistant.Complete(req.ctx, req.Message, req.History)}
}

// Deliver appends the reply to the conversation the request was issued for,
// whichever conversation is selected now.
func (c *Controller) Deliver(reply Reply) (conversation.Message, error) {
	req := reply.Request
	if req == nil {
		return conversation.Message{}, ErrRequestCancelled
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.done {
		return conversation.Message{}, ErrRequestDone
	}
	req.done = true
	defer req.cancel()

	if c.pending[req.ConversationID] == req {
		delete(c.pending, req.ConversationID)
	}

	if req.ctx.Err() != nil {
		c.logger.Info("assistant_reply_dropped",
			"conversation_id", req.ConversationID,
			"request_id", req.ID,
		)
		return conversation.Message{}, ErrRequestCancelled
	}

	msg := c.messages.AIReply(reply.Result.Text)
	if !c.appendLocked(req.ConversationID, msg) {
		return conversation.Message{}, ErrNoConversation
	}
	c.logger.Debug("assistant_reply_delivered",
		"conversation_id", req.ConversationID,
		"request_id", req.ID,
		"kind", reply.Result.Kind.String(),
	)
	return msg, nil
}

// Send runs the whole send cycle synchronously and returns every message it
// appended.
func (c *Controller) Send(ctx context.Context) ([]conversation.Message, error) {
	appended, req, err := c.sendMessage(ctx)
	if err != nil || req == nil {
		return appended, err
	}
	msg, err := c.Deliver(c.Run(req))
	if err != nil {
		return appended, err
	}
	return append(appended, msg), nil
}

// Cancel aborts the outstanding request of a conversation. Its reply, if it
// still arrives, is dropped.
func (c *Controller) Cancel(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.pending[conversationID]
	if !ok {
		return false
	}
	req.cancel()
	delete(c.pending, conversationID)
	c.logger.Info("assistant_request_cancelled",
		"conversation_id", conversationID,
		"request_id", req.ID,
	)
	return true
}

// Close cancels every outstanding request.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, req := range c.pending {
		req.cancel()
		delete(c.pending, id)
	}
}

// appendLocked appends and persists. Save failures are only logged.
func (c *Controller) appendLocked(id string, msg conversation.Message) bool {
	next, ok := c.coll.Append(id, msg)
	if !ok {
		return false
	}
	c.coll = next
	if c.store != nil {
		if err := c.store.Save(context.Background(), c.coll); err != nil {
			c.logger.Error("conversation_save_failed", "conversation_id", id, "error", err)
		}
	}
	return true
}

// SelectConversation sets the selected id. Unknown ids select nothing.
func (c *Controller) SelectConversation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = id
}

// UpdateSearch replaces the search query.
func (c *Controller) UpdateSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = query
}

// SetCompose replaces the compose buffer.
func (c *Controller) SetCompose(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compose = text
}

func (c *Controller) Compose() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compose
}

func (c *Controller) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SelectedID returns the raw selected id, which may not exist.
func (c *Controller) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Selected returns the selected conversation, if it exists.
func (c *Controller) Selected() (conversation.Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coll.Select(c.selected)
}

// Conversations returns the collection filtered by the search query.
func (c *Controller) Conversations() conversation.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coll.Filter(c.search)
}

// All returns the unfiltered collection.
func (c *Controller) All() conversation.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coll
}

// Pending reports whether a reply is outstanding for a conversation.
func (c *Controller) Pending(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[conversationID]
	return ok
}

// AwaitingReply reports whether any reply is outstanding.
func (c *Controller) AwaitingReply() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// HasCredential reports whether AI conversations can reach the provider.
func (c *Controller) HasCredential() bool {
	return c.credential != ""
}
