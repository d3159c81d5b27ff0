// Package assistant turns a conversation history into a single completion
// request and always yields displayable text.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ai_messenger/pkg/ai"
	"ai_messenger/pkg/conversation"
)

// ErrorText is returned to the conversation whenever the remote call fails.
const ErrorText = "Error: Could not connect to Gemini API. Check your API key or network."

// Kind classifies the outcome of a completion.
type Kind int

const (
	KindOK Kind = iota
	KindTransport
	KindStatus
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Result is the outcome of Complete. Text is always set.
type Result struct {
	Text string
	Kind Kind
	Err  error
}

// OK reports whether the remote call produced a reply.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Client wraps a provider. It holds no per-conversation state.
type Client struct {
	provider ai.Provider
	model    string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = strings.TrimSpace(model)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client. A nil provider makes every call fail with ErrorText.
func New(provider ai.Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var errNoProvider = errors.New("no provider configured")

// Complete sends history plus message as one request. Contact messages are
// not part of the request.
func (c *Client) Complete(ctx context.Context, message string, history []conversation.Message) Result {
	if c == nil || c.provider == nil {
		return failure(KindTransport, errNoProvider)
	}

	req := ai.ChatRequest{
		Model:    c.model,
		Messages: BuildMessages(message, history),
	}

	start := time.Now()
	c.logger.Debug("assistant_request_start",
		"turns", len(req.Messages),
		"model", c.model,
	)

	resp, err := c.provider.CreateChatCompletion(ctx, req)
	if err != nil {
		result := failure(classify(err), err)
		c.logger.Error("assistant_request_failed",
			"kind", result.Kind.String(),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return result
	}
	if strings.TrimSpace(resp.Content) == "" {
		c.logger.Error("assistant_request_failed",
			"kind", KindMalformed.String(),
			"error", ai.ErrMalformedResponse,
		)
		return failure(KindMalformed, ai.ErrMalformedResponse)
	}

	c.logger.Debug("assistant_request_done",
		"model", resp.Model,
		"reply_len", len(resp.Content),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Result{Text: resp.Content, Kind: KindOK}
}

// BuildMessages maps history to user/assistant turns and appends message as
// the final user turn.
func BuildMessages(message string, history []conversation.Message) []ai.Message {
	out := make([]ai.Message, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Sender {
		case conversation.SenderUser:
			out = append(out, ai.Message{Role: ai.RoleUser, Content: msg.Content})
		case conversation.SenderAI:
			out = append(out, ai.Message{Role: ai.RoleAssistant, Content: msg.Content})
		}
	}
	return append(out, ai.Message{Role: ai.RoleUser, Content: message})
}

func classify(err error) Kind {
	var statusErr *ai.StatusError
	switch {
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.Is(err, ai.ErrMalformedResponse):
		return KindMalformed
	default:
		return KindTransport
	}
}

func failure(kind Kind, err error) Result {
	return Result{Text: ErrorText, Kind: kind, Err: err}
}
