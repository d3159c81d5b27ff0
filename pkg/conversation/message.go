package conversation

import (
	"strconv"
	"sync"
	"time"
)

// TimestampLayout is minute precision local wall-clock time.
const TimestampLayout = "2006-01-02 15:04"

// Suffixes appended to ids of synthesized assistant messages.
const (
	idSuffixError = "-error"
	idSuffixAI    = "-ai"
)

// Clock returns the current time.
type Clock func() time.Time

// FormatTimestamp renders t in the local zone at minute precision.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// Factory builds messages with ids derived from a millisecond clock. Ids are
// strictly increasing within one Factory even when the clock stalls.
type Factory struct {
	mu     sync.Mutex
	now    Clock
	lastMs int64
}

// NewFactory creates a message factory. A nil clock means time.Now.
func NewFactory(now Clock) *Factory {
	if now == nil {
		now = time.Now
	}
	return &Factory{now: now}
}

// User creates a message authored by the local user.
func (f *Factory) User(content string) Message {
	return f.build(SenderUser, content, "")
}

// AIError creates the assistant message shown when no credential is set.
func (f *Factory) AIError(content string) Message {
	return f.build(SenderAI, content, idSuffixError)
}

// AIReply creates an assistant message carrying a remote reply.
func (f *Factory) AIReply(content string) Message {
	return f.build(SenderAI, content, idSuffixAI)
}

func (f *Factory) build(sender Sender, content, suffix string) Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	ms := now.UnixMilli()
	if ms <= f.lastMs {
		ms = f.lastMs + 1
	}
	f.lastMs = ms

	return Message{
		ID:        strconv.FormatInt(ms, 10) + suffix,
		Sender:    sender,
		Content:   content,
		Timestamp: FormatTimestamp(now),
	}
}
