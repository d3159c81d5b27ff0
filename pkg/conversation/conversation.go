// Package conversation holds the messenger's data model: conversations,
// their append-only message logs, and the ordered collection persisted to
// a key-value store.
package conversation

import (
	"strings"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderContact Sender = "contact"
	SenderAI      Sender = "ai"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderContact, SenderAI:
		return true
	}
	return false
}

// Message is a single timestamped utterance. Messages are never edited.
type Message struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Conversation is a named message thread. LastMessage and Timestamp mirror
// the final entry of Messages.
type Conversation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsAI        bool      `json:"isAI"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   string    `json:"timestamp"`
	Messages    []Message `json:"messages"`
}

// Avatar returns the short badge shown next to the conversation name.
func (c Conversation) Avatar() string {
	if c.IsAI {
		return "AI"
	}
	for _, r := range c.Name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// withMessage returns a copy of c with msg appended and the mirror fields
// updated. The original message slice is never written to.
func (c Conversation) withMessage(msg Message) Conversation {
	messages := make([]Message, len(c.Messages), len(c.Messages)+1)
	copy(messages, c.Messages)
	c.Messages = append(messages, msg)
	c.LastMessage = msg.Content
	c.Timestamp = msg.Timestamp
	return c
}

// Collection is an ordered list of conversations with unique ids.
type Collection []Conversation

// Select looks up a conversation by id.
func (c Collection) Select(id string) (Conversation, bool) {
	if i := c.index(id); i >= 0 {
		return c[i], true
	}
	return Conversation{}, false
}

// Filter returns the conversations whose name contains query,
// case-insensitively, in their original order. An empty query returns c.
func (c Collection) Filter(query string) Collection {
	if query == "" {
		return c
	}
	needle := strings.ToLower(query)
	filtered := make(Collection, 0, len(c))
	for _, conv := range c {
		if strings.Contains(strings.ToLower(conv.Name), needle) {
			filtered = append(filtered, conv)
		}
	}
	return filtered
}

// Append returns a new collection with msg appended to conversation id.
// The receiver is left untouched so earlier snapshots stay valid. ok is
// false when id is unknown.
func (c Collection) Append(id string, msg Message) (Collection, bool) {
	i := c.index(id)
	if i < 0 {
		return c, false
	}
	next := make(Collection, len(c))
	copy(next, c)
	next[i] = next[i].withMessage(msg)
	return next, true
}

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, conv := range c {
		conv.Messages = append([]Message(nil), conv.Messages...)
		out[i] = conv
	}
	return out
}

func (c Collection) index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}
