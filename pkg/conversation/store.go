package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ai_messenger/pkg/kvstore"
)

// DefaultKey is the storage key holding the serialized collection.
const DefaultKey = "chats"

// Store persists a Collection as one JSON document under a single key.
type Store struct {
	kv  kvstore.Store
	key string
}

// NewStore wraps kv. An empty key falls back to DefaultKey.
func NewStore(kv kvstore.Store, key string) *Store {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Load returns the persisted collection, or the seed when nothing usable is
// stored. It never fails; problems are logged.
func (s *Store) Load(ctx context.Context) Collection {
	data, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		slog.Warn("conversation_store_read_failed", "key", s.key, "error", err)
		return Seed()
	}
	if !found || len(bytes.TrimSpace(data)) == 0 {
		slog.Debug("conversation_store_empty", "key", s.key)
		return Seed()
	}

	coll, err := Decode(data)
	if err != nil {
		slog.Warn("conversation_store_parse_failed", "key", s.key, "error", err)
		return Seed()
	}
	slog.Debug("conversation_store_loaded", "key", s.key, "conversations", len(coll))
	return coll
}

// Save overwrites the persisted collection.
func (s *Store) Save(ctx context.Context, coll Collection) error {
	data, err := Encode(coll)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save conversations: %w", err)
	}
	return nil
}

// Encode serializes a collection. A nil collection encodes as an empty array.
func Encode(coll Collection) ([]byte, error) {
	if coll == nil {
		coll = Collection{}
	}
	data, err := json.Marshal(coll)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversations: %w", err)
	}
	return data, nil
}

// Decode parses a serialized collection and checks its shape: ids must be
// present and unique and every sender must be known. The preview fields of
// non-empty conversations are reset from their last message.
func Decode(data []byte) (Collection, error) {
	var coll Collection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("failed to parse conversations: %w", err)
	}
	if coll == nil {
		return nil, fmt.Errorf("conversations document is null")
	}

	seen := make(map[string]struct{}, len(coll))
	for i := range coll {
		conv := &coll[i]
		if conv.ID == "" {
			return nil, fmt.Errorf("conversation %d has no id", i)
		}
		if _, dup := seen[conv.ID]; dup {
			return nil, fmt.Errorf("duplicate conversation id %q", conv.ID)
		}
		seen[conv.ID] = struct{}{}
		for _, msg := range conv.Messages {
			if !msg.Sender.Valid() {
				return nil, fmt.Errorf("conversation %q: unknown sender %q", conv.ID, msg.Sender)
			}
		}
		if conv.Messages == nil {
			conv.Messages = []Message{}
		}
		if n := len(conv.Messages); n > 0 {
			last := conv.Messages[n-1]
			conv.LastMessage = last.Content
			conv.Timestamp = last.Timestamp
		}
	}
	return coll, nil
}
