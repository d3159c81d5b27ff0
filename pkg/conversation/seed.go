package conversation

// Seed returns the built-in collection used when nothing has been persisted.
func Seed() Collection {
	return Collection{
		{
			ID:          "1",
			Name:        "John Doe",
			IsAI:        false,
			LastMessage: "Good, thanks! You?",
			Timestamp:   "2025-06-07 22:01",
			Messages: []Message{
				{ID: "m1", Sender: SenderContact, Content: "Hey, how are you?", Timestamp: "2025-06-07 22:00"},
				{ID: "m2", Sender: SenderUser, Content: "Good, thanks! You?", Timestamp: "2025-06-07 22:01"},
			},
		},
		{
			ID:          "2",
			Name:        "AI Assistant",
			IsAI:        true,
			LastMessage: "How can I help you today?",
			Timestamp:   "2025-06-07 22:05",
			Messages: []Message{
				{ID: "m3", Sender: SenderAI, Content: "How can I help you today?", Timestamp: "2025-06-07 22:05"},
			},
		},
	}
}
