package ui

import (
	"testing"

	"ai_messenger/pkg/ui/components/chatlist"
	"ai_messenger/pkg/ui/components/testutils"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"
)

// normalizeOutput drops styling so snapshots compare layout and text only.
func normalizeOutput(output string) string {
	return ansi.Strip(output)
}

func TestModelViewGolden(t *testing.T) {
	m, _ := newTestModel(t, "key")

	golden.RequireEqual(t, []byte(normalizeOutput(m.render())))
}

func TestModelViewGolden_PendingReply(t *testing.T) {
	m, _ := newTestModel(t, "key")
	m = step(t, m, chatlist.SelectMsg{ID: "2"})
	m = typeInto(t, m, "hi")

	newModel, cmd := m.Update(testutils.TestKeyEnter)
	m = newModel.(Model)
	if cmd == nil {
		t.Fatal("Expected submit command")
	}
	// The assistant command is left unrun so the reply stays pending.
	newModel, _ = m.Update(cmd())
	m = newModel.(Model)
	if !m.chat.Pending() {
		t.Fatal("Expected a pending reply")
	}

	golden.RequireEqual(t, []byte(normalizeOutput(m.render())))
}
