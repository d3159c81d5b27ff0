package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"ai_messenger/pkg/config"
	"ai_messenger/pkg/controller"
)

// runCmd executes the root command in an isolated home with no credential.
func runCmd(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvAPIKeyFallback, "")

	base := []string{
		"--config", filepath.Join(home, "config.json"),
		"--env-file", "",
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	home := t.TempDir()

	out, err := runCmd(t, home, "--store", "memory", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"1\tJohn Doe\tcontact", "2\tAI Assistant\tai", "How can I help you today?"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestListCommand_Search(t *testing.T) {
	home := t.TempDir()

	out, err := runCmd(t, home, "--store", "memory", "list", "--search", "JOHN")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "John Doe") || strings.Contains(out, "AI Assistant") {
		t.Fatalf("Expected only John Doe, got:\n%s", out)
	}

	out, err = runCmd(t, home, "--store", "memory", "list", "--search", "xyz")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != "No conversations" {
		t.Fatalf("Expected empty listing, got %q", out)
	}
}

func TestSendCommand_ContactPersists(t *testing.T) {
	home := t.TempDir()
	storeDir := filepath.Join(home, "data")

	out, err := runCmd(t, home, "--store", "file", "--store-path", storeDir, "send", "--chat", "1", "See", "you")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !strings.Contains(out, "user: See you") {
		t.Fatalf("Expected appended user message, got:\n%s", out)
	}

	out, err = runCmd(t, home, "--store", "file", "--store-path", storeDir, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "See you") {
		t.Fatalf("Expected persisted preview, got:\n%s", out)
	}
}

func TestSendCommand_AIWithoutCredential(t *testing.T) {
	home := t.TempDir()

	out, err := runCmd(t, home, "--store", "memory", "send", "--chat", "2", "Hi")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !strings.Contains(out, "user: Hi") {
		t.Errorf("Expected user message, got:\n%s", out)
	}
	if !strings.Contains(out, "ai: "+controller.MissingCredentialText) {
		t.Errorf("Expected missing credential reply, got:\n%s", out)
	}
}

func TestSendCommand_Errors(t *testing.T) {
	home := t.TempDir()

	if _, err := runCmd(t, home, "--store", "memory", "send", "--chat", "99", "Hi"); err == nil || !strings.Contains(err.Error(), "unknown conversation") {
		t.Fatalf("Expected unknown conversation error, got %v", err)
	}
	if _, err := runCmd(t, home, "--store", "memory", "send", "--chat", "1", "   "); err == nil {
		t.Fatal("Expected error for blank message")
	}
	if _, err := runCmd(t, home, "--store", "memory", "send", "Hi"); err == nil {
		t.Fatal("Expected error without --chat")
	}
}

func TestInvalidStoreBackend(t *testing.T) {
	home := t.TempDir()

	_, err := runCmd(t, home, "--store", "redis", "list")
	if err == nil || !strings.Contains(err.Error(), "unsupported storage backend") {
		t.Fatalf("Expected storage validation error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	home := t.TempDir()

	out, err := runCmd(t, home, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "ai_messenger version ") {
		t.Fatalf("Unexpected version output %q", out)
	}
	for _, want := range []string{"  providers:", "    gemini  Gemini generateContent REST endpoint", "    google  ", "    openai  "} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in version output:\n%s", want, out)
		}
	}
}

func TestNewAssistant_NoCredentialSkipsProvider(t *testing.T) {
	client, err := newAssistant(config.Default(), "", nil)
	if err != nil {
		t.Fatalf("newAssistant failed: %v", err)
	}
	if client == nil {
		t.Fatal("Expected a client")
	}
}

func TestNewAssistant_WithCredential(t *testing.T) {
	cfg := config.Default()
	cfg.LLMProvider = config.ProviderOpenAI

	client, err := newAssistant(cfg, "sk-test", nil)
	if err != nil {
		t.Fatalf("newAssistant failed: %v", err)
	}
	if client == nil {
		t.Fatal("Expected a client")
	}
}
