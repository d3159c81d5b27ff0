package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai_messenger/pkg/assistant"
	"ai_messenger/pkg/conversation"
	"ai_messenger/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	mu     sync.Mutex
	result assistant.Result
	calls  []fakeCall
}

type fakeCall struct {
	message string
	history []conversation.Message
}

func (f *fakeAssistant) Complete(ctx context.Context, message string, history []conversation.Message) assistant.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{message: message, history: history})
	return f.result
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingSaver struct{ calls int }

func (f *failingSaver) Save(ctx context.Context, coll conversation.Collection) error {
	f.calls++
	return errors.New("disk full")
}

var fixedNow = time.Date(2025, 6, 8, 9, 30, 15, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

type harness struct {
	ctrl  *Controller
	ai    *fakeAssistant
	store *conversation.Store
}

func newHarness(t *testing.T, credential string) harness {
	t.Helper()
	store := conversation.NewStore(kvstore.NewMemoryStore(), "")
	fake := &fakeAssistant{result: assistant.Result{Text: "Hello from Gemini", Kind: assistant.KindOK}}
	ctrl := New(store.Load(context.Background()), Options{
		Store:      store,
		Assistant:  fake,
		Credential: credential,
		Clock:      fixedClock,
	})
	t.Cleanup(ctrl.Close)
	return harness{ctrl: ctrl, ai: fake, store: store}
}

func contents(msgs []conversation.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func assertMirror(t *testing.T, coll conversation.Collection) {
	t.Helper()
	for _, conv := range coll {
		require.NotEmpty(t, conv.Messages, conv.ID)
		last := conv.Messages[len(conv.Messages)-1]
		assert.Equal(t, last.Content, conv.LastMessage, "conversation %s lastMessage", conv.ID)
		assert.Equal(t, last.Timestamp, conv.Timestamp, "conversation %s timestamp", conv.ID)
	}
}

func TestSendToContactMakesNoNetworkCall(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("1")
	h.ctrl.SetCompose("  hi  ")

	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, 0, h.ai.callCount())

	conv, ok := h.ctrl.Selected()
	require.True(t, ok)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "m1", conv.Messages[0].ID)
	assert.Equal(t, "m2", conv.Messages[1].ID)
	assert.Equal(t, conversation.SenderUser, conv.Messages[2].Sender)
	assert.Equal(t, "hi", conv.Messages[2].Content)
	assert.Equal(t, "2025-06-08 09:30", conv.Messages[2].Timestamp)
	assert.Equal(t, "", h.ctrl.Compose())
	assertMirror(t, h.ctrl.All())
}

func TestSendToAIWithoutCredential(t *testing.T) {
	h := newHarness(t, "")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")

	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.Equal(t, 0, h.ai.callCount())
	assert.False(t, h.ctrl.AwaitingReply())

	conv, _ := h.ctrl.Selected()
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "m3", conv.Messages[0].ID)
	assert.Equal(t, conversation.SenderUser, conv.Messages[1].Sender)
	assert.Equal(t, "hi", conv.Messages[1].Content)
	assert.Equal(t, conversation.SenderAI, conv.Messages[2].Sender)
	assert.Equal(t, MissingCredentialText, conv.Messages[2].Content)
	assert.Contains(t, conv.Messages[2].ID, "-error")
	assert.Equal(t, "", h.ctrl.Compose())
	assertMirror(t, h.ctrl.All())
}

func TestSendToAIWithCredential(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")

	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "2", req.ConversationID)
	assert.Equal(t, "hi", req.Message)
	assert.NotEmpty(t, req.ID)
	assert.True(t, h.ctrl.Pending("2"))
	assert.True(t, h.ctrl.AwaitingReply())
	assert.Equal(t, "", h.ctrl.Compose())

	conv, _ := h.ctrl.Selected()
	require.Len(t, conv.Messages, 2, "user message is appended before the reply")

	msg, err := h.ctrl.Deliver(h.ctrl.Run(req))
	require.NoError(t, err)
	assert.Equal(t, conversation.SenderAI, msg.Sender)
	assert.Equal(t, "Hello from Gemini", msg.Content)
	assert.Contains(t, msg.ID, "-ai")
	assert.False(t, h.ctrl.Pending("2"))

	require.Equal(t, 1, h.ai.callCount())
	call := h.ai.calls[0]
	assert.Equal(t, "hi", call.message)
	assert.Equal(t, []string{"How can I help you today?"}, contents(call.history))

	conv, _ = h.ctrl.Selected()
	assert.Equal(t, []string{"How can I help you today?", "hi", "Hello from Gemini"}, contents(conv.Messages))
	assertMirror(t, h.ctrl.All())
}

func TestSendToAIRemoteFailureAppendsErrorText(t *testing.T) {
	h := newHarness(t, "key")
	h.ai.result = assistant.Result{Text: assistant.ErrorText, Kind: assistant.KindStatus}
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")

	msgs, err := h.ctrl.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, assistant.ErrorText, msgs[1].Content)

	conv, _ := h.ctrl.Selected()
	aiCount := 0
	for _, m := range conv.Messages[1:] {
		if m.Sender == conversation.SenderAI {
			aiCount++
		}
	}
	assert.Equal(t, 1, aiCount)
}

func TestSendPreconditions(t *testing.T) {
	h := newHarness(t, "key")
	before := h.ctrl.All()

	h.ctrl.SetCompose("hi")
	_, err := h.ctrl.SendMessage()
	assert.ErrorIs(t, err, ErrNoConversation)

	h.ctrl.SelectConversation("does-not-exist")
	_, err = h.ctrl.SendMessage()
	assert.ErrorIs(t, err, ErrNoConversation)

	h.ctrl.SelectConversation("1")
	h.ctrl.SetCompose("   \n\t")
	_, err = h.ctrl.SendMessage()
	assert.ErrorIs(t, err, ErrEmptyMessage)

	assert.Equal(t, before, h.ctrl.All())
}

func TestReplyLandsInOriginalConversation(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("question")

	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	h.ctrl.SelectConversation("1")
	reply := h.ctrl.Run(req)
	_, err = h.ctrl.Deliver(reply)
	require.NoError(t, err)

	john, _ := h.ctrl.All().Select("1")
	assert.Len(t, john.Messages, 2)
	ai, _ := h.ctrl.All().Select("2")
	assert.Equal(t, "Hello from Gemini", ai.LastMessage)
	assert.Equal(t, "1", h.ctrl.SelectedID())
}

func TestSendWhilePendingIsRejected(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("first")
	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	h.ctrl.SetCompose("second")
	again, err := h.ctrl.SendMessage()
	assert.ErrorIs(t, err, ErrReplyPending)
	assert.Nil(t, again)
	assert.Equal(t, "second", h.ctrl.Compose(), "compose buffer is kept for retry")

	conv, _ := h.ctrl.Selected()
	assert.Len(t, conv.Messages, 2)

	_, err = h.ctrl.Deliver(h.ctrl.Run(req))
	require.NoError(t, err)

	_, err = h.ctrl.SendMessage()
	require.NoError(t, err)
}

func TestPendingIsPerConversation(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("to ai")
	_, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	h.ctrl.SelectConversation("1")
	h.ctrl.SetCompose("to john")
	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)
	assert.Nil(t, req)
	assert.False(t, h.ctrl.Pending("1"))
	assert.True(t, h.ctrl.Pending("2"))
}

func TestCancelDropsReply(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")
	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	assert.True(t, h.ctrl.Cancel("2"))
	assert.False(t, h.ctrl.Cancel("2"))
	assert.False(t, h.ctrl.Pending("2"))
	assert.Error(t, req.Context().Err())

	_, err = h.ctrl.Deliver(h.ctrl.Run(req))
	assert.ErrorIs(t, err, ErrRequestCancelled)

	conv, _ := h.ctrl.Selected()
	assert.Equal(t, []string{"How can I help you today?", "hi"}, contents(conv.Messages))
}

func TestCancelledRequestDoesNotClearNewerPending(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("first")
	old, err := h.ctrl.SendMessage()
	require.NoError(t, err)
	h.ctrl.Cancel("2")

	h.ctrl.SetCompose("second")
	fresh, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	_, err = h.ctrl.Deliver(h.ctrl.Run(old))
	assert.ErrorIs(t, err, ErrRequestCancelled)
	assert.True(t, h.ctrl.Pending("2"))

	_, err = h.ctrl.Deliver(h.ctrl.Run(fresh))
	require.NoError(t, err)
	assert.False(t, h.ctrl.Pending("2"))
}

func TestDeliverTwice(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")
	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	reply := h.ctrl.Run(req)
	_, err = h.ctrl.Deliver(reply)
	require.NoError(t, err)
	_, err = h.ctrl.Deliver(reply)
	assert.ErrorIs(t, err, ErrRequestDone)

	_, err = h.ctrl.Deliver(Reply{})
	assert.ErrorIs(t, err, ErrRequestCancelled)
}

func TestCloseCancelsAll(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")
	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	h.ctrl.Close()
	assert.False(t, h.ctrl.AwaitingReply())
	assert.Error(t, req.Context().Err())
}

func TestSendCancelledContext(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msgs, err := h.ctrl.Send(ctx)
	assert.ErrorIs(t, err, ErrRequestCancelled)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.False(t, h.ctrl.Pending("2"))
}

func TestSearch(t *testing.T) {
	h := newHarness(t, "")

	h.ctrl.UpdateSearch("john")
	got := h.ctrl.Conversations()
	require.Len(t, got, 1)
	assert.Equal(t, "John Doe", got[0].Name)
	assert.Equal(t, "john", h.ctrl.Search())

	h.ctrl.UpdateSearch("xyz")
	assert.Empty(t, h.ctrl.Conversations())

	h.ctrl.UpdateSearch("")
	assert.Equal(t, h.ctrl.All(), h.ctrl.Conversations())
}

func TestMutationsArePersisted(t *testing.T) {
	h := newHarness(t, "")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")
	_, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	reloaded := h.store.Load(context.Background())
	assert.Equal(t, h.ctrl.All(), reloaded)
}

func TestSaveFailureIsNotSurfaced(t *testing.T) {
	saver := &failingSaver{}
	ctrl := New(conversation.Seed(), Options{Store: saver, Clock: fixedClock})
	ctrl.SelectConversation("1")
	ctrl.SetCompose("hi")

	_, err := ctrl.SendMessage()
	require.NoError(t, err)
	assert.Equal(t, 1, saver.calls)

	conv, _ := ctrl.Selected()
	assert.Equal(t, "hi", conv.LastMessage)
}

func TestSnapshotsAreStable(t *testing.T) {
	h := newHarness(t, "")
	snapshot := h.ctrl.All()
	h.ctrl.SelectConversation("1")
	h.ctrl.SetCompose("hi")
	_, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	john, _ := snapshot.Select("1")
	assert.Len(t, john.Messages, 2)
}

func TestRunWithoutAssistant(t *testing.T) {
	ctrl := New(conversation.Seed(), Options{Credential: "key", Clock: fixedClock})
	defer ctrl.Close()
	ctrl.SelectConversation("2")
	ctrl.SetCompose("hi")

	msgs, err := ctrl.Send(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, assistant.ErrorText, msgs[1].Content)
}

func TestConcurrentRunAndDeliver(t *testing.T) {
	h := newHarness(t, "key")
	h.ctrl.SelectConversation("2")
	h.ctrl.SetCompose("hi")
	req, err := h.ctrl.SendMessage()
	require.NoError(t, err)

	done := make(chan Reply)
	go func() { done <- h.ctrl.Run(req) }()

	h.ctrl.SelectConversation("1")
	h.ctrl.UpdateSearch("doe")

	_, err = h.ctrl.Deliver(<-done)
	require.NoError(t, err)
	assertMirror(t, h.ctrl.All())
}

func TestHasCredential(t *testing.T) {
	assert.False(t, New(nil, Options{Credential: "  "}).HasCredential())
	assert.True(t, New(nil, Options{Credential: "k"}).HasCredential())
}
