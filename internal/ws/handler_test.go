package ws

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/MaicolCorrea/Chat-Realtime/internal/chat"
	"github.com/MaicolCorrea/Chat-Realtime/internal/hub"
	"github.com/MaicolCorrea/Chat-Realtime/internal/presence"
	"github.com/MaicolCorrea/Chat-Realtime/internal/store"
)

// recordingBus captures fan-out calls instead of delivering them.
type recordingBus struct {
	events []hub.Event
	except []string // "" for Broadcast, session id for BroadcastExcept
}

func (b *recordingBus) Broadcast(ev hub.Event) {
	b.events = append(b.events, ev)
	b.except = append(b.except, "")
}

func (b *recordingBus) BroadcastExcept(id string, ev hub.Event) {
	b.events = append(b.events, ev)
	b.except = append(b.except, id)
}

func (b *recordingBus) reset() {
	b.events = nil
	b.except = nil
}

func newTestHandler(t *testing.T) (*Handler, *recordingBus) {
	t.Helper()
	log := zap.NewNop().Sugar()
	st := store.Open(filepath.Join(t.TempDir(), "chat.db"), log)
	st.Init()
	bus := &recordingBus{}
	router := chat.NewRouter(st, presence.NewTracker(), bus, nil, 50, log)
	return NewHandler(hub.New(), router, log), bus
}

func envelope(event, data string) chat.Envelope {
	return chat.Envelope{Event: event, Data: json.RawMessage(data)}
}

func TestDispatch_ChatMessage(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)

	h.dispatch(sess, envelope(chat.EventChatMessage, `{"content":"hi"}`))

	if len(bus.events) != 1 || bus.events[0].Name != chat.EventChatMessage {
		t.Fatalf("unexpected broadcasts: %v", bus.events)
	}
	p := bus.events[0].Data.(chat.MessagePayload)
	if p.ID != 1 || p.Content != "hi" || p.Author != "alice" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestDispatch_ReplyCarriesReplyTo(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)
	h.dispatch(sess, envelope(chat.EventChatMessage, `{"content":"hi"}`))
	bus.reset()

	h.dispatch(sess, envelope(chat.EventReplyMessage, `{"replyToId":1,"content":"hello"}`))

	p := bus.events[0].Data.(chat.MessagePayload)
	if p.ID != 2 || p.ReplyTo == nil || *p.ReplyTo != 1 {
		t.Fatalf("unexpected reply payload %+v", p)
	}
}

func TestDispatch_DeleteAndReaction(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)
	h.dispatch(sess, envelope(chat.EventChatMessage, `{"content":"hi"}`))
	bus.reset()

	h.dispatch(sess, envelope(chat.EventAddReaction, `{"messageId":1,"reaction":"👍"}`))
	if len(bus.events) != 1 || bus.events[0].Name != chat.EventReactionAdded {
		t.Fatalf("reaction not dispatched: %v", bus.events)
	}
	bus.reset()

	h.dispatch(sess, envelope(chat.EventDeleteMessage, `{"messageId":1}`))
	if len(bus.events) != 1 || bus.events[0].Name != chat.EventMessageDeleted {
		t.Fatalf("delete not dispatched: %v", bus.events)
	}
}

func TestDispatch_TypingExcludesSender(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)

	h.dispatch(sess, envelope(chat.EventTyping, `{"isTyping":true}`))

	if len(bus.events) != 1 || bus.events[0].Name != chat.EventUserTyping {
		t.Fatalf("typing not dispatched: %v", bus.events)
	}
	if bus.except[0] != sess.ID {
		t.Fatalf("typing not excluded from sender: %q", bus.except[0])
	}
}

func TestDispatch_ChangeUsername(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)

	h.dispatch(sess, envelope(chat.EventChangeUsername, `{"newUsername":"bob"}`))

	if sess.Name != "bob" {
		t.Fatalf("session name not updated: %q", sess.Name)
	}
	if len(bus.events) != 2 || bus.events[1].Name != chat.EventUsernameChanged {
		t.Fatalf("rename not dispatched: %v", bus.events)
	}
}

func TestDispatch_UnknownEventIgnored(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)

	h.dispatch(sess, envelope("upload file", `{"name":"x"}`))

	if len(bus.events) != 0 {
		t.Fatalf("unknown event produced broadcasts: %v", bus.events)
	}
}

func TestDispatch_MalformedDataIgnored(t *testing.T) {
	h, bus := newTestHandler(t)
	sess := hub.NewSession("alice", 0, false)

	h.dispatch(sess, envelope(chat.EventChatMessage, `not json`))
	h.dispatch(sess, envelope(chat.EventDeleteMessage, `{"messageId":"not-a-number"}`))
	h.dispatch(sess, envelope(chat.EventTyping, `[1,2,3]`))

	if len(bus.events) != 0 {
		t.Fatalf("malformed data produced broadcasts: %v", bus.events)
	}
}
