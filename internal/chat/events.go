package chat

import "encoding/json"

// Event names match the browser client's protocol verbatim, spaces included.
const (
	// client -> server
	EventChatMessage    = "chat message"
	EventDeleteMessage  = "delete message"
	EventReplyMessage   = "reply message"
	EventAddReaction    = "add reaction"
	EventTyping         = "typing"
	EventChangeUsername = "change username"

	// server -> client(s). EventChatMessage is reused for posted messages
	// and history replay.
	EventMessageDeleted  = "message deleted"
	EventReactionAdded   = "reaction added"
	EventUserList        = "user list"
	EventUserTyping      = "user typing"
	EventUsernameChanged = "username changed"
)

// Envelope frames every inbound client event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound payloads.
type ChatMessageData struct {
	Content string `json:"content"`
}

type DeleteMessageData struct {
	MessageID uint `json:"messageId"`
}

type ReplyMessageData struct {
	ReplyToID uint   `json:"replyToId"`
	Content   string `json:"content"`
}

type AddReactionData struct {
	MessageID uint   `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type TypingData struct {
	IsTyping bool `json:"isTyping"`
}

type ChangeUsernameData struct {
	NewUsername string `json:"newUsername"`
}

// Outbound payloads.
//
// Ordering contract: history replay for a connection strictly precedes any
// live event that connection observes. Across connections ordering is best
// effort: broadcast order is the completion order of the store write, which
// can diverge from id order when two posts race, and two concurrent
// broadcasts may reach different clients in different relative orders.
type MessagePayload struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
	Author  string `json:"author"`
	ReplyTo *uint  `json:"replyTo,omitempty"`
}

type MessageDeletedPayload struct {
	ID uint `json:"id"`
}

type ReactionPayload struct {
	MessageID uint   `json:"messageId"`
	Username  string `json:"username"`
	Reaction  string `json:"reaction"`
}

type TypingPayload struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type UsernameChangedPayload struct {
	OldUsername string `json:"oldUsername"`
	NewUsername string `json:"newUsername"`
}
