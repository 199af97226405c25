// Package chat implements the event router: the rules for how client events
// are validated, persisted and fanned out, and how a joining client is
// replayed recent history.
package chat

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/MaicolCorrea/Chat-Realtime/internal/events"
	"github.com/MaicolCorrea/Chat-Realtime/internal/hub"
	"github.com/MaicolCorrea/Chat-Realtime/internal/metrics"
	"github.com/MaicolCorrea/Chat-Realtime/internal/presence"
	"github.com/MaicolCorrea/Chat-Realtime/internal/store"
)

// Store is the slice of the message store the router needs.
type Store interface {
	Append(content, author string, replyTo *uint) (uint, error)
	FindAuthor(id uint) (string, error)
	Delete(id uint) error
	RenameAuthor(oldName, newName string) error
	UpsertReaction(messageID uint, author, reaction string) error
	RecentHistory(limit int, afterID uint) ([]store.HistoryEntry, error)
}

// Broadcaster fans an event out to the connected sessions.
type Broadcaster interface {
	Broadcast(ev hub.Event)
	BroadcastExcept(sessionID string, ev hub.Event)
}

type Router struct {
	store        Store
	presence     *presence.Tracker
	bus          Broadcaster
	pub          *events.Publisher
	log          *zap.SugaredLogger
	historyLimit int
}

func NewRouter(st Store, pr *presence.Tracker, bus Broadcaster, pub *events.Publisher, historyLimit int, log *zap.SugaredLogger) *Router {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Router{store: st, presence: pr, bus: bus, pub: pub, log: log, historyLimit: historyLimit}
}

// Replay sends recent history to a freshly connected session, oldest message
// first, each message immediately followed by its reactions. Must run before
// the session is registered for live broadcasts so replayed events cannot
// interleave with them. Resumed sessions skip replay entirely.
func (r *Router) Replay(sess *hub.Session, send func(hub.Event) error) {
	if sess.Resumed {
		return
	}
	entries, err := r.store.RecentHistory(r.historyLimit, sess.Offset)
	if err != nil {
		r.storeError("history replay", err)
		return
	}
	for _, e := range entries {
		ev := hub.Event{Name: EventChatMessage, Data: MessagePayload{
			ID:      e.Message.ID,
			Content: e.Message.Content,
			Author:  e.Message.Author,
			ReplyTo: e.Message.ReplyTo,
		}}
		if err := send(ev); err != nil {
			return
		}
		for _, re := range e.Reactions {
			ev := hub.Event{Name: EventReactionAdded, Data: ReactionPayload{
				MessageID: re.MessageID,
				Username:  re.Author,
				Reaction:  re.Reaction,
			}}
			if err := send(ev); err != nil {
				return
			}
		}
	}
}

// Join adds the name to the roster and announces the new roster to everyone.
func (r *Router) Join(name string) {
	r.presence.Join(name)
	r.broadcastRoster()
}

// Leave removes the name from the roster and announces the new roster.
func (r *Router) Leave(name string) {
	r.presence.Leave(name)
	r.broadcastRoster()
}

// HandlePost persists a message and broadcasts it with its store-assigned id.
// Content is accepted as-is; empty messages are allowed.
func (r *Router) HandlePost(sess *hub.Session, content string) {
	id, err := r.store.Append(content, sess.Name, nil)
	if err != nil {
		r.storeError("post message", err)
		return
	}
	metrics.MessagesPosted.Inc()
	payload := MessagePayload{ID: id, Content: content, Author: sess.Name}
	r.publish("message.new", payload)
	r.bus.Broadcast(hub.Event{Name: EventChatMessage, Data: payload})
}

// HandleReply persists a reply. The referenced id is not checked for
// existence: a reply may outlive its parent.
func (r *Router) HandleReply(sess *hub.Session, replyTo uint, content string) {
	id, err := r.store.Append(content, sess.Name, &replyTo)
	if err != nil {
		r.storeError("reply message", err)
		return
	}
	metrics.MessagesPosted.Inc()
	payload := MessagePayload{ID: id, Content: content, Author: sess.Name, ReplyTo: &replyTo}
	r.publish("message.new", payload)
	r.bus.Broadcast(hub.Event{Name: EventChatMessage, Data: payload})
}

// HandleDelete removes a message when the requester's current display name
// matches the stored author. Anything else is silently ignored.
func (r *Router) HandleDelete(sess *hub.Session, id uint) {
	author, err := r.store.FindAuthor(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.storeError("delete message", err)
		}
		return
	}
	if author != sess.Name {
		r.log.Warnw("unauthorized delete ignored", "message_id", id, "requester", sess.Name, "session", sess.ID)
		return
	}
	if err := r.store.Delete(id); err != nil {
		r.storeError("delete message", err)
		return
	}
	metrics.MessagesDeleted.Inc()
	payload := MessageDeletedPayload{ID: id}
	r.publish("message.deleted", payload)
	r.bus.Broadcast(hub.Event{Name: EventMessageDeleted, Data: payload})
}

// HandleReaction stores the reaction (last write wins per message+author) and
// broadcasts it.
func (r *Router) HandleReaction(sess *hub.Session, messageID uint, reaction string) {
	if err := r.store.UpsertReaction(messageID, sess.Name, reaction); err != nil {
		r.storeError("add reaction", err)
		return
	}
	metrics.ReactionsAdded.Inc()
	payload := ReactionPayload{MessageID: messageID, Username: sess.Name, Reaction: reaction}
	r.publish("reaction.added", payload)
	r.bus.Broadcast(hub.Event{Name: EventReactionAdded, Data: payload})
}

// HandleTyping relays the indicator to everyone but the sender. Nothing is
// stored.
func (r *Router) HandleTyping(sess *hub.Session, isTyping bool) {
	r.bus.BroadcastExcept(sess.ID, hub.Event{Name: EventUserTyping, Data: TypingPayload{
		Username: sess.Name,
		IsTyping: isTyping,
	}})
}

// HandleRename rewrites stored authorship to the new name, swaps the roster
// entry and announces both the roster and the rename. The message rewrite and
// the presence swap are two independent steps, not a transaction.
func (r *Router) HandleRename(sess *hub.Session, newName string) {
	oldName := sess.Name
	if newName == "" || newName == oldName {
		return
	}
	if err := r.store.RenameAuthor(oldName, newName); err != nil {
		r.storeError("change username", err)
		return
	}
	r.presence.Rename(oldName, newName)
	sess.Name = newName
	r.broadcastRoster()
	payload := UsernameChangedPayload{OldUsername: oldName, NewUsername: newName}
	r.publish("username.changed", payload)
	r.bus.Broadcast(hub.Event{Name: EventUsernameChanged, Data: payload})
}

func (r *Router) broadcastRoster() {
	r.bus.Broadcast(hub.Event{Name: EventUserList, Data: r.presence.Snapshot()})
}

// storeError logs and swallows: the event is dropped, no broadcast happens,
// and the originating client is not told.
func (r *Router) storeError(op string, err error) {
	metrics.StoreErrors.Inc()
	r.log.Errorw("store operation failed", "op", op, "error", err)
}

func (r *Router) publish(event string, payload any) {
	if r.pub == nil {
		return
	}
	if err := r.pub.Publish(context.Background(), event, payload); err != nil {
		r.log.Warnw("event publish failed", "event", event, "error", err)
	}
}
