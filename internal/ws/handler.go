// Package ws owns the websocket connection lifecycle: upgrade parameters,
// the read and write pumps, and handing inbound events to the router.
package ws

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/MaicolCorrea/Chat-Realtime/internal/chat"
	"github.com/MaicolCorrea/Chat-Realtime/internal/hub"
	"github.com/MaicolCorrea/Chat-Realtime/internal/metrics"
)

const (
	readLimit     = 64 * 1024
	pongWait      = 60 * time.Second
	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
)

type Handler struct {
	hub    *hub.Hub
	router *chat.Router
	log    *zap.SugaredLogger
}

func NewHandler(h *hub.Hub, r *chat.Router, log *zap.SugaredLogger) *Handler {
	return &Handler{hub: h, router: r, log: log}
}

// Handle returns the connection handler mounted behind the fiber websocket
// upgrade. Auth is carried on the upgrade query: username (any name may be
// claimed), offset (last message id the client has) and resumed (the
// transport restored prior state, skip replay).
func (h *Handler) Handle() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		name := conn.Query("username")
		if name == "" {
			name = "anonymous"
		}
		offset, _ := strconv.ParseUint(conn.Query("offset"), 10, 32)
		resumed := conn.Query("resumed") == "true"

		sess := hub.NewSession(name, uint(offset), resumed)
		h.log.Infow("client connected", "session", sess.ID, "username", name, "resumed", resumed)

		// Replay runs synchronously on the raw connection before the session
		// joins the broadcast set, so replayed history always precedes any
		// live event this connection observes.
		h.router.Replay(sess, func(ev hub.Event) error { return conn.WriteJSON(ev) })

		h.hub.Register(sess)
		go h.writePump(conn, sess)
		h.router.Join(sess.Name)
		metrics.ConnectionsActive.Inc()

		h.readPump(conn, sess)

		h.hub.Unregister(sess)
		h.router.Leave(sess.Name)
		metrics.ConnectionsActive.Dec()
		h.log.Infow("client disconnected", "session", sess.ID, "username", sess.Name)
	}
}

func (h *Handler) readPump(conn *websocket.Conn, sess *hub.Session) {
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env chat.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		h.dispatch(sess, env)
	}
}

func (h *Handler) dispatch(sess *hub.Session, env chat.Envelope) {
	switch env.Event {
	case chat.EventChatMessage:
		var d chat.ChatMessageData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		h.router.HandlePost(sess, d.Content)
	case chat.EventDeleteMessage:
		var d chat.DeleteMessageData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		h.router.HandleDelete(sess, d.MessageID)
	case chat.EventReplyMessage:
		var d chat.ReplyMessageData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		h.router.HandleReply(sess, d.ReplyToID, d.Content)
	case chat.EventAddReaction:
		var d chat.AddReactionData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		h.router.HandleReaction(sess, d.MessageID, d.Reaction)
	case chat.EventTyping:
		var d chat.TypingData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		h.router.HandleTyping(sess, d.IsTyping)
	case chat.EventChangeUsername:
		var d chat.ChangeUsernameData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		h.router.HandleRename(sess, d.NewUsername)
	default:
		// unknown events are ignored
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sess *hub.Session) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case ev, ok := <-sess.Send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
