// Package ws is the websocket gateway: it authenticates connections, turns
// inbound frames into typed events, and runs them through the message
// router, typing relay, and presence manager on a single dispatch loop.
package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/presence"
)

type inboundEvent struct {
	client *Client
	env    Envelope
}

// Hub serializes all connection lifecycle changes and inbound protocol
// events through one run loop. Store mutations triggered by an event
// complete before the next event is dispatched, which is what makes
// append-then-deliver appear atomic to every client.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	presence *presence.Manager
	router   *chat.Router
	typing   *chat.Relay
	log      *slog.Logger
}

func NewHub(p *presence.Manager, router *chat.Router, typing *chat.Relay, log *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent, 256),
		presence:   p,
		router:     router,
		typing:     typing,
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.presence.Attach(client.userID, client.username, client)
		case client := <-h.unregister:
			h.presence.Detach(client.userID, client)
		case ev := <-h.inbound:
			h.dispatch(ev)
		}
	}
}

// dispatch routes one inbound event. A panic in a handler is confined to
// the event that caused it; the connection and the loop survive.
func (h *Hub) dispatch(ev inboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic in event handler",
				"event", ev.env.Event, "userId", ev.client.userID, "panic", r)
		}
	}()

	if ev.client.State() != StateAuthenticated {
		return
	}

	switch ev.env.Event {
	case EventPrivateMessage:
		var req privateMessageRequest
		if err := json.Unmarshal(ev.env.Data, &req); err != nil {
			h.log.Debug("bad privateMessage payload", "userId", ev.client.userID, "error", err)
			return
		}
		if _, err := h.router.Send(ev.client.userID, ev.client.username, req.RecipientID, req.Message); err != nil {
			h.log.Debug("send rejected",
				"userId", ev.client.userID, "recipientId", req.RecipientID, "error", err)
		}

	case EventGetMessages:
		var req getMessagesRequest
		if err := json.Unmarshal(ev.env.Data, &req); err != nil {
			h.log.Debug("bad getMessages payload", "userId", ev.client.userID, "error", err)
			return
		}
		history, err := h.router.History(ev.client.userID, req.OtherUserID)
		if err != nil {
			h.log.Error("load history", "userId", ev.client.userID, "error", err)
			return
		}
		ev.client.Send(EventMessageHistory, history)

	case EventTyping:
		var req typingRequest
		if err := json.Unmarshal(ev.env.Data, &req); err != nil {
			h.log.Debug("bad typing payload", "userId", ev.client.userID, "error", err)
			return
		}
		h.typing.Forward(ev.client.userID, ev.client.username, req.RecipientID, req.IsTyping)

	default:
		h.log.Debug("unknown event", "event", ev.env.Event, "userId", ev.client.userID)
	}
}
