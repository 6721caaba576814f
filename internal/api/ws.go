package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"minipaint/internal/services/pubsub"
)

// topicNames maps the client-facing topic parameter to pubsub topics.
var topicNames = map[string]pubsub.Topic{
	"batches":  pubsub.TopicBatchesUpdated,
	"guides":   pubsub.TopicGuidesUpdated,
	"paints":   pubsub.TopicPaintsUpdated,
	"settings": pubsub.TopicSettingsUpdated,
}

// wsEvent is the frame pushed to subscribed clients. The payload is an
// opaque hint; clients re-fetch the aggregate rather than patching state.
type wsEvent struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 10 * time.Second
)

// handleWebSocket subscribes the client to update notifications for one
// topic, scoped to their own user ID. Auth rides on the token query
// parameter since browsers cannot set headers on WebSocket dials.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.Resolve(r.Context(), bearerToken(r))
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	topic, ok := topicNames[r.URL.Query().Get("topic")]
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "unknown topic")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := s.pubsub.Subscribe(topic, user.ID, 16)
	defer s.pubsub.Unsubscribe(sub)

	// Reader goroutine: discard client frames, detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case msg, open := <-sub.Channel:
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(wsEvent{Topic: string(topic), Payload: msg}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
