package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/middleware"
)

const (
	eventsWriteWait    = 10 * time.Second
	eventsPongWait     = 60 * time.Second
	eventsPingInterval = eventsPongWait * 9 / 10
)

// EventSource is satisfied by *events.Bus.
type EventSource interface {
	Subscribe(name string) (<-chan events.Event, events.Unlisten, error)
}

// EventsHandler streams bus events to webview clients over a websocket.
type EventsHandler struct {
	source   EventSource
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler creates a new EventsHandler. origins follow the CORS
// rules of middleware.OriginMatcher; an empty list accepts any origin.
func NewEventsHandler(source EventSource, origins []string, logger *slog.Logger) *EventsHandler {
	allowed := middleware.NewOriginMatcher(origins)
	return &EventsHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowed.Empty() || origin == "" || allowed.Allows(origin)
			},
		},
		logger: logger,
	}
}

// Stream handles GET /events?event=<name>. Without a name every event is
// forwarded. Each message is a JSON events.Event.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("event")
	if name == "" {
		name = events.Wildcard
	}

	ch, unlisten, err := h.source.Subscribe(name)
	if err != nil {
		h.logger.Error("event_subscribe_failed", "event", name, "error", err)
		writeError(w, http.StatusServiceUnavailable, "LISTENER_SETUP_FAILED", "Could not subscribe to events")
		return
	}
	defer unlisten()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket_upgrade_failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("event_stream_opened", "event", name, "remote_addr", r.RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			h.logger.Info("event_stream_closed", "event", name)
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "bus closed"),
					time.Now().Add(eventsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Warn("event_write_failed", "event", ev.Name, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				return
			}
		}
	}
}
