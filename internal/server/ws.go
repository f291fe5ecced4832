package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/signtutor/internal/practice"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FeedHandler pushes practice snapshots to WebSocket clients. Each client
// gets its own subscription; a slow client only ever sees the latest state.
type FeedHandler struct {
	feed *practice.Feed
	log  *zap.SugaredLogger
}

// NewFeedHandler creates a FeedHandler for feed.
func NewFeedHandler(feed *practice.Feed, log *zap.SugaredLogger) *FeedHandler {
	return &FeedHandler{feed: feed, log: log.Named("ws")}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snaps, cancel := h.feed.Subscribe()
	defer cancel()

	// Reading keeps pongs flowing and notices the client going away.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			msg, err := json.Marshal(snap)
			if err != nil {
				h.log.Errorw("encoding snapshot", "error", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
