package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ParloraLabs/SurveyKit/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed serves a co-deployed rendering layer; origin enforcement
	// belongs to the fronting proxy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleTranscriptFeed streams transcript records to a websocket client:
// first a replay of everything appended so far, then live records as the
// session produces them.
func (s *Server) handleTranscriptFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	live, cancel := s.feed.Subscribe()
	defer cancel()

	// Replay after subscribing so records appended in between are not lost;
	// duplicates are filtered by sequence index.
	lastSeq := -1
	for _, rec := range s.feed.Records() {
		if err := writeRecord(conn, rec); err != nil {
			return
		}
		lastSeq = rec.Seq
	}

	// Reader goroutine just drains control frames and signals close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case rec, ok := <-live:
			if !ok {
				return
			}
			if rec.Seq <= lastSeq {
				continue
			}
			if err := writeRecord(conn, rec); err != nil {
				return
			}
			lastSeq = rec.Seq
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeRecord(conn *websocket.Conn, rec any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(rec)
}
