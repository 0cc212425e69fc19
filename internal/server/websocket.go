package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/replay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin in the reference deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSink adapts a websocket connection to the replay session's sink. The
// session loop is the only writer on the connection.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(event replay.Event) error {
	return s.conn.WriteJSON(event)
}

// handleReplay upgrades the connection and runs a replay session over the
// requested series. The read pump feeds commands to the session loop and
// closing the channel on disconnect tears the session down.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	series, err := s.arena.Get(query.Get("series_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, errorMessage(err))
		return
	}

	startIndex := initialVisibleCount
	if series.Len() > 0 && startIndex > series.Len()-1 {
		startIndex = series.Len() - 1
	}

	if raw := query.Get("start_index"); raw != "" {
		if idx, err := strconv.Atoi(raw); err == nil {
			startIndex = idx
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	commands := make(chan replay.Command)

	// done unblocks a pump stuck handing over a command after the session
	// loop has already exited on a failed write.
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(commands)

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var cmd replay.Command
			if err := json.Unmarshal(message, &cmd); err != nil {
				// Malformed control messages are ignored; the
				// session keeps waiting for the next one.
				s.log.Debug("Ignoring malformed replay message", zap.Error(err))
				continue
			}

			select {
			case commands <- cmd:
			case <-done:
				return
			}
		}
	}()

	session := replay.NewSession(series, &wsSink{conn: conn}, startIndex, s.log)

	if err := session.Run(r.Context(), commands); err != nil {
		s.log.Debug("Replay session ended", zap.Error(err))
	}
}
