package server

import (
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
)

type WebsocketTestSuite struct {
	suite.Suite
	server   *Server
	ts       *httptest.Server
	seriesID string
}

func (suite *WebsocketTestSuite) SetupTest() {
	log := logger.NewNopLogger()
	suite.server = NewServer(DefaultConfig(), nil, log)

	candles := make([]types.Candle, 10)
	for i := range candles {
		candles[i] = types.Candle{Time: 1704153600 + int64(i)*60, Close: float64(i)}
	}

	suite.seriesID = suite.server.arena.Put(types.NewPriceSeries("TEST.NS", types.Timeframe1Min, candles))
	suite.ts = httptest.NewServer(suite.server.Handler())
}

func (suite *WebsocketTestSuite) TearDownTest() {
	suite.ts.Close()
}

func TestWebsocketSuite(t *testing.T) {
	suite.Run(t, new(WebsocketTestSuite))
}

func (suite *WebsocketTestSuite) dial(query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(suite.ts.URL, "http") + "/ws/replay" + query

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)

	return conn
}

// TestSeekOverWire drives a full seek round-trip through the websocket
// endpoint.
func (suite *WebsocketTestSuite) TestSeekOverWire() {
	conn := suite.dial("?series_id=" + suite.seriesID)
	defer conn.Close()

	suite.Require().NoError(conn.WriteJSON(map[string]any{"action": "seek", "index": 4}))

	var event struct {
		Type         string           `json:"type"`
		Data         []map[string]any `json:"data"`
		CurrentIndex int              `json:"currentIndex"`
	}

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	suite.Require().NoError(conn.ReadJSON(&event))

	suite.Equal("sync", event.Type)
	suite.Equal(4, event.CurrentIndex)
	suite.Len(event.Data, 5)
}

// TestMalformedMessageIgnored checks junk input neither kills the session nor
// produces output; the next valid command still works.
func (suite *WebsocketTestSuite) TestMalformedMessageIgnored() {
	conn := suite.dial("?series_id=" + suite.seriesID)
	defer conn.Close()

	suite.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	suite.Require().NoError(conn.WriteJSON(map[string]any{"action": "seek", "index": 0}))

	var event struct {
		Type         string `json:"type"`
		CurrentIndex int    `json:"currentIndex"`
	}

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	suite.Require().NoError(conn.ReadJSON(&event))

	suite.Equal("sync", event.Type)
	suite.Equal(0, event.CurrentIndex)
}

// TestAbruptDisconnectReleasesReadPump floods a session with seek commands
// over a large series without reading any of the syncs, then drops the TCP
// connection with no close handshake. The session loop fails on a write while
// commands are still queued; the read pump must terminate anyway instead of
// blocking forever on the hand-over.
func (suite *WebsocketTestSuite) TestAbruptDisconnectReleasesReadPump() {
	candles := make([]types.Candle, 5000)
	for i := range candles {
		candles[i] = types.Candle{Time: 1704153600 + int64(i)*60, Close: float64(i)}
	}

	largeID := suite.server.arena.Put(types.NewPriceSeries("LARGE.NS", types.Timeframe1Min, candles))

	before := runtime.NumGoroutine()

	conn := suite.dial("?series_id=" + largeID)

	// Each seek syncs ~5000 candles; with no reader the socket buffers fill
	// and the session loop wedges mid-write with more commands pending.
	for i := 0; i < 20; i++ {
		suite.Require().NoError(conn.WriteJSON(map[string]any{"action": "seek", "index": 4999}))
	}

	suite.Require().NoError(conn.UnderlyingConn().Close())

	suite.Require().Eventually(func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 20*time.Millisecond, "read pump goroutine did not terminate after session exit")
}

func (suite *WebsocketTestSuite) TestUnknownSeriesRejected() {
	url := "ws" + strings.TrimPrefix(suite.ts.URL, "http") + "/ws/replay?series_id=missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Error(err)
	suite.Require().NotNil(resp)
	suite.Equal(404, resp.StatusCode)
}
