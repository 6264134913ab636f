package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/broker"
	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/avvvet/draftboard-services/internal/boardsvc/service"
	"github.com/avvvet/draftboard-services/internal/boardsvc/store"
	"github.com/avvvet/draftboard-services/internal/boardsvc/ws"
	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *jwtauth.JWTAuth) {
	t.Helper()
	b, err := board.New(board.Options{
		Info: models.BoardInfo{ID: 1, DraftType: board.DraftSnake},
		Rand: rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	b.LoadCharacter(&models.Character{ID: 1, Name: "Mario"})

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	users := service.NewUserService(store.NewMemoryUserStore(), tokenAuth, time.Hour)
	registry := ws.NewWs()
	brk := broker.NewBroker(b, registry, users, broker.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go brk.Run(ctx)

	r := chi.NewRouter()
	NewHandler(registry, brk, tokenAuth, "0").SetRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		registry.CloseAll()
		srv.Close()
		cancel()
	})
	return srv, tokenAuth
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// recv reads frames until one of the given type arrives.
func recv(t *testing.T, conn *websocket.Conn, event string) *comm.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		msg := &comm.WSMessage{}
		require.NoError(t, conn.ReadJSON(msg), "waiting for %s", event)
		if msg.Type == event {
			return msg
		}
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	first := dial(t, srv)
	second := dial(t, srv)

	var client comm.ClientData
	require.NoError(t, json.Unmarshal(recv(t, first, broker.EventSetClient).Data, &client))
	assert.NotZero(t, client.ClientId)
	recv(t, second, broker.EventSetClient)

	require.NoError(t, first.WriteJSON(comm.WSMessage{
		Type: broker.EventAddPlayer,
		Data: json.RawMessage(`{"name":"Ann"}`),
	}))

	// both connections see the new player
	for _, conn := range []*websocket.Conn{first, second} {
		var players []map[string]any
		require.NoError(t, json.Unmarshal(recv(t, conn, broker.EventRebuildPlayers).Data, &players))
		require.Len(t, players, 1)
		assert.Equal(t, "Ann", players[0]["name"])
	}

	var status comm.StatusMessage
	require.NoError(t, json.Unmarshal(recv(t, first, broker.EventSetStatus).Data, &status))
	assert.Equal(t, comm.StatusSuccess, status.Type)

	require.NoError(t, first.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, json.Unmarshal(recv(t, first, broker.EventSetStatus).Data, &status))
	assert.Equal(t, "bad_request", status.Code)
}

func TestBoardHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	rsp, err := http.Get(srv.URL + "/v1/board")
	require.NoError(t, err)
	defer rsp.Body.Close()
	assert.Equal(t, http.StatusOK, rsp.StatusCode)

	var body struct {
		Code int             `json:"code"`
		Data broker.Snapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Data.Board.ID)
	assert.Equal(t, board.DraftSnake, body.Data.Board.DraftType)
	assert.Len(t, body.Data.Characters, 1)
}

func TestHealthNeedsToken(t *testing.T) {
	srv, tokenAuth := newTestServer(t)

	rsp, err := http.Get(srv.URL + "/v1/health")
	require.NoError(t, err)
	rsp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, rsp.StatusCode)

	_, token, err := tokenAuth.Encode(map[string]interface{}{"sub": "1"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "BEARER "+token)
	rsp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer rsp.Body.Close()
	assert.Equal(t, http.StatusOK, rsp.StatusCode)
}
