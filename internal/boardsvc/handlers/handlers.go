package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avvvet/draftboard-services/internal/boardsvc/broker"
	"github.com/avvvet/draftboard-services/internal/boardsvc/ws"
	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const maxMessageSize = 8 << 10

type Handler struct {
	upgrader  websocket.Upgrader
	ws        *ws.Ws
	broker    *broker.Broker
	tokenAuth *jwtauth.JWTAuth
	port      string
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(s *ws.Ws, b *broker.Broker, tokenAuth *jwtauth.JWTAuth, port string) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ws:        s,
		broker:    b,
		tokenAuth: tokenAuth,
		port:      port,
	}
}

// HandleWebSocket upgrades the request and feeds the connection's frames to the board loop.
// A ?token= query parameter resumes a logged-in session.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := h.ws.StoreConnection(conn)
	log.Infof("New WebSocket connection established: %d", client.ID)

	if !h.broker.Submit(context.Background(), broker.Join{ClientId: client.ID, Token: r.URL.Query().Get("token")}) {
		h.ws.RemoveConnection(client.ID)
		_ = client.Close()
		return
	}

	go h.handleConnection(conn, client)
}

func (h *Handler) handleConnection(conn *websocket.Conn, client *ws.Client) {
	defer func() {
		log.Infof("Closing WebSocket connection: %d", client.ID)
		h.ws.RemoveConnection(client.ID)
		conn.Close()
		h.broker.Submit(context.Background(), broker.Leave{ClientId: client.ID})
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("WebSocket unexpected close error for client %d: %v", client.ID, err)
			}
			return
		}

		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, message); err != nil {
			log.Errorf("Failed to unmarshal message from client %d: %v", client.ID, err)
			h.sendError(client, "Invalid message format")
			continue
		}
		message.ClientId = client.ID

		log.Debugf("Received message from client %d: type=%s", client.ID, message.Type)
		if !h.broker.Submit(context.Background(), broker.FromClient{ClientId: client.ID, Message: message}) {
			return
		}
	}
}

func (h *Handler) sendError(client *ws.Client, message string) {
	msg, err := comm.NewMessage(broker.EventSetStatus, comm.StatusMessage{
		Type:    comm.StatusError,
		Code:    "bad_request",
		Message: message,
	})
	if err != nil {
		return
	}
	if err := client.WriteJSON(msg); err != nil {
		log.Errorf("Failed to send error message to client %d: %v", client.ID, err)
	}
}

// BoardHandler serves a JSON snapshot of the board.
func (h *Handler) BoardHandler(w http.ResponseWriter, r *http.Request) {
	state, err := h.broker.State(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{
			Message: "board is unavailable",
			Code:    http.StatusServiceUnavailable,
			Error:   err.Error(),
		})
		return
	}
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: state})
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "board service is running at port " + h.port,
		Code:    http.StatusOK,
		Data:    map[string]int{"clients": h.ws.Count()},
	})
}
