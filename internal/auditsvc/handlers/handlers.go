package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type ActivityReader interface {
	Recent(ctx context.Context, boardId int64, limit int64) ([]comm.Activity, error)
}

type Handler struct {
	activity  ActivityReader
	tokenAuth *jwtauth.JWTAuth
	port      string
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(activity ActivityReader, tokenAuth *jwtauth.JWTAuth, port string) *Handler {
	return &Handler{activity: activity, tokenAuth: tokenAuth, port: port}
}

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
			r.Get("/activity/{boardId}", h.ActivityHandler)
		})
	})
}

// ActivityHandler lists the archived lines of a board, newest first.
func (h *Handler) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	boardId, err := strconv.ParseInt(chi.URLParam(r, "boardId"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid board id", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	limit := int64(defaultLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 || limit > maxLimit {
			h.CreateResponse(w, Response{Message: "limit must be between 1 and 500", Code: http.StatusBadRequest})
			return
		}
	}

	lines, err := h.activity.Recent(r.Context(), boardId, limit)
	if err != nil {
		log.Errorf("Error reading activity of board %d: %v", boardId, err)
		h.CreateResponse(w, Response{Message: "failed to read activity", Code: http.StatusInternalServerError})
		return
	}
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: lines})
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
		Message: "audit service is running at port " + h.port,
		Code:    http.StatusOK,
	})
}
