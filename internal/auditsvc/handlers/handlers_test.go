package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	boardId int64
	limit   int64
}

func (f *fakeReader) Recent(ctx context.Context, boardId int64, limit int64) ([]comm.Activity, error) {
	f.boardId, f.limit = boardId, limit
	return []comm.Activity{{BoardId: boardId, Message: "Ann picked Mario"}}, nil
}

func TestActivityHandler(t *testing.T) {
	reader := &fakeReader{}
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	r := chi.NewRouter()
	NewHandler(reader, tokenAuth, "0").SetRoutes(r)

	_, token, err := tokenAuth.Encode(map[string]interface{}{"sub": "1"})
	require.NoError(t, err)

	get := func(path string, auth bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if auth {
			req.Header.Set("Authorization", "BEARER "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, get("/v1/activity/3", false).Code)
	assert.Equal(t, http.StatusBadRequest, get("/v1/activity/abc", true).Code)
	assert.Equal(t, http.StatusBadRequest, get("/v1/activity/3?limit=0", true).Code)

	rec := get("/v1/activity/3?limit=10", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), reader.boardId)
	assert.Equal(t, int64(10), reader.limit)

	var body struct {
		Data []comm.Activity `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Ann picked Mario", body.Data[0].Message)

	get("/v1/activity/3", true)
	assert.Equal(t, int64(defaultLimit), reader.limit)
}
