package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saved []comm.Activity
	err   error
}

func (s *fakeStore) Insert(ctx context.Context, a comm.Activity) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, a)
	return nil
}

func TestHandleMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		data  string
		saved int
	}{
		{"activity", `{"board_id":1,"session_id":"s1","author":"ann","message":"gg","at":"2026-03-01T12:00:00Z"}`, 1},
		{"server line", `{"board_id":1,"session_id":"s1","message":"Ann picked Mario"}`, 1},
		{"empty message", `{"board_id":1,"session_id":"s1","message":""}`, 0},
		{"garbage", `not json`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			b := NewBroker(nil, store)
			b.handleMessage(&nats.Msg{Subject: "board.activity", Data: []byte(tt.data)})
			require.Len(t, store.saved, tt.saved)
			if tt.saved == 1 {
				assert.Equal(t, int64(1), store.saved[0].BoardId)
				assert.False(t, store.saved[0].At.IsZero())
			}
		})
	}

	store := &fakeStore{}
	NewBroker(nil, store).handleMessage(&nats.Msg{Data: []byte(`{"board_id":2,"message":"hi","at":"2026-03-01T12:00:00Z"}`)})
	require.Len(t, store.saved, 1)
	assert.True(t, at.Equal(store.saved[0].At))
}

func TestHandleMessageStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("mongo down")}
	b := NewBroker(nil, store)
	assert.NotPanics(t, func() {
		b.handleMessage(&nats.Msg{Data: []byte(`{"board_id":1,"message":"hi"}`)})
	})
	assert.Empty(t, store.saved)
}
