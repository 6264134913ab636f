package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const queueGroup = "auditsvc"

type ActivityStore interface {
	Insert(ctx context.Context, a comm.Activity) error
}

type Broker struct {
	Conn  *nats.Conn
	store ActivityStore
}

func NewBroker(nc *nats.Conn, store ActivityStore) *Broker {
	return &Broker{Conn: nc, store: store}
}

// Subscribe joins the archive queue group so each line is stored once across instances.
func (b *Broker) Subscribe(subject string) (*nats.Subscription, error) {
	return b.Conn.QueueSubscribe(subject, queueGroup, b.handleMessage)
}

func (b *Broker) handleMessage(msg *nats.Msg) {
	var activity comm.Activity
	if err := json.Unmarshal(msg.Data, &activity); err != nil {
		log.Errorf("Error decoding activity on %s: %v", msg.Subject, err)
		return
	}
	if activity.Message == "" {
		log.Warnf("empty activity from board %d dropped", activity.BoardId)
		return
	}
	if activity.At.IsZero() {
		activity.At = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.store.Insert(ctx, activity); err != nil {
		log.Errorf("Error archiving activity of board %d: %v", activity.BoardId, err)
		return
	}
	log.Debugf("archived activity of board %d session %s", activity.BoardId, activity.SessionId)
}
