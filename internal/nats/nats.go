package nats

import (
	"time"

	"github.com/nats-io/nats.go"
)

const defaultUrl = "nats://localhost:4222"

type Nats struct {
	Url   string
	Token string
	Conn  *nats.Conn
}

// Connect dials the NATS server. An empty url falls back to the local default.
func Connect(url, token, name string) (*Nats, error) {
	n := &Nats{
		Url:   url,
		Token: token,
	}

	if n.Url == "" {
		n.Url = defaultUrl
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}

	// if token provided
	if n.Token != "" {
		opts = append(opts, nats.Token(n.Token))
	}

	conn, err := nats.Connect(n.Url, opts...)
	if err != nil {
		return nil, err
	}

	n.Conn = conn

	return n, nil
}

func (n *Nats) Publish(subject string, data []byte) error {
	return n.Conn.Publish(subject, data)
}

// Close drains pending messages before closing the connection.
func (n *Nats) Close() {
	if err := n.Conn.Drain(); err != nil {
		n.Conn.Close()
	}
}
