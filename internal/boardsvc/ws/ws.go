package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Client is one live connection. Writes are serialized because gorilla connections
// allow a single concurrent writer.
type Client struct {
	ID   int
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// Ws is the connection registry: numeric client ids to live connections.
type Ws struct {
	connMap sync.Map // to keep track of socket connection with client id
	lastId  atomic.Int64
}

func NewWs() *Ws {
	return &Ws{}
}

// StoreConnection registers a connection under the next client id.
func (s *Ws) StoreConnection(conn *websocket.Conn) *Client {
	c := &Client{ID: int(s.lastId.Add(1)), conn: conn}
	s.connMap.Store(c.ID, c)
	return c
}

func (s *Ws) GetConnection(clientId int) (*Client, bool) {
	c, ok := s.connMap.Load(clientId)
	if !ok {
		return nil, false
	}
	return c.(*Client), true
}

func (s *Ws) RemoveConnection(clientId int) {
	s.connMap.Delete(clientId)
}

func (s *Ws) Count() int {
	count := 0
	s.connMap.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// Send writes a message to one client. Unknown clients are ignored.
func (s *Ws) Send(clientId int, m *comm.WSMessage) {
	c, ok := s.GetConnection(clientId)
	if !ok {
		log.Debugf("drop %s for gone client %d", m.Type, clientId)
		return
	}
	if err := c.WriteJSON(m); err != nil {
		log.Errorf("Error writing %s to client %d: %v", m.Type, clientId, err)
	}
}

// Broadcast writes a message to every connected client.
func (s *Ws) Broadcast(m *comm.WSMessage) {
	s.connMap.Range(func(key, value any) bool {
		c := value.(*Client)
		if err := c.WriteJSON(m); err != nil {
			log.Errorf("Error broadcasting %s to client %d: %v", m.Type, c.ID, err)
		}
		return true // continue iterating
	})
}

// CloseAll closes every connection, used on shutdown.
func (s *Ws) CloseAll() {
	s.connMap.Range(func(key, value any) bool {
		_ = value.(*Client).Close()
		s.connMap.Delete(key)
		return true
	})
}
