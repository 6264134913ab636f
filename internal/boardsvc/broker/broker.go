package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/avvvet/draftboard-services/internal/comm"
	log "github.com/sirupsen/logrus"
)

// ActivitySubject is the NATS subject every chat line is published on.
const ActivitySubject = "board.activity"

const (
	storeTimeout = 10 * time.Second
	inboxSize    = 256
)

var ErrStopped = errors.New("board loop stopped")

// Sender delivers frames to live connections.
type Sender interface {
	Send(clientId int, m *comm.WSMessage)
	Broadcast(m *comm.WSMessage)
}

type Users interface {
	Register(ctx context.Context, name, password string) (*models.User, string, error)
	Login(ctx context.Context, name, password string) (*models.User, string, error)
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

type Publisher interface {
	Publish(subject string, data []byte) error
}

// Msg is anything the board loop consumes.
type Msg interface{ isMsg() }

// Join announces a new connection, optionally resuming a session token.
type Join struct {
	ClientId int
	Token    string
}

type Leave struct {
	ClientId int
}

type FromClient struct {
	ClientId int
	Message  *comm.WSMessage
}

// GetState asks the loop for a JSON snapshot of the board.
type GetState struct {
	Reply chan<- json.RawMessage
}

func (Join) isMsg()       {}
func (Leave) isMsg()      {}
func (FromClient) isMsg() {}
func (GetState) isMsg()   {}

type session struct {
	user  *models.User
	token string
}

type Options struct {
	Publisher   Publisher // optional
	ChatHistory int
}

// Broker owns one board. Every read and write of board state happens on the goroutine
// running Run, so the board itself needs no locks.
type Broker struct {
	board    *board.Board
	sender   Sender
	users    Users
	pub      Publisher
	chat     *ChatLog
	sessions map[int]*session
	inbox    chan Msg
	done     chan struct{}
}

func NewBroker(b *board.Board, sender Sender, users Users, opts Options) *Broker {
	return &Broker{
		board:    b,
		sender:   sender,
		users:    users,
		pub:      opts.Publisher,
		chat:     NewChatLog(opts.ChatHistory),
		sessions: make(map[int]*session),
		inbox:    make(chan Msg, inboxSize),
		done:     make(chan struct{}),
	}
}

// Run processes messages one at a time until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) {
	defer close(b.done)
	log.Infof("board %d loop started (%s)", b.board.ID, b.board.DraftType)
	for {
		select {
		case <-ctx.Done():
			log.Infof("board %d loop stopped", b.board.ID)
			return
		case msg := <-b.inbox:
			b.handle(ctx, msg)
		}
	}
}

// Submit queues a message for the loop. It reports false when the loop has stopped or
// ctx ends first.
func (b *Broker) Submit(ctx context.Context, msg Msg) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.inbox <- msg:
		return true
	case <-b.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// State returns the board snapshot served over HTTP.
func (b *Broker) State(ctx context.Context) (json.RawMessage, error) {
	reply := make(chan json.RawMessage, 1)
	if !b.Submit(ctx, GetState{Reply: reply}) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrStopped
	}
	select {
	case state := <-reply:
		return state, nil
	case <-b.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Broker) handle(ctx context.Context, msg Msg) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	switch m := msg.(type) {
	case Join:
		b.join(ctx, m)
	case Leave:
		b.leave(m)
	case FromClient:
		b.route(ctx, m.ClientId, m.Message)
	case GetState:
		raw, err := json.Marshal(b.snapshot())
		if err != nil {
			log.Errorf("Error encoding board %d snapshot: %v", b.board.ID, err)
		}
		m.Reply <- raw
	}
}

func (b *Broker) join(ctx context.Context, m Join) {
	s := &session{}
	b.sessions[m.ClientId] = s
	logger := log.WithFields(log.Fields{"board": b.board.ID, "client": m.ClientId})

	var effects []board.Effect
	if m.Token != "" && b.users != nil {
		user, err := b.users.UserFromToken(ctx, m.Token)
		if err != nil {
			logger.Warnf("token rejected: %v", err)
		} else {
			s.user, s.token = user, m.Token
			_, effects, err = b.board.AttachUser(ctx, m.ClientId, user.UserId)
			if err != nil && !errors.Is(err, board.ErrPlayerOwned) {
				logger.Errorf("Error attaching user %d: %v", user.UserId, err)
			}
		}
	}
	logger.Infof("client joined (%d connected)", len(b.sessions))

	b.sendState(m.ClientId)
	b.sendClient(m.ClientId)
	b.sendPlayer(m.ClientId)
	b.dispatch(effects)
}

func (b *Broker) leave(m Leave) {
	if _, ok := b.sessions[m.ClientId]; !ok {
		return
	}
	delete(b.sessions, m.ClientId)
	b.dispatch(b.board.ReleaseClient(m.ClientId))
	log.WithFields(log.Fields{"board": b.board.ID, "client": m.ClientId}).Infof("client left (%d connected)", len(b.sessions))
}

// author names a client in chat: its account, else its player, else a guest tag.
func (b *Broker) author(clientId int) string {
	if s := b.sessions[clientId]; s != nil && s.user != nil {
		return s.user.Name
	}
	if p := b.board.PlayerByClient(clientId); p != nil {
		return p.Name
	}
	return guestName(clientId)
}

// say appends a line to the chat log, broadcasts it and publishes it for archiving.
func (b *Broker) say(author, message string) {
	line := b.chat.Add(author, message)
	b.broadcast(EventUpdateChat, line)
	if b.pub == nil {
		return
	}
	data, err := json.Marshal(comm.Activity{
		BoardId:   b.board.ID,
		SessionId: b.board.SessionID,
		Author:    line.Author,
		Message:   line.Message,
		At:        line.At,
	})
	if err != nil {
		log.Errorf("Error encoding activity: %v", err)
		return
	}
	if err := b.pub.Publish(ActivitySubject, data); err != nil {
		log.Errorf("Error publishing activity: %v", err)
	}
}
