package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/avvvet/draftboard-services/internal/comm"
	log "github.com/sirupsen/logrus"
)

// inbound
const (
	EventStartDraft           = "start-draft"
	EventStartGame            = "start-game"
	EventAddCharacter         = "add-character"
	EventPlayerCharacterClick = "player-character-click"
	EventPickPlayer           = "pick-player"
	EventPlayerRemoveClick    = "player-remove-click"
	EventClickStage           = "click-stage"
	EventPlayersShuffle       = "players-shuffle"
	EventReset                = "reset"
	EventUserLogin            = "user-login"
	EventRegisterUser         = "register-user"
	EventUserLogout           = "user-logout"
	EventAddPlayer            = "add-player"
	EventChatMessage          = "chat-message"
	EventPutCharacter         = "put-character"
	EventRemoveCharacter      = "remove-character"
	EventPutStage             = "put-stage"
	EventRemoveStage          = "remove-stage"
)

// outbound
const (
	EventRebuildBoardInfo  = "rebuild-boardInfo"
	EventRebuildPlayers    = "rebuild-players"
	EventRebuildCharacters = "rebuild-characters"
	EventRebuildStages     = "rebuild-stages"
	EventRebuildChat       = "rebuild-chat"
	EventUpdatePlayers     = "update-players"
	EventUpdateCharacters  = "update-characters"
	EventUpdateStage       = "update-stage"
	EventUpdateChat        = "update-chat"
	EventSetClient         = "set-client"
	EventSetPlayer         = "set-player"
	EventSetStatus         = "set-status"
	EventSetPicking        = "set-picking"
)

const maxChatLength = 280

// route handles one client message.
func (b *Broker) route(ctx context.Context, clientId int, msg *comm.WSMessage) {
	s := b.sessions[clientId]
	if s == nil || msg == nil {
		log.Warnf("message from unknown client %d", clientId)
		return
	}

	switch msg.Type {
	case EventStartDraft:
		effects, err := b.board.StartDraft(ctx)
		b.apply(clientId, effects, err, "")

	case EventStartGame:
		effects, err := b.board.StartGame(ctx)
		b.apply(clientId, effects, err, "")

	case EventAddCharacter:
		var req comm.CharacterPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		pick := models.CharacterPick(req.CharacterId)
		if req.CharacterId == models.NoPickID {
			pick = models.PassPick()
		}
		res, err := b.board.AddCharacter(ctx, b.board.PlayerByClient(clientId), pick)
		b.apply(clientId, res.Effects, err, res.Log)

	case EventPlayerCharacterClick:
		var req comm.PlayerCharacterClick
		if !b.decode(clientId, msg, &req) {
			return
		}
		b.playerCharacterClick(ctx, clientId, req)

	case EventPickPlayer:
		var req comm.PlayerPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		var userId int64
		if s.user != nil {
			userId = s.user.UserId
		}
		effects, err := b.board.ClaimPlayer(ctx, req.PlayerId, clientId, userId)
		b.apply(clientId, effects, err, "")
		if p := b.board.PlayerByClient(clientId); p != nil && p.ID == req.PlayerId {
			b.sendPlayer(clientId)
		}

	case EventPlayerRemoveClick:
		var req comm.PlayerPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		target := b.board.Player(req.PlayerId)
		if target == nil {
			b.fail(clientId, board.ErrUnknownPlayer)
			return
		}
		if target.Owned() && target.ClientID != clientId {
			b.fail(clientId, board.ErrPlayerOwned)
			return
		}
		mine := target.ClientID == clientId
		effects, err := b.board.DropPlayer(ctx, target.ID)
		b.apply(clientId, effects, err, "")
		if mine {
			b.sendPlayer(clientId)
		}

	case EventClickStage:
		var req comm.StagePayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		effects, err := b.board.ToggleStage(ctx, b.board.PlayerByClient(clientId), req.StageId)
		b.apply(clientId, effects, err, "")

	case EventPlayersShuffle:
		effects, err := b.board.ShufflePlayers(ctx)
		b.apply(clientId, effects, err, "")

	case EventReset:
		var req comm.ResetPayload
		if len(msg.Data) > 0 && !b.decode(clientId, msg, &req) {
			return
		}
		effects, err := b.board.ResetGame(ctx, board.ResetOptions{DraftType: req.DraftType, TotalRounds: req.TotalRounds})
		b.apply(clientId, effects, err, "")

	case EventUserLogin, EventRegisterUser:
		var req comm.Credentials
		if !b.decode(clientId, msg, &req) {
			return
		}
		b.authenticate(ctx, clientId, msg.Type == EventRegisterUser, req)

	case EventUserLogout:
		effects, err := b.board.DetachUser(ctx, clientId)
		s.user, s.token = nil, ""
		b.sendClient(clientId)
		b.sendPlayer(clientId)
		b.apply(clientId, effects, err, "Logged out")

	case EventAddPlayer:
		var req comm.AddPlayerPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		p, effects, err := b.board.AddPlayer(ctx, req.Name)
		ok := ""
		if p != nil {
			ok = fmt.Sprintf("Added %s", p.Name)
		}
		b.apply(clientId, effects, err, ok)

	case EventChatMessage:
		var req comm.ChatPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		text := strings.TrimSpace(req.Message)
		if text == "" {
			return
		}
		if utf8.RuneCountInString(text) > maxChatLength {
			text = string([]rune(text)[:maxChatLength])
		}
		b.say(b.author(clientId), text)

	case EventPutCharacter, EventPutStage, EventRemoveCharacter, EventRemoveStage:
		if err := b.canEditCatalog(s); err != nil {
			b.fail(clientId, err)
			return
		}
		b.editCatalog(ctx, clientId, msg)

	default:
		log.Warnf("unknown event received: %s", msg.Type)
	}
}

// canEditCatalog lets any account edit the catalog of an unowned board, and only
// the owner edit an owned one.
func (b *Broker) canEditCatalog(s *session) error {
	if s.user == nil {
		return ErrLoginRequired
	}
	if b.board.OwnerID != 0 && b.board.OwnerID != s.user.UserId {
		return ErrNotOwner
	}
	return nil
}

func (b *Broker) editCatalog(ctx context.Context, clientId int, msg *comm.WSMessage) {
	logger := log.WithFields(log.Fields{"board": b.board.ID, "client": clientId, "event": msg.Type})

	switch msg.Type {
	case EventPutCharacter:
		var req comm.CatalogPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		c, effects, err := b.board.PutCharacter(ctx, models.Character{ID: req.Id, Name: req.Name, Image: req.Image})
		ok := ""
		if err == nil {
			ok = fmt.Sprintf("Saved %s", c.Name)
			logger.Infof("character %d saved as %q", c.ID, c.Name)
		}
		b.apply(clientId, effects, err, ok)

	case EventRemoveCharacter:
		var req comm.CharacterPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		effects, err := b.board.RemoveCharacter(ctx, req.CharacterId)
		if err == nil {
			logger.Infof("character %d removed", req.CharacterId)
		}
		b.apply(clientId, effects, err, "Character removed")

	case EventPutStage:
		var req comm.CatalogPayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		st, effects, err := b.board.PutStage(ctx, models.Stage{ID: req.Id, Name: req.Name, Image: req.Image})
		ok := ""
		if err == nil {
			ok = fmt.Sprintf("Saved %s", st.Name)
			logger.Infof("stage %d saved as %q", st.ID, st.Name)
		}
		b.apply(clientId, effects, err, ok)

	case EventRemoveStage:
		var req comm.StagePayload
		if !b.decode(clientId, msg, &req) {
			return
		}
		effects, err := b.board.RemoveStage(ctx, req.StageId)
		if err == nil {
			logger.Infof("stage %d removed", req.StageId)
		}
		b.apply(clientId, effects, err, "Stage removed")
	}
}

// playerCharacterClick decides a round while the game runs and drops a pick while drafting.
func (b *Broker) playerCharacterClick(ctx context.Context, clientId int, req comm.PlayerCharacterClick) {
	if b.board.Status == models.StatusGame {
		effects, err := b.board.DecideRound(ctx, req.PlayerId, req.Round)
		b.apply(clientId, effects, err, "")
		return
	}

	p := b.board.PlayerByClient(clientId)
	if p == nil || p.ID != req.PlayerId {
		b.fail(clientId, board.ErrPlayerOwned)
		return
	}
	if req.Round < 1 || req.Round > len(p.Roster) || !pickMatches(p.Roster[req.Round-1], req.CharacterId) {
		b.fail(clientId, board.ErrInvalidRound)
		return
	}
	dropped := pickName(b.board, p.Roster[req.Round-1])
	effects, err := b.board.DropCharacter(ctx, p, req.Round)
	if err == nil || !isValidation(err) {
		effects = append(effects, board.Chat("%s dropped %s", p.Name, dropped))
	}
	b.apply(clientId, effects, err, "")
}

func (b *Broker) authenticate(ctx context.Context, clientId int, register bool, req comm.Credentials) {
	if b.users == nil {
		b.status(clientId, comm.StatusError, "accounts_unavailable", "Accounts are not available")
		return
	}

	var (
		user  *models.User
		token string
		err   error
	)
	if register {
		user, token, err = b.users.Register(ctx, req.Name, req.Password)
	} else {
		user, token, err = b.users.Login(ctx, req.Name, req.Password)
	}
	if err != nil {
		b.fail(clientId, err)
		return
	}

	s := b.sessions[clientId]
	s.user, s.token = user, token
	b.sendClient(clientId)

	_, effects, err := b.board.AttachUser(ctx, clientId, user.UserId)
	if errors.Is(err, board.ErrPlayerOwned) {
		// the account's player is held by another connection; stay logged in without it
		err = nil
	}
	b.sendPlayer(clientId)
	b.apply(clientId, effects, err, fmt.Sprintf("Welcome, %s", user.Name))
}

func (b *Broker) decode(clientId int, msg *comm.WSMessage, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.Warnf("Error decoding %s from client %d: %v", msg.Type, clientId, err)
		b.status(clientId, comm.StatusError, "bad_request", "Malformed request")
		return false
	}
	return true
}

// apply runs the effects of an operation, then reports the outcome to the caller.
// Effects are dispatched even on a storage error because memory already changed.
func (b *Broker) apply(clientId int, effects []board.Effect, err error, ok string) {
	b.dispatch(effects)
	if err != nil {
		b.fail(clientId, err)
		return
	}
	if ok != "" {
		b.status(clientId, comm.StatusSuccess, "", ok)
	}
}

func (b *Broker) fail(clientId int, err error) {
	code, message := errorCode(err)
	if code == codeInternal {
		log.WithFields(log.Fields{"board": b.board.ID, "client": clientId}).Errorf("Error storing board: %v", err)
	}
	b.status(clientId, comm.StatusError, code, message)
}

func (b *Broker) status(clientId int, kind, code, message string) {
	b.send(clientId, EventSetStatus, comm.StatusMessage{Type: kind, Code: code, Message: message})
}

func pickMatches(pick models.Pick, characterId int) bool {
	if pick.IsPass() {
		return characterId == models.NoPickID
	}
	return pick.CharacterID == characterId
}

func pickName(b *board.Board, pick models.Pick) string {
	if pick.IsPass() {
		return "a pass"
	}
	if c := b.Character(pick.CharacterID); c != nil {
		return c.Name
	}
	return fmt.Sprintf("character %d", pick.CharacterID)
}

func guestName(clientId int) string {
	return fmt.Sprintf("guest-%d", clientId)
}
