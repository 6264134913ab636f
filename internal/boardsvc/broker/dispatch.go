package broker

import (
	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/comm"
	log "github.com/sirupsen/logrus"
)

// dispatch executes effects strictly in the order the board returned them.
func (b *Broker) dispatch(effects []board.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case board.EffectRebuildBoardInfo:
			b.broadcast(EventRebuildBoardInfo, b.boardInfoView())
		case board.EffectRebuildPlayers:
			b.broadcast(EventRebuildPlayers, b.playerViews())
		case board.EffectRebuildCharacters:
			b.broadcast(EventRebuildCharacters, b.board.Characters())
		case board.EffectRebuildStages:
			b.broadcast(EventRebuildStages, b.board.Stages())
		case board.EffectUpdatePlayers:
			if patches := b.playerPatches(e.Fields, e.PlayerIDs); len(patches) > 0 {
				b.broadcast(EventUpdatePlayers, patches)
			}
		case board.EffectUpdateCharacters:
			if chars := b.characters(e.CharacterIDs); len(chars) > 0 {
				b.broadcast(EventUpdateCharacters, chars)
			}
		case board.EffectUpdateStage:
			if st := b.board.Stage(e.StageID); st != nil {
				b.broadcast(EventUpdateStage, st)
			}
		case board.EffectSetPicking:
			b.send(e.ClientID, EventSetPicking, comm.PickingData{Enabled: e.Enabled})
		case board.EffectChat:
			b.say("", e.Message)
		default:
			log.Warnf("unknown effect %s", e.Kind)
		}
	}
}

// sendState gives one client the full board.
func (b *Broker) sendState(clientId int) {
	b.send(clientId, EventRebuildBoardInfo, b.boardInfoView())
	b.send(clientId, EventRebuildPlayers, b.playerViews())
	b.send(clientId, EventRebuildCharacters, b.board.Characters())
	b.send(clientId, EventRebuildStages, b.board.Stages())
	b.send(clientId, EventRebuildChat, b.chat.Lines())
}

func (b *Broker) sendClient(clientId int) {
	data := comm.ClientData{ClientId: clientId}
	if s := b.sessions[clientId]; s != nil && s.user != nil {
		data.User = &comm.UserData{UserId: s.user.UserId, Name: s.user.Name}
		data.Token = s.token
	}
	b.send(clientId, EventSetClient, data)
}

// sendPlayer tells a client which player it holds, null when none.
func (b *Broker) sendPlayer(clientId int) {
	p := b.board.PlayerByClient(clientId)
	if p == nil {
		b.send(clientId, EventSetPlayer, nil)
		b.send(clientId, EventSetPicking, comm.PickingData{})
		return
	}
	b.send(clientId, EventSetPlayer, b.playerView(p))
	b.send(clientId, EventSetPicking, comm.PickingData{Enabled: p.Active})
}

func (b *Broker) send(clientId int, event string, data any) {
	msg, err := comm.NewMessage(event, data)
	if err != nil {
		log.Errorf("Error encoding %s: %v", event, err)
		return
	}
	b.sender.Send(clientId, msg)
}

func (b *Broker) broadcast(event string, data any) {
	msg, err := comm.NewMessage(event, data)
	if err != nil {
		log.Errorf("Error encoding %s: %v", event, err)
		return
	}
	b.sender.Broadcast(msg)
}
