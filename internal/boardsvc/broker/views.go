package broker

import (
	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/avvvet/draftboard-services/internal/comm"
	"github.com/shopspring/decimal"
)

type BoardInfoView struct {
	models.BoardInfo
	NoPickId       int      `json:"noPickId"`
	MaxRounds      int      `json:"max_rounds"`
	ActivePlayerId int      `json:"active_player_id"`
	DraftTypes     []string `json:"draft_types"`
}

// PickView is a roster entry as clients see it. A pass travels as the no-pick id.
type PickView struct {
	CharacterId int  `json:"character_id"`
	Won         bool `json:"won"`
	Pass        bool `json:"pass,omitempty"`
}

type PlayerView struct {
	*models.Player
	Roster  []PickView `json:"roster"`
	WinRate string     `json:"win_rate"`
}

// Snapshot is the board as served by the HTTP endpoint.
type Snapshot struct {
	Board      BoardInfoView       `json:"board"`
	Players    []PlayerView        `json:"players"`
	Characters []*models.Character `json:"characters"`
	Stages     []*models.Stage     `json:"stages"`
	Chat       []comm.ChatLine     `json:"chat"`
	Clients    int                 `json:"clients"`
}

func (b *Broker) snapshot() Snapshot {
	return Snapshot{
		Board:      b.boardInfoView(),
		Players:    b.playerViews(),
		Characters: b.board.Characters(),
		Stages:     b.board.Stages(),
		Chat:       b.chat.Lines(),
		Clients:    len(b.sessions),
	}
}

func (b *Broker) boardInfoView() BoardInfoView {
	v := BoardInfoView{
		BoardInfo:  b.board.Info(),
		NoPickId:   models.NoPickID,
		MaxRounds:  b.board.MaxRounds(),
		DraftTypes: board.DraftTypes(),
	}
	if p := b.board.ActivePlayer(); p != nil {
		v.ActivePlayerId = p.ID
	}
	return v
}

// playerViews lists players in display order.
func (b *Broker) playerViews() []PlayerView {
	players := b.board.DisplayOrder()
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, b.playerView(p))
	}
	return views
}

func (b *Broker) playerView(p *models.Player) PlayerView {
	return PlayerView{Player: p, Roster: rosterView(p), WinRate: winRate(p)}
}

func rosterView(p *models.Player) []PickView {
	roster := make([]PickView, 0, len(p.Roster))
	for _, pick := range p.Roster {
		v := PickView{CharacterId: pick.CharacterID, Won: pick.Won}
		if pick.IsPass() {
			v.CharacterId = models.NoPickID
			v.Pass = true
		}
		roster = append(roster, v)
	}
	return roster
}

// winRate is the share of decided rounds the player won, to two places.
func winRate(p *models.Player) string {
	won := decimal.NewFromInt(int64(p.Stats[models.StatGameScore]))
	played := won.Add(decimal.NewFromInt(int64(p.Stats[models.StatLostRounds])))
	if played.IsZero() {
		return decimal.Zero.StringFixed(2)
	}
	return won.Div(played).StringFixed(2)
}

// playerPatches carries only the named fields of each player, plus its id.
func (b *Broker) playerPatches(fields []string, ids []int) []map[string]any {
	patches := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		p := b.board.Player(id)
		if p == nil {
			continue
		}
		patch := map[string]any{"id": p.ID}
		for _, field := range fields {
			switch field {
			case board.FieldName:
				patch["name"] = p.Name
			case board.FieldActive:
				patch["active"] = p.Active
			case board.FieldRoster:
				patch["roster"] = rosterView(p)
			case board.FieldStages:
				patch["stages"] = p.Stages
			case board.FieldStats:
				patch["stats"] = p.Stats
				patch["win_rate"] = winRate(p)
			case board.FieldPickOrder:
				patch["pick_order"] = p.PickOrder
				patch["display_order"] = p.DisplayOrder
			case board.FieldClient:
				patch["client_id"] = p.ClientID
				patch["user_id"] = p.UserID
			}
		}
		patches = append(patches, patch)
	}
	return patches
}

func (b *Broker) characters(ids []int) []*models.Character {
	chars := make([]*models.Character, 0, len(ids))
	for _, id := range ids {
		if c := b.board.Character(id); c != nil {
			chars = append(chars, c)
		}
	}
	return chars
}
