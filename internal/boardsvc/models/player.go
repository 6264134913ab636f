package models

import "slices"

// Unordered marks a player that has not yet been given a pick or display slot.
const Unordered = -1

const (
	StatGameScore  = "game_score"
	StatLostRounds = "lost_rounds"
)

type Player struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	UserID       int64          `json:"user_id,omitempty"`
	ClientID     int            `json:"client_id"` // 0 when no connection owns the player
	Roster       []Pick         `json:"roster"`    // index is round number - 1
	Stages       []int          `json:"stages"`
	Active       bool           `json:"active"`
	Stats        map[string]int `json:"stats"`
	PickOrder    int            `json:"pick_order"`
	DisplayOrder int            `json:"display_order"`

	// StageSlots holds the stored slot of each vote by stage id. It is only set
	// between loading a player and restoring it onto a board.
	StageSlots map[int]int `json:"-"`
}

func NewPlayer(name string) *Player {
	return &Player{
		Name:         name,
		Roster:       []Pick{},
		Stages:       []int{},
		Stats:        make(map[string]int),
		PickOrder:    Unordered,
		DisplayOrder: Unordered,
	}
}

func (p *Player) Owned() bool {
	return p.ClientID != 0
}

func (p *Player) AddStat(name string, delta int) {
	if p.Stats == nil {
		p.Stats = make(map[string]int)
	}
	p.Stats[name] += delta
}

func (p *Player) HasStage(stageID int) bool {
	return slices.Contains(p.Stages, stageID)
}

func (p *Player) RemoveStage(stageID int) {
	p.Stages = slices.DeleteFunc(p.Stages, func(id int) bool { return id == stageID })
}
