package models

// NoPickID is the character id clients send to pass a turn.
const NoPickID = 999

const CharacterStateWin = "win"

type Character struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	PlayerID int    `json:"player_id"` // 0 while unpicked
	State    string `json:"state,omitempty"`
}

func (c *Character) Owned() bool {
	return c.PlayerID != 0
}

func (c *Character) Release() {
	c.PlayerID = 0
	c.State = ""
}

type PickKind int

const (
	PickCharacter PickKind = iota
	PickPass
)

// Pick is one roster entry. A pass fills a round without a character.
type Pick struct {
	Kind        PickKind `json:"-"`
	CharacterID int      `json:"character_id,omitempty"`
	Won         bool     `json:"won,omitempty"`
}

func CharacterPick(id int) Pick {
	return Pick{Kind: PickCharacter, CharacterID: id}
}

func PassPick() Pick {
	return Pick{Kind: PickPass}
}

func (p Pick) IsPass() bool {
	return p.Kind == PickPass
}
