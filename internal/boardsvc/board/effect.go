package board

import "fmt"

// EffectKind enumerates the side effects a board operation asks the dispatcher to run.
type EffectKind int

const (
	EffectRebuildBoardInfo EffectKind = iota
	EffectRebuildPlayers
	EffectRebuildCharacters
	EffectRebuildStages
	EffectUpdatePlayers
	EffectUpdateCharacters
	EffectUpdateStage
	EffectSetPicking
	EffectChat
)

var effectNames = map[EffectKind]string{
	EffectRebuildBoardInfo:  "rebuild-boardInfo",
	EffectRebuildPlayers:    "rebuild-players",
	EffectRebuildCharacters: "rebuild-characters",
	EffectRebuildStages:     "rebuild-stages",
	EffectUpdatePlayers:     "update-players",
	EffectUpdateCharacters:  "update-characters",
	EffectUpdateStage:       "update-stage",
	EffectSetPicking:        "set-picking",
	EffectChat:              "update-chat",
}

func (k EffectKind) String() string {
	if name, ok := effectNames[k]; ok {
		return name
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// Player fields that can travel in a partial update.
const (
	FieldName      = "name"
	FieldActive    = "active"
	FieldRoster    = "roster"
	FieldStages    = "stages"
	FieldStats     = "stats"
	FieldPickOrder = "pick_order"
	FieldClient    = "client_id"
)

// Effect is a typed side-effect descriptor. Only the fields relevant to Kind are set.
type Effect struct {
	Kind         EffectKind
	PlayerIDs    []int
	Fields       []string
	CharacterIDs []int
	StageID      int
	ClientID     int
	Enabled      bool
	Message      string
}

func RebuildBoardInfo() Effect  { return Effect{Kind: EffectRebuildBoardInfo} }
func RebuildPlayers() Effect    { return Effect{Kind: EffectRebuildPlayers} }
func RebuildCharacters() Effect { return Effect{Kind: EffectRebuildCharacters} }
func RebuildStages() Effect     { return Effect{Kind: EffectRebuildStages} }

func UpdatePlayers(fields []string, ids ...int) Effect {
	return Effect{Kind: EffectUpdatePlayers, Fields: fields, PlayerIDs: ids}
}

func UpdateCharacters(ids ...int) Effect {
	return Effect{Kind: EffectUpdateCharacters, CharacterIDs: ids}
}

func UpdateStage(id int) Effect {
	return Effect{Kind: EffectUpdateStage, StageID: id}
}

// SetPicking enables or disables the pick controls of a single client.
func SetPicking(clientID int, enabled bool) Effect {
	return Effect{Kind: EffectSetPicking, ClientID: clientID, Enabled: enabled}
}

func Chat(format string, args ...any) Effect {
	return Effect{Kind: EffectChat, Message: fmt.Sprintf(format, args...)}
}
