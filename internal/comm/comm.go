package comm

import (
	"encoding/json"
	"time"
)

// WSMessage is the envelope of every websocket frame and every NATS payload.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "add-character", "rebuild-players"
	Data     json.RawMessage `json:"data,omitempty"`
	ClientId int             `json:"clientid,omitempty"`
}

func NewMessage(msgType string, data any) (*WSMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &WSMessage{Type: msgType, Data: raw}, nil
}

// inbound payloads

type CharacterPayload struct {
	CharacterId int `json:"characterId"`
}

type PlayerCharacterClick struct {
	CharacterId int `json:"characterId"`
	Round       int `json:"round"`
	PlayerId    int `json:"playerId"`
}

type PlayerPayload struct {
	PlayerId int `json:"playerId"`
}

type StagePayload struct {
	StageId int `json:"stageId"`
}

type ResetPayload struct {
	DraftType   string `json:"draftType,omitempty"`
	TotalRounds *int   `json:"totalRounds,omitempty"`
}

type Credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type AddPlayerPayload struct {
	Name string `json:"name"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

// CatalogPayload adds a character or stage, or renames it when Id is set.
type CatalogPayload struct {
	Id    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// outbound payloads

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type StatusMessage struct {
	Type    string `json:"type"` // success or error
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type UserData struct {
	UserId int64  `json:"user_id"`
	Name   string `json:"name"`
}

type ClientData struct {
	ClientId int       `json:"client_id"`
	User     *UserData `json:"user"`
	Token    string    `json:"token,omitempty"`
}

type PickingData struct {
	Enabled bool `json:"enabled"`
}

type ChatLine struct {
	At      time.Time `json:"at"`
	Author  string    `json:"author,omitempty"` // empty for server-authored lines
	Message string    `json:"message"`
}

// Activity is published on NATS for every chat line so it can be archived.
type Activity struct {
	BoardId   int64     `json:"board_id" bson:"board_id"`
	SessionId string    `json:"session_id" bson:"session_id"`
	Author    string    `json:"author,omitempty" bson:"author,omitempty"`
	Message   string    `json:"message" bson:"message"`
	At        time.Time `json:"at" bson:"at"`
}
