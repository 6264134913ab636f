package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the lifecycle state of a board.
type Status int

const (
	StatusNew Status = iota
	StatusDraft
	StatusDraftComplete
	StatusGame
	StatusGameComplete
)

var statusNames = [...]string{
	StatusNew:           "new",
	StatusDraft:         "draft",
	StatusDraftComplete: "draft-complete",
	StatusGame:          "game",
	StatusGameComplete:  "game-complete",
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusNew, StatusDraft, StatusDraftComplete, StatusGame, StatusGameComplete}
}

func (s Status) Valid() bool {
	return s >= StatusNew && s <= StatusGameComplete
}

func (s Status) String() string {
	if !s.Valid() {
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus accepts a Status, a symbolic name or an ordinal.
func ParseStatus(value any) (Status, error) {
	switch v := value.(type) {
	case Status:
		if v.Valid() {
			return v, nil
		}
	case string:
		for i, name := range statusNames {
			if name == v {
				return Status(i), nil
			}
		}
		if n, err := strconv.Atoi(v); err == nil {
			return ParseStatus(n)
		}
	case int:
		if s := Status(v); s.Valid() {
			return s, nil
		}
	case int64:
		return ParseStatus(int(v))
	case float64:
		if v == float64(int(v)) {
			return ParseStatus(int(v))
		}
	}
	return 0, fmt.Errorf("unknown status %v", value)
}
