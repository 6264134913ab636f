package board

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDraftType  = errors.New("unknown draft type")
	ErrUnknownStatus     = errors.New("unknown status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownPlayer     = errors.New("player not found")
	ErrUnknownStage      = errors.New("stage not found")
	ErrUnknownCharacter  = errors.New("character not found")
	ErrCharacterInUse    = errors.New("character is on a roster")
	ErrInvalidName       = errors.New("invalid player name")
	ErrDuplicatePlayer   = errors.New("player name already taken")
	ErrPlayerOwned       = errors.New("player is owned by another client")
	ErrInvalidRound      = errors.New("invalid round")
	ErrRoundPlayed       = errors.New("round already played")
	ErrFixedRounds       = errors.New("draft type does not take a round count")
	ErrNotDrafting       = errors.New("board is not drafting")
	ErrNotTurn           = errors.New("not this player's turn")
	ErrUnequalRosters    = errors.New("rosters are not the same size")
	ErrNothingToPlay     = errors.New("no rounds have been drafted")
	ErrStageFull         = errors.New("stage has no open slots")
	ErrNoPlayers         = errors.New("board has no players")
)

// ErrorCode identifies a rejected pick to clients.
type ErrorCode string

const (
	CodeNotDrafting      ErrorCode = "not_drafting"
	CodeNoPlayer         ErrorCode = "no_player"
	CodeNotTurn          ErrorCode = "not_turn"
	CodeMaxCharacters    ErrorCode = "max_characters"
	CodeUnknownCharacter ErrorCode = "unknown_character"
	CodeCharacterTaken   ErrorCode = "character_taken"
)

// PickError is a recoverable validation failure reported to the picking client only.
type PickError struct {
	Code    ErrorCode
	Message string
}

func (e *PickError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func pickError(code ErrorCode, format string, args ...any) *PickError {
	return &PickError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Result is a successful pick: a log line for the activity feed and the effects to run.
type Result struct {
	Log     string
	Effects []Effect
}
