package broker

import (
	"errors"

	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/service"
)

const codeInternal = "internal"

var (
	ErrLoginRequired = errors.New("login required")
	ErrNotOwner      = errors.New("not the board owner")
)

type errorEntry struct {
	err     error
	code    string
	message string
}

// errorCodes maps validation sentinels to the code and text shown to the client.
var errorCodes = []errorEntry{
	{board.ErrInvalidTransition, "invalid_transition", "That is not possible right now"},
	{board.ErrUnknownPlayer, "no_player", "Pick a player first"},
	{board.ErrUnknownStage, "unknown_stage", "Unknown stage"},
	{board.ErrUnknownCharacter, "unknown_character", "Unknown character"},
	{board.ErrCharacterInUse, "character_taken", "That character is on a roster"},
	{board.ErrInvalidName, "invalid_name", "Player names cannot be empty"},
	{board.ErrDuplicatePlayer, "duplicate_player", "A player with that name already exists"},
	{board.ErrPlayerOwned, "player_owned", "That player belongs to someone else"},
	{board.ErrInvalidRound, "invalid_round", "There is no such round"},
	{board.ErrFixedRounds, "fixed_rounds", "That draft type adds one round each time the draft starts"},
	{board.ErrRoundPlayed, "round_played", "That round has already been played"},
	{board.ErrNotDrafting, "not_drafting", "The draft is not running"},
	{board.ErrNotTurn, "not_turn", "It is not your turn"},
	{board.ErrUnequalRosters, "unequal_rosters", "Every player needs the same number of picks"},
	{board.ErrNothingToPlay, "nothing_to_play", "There are no rounds left to play"},
	{board.ErrStageFull, "stage_full", "That stage has no open slots"},
	{board.ErrNoPlayers, "no_players", "Add a player first"},
	{board.ErrUnknownDraftType, "unknown_draft_type", "Unknown draft type"},
	{board.ErrUnknownStatus, "unknown_status", "Unknown status"},
	{ErrLoginRequired, "login_required", "Log in to change the catalog"},
	{ErrNotOwner, "not_owner", "Only the board owner can do that"},
	{service.ErrUserExists, "user_exists", "That name is already registered"},
	{service.ErrInvalidCredentials, "invalid_credentials", "Wrong name or password"},
	{service.ErrInvalidUser, "invalid_user", "Names need 1-32 characters and passwords at least 4"},
	{service.ErrInvalidToken, "invalid_token", "Your session has expired"},
}

func errorCode(err error) (string, string) {
	var pe *board.PickError
	if errors.As(err, &pe) {
		return string(pe.Code), pe.Message
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code, e.message
		}
	}
	return codeInternal, "Something went wrong, the board may not have been saved"
}

// isValidation reports whether err rejected the operation before anything changed.
func isValidation(err error) bool {
	code, _ := errorCode(err)
	return code != codeInternal
}
