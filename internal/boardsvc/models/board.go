package models

// BoardInfo holds the scalar state of a board, as persisted in the boards table.
type BoardInfo struct {
	ID                int64  `json:"id"`
	SessionID         string `json:"session_id"` // regenerated on every reset
	Status            Status `json:"status"`
	DraftType         string `json:"draft_type"`
	CurrentPick       int    `json:"current_pick"`
	CurrentDraftRound int    `json:"current_draft_round"`
	CurrentGameRound  int    `json:"current_game_round"`
	TotalRounds       int    `json:"total_rounds"` // 0 means unlimited
	OwnerID           int64  `json:"owner_id,omitempty"`
}
