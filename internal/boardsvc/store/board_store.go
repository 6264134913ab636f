package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BoardStore keeps board rows, players, rosters and stage votes.
type BoardStore struct {
	db *pgxpool.Pool
}

func NewBoardStore(db *pgxpool.Pool) *BoardStore {
	return &BoardStore{db: db}
}

func (s *BoardStore) GetBoard(ctx context.Context, id int64) (*models.BoardInfo, error) {
	query := `
		SELECT id, session_id, status, draft_type, current_pick, current_draft_round,
		       current_game_round, total_rounds, COALESCE(owner_id, 0)
		FROM boards
		WHERE id = $1
	`

	info := &models.BoardInfo{}
	var status int
	err := s.db.QueryRow(ctx, query, id).Scan(
		&info.ID,
		&info.SessionID,
		&status,
		&info.DraftType,
		&info.CurrentPick,
		&info.CurrentDraftRound,
		&info.CurrentGameRound,
		&info.TotalRounds,
		&info.OwnerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // board not created yet
		}
		return nil, fmt.Errorf("failed to get board by ID: %w", err)
	}
	info.Status = models.Status(status)

	return info, nil
}

// SaveState writes the whole board in one transaction. Rosters and votes are replaced.
func (s *BoardStore) SaveState(ctx context.Context, info models.BoardInfo, players []*models.Player, stages []*models.Stage) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin board transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO boards (id, session_id, status, draft_type, current_pick, current_draft_round,
		                    current_game_round, total_rounds, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			status = EXCLUDED.status,
			draft_type = EXCLUDED.draft_type,
			current_pick = EXCLUDED.current_pick,
			current_draft_round = EXCLUDED.current_draft_round,
			current_game_round = EXCLUDED.current_game_round,
			total_rounds = EXCLUDED.total_rounds,
			owner_id = EXCLUDED.owner_id,
			updated_at = now()
	`, info.ID, info.SessionID, int(info.Status), info.DraftType, info.CurrentPick,
		info.CurrentDraftRound, info.CurrentGameRound, info.TotalRounds, nullID(info.OwnerID))

	for _, p := range players {
		batch.Queue(`
			INSERT INTO players (board_id, id, name, user_id, active, stats, pick_order, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (board_id, id) DO UPDATE SET
				name = EXCLUDED.name,
				user_id = EXCLUDED.user_id,
				active = EXCLUDED.active,
				stats = EXCLUDED.stats,
				pick_order = EXCLUDED.pick_order,
				display_order = EXCLUDED.display_order
		`, info.ID, p.ID, p.Name, nullID(p.UserID), p.Active, p.Stats, p.PickOrder, p.DisplayOrder)
	}

	batch.Queue(`DELETE FROM player_characters WHERE board_id = $1`, info.ID)
	for _, p := range players {
		for position, pick := range p.Roster {
			var characterID *int
			if !pick.IsPass() {
				characterID = &pick.CharacterID
			}
			batch.Queue(`
				INSERT INTO player_characters (board_id, player_id, position, character_id, won)
				VALUES ($1, $2, $3, $4, $5)
			`, info.ID, p.ID, position, characterID, pick.Won)
		}
	}

	batch.Queue(`DELETE FROM player_stages WHERE board_id = $1`, info.ID)
	for _, st := range stages {
		for slot, playerID := range st.Slots {
			if playerID == 0 {
				continue
			}
			batch.Queue(`
				INSERT INTO player_stages (board_id, player_id, stage_id, slot)
				VALUES ($1, $2, $3, $4)
			`, info.ID, playerID, st.ID, slot)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save board %d: %w", info.ID, err)
	}
	return tx.Commit(ctx)
}

func (s *BoardStore) DeletePlayer(ctx context.Context, boardID int64, playerID int) error {
	_, err := s.db.Exec(ctx, `DELETE FROM players WHERE board_id = $1 AND id = $2`, boardID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", playerID, err)
	}
	return nil
}

// GetPlayers loads the players of a board with their rosters and stage votes.
func (s *BoardStore) GetPlayers(ctx context.Context, boardID int64) ([]*models.Player, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(user_id, 0), active, stats, pick_order, display_order
		FROM players
		WHERE board_id = $1
		ORDER BY id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	players, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Player, error) {
		p := models.NewPlayer("")
		err := row.Scan(&p.ID, &p.Name, &p.UserID, &p.Active, &p.Stats, &p.PickOrder, &p.DisplayOrder)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan players: %w", err)
	}

	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	rows, err = s.db.Query(ctx, `
		SELECT player_id, character_id, won
		FROM player_characters
		WHERE board_id = $1
		ORDER BY player_id, position
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rosters: %w", err)
	}
	var (
		playerID    int
		characterID *int
		won         bool
	)
	_, err = pgx.ForEachRow(rows, []any{&playerID, &characterID, &won}, func() error {
		p := byID[playerID]
		if p == nil {
			return nil
		}
		pick := models.PassPick()
		if characterID != nil {
			pick = models.CharacterPick(*characterID)
		}
		pick.Won = won
		p.Roster = append(p.Roster, pick)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rosters: %w", err)
	}

	rows, err = s.db.Query(ctx, `
		SELECT player_id, stage_id, slot
		FROM player_stages
		WHERE board_id = $1
		ORDER BY player_id, stage_id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage votes: %w", err)
	}
	var stageID, slot int
	_, err = pgx.ForEachRow(rows, []any{&playerID, &stageID, &slot}, func() error {
		p := byID[playerID]
		if p == nil {
			return nil
		}
		if p.StageSlots == nil {
			p.StageSlots = make(map[int]int)
		}
		p.Stages = append(p.Stages, stageID)
		p.StageSlots[stageID] = slot
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stage votes: %w", err)
	}

	return players, nil
}

func nullID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
