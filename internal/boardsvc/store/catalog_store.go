package store

import (
	"context"
	"fmt"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStore keeps the characters and stages every board picks from.
type CatalogStore struct {
	db *pgxpool.Pool
}

func NewCatalogStore(db *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) SaveCharacter(ctx context.Context, c *models.Character) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO characters (id, name, image)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, image = EXCLUDED.image
	`, c.ID, c.Name, c.Image)
	if err != nil {
		return fmt.Errorf("could not save character %d: %w", c.ID, err)
	}
	return nil
}

func (s *CatalogStore) DeleteCharacter(ctx context.Context, id int) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("could not delete character %d: %w", id, err)
	}
	return nil
}

func (s *CatalogStore) SaveStage(ctx context.Context, st *models.Stage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO stages (id, name, image, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, image = EXCLUDED.image, state = EXCLUDED.state
	`, st.ID, st.Name, st.Image, st.State)
	if err != nil {
		return fmt.Errorf("could not save stage %d: %w", st.ID, err)
	}
	return nil
}

func (s *CatalogStore) DeleteStage(ctx context.Context, id int) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM stages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("could not delete stage %d: %w", id, err)
	}
	return nil
}

func (s *CatalogStore) GetCharacters(ctx context.Context) ([]*models.Character, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, image FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get characters: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Character, error) {
		c := &models.Character{}
		err := row.Scan(&c.ID, &c.Name, &c.Image)
		return c, err
	})
}

// GetStages loads every stage with the vote slots held on the given board.
func (s *CatalogStore) GetStages(ctx context.Context, boardID int64) ([]*models.Stage, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, image, state FROM stages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get stages: %w", err)
	}
	stages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Stage, error) {
		st := &models.Stage{}
		err := row.Scan(&st.ID, &st.Name, &st.Image, &st.State)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stages: %w", err)
	}

	byID := make(map[int]*models.Stage, len(stages))
	for _, st := range stages {
		byID[st.ID] = st
	}

	rows, err = s.db.Query(ctx, `
		SELECT stage_id, slot, player_id
		FROM player_stages
		WHERE board_id = $1
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage slots: %w", err)
	}
	var stageID, slot, playerID int
	_, err = pgx.ForEachRow(rows, []any{&stageID, &slot, &playerID}, func() error {
		if st := byID[stageID]; st != nil && slot >= 0 && slot < models.StageSlots {
			st.Slots[slot] = playerID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stage slots: %w", err)
	}
	return stages, nil
}
