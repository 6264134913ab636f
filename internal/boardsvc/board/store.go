package board

import (
	"context"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

// Store persists board state. A board without a store keeps everything in memory.
// Stage votes travel with the state; the stage rows themselves are catalog data.
type Store interface {
	SaveState(ctx context.Context, info models.BoardInfo, players []*models.Player, stages []*models.Stage) error
	DeletePlayer(ctx context.Context, boardID int64, playerID int) error
	SaveCharacter(ctx context.Context, c *models.Character) error
	DeleteCharacter(ctx context.Context, id int) error
	SaveStage(ctx context.Context, s *models.Stage) error
	DeleteStage(ctx context.Context, id int) error
}
