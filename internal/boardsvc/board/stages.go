package board

import (
	"context"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

// ToggleStage adds p's vote to a random open slot of the stage, or takes it back.
func (b *Board) ToggleStage(ctx context.Context, p *models.Player, stageID int) ([]Effect, error) {
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	s := b.stages[stageID]
	if s == nil {
		return nil, ErrUnknownStage
	}

	if slot := s.SlotOf(p.ID); slot >= 0 {
		s.Slots[slot] = 0
		p.RemoveStage(stageID)
	} else {
		open := s.OpenSlots()
		if len(open) == 0 {
			return nil, ErrStageFull
		}
		s.Slots[open[b.rand.Intn(len(open))]] = p.ID
		if !p.HasStage(stageID) {
			p.Stages = append(p.Stages, stageID)
		}
	}

	effects := []Effect{UpdateStage(stageID), UpdatePlayers([]string{FieldStages}, p.ID)}
	return effects, b.save(ctx)
}
