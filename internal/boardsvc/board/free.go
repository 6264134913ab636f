package board

import "github.com/avvvet/draftboard-services/internal/boardsvc/models"

// free lets every player pick at once until they reach the round cap.
type free struct{}

func (free) Name() string     { return DraftFree }
func (free) Repeatable() bool { return false }

func (s free) Hooks() map[models.Status]Hook {
	return map[models.Status]Hook{
		models.StatusNew:           deactivateAll,
		models.StatusDraft:         s.SyncActive,
		models.StatusDraftComplete: deactivateAll,
		models.StatusGame:          activateAll,
		models.StatusGameComplete:  deactivateAll,
	}
}

func (free) SyncActive(b *Board) []Effect {
	return setActive(b, func(p *models.Player) bool {
		switch b.Status {
		case models.StatusDraft:
			return b.TotalRounds == 0 || len(p.Roster) < b.TotalRounds
		case models.StatusGame:
			return true
		}
		return false
	})
}

func (free) AddCharacter(b *Board, p *models.Player, pick models.Pick) (Result, error) {
	if err := checkPick(b, p, pick); err != nil {
		return Result{}, err
	}
	if b.TotalRounds > 0 && len(p.Roster) >= b.TotalRounds {
		return Result{}, pickError(CodeMaxCharacters, "%s already has %d characters", p.Name, b.TotalRounds)
	}
	if !p.Active {
		return Result{}, pickError(CodeNotTurn, "%s cannot pick right now", p.Name)
	}
	b.appendPick(p, pick)
	return Result{Log: pickLog(b, p, pick), Effects: pickEffects(p, pick.CharacterID)}, nil
}

func (s free) AdvanceDraft(b *Board) []Effect {
	effects := s.SyncActive(b)
	if b.TotalRounds > 0 && rostersFull(b, b.MaxRounds()) {
		return append(effects, b.completeDraft()...)
	}
	round := shortestRoster(b) + 1
	if b.TotalRounds > 0 && round > b.TotalRounds {
		round = b.TotalRounds
	}
	if round != b.CurrentDraftRound {
		b.CurrentDraftRound = round
		effects = append(effects, RebuildBoardInfo())
	}
	return effects
}

func (s free) DropCharacter(b *Board, p *models.Player, index int) ([]Effect, bool) {
	effects, ok := dropPick(b, p, index)
	if !ok {
		return nil, false
	}
	return append(effects, s.AdvanceDraft(b)...), true
}

func (free) AdvanceGame(b *Board) []Effect {
	return advanceGameRound(b)
}

func shortestRoster(b *Board) int {
	shortest := -1
	for _, p := range b.Players() {
		if shortest < 0 || len(p.Roster) < shortest {
			shortest = len(p.Roster)
		}
	}
	if shortest < 0 {
		return 0
	}
	return shortest
}
