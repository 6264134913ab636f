package board

import "github.com/avvvet/draftboard-services/internal/boardsvc/models"

// scorecard drafts one round at a time: every start of the draft opens one more round
// and each player fills it in any order.
type scorecard struct{}

func (scorecard) Name() string     { return DraftScorecard }
func (scorecard) Repeatable() bool { return true }

func (s scorecard) Hooks() map[models.Status]Hook {
	return map[models.Status]Hook{
		models.StatusNew: func(b *Board) []Effect {
			b.TotalRounds = 0
			return deactivateAll(b)
		},
		models.StatusDraft: func(b *Board) []Effect {
			b.TotalRounds++
			return s.SyncActive(b)
		},
		models.StatusDraftComplete: deactivateAll,
		models.StatusGame:          activateAll,
		models.StatusGameComplete:  deactivateAll,
	}
}

func (scorecard) SyncActive(b *Board) []Effect {
	return setActive(b, func(p *models.Player) bool {
		switch b.Status {
		case models.StatusDraft:
			return len(p.Roster) < b.TotalRounds
		case models.StatusGame:
			return true
		}
		return false
	})
}

// AddCharacter fills the open round, replacing whatever the player picked for it before.
func (scorecard) AddCharacter(b *Board, p *models.Player, pick models.Pick) (Result, error) {
	if err := checkPick(b, p, pick); err != nil {
		return Result{}, err
	}
	var released int
	if open := b.TotalRounds - 1; open >= 0 && open < len(p.Roster) {
		released = b.setPick(p, open, pick).CharacterID
	} else {
		b.appendPick(p, pick)
	}
	return Result{Log: pickLog(b, p, pick), Effects: pickEffects(p, pick.CharacterID, released)}, nil
}

func (s scorecard) AdvanceDraft(b *Board) []Effect {
	effects := s.SyncActive(b)
	if rostersFull(b, b.TotalRounds) {
		return append(effects, b.completeDraft()...)
	}
	return effects
}

func (s scorecard) DropCharacter(b *Board, p *models.Player, index int) ([]Effect, bool) {
	effects, ok := dropPick(b, p, index)
	if !ok {
		return nil, false
	}
	return append(effects, s.AdvanceDraft(b)...), true
}

func (scorecard) AdvanceGame(b *Board) []Effect {
	return advanceGameRound(b)
}
