package board

import "github.com/avvvet/draftboard-services/internal/boardsvc/models"

// snake passes the turn down the pick order and reverses the order after every round.
type snake struct{}

func (snake) Name() string     { return DraftSnake }
func (snake) Repeatable() bool { return false }

func (s snake) Hooks() map[models.Status]Hook {
	return map[models.Status]Hook{
		models.StatusNew: func(b *Board) []Effect {
			b.CurrentPick = 0
			return deactivateAll(b)
		},
		models.StatusDraft: func(b *Board) []Effect {
			b.CurrentPick = 0
			return s.SyncActive(b)
		},
		models.StatusDraftComplete: deactivateAll,
		models.StatusGame:          activateAll,
		models.StatusGameComplete:  deactivateAll,
	}
}

func (snake) SyncActive(b *Board) []Effect {
	holder := turnHolder(b)
	return setActive(b, func(p *models.Player) bool {
		switch b.Status {
		case models.StatusDraft:
			return p == holder
		case models.StatusGame:
			return true
		}
		return false
	})
}

func turnHolder(b *Board) *models.Player {
	if b.CurrentPick < 0 || b.CurrentPick >= len(b.pickOrder) {
		return nil
	}
	return b.pickOrder[b.CurrentPick]
}

func (snake) AddCharacter(b *Board, p *models.Player, pick models.Pick) (Result, error) {
	if err := checkPick(b, p, pick); err != nil {
		return Result{}, err
	}
	if !p.Active {
		if holder := turnHolder(b); holder != nil {
			return Result{}, pickError(CodeNotTurn, "It is %s's turn", holder.Name)
		}
		return Result{}, pickError(CodeNotTurn, "It is not your turn")
	}
	if b.TotalRounds > 0 && len(p.Roster) >= b.TotalRounds {
		return Result{}, pickError(CodeMaxCharacters, "%s already has %d characters", p.Name, b.TotalRounds)
	}
	b.appendPick(p, pick)
	return Result{Log: pickLog(b, p, pick), Effects: pickEffects(p, pick.CharacterID)}, nil
}

func (s snake) AdvanceDraft(b *Board) []Effect {
	n := len(b.pickOrder)
	if n == 0 {
		return nil
	}
	b.CurrentPick++
	boundary := b.CurrentPick%n == 0
	if b.TotalRounds > 0 && (rostersFull(b, b.TotalRounds) || (boundary && b.CurrentDraftRound >= b.TotalRounds)) {
		b.CurrentPick = 0
		return b.completeDraft()
	}
	var effects []Effect
	if boundary {
		b.reversePickOrder()
		b.CurrentPick = 0
		b.CurrentDraftRound++
		effects = append(effects,
			UpdatePlayers([]string{FieldPickOrder}, b.playerIDs()...),
			Chat("Draft round %d begins", b.CurrentDraftRound))
	}
	effects = append(effects, s.SyncActive(b)...)
	return append(effects, RebuildBoardInfo())
}

// DropCharacter only lets the turn holder give back a pick while the draft runs.
// Dropping after completion hands the turn back to the dropping player.
func (s snake) DropCharacter(b *Board, p *models.Player, index int) ([]Effect, bool) {
	if b.Status == models.StatusDraft && !p.Active {
		return nil, false
	}
	reopened := b.Status == models.StatusDraftComplete
	effects, ok := dropPick(b, p, index)
	if !ok {
		return nil, false
	}
	if reopened {
		b.CurrentPick = p.PickOrder
	}
	return append(effects, s.SyncActive(b)...), true
}

func (snake) AdvanceGame(b *Board) []Effect {
	return advanceGameRound(b)
}
