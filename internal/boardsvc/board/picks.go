package board

import (
	"context"
	"fmt"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

// StartDraft opens the next draft round. Only repeatable draft types may start again
// once the first draft has finished.
func (b *Board) StartDraft(ctx context.Context) ([]Effect, error) {
	switch {
	case b.Status == models.StatusNew:
	case b.strategy.Repeatable() && b.CheckStatus(models.StatusDraftComplete, models.StatusGame, models.StatusGameComplete):
	default:
		return nil, fmt.Errorf("%w: cannot start a draft while %s", ErrInvalidTransition, b.Status)
	}
	if len(b.order) == 0 {
		return nil, ErrNoPlayers
	}
	b.CurrentDraftRound++
	effects := b.transition(models.StatusDraft)
	effects = append(effects, Chat("Draft round %d has started", b.CurrentDraftRound))
	return effects, b.save(ctx)
}

// StartGame moves from drafting to round-by-round play. Every roster must be the same length.
func (b *Board) StartGame(ctx context.Context) ([]Effect, error) {
	if !b.CheckStatus(models.StatusDraft, models.StatusDraftComplete) {
		return nil, fmt.Errorf("%w: cannot start the game while %s", ErrInvalidTransition, b.Status)
	}
	if !b.rostersEqual() {
		return nil, ErrUnequalRosters
	}
	if b.MaxRounds() == 0 || b.CurrentGameRound >= b.MaxRounds() {
		return nil, ErrNothingToPlay
	}
	effects := b.transition(models.StatusGame)
	effects = append(effects, b.strategy.AdvanceGame(b)...)
	return effects, b.save(ctx)
}

func (b *Board) rostersEqual() bool {
	size := -1
	for _, p := range b.players {
		if size >= 0 && len(p.Roster) != size {
			return false
		}
		size = len(p.Roster)
	}
	return true
}

// AddCharacter runs a pick for p under the board's draft type. Rejected picks come back
// as a *PickError and leave the board untouched.
func (b *Board) AddCharacter(ctx context.Context, p *models.Player, pick models.Pick) (Result, error) {
	res, err := b.strategy.AddCharacter(b, p, pick)
	if err != nil {
		return Result{}, err
	}
	// the pick is announced after its own updates and before anything the turn change triggers
	res.Effects = append(res.Effects, Chat("%s", res.Log))
	res.Effects = append(res.Effects, b.strategy.AdvanceDraft(b)...)
	return res, b.save(ctx)
}

// DropCharacter gives back the pick p made in the given round.
func (b *Board) DropCharacter(ctx context.Context, p *models.Player, round int) ([]Effect, error) {
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if !b.CheckStatus(models.StatusDraft, models.StatusDraftComplete) {
		return nil, ErrNotDrafting
	}
	if round < 1 || round > len(p.Roster) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRound, round)
	}
	if round <= b.CurrentGameRound {
		return nil, fmt.Errorf("%w: %d", ErrRoundPlayed, round)
	}
	effects, ok := b.strategy.DropCharacter(b, p, round-1)
	if !ok {
		return nil, ErrNotTurn
	}
	return effects, b.save(ctx)
}

// SetPlayerWin records that a player won a round with the character picked for it.
// Every other player gets a lost round.
func (b *Board) SetPlayerWin(ctx context.Context, playerID, round int) ([]Effect, error) {
	p := b.players[playerID]
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if round < 1 || round > len(p.Roster) || p.Roster[round-1].IsPass() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRound, round)
	}

	pick := &p.Roster[round-1]
	pick.Won = true
	effects := []Effect{UpdatePlayers([]string{FieldRoster, FieldStats}, b.playerIDs()...)}
	name := "a pass"
	if c := b.characters[pick.CharacterID]; c != nil {
		c.State = models.CharacterStateWin
		name = c.Name
		effects = append(effects, UpdateCharacters(c.ID))
	}
	for _, other := range b.players {
		if other == p {
			other.AddStat(models.StatGameScore, 1)
		} else {
			other.AddStat(models.StatLostRounds, 1)
		}
	}
	effects = append(effects, Chat("%s won round %d with %s", p.Name, round, name))
	return effects, b.save(ctx)
}

// RoundDecided reports whether any player already won the given round.
func (b *Board) RoundDecided(round int) bool {
	for _, p := range b.players {
		if round >= 1 && round <= len(p.Roster) && p.Roster[round-1].Won {
			return true
		}
	}
	return false
}

func (b *Board) AdvanceGame(ctx context.Context) ([]Effect, error) {
	if b.Status != models.StatusGame {
		return nil, fmt.Errorf("%w: no game is running", ErrInvalidTransition)
	}
	effects := b.strategy.AdvanceGame(b)
	return effects, b.save(ctx)
}

// DecideRound marks the winner of the round being played and moves the game on.
func (b *Board) DecideRound(ctx context.Context, playerID, round int) ([]Effect, error) {
	if b.Status != models.StatusGame {
		return nil, fmt.Errorf("%w: no game is running", ErrInvalidTransition)
	}
	if round != b.CurrentGameRound {
		return nil, fmt.Errorf("%w: round %d is not being played", ErrInvalidRound, round)
	}
	if b.RoundDecided(round) {
		return nil, fmt.Errorf("%w: %d", ErrRoundPlayed, round)
	}
	effects, err := b.SetPlayerWin(ctx, playerID, round)
	if err != nil {
		return effects, err
	}
	next, err := b.AdvanceGame(ctx)
	return append(effects, next...), err
}
