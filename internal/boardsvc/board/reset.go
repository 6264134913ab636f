package board

import (
	"context"
	"fmt"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/google/uuid"
)

// ResetOptions optionally reconfigure the board while resetting it.
type ResetOptions struct {
	DraftType   string
	TotalRounds *int
}

// ResetGame clears rosters, votes, counters and stats and starts a new session.
// Players keep their names, orderings and owners.
func (b *Board) ResetGame(ctx context.Context, opts ResetOptions) ([]Effect, error) {
	strategy := b.strategy
	if opts.DraftType != "" && opts.DraftType != b.DraftType {
		var err error
		if strategy, err = NewStrategy(opts.DraftType); err != nil {
			return nil, err
		}
	}
	if opts.TotalRounds != nil {
		if *opts.TotalRounds < 0 {
			return nil, fmt.Errorf("%w: total rounds %d", ErrInvalidRound, *opts.TotalRounds)
		}
		// repeatable drafts count their own rounds, one per start
		if strategy.Repeatable() && *opts.TotalRounds != 0 {
			return nil, fmt.Errorf("%w: a %s draft opens one round per start", ErrFixedRounds, strategy.Name())
		}
	}
	b.strategy = strategy
	b.DraftType = strategy.Name()
	if opts.TotalRounds != nil {
		b.TotalRounds = *opts.TotalRounds
	}

	for _, p := range b.players {
		p.Roster = []models.Pick{}
		p.Stages = []int{}
		p.Stats = make(map[string]int)
	}
	for _, c := range b.characters {
		c.Release()
	}
	for _, s := range b.stages {
		s.Clear()
	}
	b.CurrentPick = 0
	b.CurrentDraftRound = 0
	b.CurrentGameRound = 0
	b.SessionID = uuid.NewString()

	effects := b.transition(models.StatusNew)
	effects = append(effects,
		RebuildPlayers(),
		RebuildCharacters(),
		RebuildStages(),
		Chat("The board was reset for a %s draft", b.DraftType))
	return effects, b.save(ctx)
}
