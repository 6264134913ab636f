package board

import (
	"context"
	"slices"
	"testing"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// partial forgets to say what happens when a game completes.
type partial struct{ free }

func (partial) Name() string { return "partial" }

func (p partial) Hooks() map[models.Status]Hook {
	hooks := p.free.Hooks()
	delete(hooks, models.StatusGameComplete)
	return hooks
}

func TestStrategiesDeclareEveryStatus(t *testing.T) {
	assert.Equal(t, []string{DraftFree, DraftScorecard, DraftSnake}, DraftTypes())
	for _, name := range DraftTypes() {
		s, err := NewStrategy(name)
		require.NoError(t, err)
		assert.NoError(t, checkHooks(s), name)
	}

	err := Register("partial", func() Strategy { return partial{} })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game-complete")
	_, err = NewStrategy("partial")
	assert.ErrorIs(t, err, ErrUnknownDraftType)
}

func TestPickPreconditions(t *testing.T) {
	ctx := context.Background()
	for _, draftType := range DraftTypes() {
		t.Run(draftType, func(t *testing.T) {
			b, _ := newTestBoard(t, draftType, 0, "Ann", "Bob")
			ann := b.Player(1)

			_, err := b.AddCharacter(ctx, ann, models.CharacterPick(1))
			requirePickError(t, err, CodeNotDrafting)

			_, err = b.StartDraft(ctx)
			require.NoError(t, err)

			_, err = b.AddCharacter(ctx, nil, models.CharacterPick(1))
			requirePickError(t, err, CodeNoPlayer)
			_, err = b.AddCharacter(ctx, ann, models.CharacterPick(404))
			requirePickError(t, err, CodeUnknownCharacter)

			pick(t, b, ann, 1)
			_, err = b.AddCharacter(ctx, b.Player(2), models.CharacterPick(1))
			requirePickError(t, err, CodeCharacterTaken)
			assert.Empty(t, b.Player(2).Roster)
		})
	}
}

func TestSnakeTwoPlayerDraft(t *testing.T) {
	b, _ := newTestBoard(t, DraftSnake, 2, "A", "B")
	_, err := b.StartDraft(context.Background())
	require.NoError(t, err)
	a, bp := b.Player(1), b.Player(2)
	require.Equal(t, []string{"A"}, activeNames(b))
	assert.Equal(t, 1, b.CurrentDraftRound)

	pick(t, b, a, 1)
	assert.Equal(t, []string{"B"}, activeNames(b))
	assert.Equal(t, 1, b.CurrentPick)

	pick(t, b, bp, 2)
	assert.Equal(t, 0, b.CurrentPick)
	assert.Equal(t, 2, b.CurrentDraftRound)
	assert.Equal(t, []*models.Player{bp, a}, b.PickOrder())
	assert.Equal(t, []string{"B"}, activeNames(b))

	pick(t, b, bp, 3)
	assert.Equal(t, []string{"A"}, activeNames(b))

	pick(t, b, a, 4)
	assert.Equal(t, models.StatusDraftComplete, b.Status)
	assert.Empty(t, activeNames(b))
	assert.Equal(t, []models.Pick{models.CharacterPick(1), models.CharacterPick(4)}, a.Roster)
	assert.Equal(t, []models.Pick{models.CharacterPick(2), models.CharacterPick(3)}, bp.Roster)
}

func TestPickIsAnnouncedAfterItsUpdates(t *testing.T) {
	b, _ := newTestBoard(t, DraftSnake, 2, "A", "B")
	_, err := b.StartDraft(context.Background())
	require.NoError(t, err)
	pick(t, b, b.Player(1), 1)

	res := pick(t, b, b.Player(2), 2)
	chatAt := func(message string) int {
		return slices.IndexFunc(res.Effects, func(e Effect) bool {
			return e.Kind == EffectChat && e.Message == message
		})
	}
	announced := chatAt("B picked char-2")
	require.GreaterOrEqual(t, announced, 0)
	roster := slices.IndexFunc(res.Effects, func(e Effect) bool { return e.Kind == EffectUpdatePlayers })
	characters := slices.IndexFunc(res.Effects, func(e Effect) bool { return e.Kind == EffectUpdateCharacters })
	assert.Less(t, roster, announced)
	assert.Less(t, characters, announced)
	assert.Less(t, announced, chatAt("Draft round 2 begins"))
}

func TestSnakeRoundReversesPickOrder(t *testing.T) {
	b, _ := newTestBoard(t, DraftSnake, 0, "Ann", "Bob", "Cid", "Dee")
	_, err := b.StartDraft(context.Background())
	require.NoError(t, err)

	next := 1
	for round := 1; round <= 3; round++ {
		before := b.PickOrder()
		for range before {
			pick(t, b, b.ActivePlayer(), next)
			next++
		}
		after := b.PickOrder()
		for i := range before {
			assert.Same(t, before[len(before)-1-i], after[i])
			assert.Equal(t, i, after[i].PickOrder)
		}
		assert.Equal(t, 0, b.CurrentPick)
		assert.Equal(t, round+1, b.CurrentDraftRound)
		assert.Equal(t, models.StatusDraft, b.Status, "unlimited drafts never complete")
	}
}

func TestSnakeTurnRules(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t, DraftSnake, 1, "Ann", "Bob")
	_, err := b.StartDraft(ctx)
	require.NoError(t, err)
	ann, bob := b.Player(1), b.Player(2)

	_, err = b.AddCharacter(ctx, bob, models.CharacterPick(1))
	requirePickError(t, err, CodeNotTurn)

	res, err := b.AddCharacter(ctx, ann, models.PassPick())
	require.NoError(t, err)
	assert.Equal(t, "Ann passed", res.Log)
	assert.True(t, ann.Roster[0].IsPass())

	// only the turn holder may give back a pick during the draft
	_, err = b.DropCharacter(ctx, ann, 1)
	assert.ErrorIs(t, err, ErrNotTurn)

	pick(t, b, bob, 2)
	require.Equal(t, models.StatusDraftComplete, b.Status)

	// dropping after completion reopens the draft with the dropper on the clock
	_, err = b.DropCharacter(ctx, bob, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, b.Status)
	assert.Equal(t, []string{"Bob"}, activeNames(b))
	assert.False(t, b.Character(2).Owned())

	pick(t, b, bob, 3)
	assert.Equal(t, models.StatusDraftComplete, b.Status)
}

func TestFreeUnlimitedDraftNeverCompletes(t *testing.T) {
	b, _ := newTestBoard(t, DraftFree, 0, "Ann", "Bob")
	_, err := b.StartDraft(context.Background())
	require.NoError(t, err)
	ann, bob := b.Player(1), b.Player(2)

	for i, p := range []*models.Player{ann, ann, bob, ann, bob, bob} {
		pick(t, b, p, i+1)
		assert.Equal(t, models.StatusDraft, b.Status)
	}
	assert.Len(t, ann.Roster, 3)
	assert.Len(t, bob.Roster, 3)
	assert.ElementsMatch(t, []string{"Ann", "Bob"}, activeNames(b))
}

func TestFreeCompletionFollowsRosters(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t, DraftFree, 2, "Ann", "Bob")
	_, err := b.StartDraft(ctx)
	require.NoError(t, err)
	ann, bob := b.Player(1), b.Player(2)

	pick(t, b, ann, 1)
	pick(t, b, ann, 2)
	assert.Equal(t, []string{"Bob"}, activeNames(b))

	_, err = b.AddCharacter(ctx, ann, models.CharacterPick(3))
	requirePickError(t, err, CodeMaxCharacters)

	pick(t, b, bob, 3)
	assert.Equal(t, models.StatusDraft, b.Status)
	pick(t, b, bob, 4)
	assert.Equal(t, models.StatusDraftComplete, b.Status)

	_, err = b.DropCharacter(ctx, bob, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, b.Status)
	assert.Equal(t, []string{"Bob"}, activeNames(b))
	assert.Equal(t, 2, b.CurrentDraftRound)

	pick(t, b, bob, 5)
	assert.Equal(t, models.StatusDraftComplete, b.Status)
}

func TestScorecardRounds(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t, DraftScorecard, 0, "Ann", "Bob")
	ann, bob := b.Player(1), b.Player(2)

	_, err := b.StartDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.TotalRounds)

	pick(t, b, ann, 1)
	res := pick(t, b, ann, 2)
	assert.Equal(t, []models.Pick{models.CharacterPick(2)}, ann.Roster, "a second pick replaces the first")
	assert.False(t, b.Character(1).Owned())
	assert.Contains(t, res.Effects, UpdateCharacters(2, 1))

	pick(t, b, bob, 3)
	require.Equal(t, models.StatusDraftComplete, b.Status)

	_, err = b.StartGame(ctx)
	require.NoError(t, err)
	_, err = b.DecideRound(ctx, ann.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.StatusGameComplete, b.Status)

	_, err = b.StartDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.TotalRounds)
	assert.Equal(t, 2, b.CurrentDraftRound)
	assert.ElementsMatch(t, []string{"Ann", "Bob"}, activeNames(b))

	_, err = b.DropCharacter(ctx, ann, 1)
	assert.ErrorIs(t, err, ErrRoundPlayed)

	pick(t, b, bob, 4)
	pick(t, b, ann, 5)
	require.Equal(t, models.StatusDraftComplete, b.Status)

	_, err = b.StartGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.CurrentGameRound)
}

func TestNonRepeatableDraftStartsOnce(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t, DraftSnake, 1, "Ann")
	_, err := b.StartDraft(ctx)
	require.NoError(t, err)
	pick(t, b, b.Player(1), 1)
	require.Equal(t, models.StatusDraftComplete, b.Status)

	_, err = b.StartDraft(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
