package board

import (
	"fmt"
	"slices"
	"sort"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

const (
	DraftFree      = "free"
	DraftSnake     = "snake"
	DraftScorecard = "scorecard"
)

// Hook runs when a board enters a status.
type Hook func(b *Board) []Effect

// Strategy is a draft rule-set. Implementations hold no state of their own;
// everything lives on the board so a strategy can be rebuilt from its name.
type Strategy interface {
	Name() string
	// Hooks declares the statuses the strategy supports and what entering each one does.
	Hooks() map[models.Status]Hook
	AddCharacter(b *Board, p *models.Player, pick models.Pick) (Result, error)
	AdvanceDraft(b *Board) []Effect
	DropCharacter(b *Board, p *models.Player, index int) ([]Effect, bool)
	AdvanceGame(b *Board) []Effect
	// SyncActive recomputes active flags without advancing anything.
	SyncActive(b *Board) []Effect
	// Repeatable reports whether a finished draft may be started again for another round.
	Repeatable() bool
}

var registry = map[string]func() Strategy{}

func init() {
	mustRegister(DraftFree, func() Strategy { return free{} })
	mustRegister(DraftSnake, func() Strategy { return snake{} })
	mustRegister(DraftScorecard, func() Strategy { return scorecard{} })
}

// Register adds a strategy factory after checking it declares a hook for every status.
func Register(name string, factory func() Strategy) error {
	if err := checkHooks(factory()); err != nil {
		return err
	}
	registry[name] = factory
	return nil
}

func mustRegister(name string, factory func() Strategy) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

func checkHooks(s Strategy) error {
	hooks := s.Hooks()
	for _, status := range models.Statuses() {
		if hooks[status] == nil {
			return fmt.Errorf("draft type %q: no hook for status %s", s.Name(), status)
		}
	}
	return nil
}

func NewStrategy(name string) (Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDraftType, name)
	}
	return factory(), nil
}

func DraftTypes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkPick is the precondition every strategy runs before its own rules.
func checkPick(b *Board, p *models.Player, pick models.Pick) error {
	if b.Status != models.StatusDraft {
		return pickError(CodeNotDrafting, "The draft is not running")
	}
	if p == nil {
		return pickError(CodeNoPlayer, "Pick a player before picking characters")
	}
	if pick.IsPass() {
		return nil
	}
	c := b.characters[pick.CharacterID]
	if c == nil {
		return pickError(CodeUnknownCharacter, "Unknown character %d", pick.CharacterID)
	}
	if c.Owned() {
		return pickError(CodeCharacterTaken, "%s has already been picked", c.Name)
	}
	return nil
}

func pickLog(b *Board, p *models.Player, pick models.Pick) string {
	if pick.IsPass() {
		return fmt.Sprintf("%s passed", p.Name)
	}
	return fmt.Sprintf("%s picked %s", p.Name, b.characters[pick.CharacterID].Name)
}

// pickEffects are the deltas of a roster change.
func pickEffects(p *models.Player, characterIDs ...int) []Effect {
	effects := []Effect{UpdatePlayers([]string{FieldRoster}, p.ID)}
	ids := slices.DeleteFunc(slices.Clone(characterIDs), func(id int) bool { return id == 0 })
	if len(ids) > 0 {
		effects = append(effects, UpdateCharacters(ids...))
	}
	return effects
}

// setActive applies active flags and returns the deltas for players whose flag changed.
func setActive(b *Board, active func(p *models.Player) bool) []Effect {
	var changed []int
	var effects []Effect
	for _, p := range b.Players() {
		next := active(p)
		if p.Active == next {
			continue
		}
		p.Active = next
		changed = append(changed, p.ID)
		if p.Owned() {
			effects = append(effects, SetPicking(p.ClientID, next))
		}
	}
	if len(changed) == 0 {
		return nil
	}
	return append([]Effect{UpdatePlayers([]string{FieldActive}, changed...)}, effects...)
}

func deactivateAll(b *Board) []Effect {
	return setActive(b, func(*models.Player) bool { return false })
}

func activateAll(b *Board) []Effect {
	return setActive(b, func(*models.Player) bool { return true })
}

// rostersFull reports whether every player holds at least n picks.
func rostersFull(b *Board, n int) bool {
	if len(b.order) == 0 {
		return false
	}
	for _, p := range b.Players() {
		if len(p.Roster) < n {
			return false
		}
	}
	return true
}

// advanceGameRound is shared by every strategy: all players are in play each round.
func advanceGameRound(b *Board) []Effect {
	if b.CurrentGameRound >= b.MaxRounds() {
		effects := b.transition(models.StatusGameComplete)
		return append(effects, Chat("The game is over"))
	}
	b.CurrentGameRound++
	effects := activateAll(b)
	return append(effects, RebuildBoardInfo(), Chat("Round %d begins", b.CurrentGameRound))
}

// dropPick removes a roster entry and reopens a completed draft.
func dropPick(b *Board, p *models.Player, index int) ([]Effect, bool) {
	removed, ok := b.removePick(p, index)
	if !ok {
		return nil, false
	}
	effects := pickEffects(p, removed.CharacterID)
	if b.Status == models.StatusDraftComplete {
		b.Status = models.StatusDraft
		effects = append(effects, RebuildBoardInfo(), Chat("The draft is open again"))
	}
	return effects, true
}
