package board

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"time"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/google/uuid"
)

// Board is the aggregate for one drafting session. It is not safe for concurrent use:
// a single event loop owns it and calls every method.
type Board struct {
	models.BoardInfo

	players      map[int]*models.Player
	order        []int // player ids in insertion order
	pickOrder    []*models.Player
	displayOrder []*models.Player
	characters   map[int]*models.Character
	stages       map[int]*models.Stage

	strategy Strategy
	store    Store
	rand     *rand.Rand
}

type Options struct {
	Info models.BoardInfo
	// Store may be nil, in which case nothing is persisted.
	Store Store
	Rand  *rand.Rand
}

func New(opts Options) (*Board, error) {
	info := opts.Info
	if info.DraftType == "" {
		info.DraftType = DraftSnake
	}
	strategy, err := NewStrategy(info.DraftType)
	if err != nil {
		return nil, err
	}
	if _, ok := strategy.Hooks()[info.Status]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStatus, info.Status)
	}
	if info.TotalRounds < 0 {
		return nil, fmt.Errorf("%w: total rounds %d", ErrInvalidRound, info.TotalRounds)
	}
	if info.SessionID == "" {
		info.SessionID = uuid.NewString()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Board{
		BoardInfo:  info,
		players:    make(map[int]*models.Player),
		characters: make(map[int]*models.Character),
		stages:     make(map[int]*models.Stage),
		strategy:   strategy,
		store:      opts.Store,
		rand:       rnd,
	}, nil
}

func (b *Board) Info() models.BoardInfo {
	return b.BoardInfo
}

func (b *Board) Strategy() Strategy {
	return b.strategy
}

// Players returns the players in insertion order.
func (b *Board) Players() []*models.Player {
	players := make([]*models.Player, 0, len(b.order))
	for _, id := range b.order {
		players = append(players, b.players[id])
	}
	return players
}

func (b *Board) PickOrder() []*models.Player {
	return slices.Clone(b.pickOrder)
}

func (b *Board) DisplayOrder() []*models.Player {
	return slices.Clone(b.displayOrder)
}

func (b *Board) Player(id int) *models.Player {
	return b.players[id]
}

func (b *Board) PlayerByClient(clientID int) *models.Player {
	if clientID == 0 {
		return nil
	}
	for _, p := range b.players {
		if p.ClientID == clientID {
			return p
		}
	}
	return nil
}

func (b *Board) PlayerByUser(userID int64) *models.Player {
	if userID == 0 {
		return nil
	}
	for _, id := range b.order {
		if p := b.players[id]; p.UserID == userID {
			return p
		}
	}
	return nil
}

func (b *Board) Character(id int) *models.Character {
	return b.characters[id]
}

// Characters returns the catalog sorted by id.
func (b *Board) Characters() []*models.Character {
	characters := make([]*models.Character, 0, len(b.characters))
	for _, c := range b.characters {
		characters = append(characters, c)
	}
	sort.Slice(characters, func(i, j int) bool { return characters[i].ID < characters[j].ID })
	return characters
}

func (b *Board) Stage(id int) *models.Stage {
	return b.stages[id]
}

func (b *Board) Stages() []*models.Stage {
	stages := make([]*models.Stage, 0, len(b.stages))
	for _, s := range b.stages {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].ID < stages[j].ID })
	return stages
}

// SetStatus moves the board to a status given by name or ordinal and runs its entry hook.
func (b *Board) SetStatus(ctx context.Context, value any) ([]Effect, error) {
	status, err := models.ParseStatus(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStatus, value)
	}
	if _, ok := b.strategy.Hooks()[status]; !ok {
		return nil, fmt.Errorf("%w: %s is not declared by %s", ErrUnknownStatus, status, b.strategy.Name())
	}
	effects := b.transition(status)
	return effects, b.save(ctx)
}

// CheckStatus reports whether the current status matches any of the given names,
// ordinals or lists of either. Unknown values never match.
func (b *Board) CheckStatus(values ...any) bool {
	for _, value := range values {
		switch v := value.(type) {
		case []any:
			if b.CheckStatus(v...) {
				return true
			}
		case []string:
			for _, name := range v {
				if b.CheckStatus(name) {
					return true
				}
			}
		case []models.Status:
			if slices.Contains(v, b.Status) {
				return true
			}
		default:
			if status, err := models.ParseStatus(v); err == nil && status == b.Status {
				return true
			}
		}
	}
	return false
}

// ActivePlayer returns the first active player, or the first player when nobody is active.
func (b *Board) ActivePlayer() *models.Player {
	players := b.Players()
	for _, p := range players {
		if p.Active {
			return p
		}
	}
	if len(players) == 0 {
		return nil
	}
	return players[0]
}

// MaxRounds is the round cap, or the longest roster when the draft is unlimited.
func (b *Board) MaxRounds() int {
	if b.TotalRounds > 0 {
		return b.TotalRounds
	}
	longest := 0
	for _, p := range b.players {
		longest = max(longest, len(p.Roster))
	}
	return longest
}

func (b *Board) transition(status models.Status) []Effect {
	b.Status = status
	effects := b.strategy.Hooks()[status](b)
	return append(effects, RebuildBoardInfo())
}

func (b *Board) completeDraft() []Effect {
	effects := b.transition(models.StatusDraftComplete)
	return append(effects, Chat("The draft is complete"))
}

func (b *Board) save(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.SaveState(ctx, b.BoardInfo, b.Players(), b.Stages())
}

func (b *Board) appendPick(p *models.Player, pick models.Pick) {
	b.claimCharacter(p, pick)
	p.Roster = append(p.Roster, pick)
}

// setPick overwrites a roster entry and returns the pick it replaced.
func (b *Board) setPick(p *models.Player, index int, pick models.Pick) models.Pick {
	old := p.Roster[index]
	b.releaseCharacter(old)
	b.claimCharacter(p, pick)
	p.Roster[index] = pick
	return old
}

func (b *Board) removePick(p *models.Player, index int) (models.Pick, bool) {
	if p == nil || index < 0 || index >= len(p.Roster) {
		return models.Pick{}, false
	}
	old := p.Roster[index]
	b.releaseCharacter(old)
	p.Roster = slices.Delete(p.Roster, index, index+1)
	return old, true
}

func (b *Board) claimCharacter(p *models.Player, pick models.Pick) {
	if pick.IsPass() {
		return
	}
	if c := b.characters[pick.CharacterID]; c != nil {
		c.PlayerID = p.ID
		if pick.Won {
			c.State = models.CharacterStateWin
		}
	}
}

func (b *Board) releaseCharacter(pick models.Pick) {
	if pick.IsPass() {
		return
	}
	if c := b.characters[pick.CharacterID]; c != nil {
		c.Release()
	}
}

func (b *Board) reversePickOrder() {
	slices.Reverse(b.pickOrder)
	b.reindex()
}

// reindex makes both orderings a dense 0..N-1 sequence again.
func (b *Board) reindex() {
	for i, p := range b.pickOrder {
		p.PickOrder = i
	}
	for i, p := range b.displayOrder {
		p.DisplayOrder = i
	}
}

func (b *Board) playerIDs() []int {
	return slices.Clone(b.order)
}
