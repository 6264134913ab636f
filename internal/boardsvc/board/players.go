package board

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

// AddPlayer creates a player at the end of both orderings.
func (b *Board) AddPlayer(ctx context.Context, name string) (*models.Player, []Effect, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrInvalidName
	}
	for _, p := range b.players {
		if strings.EqualFold(p.Name, name) {
			return nil, nil, ErrDuplicatePlayer
		}
	}

	p := models.NewPlayer(name)
	for id := range b.players {
		p.ID = max(p.ID, id)
	}
	p.ID++
	b.insert(p)

	effects := []Effect{RebuildPlayers()}
	if b.Status == models.StatusDraft {
		effects = append(effects, b.strategy.SyncActive(b)...)
	}
	effects = append(effects, Chat("%s joined the board", p.Name))
	return p, effects, b.save(ctx)
}

// RestorePlayer puts a stored player back on the board without persisting it.
// Characters on its roster are marked as picked and its stage votes go back to
// their stored slots while those are free.
func (b *Board) RestorePlayer(p *models.Player) error {
	if p == nil || p.ID <= 0 || strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if _, ok := b.players[p.ID]; ok {
		return ErrDuplicatePlayer
	}
	if p.Roster == nil {
		p.Roster = []models.Pick{}
	}
	if p.Stages == nil {
		p.Stages = []int{}
	}
	if p.Stats == nil {
		p.Stats = make(map[string]int)
	}
	p.ClientID = 0
	b.insert(p)
	for _, pick := range p.Roster {
		b.claimCharacter(p, pick)
	}
	for _, id := range p.Stages {
		s := b.stages[id]
		if s == nil || s.SlotOf(p.ID) >= 0 {
			continue
		}
		if slot, ok := p.StageSlots[id]; ok && slot >= 0 && slot < models.StageSlots && s.Slots[slot] == 0 {
			s.Slots[slot] = p.ID
		} else if open := s.OpenSlots(); len(open) > 0 {
			s.Slots[open[0]] = p.ID
		}
	}
	p.StageSlots = nil
	return nil
}

func (b *Board) insert(p *models.Player) {
	b.players[p.ID] = p
	b.order = append(b.order, p.ID)
	b.pickOrder = append(b.pickOrder, p)
	b.displayOrder = append(b.displayOrder, p)
	sortByPosition(b.pickOrder, func(p *models.Player) int { return p.PickOrder })
	sortByPosition(b.displayOrder, func(p *models.Player) int { return p.DisplayOrder })
	for i, o := range b.pickOrder {
		if o.PickOrder == models.Unordered {
			o.PickOrder = i
		}
	}
	for i, o := range b.displayOrder {
		if o.DisplayOrder == models.Unordered {
			o.DisplayOrder = i
		}
	}
}

// sortByPosition keeps assigned positions in place and moves unordered players to the end.
func sortByPosition(players []*models.Player, position func(*models.Player) int) {
	sort.SliceStable(players, func(i, j int) bool {
		pi, pj := position(players[i]), position(players[j])
		if pi == models.Unordered {
			return false
		}
		return pj == models.Unordered || pi < pj
	})
}

// DropPlayer removes a player. When it holds the turn the draft (or game round)
// is advanced first so play does not stall on a player who is gone.
func (b *Board) DropPlayer(ctx context.Context, id int) ([]Effect, error) {
	p := b.players[id]
	if p == nil {
		return nil, ErrUnknownPlayer
	}

	var effects []Effect
	switch b.Status {
	case models.StatusDraft:
		if p.Active {
			effects = append(effects, b.strategy.AdvanceDraft(b)...)
		}
	case models.StatusGame:
		if p.Active && b.activeCount() == 1 {
			effects = append(effects, b.strategy.AdvanceGame(b)...)
		}
	}

	var released []int
	for _, pick := range p.Roster {
		if !pick.IsPass() {
			b.releaseCharacter(pick)
			released = append(released, pick.CharacterID)
		}
	}
	if len(released) > 0 {
		effects = append(effects, UpdateCharacters(released...))
	}
	for _, stageID := range p.Stages {
		if s := b.stages[stageID]; s != nil {
			if slot := s.SlotOf(p.ID); slot >= 0 {
				s.Slots[slot] = 0
				effects = append(effects, UpdateStage(stageID))
			}
		}
	}

	index := p.PickOrder
	b.pickOrder = slices.DeleteFunc(b.pickOrder, func(o *models.Player) bool { return o == p })
	b.displayOrder = slices.DeleteFunc(b.displayOrder, func(o *models.Player) bool { return o == p })
	b.order = slices.DeleteFunc(b.order, func(o int) bool { return o == id })
	delete(b.players, id)
	b.reindex()

	if b.Status == models.StatusDraft {
		if index < b.CurrentPick {
			b.CurrentPick--
		}
		if b.CurrentPick >= len(b.pickOrder) {
			b.CurrentPick = 0
		}
		effects = append(effects, b.strategy.SyncActive(b)...)
		// the player who left may have been the only one short of a full roster
		if b.TotalRounds > 0 && rostersFull(b, b.MaxRounds()) {
			effects = append(effects, b.completeDraft()...)
		}
	}
	effects = append(effects, RebuildPlayers(), RebuildBoardInfo(), Chat("%s left the board", p.Name))

	if b.store != nil {
		if err := b.store.DeletePlayer(ctx, b.ID, id); err != nil {
			return effects, err
		}
	}
	return effects, b.save(ctx)
}

func (b *Board) activeCount() int {
	n := 0
	for _, p := range b.players {
		if p.Active {
			n++
		}
	}
	return n
}

// ShufflePlayers randomizes the pick order. Display order is left alone.
func (b *Board) ShufflePlayers(ctx context.Context) ([]Effect, error) {
	keys := make(map[int]float64, len(b.pickOrder))
	for _, p := range b.pickOrder {
		keys[p.ID] = b.rand.Float64()
	}
	sort.SliceStable(b.pickOrder, func(i, j int) bool {
		return keys[b.pickOrder[i].ID] < keys[b.pickOrder[j].ID]
	})
	b.reindex()

	effects := []Effect{UpdatePlayers([]string{FieldPickOrder}, b.playerIDs()...)}
	if b.Status == models.StatusDraft {
		effects = append(effects, b.strategy.SyncActive(b)...)
	}
	effects = append(effects, Chat("The pick order was shuffled"))
	return effects, b.save(ctx)
}

// ClaimPlayer binds a player to a connection and its user. A connection holds at most
// one player, so any player it held before is released.
func (b *Board) ClaimPlayer(ctx context.Context, playerID, clientID int, userID int64) ([]Effect, error) {
	p := b.players[playerID]
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p.Owned() && p.ClientID != clientID {
		return nil, ErrPlayerOwned
	}
	if p.UserID != 0 && p.UserID != userID {
		return nil, ErrPlayerOwned
	}

	changed := []int{p.ID}
	if prev := b.PlayerByClient(clientID); prev != nil && prev != p {
		prev.ClientID = 0
		if prev.UserID == userID {
			prev.UserID = 0
		}
		changed = append(changed, prev.ID)
	}
	p.ClientID = clientID
	p.UserID = userID

	effects := []Effect{
		UpdatePlayers([]string{FieldClient}, changed...),
		SetPicking(clientID, p.Active),
	}
	return effects, b.save(ctx)
}

// ReleaseClient unbinds whatever player a connection held. The user binding stays so
// the player can be reclaimed after a reconnect.
func (b *Board) ReleaseClient(clientID int) []Effect {
	p := b.PlayerByClient(clientID)
	if p == nil {
		return nil
	}
	p.ClientID = 0
	return []Effect{UpdatePlayers([]string{FieldClient}, p.ID)}
}

// AttachUser runs after a login. The connection takes over the player the user held
// before, or its current player becomes bound to the user.
func (b *Board) AttachUser(ctx context.Context, clientID int, userID int64) (*models.Player, []Effect, error) {
	if p := b.PlayerByUser(userID); p != nil {
		if p.Owned() && p.ClientID != clientID {
			return nil, nil, ErrPlayerOwned
		}
		effects, err := b.ClaimPlayer(ctx, p.ID, clientID, userID)
		return p, effects, err
	}
	p := b.PlayerByClient(clientID)
	if p == nil {
		return nil, nil, nil
	}
	if p.UserID != 0 && p.UserID != userID {
		return nil, nil, ErrPlayerOwned
	}
	p.UserID = userID
	return p, []Effect{UpdatePlayers([]string{FieldClient}, p.ID)}, b.save(ctx)
}

// DetachUser runs on logout: the connection and the user both let go of the player.
func (b *Board) DetachUser(ctx context.Context, clientID int) ([]Effect, error) {
	p := b.PlayerByClient(clientID)
	if p == nil {
		return nil, nil
	}
	p.ClientID = 0
	p.UserID = 0
	effects := []Effect{UpdatePlayers([]string{FieldClient}, p.ID), SetPicking(clientID, false)}
	return effects, b.save(ctx)
}
