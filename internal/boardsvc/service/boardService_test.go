package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/catalog"
	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB keeps what a SaveState wrote so a second Load can read it back.
type fakeDB struct {
	boards     map[int64]models.BoardInfo
	players    map[int64][]models.Player
	votes      map[int64][]*models.Stage
	characters map[int]models.Character
	stages     map[int]models.Stage
	system     map[string]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		boards:     make(map[int64]models.BoardInfo),
		players:    make(map[int64][]models.Player),
		votes:      make(map[int64][]*models.Stage),
		characters: make(map[int]models.Character),
		stages:     make(map[int]models.Stage),
		system:     make(map[string]string),
	}
}

func (f *fakeDB) GetBoard(ctx context.Context, id int64) (*models.BoardInfo, error) {
	info, ok := f.boards[id]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (f *fakeDB) GetPlayers(ctx context.Context, boardID int64) ([]*models.Player, error) {
	var players []*models.Player
	for _, p := range f.players[boardID] {
		p := p
		p.Roster = append([]models.Pick(nil), p.Roster...)
		p.Stages = append([]int(nil), p.Stages...)
		players = append(players, &p)
	}
	return players, nil
}

func (f *fakeDB) SaveState(ctx context.Context, info models.BoardInfo, players []*models.Player, stages []*models.Stage) error {
	f.boards[info.ID] = info
	f.players[info.ID] = nil
	for _, p := range players {
		f.players[info.ID] = append(f.players[info.ID], *p)
	}
	var votes []*models.Stage
	for _, st := range stages {
		st := *st
		votes = append(votes, &st)
	}
	f.votes[info.ID] = votes
	return nil
}

func (f *fakeDB) DeletePlayer(ctx context.Context, boardID int64, playerID int) error {
	return nil
}

func (f *fakeDB) GetCharacters(ctx context.Context) ([]*models.Character, error) {
	var out []*models.Character
	for _, c := range f.characters {
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeDB) GetStages(ctx context.Context, boardID int64) ([]*models.Stage, error) {
	var out []*models.Stage
	for _, st := range f.stages {
		for _, voted := range f.votes[boardID] {
			if voted.ID == st.ID {
				st.Slots = voted.Slots
			}
		}
		out = append(out, &st)
	}
	return out, nil
}

func (f *fakeDB) SaveCharacter(ctx context.Context, c *models.Character) error {
	f.characters[c.ID] = *c
	return nil
}

func (f *fakeDB) DeleteCharacter(ctx context.Context, id int) error {
	delete(f.characters, id)
	return nil
}

func (f *fakeDB) SaveStage(ctx context.Context, st *models.Stage) error {
	f.stages[st.ID] = *st
	return nil
}

func (f *fakeDB) DeleteStage(ctx context.Context, id int) error {
	delete(f.stages, id)
	return nil
}

func (f *fakeDB) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.system[key]
	return v, ok, nil
}

func (f *fakeDB) Set(ctx context.Context, key, value string) error {
	f.system[key] = value
	return nil
}

func TestMemoryBoard(t *testing.T) {
	s := NewMemoryBoardService()
	b, err := s.Load(context.Background(), LoadOptions{DraftType: board.DraftFree, TotalRounds: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, board.DraftFree, b.DraftType)
	assert.Equal(t, 3, b.TotalRounds)
	assert.Len(t, b.Characters(), len(catalog.Default().Characters))

	_, err = s.Load(context.Background(), LoadOptions{DraftType: "auction"})
	assert.ErrorIs(t, err, board.ErrUnknownDraftType)
}

func TestLoadRestoresSavedBoard(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	s := NewBoardService(db, db, db)

	b, err := s.Load(ctx, LoadOptions{BoardID: 4, DraftType: board.DraftSnake, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	assert.Equal(t, "4", db.system[keyActiveBoard])
	assert.Contains(t, db.boards, int64(4))

	_, _, err = b.AddPlayer(ctx, "Ann")
	require.NoError(t, err)
	_, _, err = b.AddPlayer(ctx, "Bob")
	require.NoError(t, err)
	_, err = b.ShufflePlayers(ctx)
	require.NoError(t, err)
	_, err = b.StartDraft(ctx)
	require.NoError(t, err)
	first := b.ActivePlayer()
	_, err = b.AddCharacter(ctx, first, models.CharacterPick(3))
	require.NoError(t, err)
	_, err = b.ToggleStage(ctx, first, 2)
	require.NoError(t, err)

	restored, err := s.Load(ctx, LoadOptions{DraftType: board.DraftFree})
	require.NoError(t, err)
	assert.Equal(t, int64(4), restored.ID, "the active board comes from the system table")
	assert.Equal(t, board.DraftSnake, restored.DraftType, "stored boards keep their draft type")
	assert.Equal(t, models.StatusDraft, restored.Status)
	assert.Equal(t, b.SessionID, restored.SessionID)
	assert.Equal(t, first.ID, restored.Character(3).PlayerID)
	assert.GreaterOrEqual(t, restored.Stage(2).SlotOf(first.ID), 0)

	var want, got []string
	for _, p := range b.PickOrder() {
		want = append(want, p.Name)
	}
	for _, p := range restored.PickOrder() {
		got = append(got, p.Name)
	}
	assert.Equal(t, want, got)
}

func TestCatalogEditsSurviveReload(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	s := NewBoardService(db, db, db)
	cat := &catalog.Catalog{
		Characters: []models.Character{{ID: 1, Name: "Mario"}, {ID: 2, Name: "Luigi"}},
		Stages:     []models.Stage{{ID: 1, Name: "Battlefield"}},
	}

	b, err := s.Load(ctx, LoadOptions{DraftType: board.DraftFree, Catalog: cat})
	require.NoError(t, err)
	assert.Equal(t, "1", db.system[keyCatalogSeeded])

	_, _, err = b.PutCharacter(ctx, models.Character{ID: 1, Name: "Dr. Mario"})
	require.NoError(t, err)
	_, err = b.RemoveCharacter(ctx, 2)
	require.NoError(t, err)
	_, _, err = b.PutStage(ctx, models.Stage{Name: "Smashville"})
	require.NoError(t, err)

	restored, err := s.Load(ctx, LoadOptions{DraftType: board.DraftFree, Catalog: cat})
	require.NoError(t, err)
	require.NotNil(t, restored.Character(1))
	assert.Equal(t, "Dr. Mario", restored.Character(1).Name)
	assert.Nil(t, restored.Character(2), "removed characters are not seeded again")
	require.NotNil(t, restored.Stage(2))
	assert.Equal(t, "Smashville", restored.Stage(2).Name)
}
