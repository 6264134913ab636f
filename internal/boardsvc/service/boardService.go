package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/avvvet/draftboard-services/internal/boardsvc/board"
	"github.com/avvvet/draftboard-services/internal/boardsvc/catalog"
	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	log "github.com/sirupsen/logrus"
)

const (
	keyActiveBoard   = "active_board_id"
	keyCatalogSeeded = "catalog_seeded"
)

type BoardRepository interface {
	GetBoard(ctx context.Context, id int64) (*models.BoardInfo, error)
	GetPlayers(ctx context.Context, boardID int64) ([]*models.Player, error)
	SaveState(ctx context.Context, info models.BoardInfo, players []*models.Player, stages []*models.Stage) error
	DeletePlayer(ctx context.Context, boardID int64, playerID int) error
}

type CatalogRepository interface {
	GetCharacters(ctx context.Context) ([]*models.Character, error)
	GetStages(ctx context.Context, boardID int64) ([]*models.Stage, error)
	SaveCharacter(ctx context.Context, c *models.Character) error
	DeleteCharacter(ctx context.Context, id int) error
	SaveStage(ctx context.Context, s *models.Stage) error
	DeleteStage(ctx context.Context, id int) error
}

type SystemRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// persistence joins the board and catalog repositories into a board.Store.
type persistence struct {
	BoardRepository
	CatalogRepository
}

// BoardService builds the running board, from Postgres when repositories are set
// and purely in memory otherwise.
type BoardService struct {
	boards  BoardRepository
	catalog CatalogRepository
	system  SystemRepository
}

func NewBoardService(boards BoardRepository, catalog CatalogRepository, system SystemRepository) *BoardService {
	return &BoardService{boards: boards, catalog: catalog, system: system}
}

// NewMemoryBoardService keeps nothing between restarts.
func NewMemoryBoardService() *BoardService {
	return &BoardService{}
}

type LoadOptions struct {
	BoardID     int64 // 0 uses the active board recorded in the system table
	DraftType   string
	TotalRounds int
	Catalog     *catalog.Catalog
	Rand        *rand.Rand
}

// Load returns the active board. A board that does not exist yet is created with the
// configured draft type. The catalog file is written on the first start only.
func (s *BoardService) Load(ctx context.Context, opts LoadOptions) (*board.Board, error) {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if s.boards == nil {
		return s.newMemoryBoard(opts)
	}

	id, err := s.activeBoardID(ctx, opts.BoardID)
	if err != nil {
		return nil, err
	}

	if err := s.seedCatalog(ctx, opts.Catalog); err != nil {
		return nil, err
	}

	info, err := s.boards.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	created := info == nil
	if created {
		info = &models.BoardInfo{ID: id, DraftType: opts.DraftType, TotalRounds: opts.TotalRounds}
		log.Infof("board %d not found, creating a %s board", id, opts.DraftType)
	}

	b, err := board.New(board.Options{
		Info:  *info,
		Store: persistence{s.boards, s.catalog},
		Rand:  opts.Rand,
	})
	if err != nil {
		return nil, fmt.Errorf("board %d: %w", id, err)
	}

	characters, err := s.catalog.GetCharacters(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range characters {
		b.LoadCharacter(c)
	}
	stages, err := s.catalog.GetStages(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, st := range stages {
		b.LoadStage(st)
	}
	players, err := s.boards.GetPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := restorePlayers(b, players); err != nil {
		return nil, err
	}

	if created {
		if err := s.boards.SaveState(ctx, b.Info(), b.Players(), b.Stages()); err != nil {
			return nil, err
		}
	}
	if err := s.system.Set(ctx, keyActiveBoard, strconv.FormatInt(id, 10)); err != nil {
		return nil, err
	}
	log.Infof("board %d loaded: %s draft, status %s, %d players", id, b.DraftType, b.Status, len(players))
	return b, nil
}

// seedCatalog writes the catalog file once. Later edits made on the board are not
// overwritten on the next start.
func (s *BoardService) seedCatalog(ctx context.Context, cat *catalog.Catalog) error {
	_, seeded, err := s.system.Get(ctx, keyCatalogSeeded)
	if err != nil || seeded {
		return err
	}
	for i := range cat.Characters {
		if err := s.catalog.SaveCharacter(ctx, &cat.Characters[i]); err != nil {
			return err
		}
	}
	for i := range cat.Stages {
		if err := s.catalog.SaveStage(ctx, &cat.Stages[i]); err != nil {
			return err
		}
	}
	log.Infof("catalog seeded: %d characters, %d stages", len(cat.Characters), len(cat.Stages))
	return s.system.Set(ctx, keyCatalogSeeded, "1")
}

func (s *BoardService) activeBoardID(ctx context.Context, id int64) (int64, error) {
	if id != 0 {
		return id, nil
	}
	value, ok, err := s.system.Get(ctx, keyActiveBoard)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	id, err = strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", keyActiveBoard, value, err)
	}
	return id, nil
}

func (s *BoardService) newMemoryBoard(opts LoadOptions) (*board.Board, error) {
	id := opts.BoardID
	if id == 0 {
		id = 1
	}
	b, err := board.New(board.Options{
		Info: models.BoardInfo{ID: id, DraftType: opts.DraftType, TotalRounds: opts.TotalRounds},
		Rand: opts.Rand,
	})
	if err != nil {
		return nil, err
	}
	for _, c := range opts.Catalog.Characters {
		b.LoadCharacter(&c)
	}
	for _, st := range opts.Catalog.Stages {
		b.LoadStage(&st)
	}
	log.Infof("in-memory board %d ready: %s draft", id, b.DraftType)
	return b, nil
}

// restorePlayers adds stored players; the board sorts them back into their stored orderings.
func restorePlayers(b *board.Board, players []*models.Player) error {
	sorted := append([]*models.Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, p := range sorted {
		if err := b.RestorePlayer(p); err != nil {
			return fmt.Errorf("restore player %d: %w", p.ID, err)
		}
	}
	return nil
}
