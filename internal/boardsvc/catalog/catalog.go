package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	log "github.com/sirupsen/logrus"
)

//go:embed default.json
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the list of characters and stages a board offers.
type Catalog struct {
	Characters []models.Character `json:"characters"`
	Stages     []models.Stage     `json:"stages"`
}

// Default is the catalog shipped with the service.
func Default() *Catalog {
	c, err := parse(defaultCatalog, "")
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. Images are resolved against assetsDir; an image that does
// not exist is dropped with a warning so the client falls back to the name.
func Load(path, assetsDir string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return parse(raw, assetsDir)
}

func parse(raw []byte, assetsDir string) (*Catalog, error) {
	c := &Catalog{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	seen := make(map[int]bool, len(c.Characters))
	for i := range c.Characters {
		ch := &c.Characters[i]
		switch {
		case ch.ID <= 0 || ch.ID == models.NoPickID:
			return nil, fmt.Errorf("%w: character id %d is reserved or invalid", ErrInvalidCatalog, ch.ID)
		case seen[ch.ID]:
			return nil, fmt.Errorf("%w: duplicate character id %d", ErrInvalidCatalog, ch.ID)
		case ch.Name == "":
			return nil, fmt.Errorf("%w: character %d has no name", ErrInvalidCatalog, ch.ID)
		}
		seen[ch.ID] = true
		ch.PlayerID, ch.State = 0, ""
		ch.Image = checkImage(assetsDir, ch.Image)
	}

	seen = make(map[int]bool, len(c.Stages))
	for i := range c.Stages {
		st := &c.Stages[i]
		switch {
		case st.ID <= 0:
			return nil, fmt.Errorf("%w: stage id %d is invalid", ErrInvalidCatalog, st.ID)
		case seen[st.ID]:
			return nil, fmt.Errorf("%w: duplicate stage id %d", ErrInvalidCatalog, st.ID)
		case st.Name == "":
			return nil, fmt.Errorf("%w: stage %d has no name", ErrInvalidCatalog, st.ID)
		}
		seen[st.ID] = true
		st.Clear()
		st.Image = checkImage(assetsDir, st.Image)
	}
	return c, nil
}

func checkImage(assetsDir, image string) string {
	if image == "" {
		return ""
	}
	if _, err := os.Stat(filepath.Join(assetsDir, filepath.Clean("/"+image))); err != nil {
		log.Warnf("catalog image %s not found in %s, ignoring it", image, assetsDir)
		return ""
	}
	return image
}
