package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.NotEmpty(t, c.Characters)
	assert.NotEmpty(t, c.Stages)
	for _, ch := range c.Characters {
		assert.NotEqual(t, models.NoPickID, ch.ID)
	}

	loaded, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadValidatesImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "img/mario.png", "png")
	path := writeFile(t, dir, "catalog.json", `{
		"characters": [
			{"id": 1, "name": "Mario", "image": "img/mario.png"},
			{"id": 2, "name": "Luigi", "image": "img/luigi.png", "player_id": 7}
		],
		"stages": [{"id": 1, "name": "Battlefield", "slots": [3,0,0,0,0,0,0,0,0,0,0,0]}]
	}`)

	c, err := Load(path, dir)
	require.NoError(t, err)
	require.Len(t, c.Characters, 2)
	assert.Equal(t, "img/mario.png", c.Characters[0].Image)
	assert.Empty(t, c.Characters[1].Image, "missing images are dropped")
	assert.Zero(t, c.Characters[1].PlayerID)
	assert.Equal(t, 0, c.Stages[0].Votes())
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"characters": [`},
		{"reserved id", `{"characters": [{"id": 999, "name": "Nobody"}]}`},
		{"duplicate character", `{"characters": [{"id": 1, "name": "A"}, {"id": 1, "name": "B"}]}`},
		{"unnamed character", `{"characters": [{"id": 1}]}`},
		{"duplicate stage", `{"stages": [{"id": 2, "name": "A"}, {"id": 2, "name": "B"}]}`},
		{"zero stage id", `{"stages": [{"id": 0, "name": "A"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "catalog.json", tt.content)
			_, err := Load(path, "")
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
