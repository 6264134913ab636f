package board

import (
	"context"
	"strings"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

// LoadCharacter adds a stored character without persisting it.
func (b *Board) LoadCharacter(c *models.Character) {
	b.characters[c.ID] = c
}

// LoadStage adds a stored stage without persisting it.
func (b *Board) LoadStage(s *models.Stage) {
	b.stages[s.ID] = s
}

// PutCharacter adds or renames a character. A zero id gets the next free one.
func (b *Board) PutCharacter(ctx context.Context, c models.Character) (*models.Character, []Effect, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, nil, ErrInvalidName
	}
	if c.ID == models.NoPickID {
		return nil, nil, ErrUnknownCharacter
	}
	if c.ID == 0 {
		for id := range b.characters {
			if id != models.NoPickID {
				c.ID = max(c.ID, id)
			}
		}
		c.ID++
		if c.ID == models.NoPickID {
			c.ID++
		}
	}
	announce := "%s was added to the characters"
	stored := b.characters[c.ID]
	if stored != nil {
		stored.Name = c.Name
		stored.Image = c.Image
		announce = "%s was updated"
	} else {
		c.PlayerID = 0
		c.State = ""
		stored = &c
		b.characters[c.ID] = stored
	}

	effects := []Effect{RebuildCharacters(), Chat(announce, stored.Name)}
	if b.store != nil {
		if err := b.store.SaveCharacter(ctx, stored); err != nil {
			return stored, effects, err
		}
	}
	return stored, effects, nil
}

func (b *Board) RemoveCharacter(ctx context.Context, id int) ([]Effect, error) {
	c := b.characters[id]
	if c == nil {
		return nil, ErrUnknownCharacter
	}
	if c.Owned() {
		return nil, ErrCharacterInUse
	}
	delete(b.characters, id)
	effects := []Effect{RebuildCharacters()}
	if b.store != nil {
		return effects, b.store.DeleteCharacter(ctx, id)
	}
	return effects, nil
}

// PutStage adds or renames a stage. Votes on an existing stage are kept.
func (b *Board) PutStage(ctx context.Context, s models.Stage) (*models.Stage, []Effect, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return nil, nil, ErrInvalidName
	}
	if s.ID == 0 {
		for id := range b.stages {
			s.ID = max(s.ID, id)
		}
		s.ID++
	}
	stored := b.stages[s.ID]
	if stored != nil {
		stored.Name = s.Name
		stored.Image = s.Image
	} else {
		s.Clear()
		stored = &s
		b.stages[s.ID] = stored
	}

	effects := []Effect{RebuildStages()}
	if b.store != nil {
		if err := b.store.SaveStage(ctx, stored); err != nil {
			return stored, effects, err
		}
	}
	return stored, effects, nil
}

// RemoveStage deletes a stage together with every vote on it.
func (b *Board) RemoveStage(ctx context.Context, id int) ([]Effect, error) {
	s := b.stages[id]
	if s == nil {
		return nil, ErrUnknownStage
	}
	var voters []int
	for _, p := range b.Players() {
		if p.HasStage(id) {
			p.RemoveStage(id)
			voters = append(voters, p.ID)
		}
	}
	delete(b.stages, id)

	effects := []Effect{RebuildStages()}
	if len(voters) > 0 {
		effects = append(effects, UpdatePlayers([]string{FieldStages}, voters...))
	}
	if b.store != nil {
		if err := b.store.DeleteStage(ctx, id); err != nil {
			return effects, err
		}
	}
	return effects, b.save(ctx)
}
