package models

const StageSlots = 12

type Stage struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Image string          `json:"image,omitempty"`
	Slots [StageSlots]int `json:"slots"` // player id per slot, 0 when open
	State string          `json:"state,omitempty"`
}

// SlotOf returns the slot a player votes in, or -1.
func (s *Stage) SlotOf(playerID int) int {
	if playerID == 0 {
		return -1
	}
	for i, id := range s.Slots {
		if id == playerID {
			return i
		}
	}
	return -1
}

func (s *Stage) OpenSlots() []int {
	open := make([]int, 0, StageSlots)
	for i, id := range s.Slots {
		if id == 0 {
			open = append(open, i)
		}
	}
	return open
}

func (s *Stage) Votes() int {
	return StageSlots - len(s.OpenSlots())
}

func (s *Stage) Clear() {
	s.Slots = [StageSlots]int{}
}
