package broker

import (
	"slices"
	"time"

	"github.com/avvvet/draftboard-services/internal/comm"
)

const defaultChatHistory = 50

// ChatLog keeps the most recent chat lines, oldest first.
type ChatLog struct {
	limit int
	lines []comm.ChatLine
	now   func() time.Time
}

func NewChatLog(limit int) *ChatLog {
	if limit <= 0 {
		limit = defaultChatHistory
	}
	return &ChatLog{limit: limit, now: time.Now}
}

func (c *ChatLog) Add(author, message string) comm.ChatLine {
	line := comm.ChatLine{At: c.now().UTC(), Author: author, Message: message}
	c.lines = append(c.lines, line)
	if over := len(c.lines) - c.limit; over > 0 {
		c.lines = slices.Delete(c.lines, 0, over)
	}
	return line
}

func (c *ChatLog) Lines() []comm.ChatLine {
	lines := slices.Clone(c.lines)
	if lines == nil {
		lines = []comm.ChatLine{}
	}
	return lines
}
