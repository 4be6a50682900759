// Package transcript keeps the ordered log of turns exchanged with the remote model.
package transcript

import "github.com/markdave123-py/Vivid/internal/models"

// Transcript is append-only apart from DropPendingUser, which undoes a user
// turn the model never acknowledged.
type Transcript struct {
	turns []models.Turn
}

func (t *Transcript) Append(turn models.Turn) {
	t.turns = append(t.turns, turn)
}

// DropPendingUser removes the last turn if, and only if, it is a user turn.
func (t *Transcript) DropPendingUser() bool {
	n := len(t.turns)
	if n == 0 || t.turns[n-1].Role != models.RoleUser {
		return false
	}
	t.turns = t.turns[:n-1]
	return true
}

// Turns returns a copy in display order.
func (t *Transcript) Turns() []models.Turn {
	out := make([]models.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int { return len(t.turns) }

// LatestModelText is the text of the most recent model turn, or "" if none.
func (t *Transcript) LatestModelText() string {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == models.RoleModel {
			return t.turns[i].Text
		}
	}
	return ""
}

func (t *Transcript) Clear() { t.turns = nil }
