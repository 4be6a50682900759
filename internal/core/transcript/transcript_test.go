package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markdave123-py/Vivid/internal/models"
)

func TestTranscript(t *testing.T) {
	t.Run("latest model text follows appends", func(t *testing.T) {
		var tr Transcript
		assert.Equal(t, "", tr.LatestModelText())

		tr.Append(models.Turn{Role: models.RoleUser, Text: "describe"})
		tr.Append(models.Turn{Role: models.RoleModel, Text: "first"})
		tr.Append(models.Turn{Role: models.RoleUser, Text: "shorter"})
		assert.Equal(t, "first", tr.LatestModelText())

		tr.Append(models.Turn{Role: models.RoleModel, Text: "second"})
		assert.Equal(t, "second", tr.LatestModelText())
		assert.Equal(t, 4, tr.Len())
	})

	t.Run("drop pending user removes only a trailing user turn", func(t *testing.T) {
		var tr Transcript
		tr.Append(models.Turn{Role: models.RoleUser, Text: "describe"})
		tr.Append(models.Turn{Role: models.RoleModel, Text: "first"})
		assert.False(t, tr.DropPendingUser())
		assert.Equal(t, 2, tr.Len())

		tr.Append(models.Turn{Role: models.RoleUser, Text: "funnier"})
		assert.True(t, tr.DropPendingUser())
		assert.Equal(t, 2, tr.Len())
		assert.Equal(t, models.RoleModel, tr.Turns()[1].Role)
	})

	t.Run("drop on empty transcript is a no-op", func(t *testing.T) {
		var tr Transcript
		assert.False(t, tr.DropPendingUser())
	})

	t.Run("clear", func(t *testing.T) {
		var tr Transcript
		tr.Append(models.Turn{Role: models.RoleModel, Text: "x"})
		tr.Clear()
		assert.Equal(t, 0, tr.Len())
		assert.Empty(t, tr.Turns())
	})
}
