package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		var l List
		assert.True(t, l.Add("dance"))
		assert.True(t, l.Add("outfit"))
		assert.True(t, l.Add("comedy"))
		assert.Equal(t, []string{"dance", "outfit", "comedy"}, l.Labels())
	})

	t.Run("trims and ignores duplicates", func(t *testing.T) {
		var l List
		assert.True(t, l.Add("  tutorial "))
		assert.False(t, l.Add("tutorial"))
		assert.False(t, l.Add("   "))
		assert.Equal(t, []string{"tutorial"}, l.Labels())
	})

	t.Run("removes by exact match", func(t *testing.T) {
		var l List
		l.Add("dance")
		l.Add("outfit")
		assert.False(t, l.Remove("Dance"))
		assert.True(t, l.Remove("dance"))
		assert.Equal(t, []string{"outfit"}, l.Labels())
	})

	t.Run("labels are a copy", func(t *testing.T) {
		var l List
		l.Add("dance")
		got := l.Labels()
		got[0] = "mutated"
		assert.Equal(t, []string{"dance"}, l.Labels())
	})

	t.Run("clear empties the list", func(t *testing.T) {
		var l List
		l.Add("dance")
		l.Clear()
		assert.Equal(t, 0, l.Len())
		assert.Empty(t, l.Labels())
	})
}
