package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := newRegistry[string]()

	h1 := r.add("first")
	h2 := r.add("second")
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, r.len())

	got, ok := r.get(h2)
	assert.True(t, ok)
	assert.Equal(t, "second", got)

	r.remove(h1)
	_, ok = r.get(h1)
	assert.False(t, ok)
	assert.Equal(t, 1, r.len())

	r.remove("never-issued")
	assert.Equal(t, 1, r.len())
}
