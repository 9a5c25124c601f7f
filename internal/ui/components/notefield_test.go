package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteField(t *testing.T) {
	f := NewNoteField("why?", 20)
	f.input.SetValue("  wrong answer  ")

	assert.Equal(t, "wrong answer", f.Value())
	assert.Equal(t, 4, f.Remaining())
	assert.Contains(t, f.View(), "16/20")
}

func TestNoteField_Unlimited(t *testing.T) {
	f := NewNoteField("", 0)
	f.input.SetValue("anything")

	assert.Equal(t, -1, f.Remaining())
	assert.NotContains(t, f.View(), "/")
}
