package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testEntries(n int) []Entry {
	es := make([]Entry, n)
	for i := range es {
		es[i] = Entry{Label: "item", Do: func(context.Context) (string, error) { return "", nil }}
	}
	return es
}

func TestMenuMoveWrap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		n      int
		moves  []int
		expect int
	}{
		{"up-from-first", 10, []int{-1}, 9},
		{"down-from-last", 10, []int{-1, 1}, 0},
		{"full-cycle-down", 4, []int{1, 1, 1, 1}, 0},
		{"big-delta", 4, []int{7}, 3},
		{"big-negative", 4, []int{-9}, 3},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			m := NewMenu(testEntries(c.n))
			for _, d := range c.moves {
				m.Move(d)
			}
			_, index, _ := m.Snapshot()
			assert.Equal(t, c.expect, index)
		})
	}
}

func TestMenuToggleClose(t *testing.T) {
	t.Parallel()

	m := NewMenu(testEntries(3))
	assert.False(t, m.IsOpen())
	assert.True(t, m.Toggle())
	assert.True(t, m.IsOpen())
	m.Close()
	assert.False(t, m.IsOpen())
	m.Close() // idempotent
	assert.False(t, m.IsOpen())
}

func TestMenuEmpty(t *testing.T) {
	t.Parallel()

	m := NewMenu(nil)
	m.Move(1)
	e := m.Selected()
	assert.Equal(t, "", e.Label)
	assert.Nil(t, e.Do)
}
