package ui

import (
	"context"
	"sync"

	"github.com/cydrysdale/pwnagotchi/helpers"
)

// Entry is one menu row. A nil Do marks a separator: it can hold the
// cursor but selecting it does nothing.
type Entry struct {
	Label string
	Do    func(ctx context.Context) (string, error)
}

// Menu is the cursor state over a fixed entry list. All mutations go
// through the one lock; readers get consistent snapshots.
type Menu struct {
	lk      sync.Mutex
	entries []Entry
	index   int
	open    bool
}

func NewMenu(entries []Entry) *Menu {
	return &Menu{entries: entries}
}

func (self *Menu) Toggle() (open bool) {
	helpers.WithLock(&self.lk, func() {
		self.open = !self.open
		open = self.open
	})
	return open
}

func (self *Menu) IsOpen() (open bool) {
	helpers.WithLock(&self.lk, func() { open = self.open })
	return open
}

func (self *Menu) Close() {
	helpers.WithLock(&self.lk, func() { self.open = false })
}

// Move shifts the cursor by delta with wrap-around in both directions.
func (self *Menu) Move(delta int) {
	helpers.WithLock(&self.lk, func() {
		n := len(self.entries)
		if n == 0 {
			return
		}
		self.index = ((self.index+delta)%n + n) % n
	})
}

func (self *Menu) Selected() (e Entry) {
	helpers.WithLock(&self.lk, func() {
		if len(self.entries) > 0 {
			e = self.entries[self.index]
		}
	})
	return e
}

// Snapshot returns the entry list, cursor and open flag as one
// consistent view for the renderer.
func (self *Menu) Snapshot() (entries []Entry, index int, open bool) {
	helpers.WithLock(&self.lk, func() {
		entries = self.entries
		index = self.index
		open = self.open
	})
	return entries, index, open
}
