// Package ui is the button-driven maintenance overlay: a menu state
// machine fed by debounced edges, with one background action at a time.
package ui

import (
	"context"
	"time"

	"github.com/temoto/atomic_clock"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
	"github.com/cydrysdale/pwnagotchi/helpers"
	"github.com/cydrysdale/pwnagotchi/internal/battery"
	"github.com/cydrysdale/pwnagotchi/internal/gate"
	"github.com/cydrysdale/pwnagotchi/internal/platform"
	"github.com/cydrysdale/pwnagotchi/internal/state"
)

const DefaultTickInterval = 50 * time.Millisecond

type UI struct { //nolint:maligned
	g    *state.Global
	menu *Menu
	sysd *platform.Sysd
	arch *platform.Archiver
	gate *gate.Gate
	batt *battery.Client

	task         *task
	lastActivity *atomic_clock.Clock
	resetTimeout time.Duration
	modalPoll    time.Duration
	sleep        func(time.Duration) // test hook

	statePaths    []string
	handshakeDirs []string
}

func New(ctx context.Context) *UI {
	g := state.GetGlobal(ctx)
	cfg := g.Config

	self := &UI{
		g:             g,
		sysd:          platform.New(g.Log),
		gate:          gate.New(g.Log, gate.Config(cfg.Gate)),
		lastActivity:  atomic_clock.Now(),
		resetTimeout:  helpers.IntSecondDefault(cfg.Menu.ResetSec, 0),
		modalPoll:     50 * time.Millisecond,
		sleep:         time.Sleep,
		statePaths:    defaultStatePaths(),
		handshakeDirs: defaultHandshakeDirs(),
	}
	self.arch = platform.NewArchiver(self.sysd)
	self.batt = battery.NewClient(g.Log, cfg.Battery.URL,
		helpers.IntMillisecondDefault(cfg.Battery.TimeoutMs, battery.DefaultTimeout))
	self.menu = NewMenu(self.entries())
	return self
}

// Tick is one pass of the input loop. While a dispatched action is live
// it owns the buttons and the panel; the tick only watches for its
// completion. At most one edge is acted on per tick, KEY3 toggle first,
// then navigation, then back, then select.
func (self *UI) Tick(ctx context.Context) {
	if self.task != nil {
		select {
		case <-self.task.done:
			self.g.Log.Debugf("ui action=%s done", self.task.label)
			self.task = nil
			self.lastActivity.SetNow()
			self.render()
		default:
		}
		return
	}

	board := self.g.Hardware.Board
	edge := true
	switch {
	case board.PollEdge(button.Key3):
		self.menu.Toggle()
	case !self.menu.IsOpen():
		edge = false
	case board.PollEdge(button.Up):
		self.menu.Move(-1)
	case board.PollEdge(button.Down):
		self.menu.Move(+1)
	case board.PollEdge(button.Left) || board.PollEdge(button.Key2):
		self.menu.Close()
	case board.PollEdge(button.Right) || board.PollEdge(button.Key1):
		if e := self.menu.Selected(); e.Do != nil {
			self.dispatch(ctx, e)
			self.lastActivity.SetNow()
			return
		}
	default:
		// joystick press is bound but ignored, swallow the edge
		_ = board.PollEdge(button.Press)
		edge = false
	}

	if edge {
		self.lastActivity.SetNow()
		self.render()
		return
	}
	if self.resetTimeout > 0 && self.menu.IsOpen() &&
		atomic_clock.Since(self.lastActivity) >= self.resetTimeout {
		self.g.Log.Debugf("ui idle reset")
		self.menu.Close()
		self.render()
	}
}
