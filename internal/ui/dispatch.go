package ui

import (
	"context"
	"strings"

	"github.com/juju/errors"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
)

const msgFooterAck = "RIGHT/KEY1=OK  LEFT/KEY2=Back"

// resultLines caps how much of an action's output fits the result screen.
const resultLines = 8

type task struct {
	label string
	done  chan struct{}
}

// dispatch runs the entry in its own goroutine. The handle stays on the
// UI until its done channel closes; Tick never blocks on it.
func (self *UI) dispatch(ctx context.Context, e Entry) {
	if !self.g.Alive.Add(1) {
		return // shutting down
	}
	t := &task{label: e.Label, done: make(chan struct{})}
	self.task = t
	go func() {
		defer self.g.Alive.Done()
		defer close(t.done)
		self.runTask(ctx, e)
	}()
}

// runTask owns the panel and the buttons for its whole lifetime:
// interstitial, action body, result screen, acknowledge wait.
func (self *UI) runTask(ctx context.Context, e Entry) {
	self.renderLines([]string{e.Label + "..."})

	out, err := self.callAction(ctx, e)

	var lines []string
	if err != nil {
		self.g.Log.Errorf("ui action=%s err=%v", e.Label, err)
		lines = []string{e.Label, "", "Error: " + err.Error(), "", msgFooterAck}
	} else {
		if strings.TrimSpace(out) == "" {
			out = "Done."
		}
		body := strings.Split(out, "\n")
		if len(body) > resultLines {
			body = body[:resultLines]
		}
		lines = append([]string{e.Label + ":"}, body...)
		lines = append(lines, "", msgFooterAck)
	}
	self.renderLines(lines)
	self.waitAck()
}

// Action failures, panics included, end on the result screen and never
// reach the tick loop.
func (self *UI) callAction(ctx context.Context, e Entry) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = errors.Errorf("recovered: %v", r)
		}
	}()
	return e.Do(ctx)
}

// waitAck blocks until any of confirm/back is pressed or shutdown.
func (self *UI) waitAck() {
	board := self.g.Hardware.Board
	for self.g.Alive.IsRunning() {
		if board.PollEdge(button.Right) || board.PollEdge(button.Key1) ||
			board.PollEdge(button.Left) || board.PollEdge(button.Key2) {
			return
		}
		self.sleep(self.modalPoll)
	}
}
