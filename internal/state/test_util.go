package state

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
	"github.com/cydrysdale/pwnagotchi/hardware/display"
	"github.com/cydrysdale/pwnagotchi/log2"
)

func NewTestContext(t testing.TB, confString string) (context.Context, *Global) {
	fs := NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	log := log2.NewTest(t, log2.LDebug)
	// log := log2.NewStderr(log2.LDebug) // useful with panics
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log)

	g.Hardware.Board = button.NewBoardWithLiner(log, button.NewMockLiner(), time.Nanosecond)
	g.Hardware.Display = display.NewMock(image.Point{X: 240, Y: 240})
	g.MustInit(ctx, MustReadConfig(log, fs, "test-inline"))

	return ctx, g
}
