// Command menu-dev drives the menu with simulated button presses, no
// hardware required. Type a button name to press it, `show` to dump the
// rendered frame as ASCII.
package main

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	prompt "github.com/c-bata/go-prompt"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
	"github.com/cydrysdale/pwnagotchi/hardware/display"
	"github.com/cydrysdale/pwnagotchi/helpers/cli"
	"github.com/cydrysdale/pwnagotchi/internal/state"
	"github.com/cydrysdale/pwnagotchi/internal/ui"
	"github.com/cydrysdale/pwnagotchi/log2"
)

var log = log2.NewStderr(log2.LDebug)

const pressHold = 250 * time.Millisecond

var buttons = map[string]button.Button{
	"up":    button.Up,
	"down":  button.Down,
	"left":  button.Left,
	"right": button.Right,
	"ok":    button.Press,
	"1":     button.Key1,
	"2":     button.Key2,
	"3":     button.Key3,
	"menu":  button.Key3,
}

func main() {
	log.SetFlags(log2.LInteractiveFlags)

	ctx, g := state.NewContext(log)
	liner := button.NewMockLiner()
	g.Hardware.Board = button.NewBoardWithLiner(log, liner, 0)
	g.Hardware.Display = display.NewMock(image.Point{X: 240, Y: 240})
	g.MustInit(ctx, state.MustReadConfig(log, state.NewMockFullReader(map[string]string{"inline": ""}), "inline"))

	menu := ui.New(ctx)
	go func() {
		ticker := time.NewTicker(ui.DefaultTickInterval)
		defer ticker.Stop()
		for g.Alive.IsRunning() {
			<-ticker.C
			menu.Tick(ctx)
		}
	}()

	log.Debugf("menu-dev init complete, running")
	cli.MainLoop("menu-dev", func(line string) {
		switch {
		case line == "":
		case line == "quit" || line == "exit":
			g.Alive.Stop()
			g.Teardown()
			os.Exit(0)
		case line == "show":
			fmt.Println(frameString(g.Hardware.Display))
		default:
			b, ok := buttons[line]
			if !ok {
				log.Errorf("unknown command=%s", line)
				return
			}
			liner.Set(button.Levels(b))
			time.Sleep(pressHold)
			liner.Set(button.Levels())
		}
	}, complete)
}

func complete(d prompt.Document) []prompt.Suggest {
	suggests := []prompt.Suggest{
		{Text: "up", Description: "navigate up"},
		{Text: "down", Description: "navigate down"},
		{Text: "left", Description: "back / exit"},
		{Text: "right", Description: "select / confirm"},
		{Text: "1", Description: "KEY1 select"},
		{Text: "2", Description: "KEY2 back"},
		{Text: "3", Description: "KEY3 toggle menu"},
		{Text: "show", Description: "print rendered frame"},
		{Text: "quit", Description: ""},
	}
	return prompt.FilterFuzzy(suggests, d.GetWordBeforeCursor(), true)
}

// frameString shrinks the 240x240 frame to a terminal-sized ASCII view.
func frameString(d *display.Display) string {
	const cellW, cellH = 3, 6
	lines := []string{}
	for _, line := range strings.Split(d.String(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	b := strings.Builder{}
	for y := 0; y+cellH <= len(lines); y += cellH {
		for x := 0; x+cellW <= d.Width(); x += cellW {
			lit := false
			for yy := y; yy < y+cellH && !lit; yy++ {
				for xx := x; xx < x+cellW; xx++ {
					if lines[yy][xx] != ' ' {
						lit = true
						break
					}
				}
			}
			if lit {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
