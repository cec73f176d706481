package ui

import (
	"github.com/cydrysdale/pwnagotchi/hardware/display"
)

// Overlay geometry mirrors the Waveshare 1.3" panel layout: title at the
// top, entries from y=32, hint pinned to the bottom edge. Long lines clip
// at the panel border.
const (
	textLeft   = 8
	titleTop   = 8
	entriesTop = 32
	hintInset  = 20
)

const hintFooter = "UP/DN nav  RIGHT/KEY1 ok  LEFT/KEY2 back  KEY3 menu"

// render draws the current model state: the menu overlay when open, a
// blank panel when closed (control returns to the host UI).
func (self *UI) render() {
	d := self.g.Hardware.Display
	entries, index, open := self.menu.Snapshot()
	if !open {
		if err := d.Clear(); err != nil {
			self.g.Log.Errorf("ui render clear err=%v", err)
		}
		return
	}

	d.Fill(display.Black)
	d.Text(textLeft, titleTop, self.g.Config.Menu.MsgTitle, display.Green)
	y := entriesTop
	for i, e := range entries {
		prefix := "  "
		if i == index {
			prefix = "> "
		}
		d.Text(textLeft, y, prefix+e.Label, display.White)
		y += display.LineStep
	}
	d.Text(textLeft, d.Height()-hintInset, hintFooter, display.DimGrn)
	if err := d.Flush(); err != nil {
		self.g.Log.Errorf("ui render flush err=%v", err)
	}
}

// renderLines draws a full-panel message screen, one line per LineStep.
func (self *UI) renderLines(lines []string) {
	d := self.g.Hardware.Display
	d.Fill(display.Black)
	y := titleTop
	for _, line := range lines {
		d.Text(textLeft, y, line, display.Green)
		y += display.LineStep
	}
	if err := d.Flush(); err != nil {
		self.g.Log.Errorf("ui render flush err=%v", err)
	}
}
