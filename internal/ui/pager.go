package ui

import (
	"github.com/cydrysdale/pwnagotchi/hardware/button"
)

const msgFooterPage = "RIGHT/KEY1=next  LEFT/KEY2=back"

// pageThrough shows lines in fixed chunks of pageSize, each with a page
// footer. Returns false when the viewer was backed out before the last
// page; the partial view changes nothing for the caller.
func (self *UI) pageThrough(lines []string, pageSize int) bool {
	for begin := 0; begin < len(lines); begin += pageSize {
		end := begin + pageSize
		if end > len(lines) {
			end = len(lines)
		}
		page := make([]string, 0, pageSize+2)
		page = append(page, lines[begin:end]...)
		page = append(page, "", msgFooterPage)
		self.renderLines(page)
		if !self.nextOrBack() {
			return false
		}
	}
	return true
}

// nextOrBack blocks on the page footer choice: true = next page.
func (self *UI) nextOrBack() bool {
	board := self.g.Hardware.Board
	for self.g.Alive.IsRunning() {
		if board.PollEdge(button.Right) || board.PollEdge(button.Key1) {
			return true
		}
		if board.PollEdge(button.Left) || board.PollEdge(button.Key2) {
			return false
		}
		self.sleep(self.modalPoll)
	}
	return false
}
