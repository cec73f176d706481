// Package button reads the physical buttons of the Waveshare 1.3" LCD HAT
// (or compatible) through the GPIO character device and turns raw levels
// into clean press edges.
package button

import (
	"time"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"

	"github.com/cydrysdale/pwnagotchi/log2"
)

type Button uint8

const (
	Up Button = iota
	Down
	Left // Back / Exit (redundant with KEY2)
	Right
	Press // joystick press, bound but ignored to swallow accidental nav
	Key1  // Select / Confirm
	Key2  // Back / Exit
	Key3  // toggle menu open/close
	Count
)

var buttonNames = [Count]string{"up", "down", "left", "right", "press", "key1", "key2", "key3"}

func (b Button) String() string {
	if b >= Count {
		return "invalid"
	}
	return buttonNames[b]
}

// BCM offsets per Waveshare 1.3" LCD HAT. Backlight is BCM 24, not bound here.
type PinMap struct {
	Up    int `hcl:"up"`
	Down  int `hcl:"down"`
	Left  int `hcl:"left"`
	Right int `hcl:"right"`
	Press int `hcl:"press"`
	Key1  int `hcl:"key1"`
	Key2  int `hcl:"key2"`
	Key3  int `hcl:"key3"`
}

func DefaultPinMap() PinMap {
	return PinMap{Up: 6, Down: 19, Left: 5, Right: 26, Press: 13, Key1: 21, Key2: 20, Key3: 16}
}

func (pm *PinMap) offsets() [Count]uint32 {
	return [Count]uint32{
		uint32(pm.Up), uint32(pm.Down), uint32(pm.Left), uint32(pm.Right),
		uint32(pm.Press), uint32(pm.Key1), uint32(pm.Key2), uint32(pm.Key3),
	}
}

// Liner is the raw level source: one snapshot of all button lines per Read,
// value!=0 means pressed. Implemented by gpio-cdev lines (active-low),
// the /dev/input adapter and test mocks.
type Liner interface {
	Read() (gpio.HandleData, error)
	Close() error
}

const (
	DefaultSettle = 150 * time.Millisecond
	spinInterval  = 10 * time.Millisecond
)

type Board struct { //nolint:maligned
	Log    *log2.Log
	liner  Liner
	chip   gpio.Chiper
	settle time.Duration
	sleep  func(time.Duration) // test hook
}

func NewBoard(log *log2.Log, chipName string, pm PinMap, settle time.Duration) (*Board, error) {
	chip, err := gpio.Open(chipName, "pwnmenu")
	if err != nil {
		return nil, errors.Annotatef(err, "button chip=%s", chipName)
	}
	offsets := pm.offsets()
	lines, err := chip.OpenLines(
		gpio.GPIOHANDLE_REQUEST_INPUT|gpio.GPIOHANDLE_REQUEST_ACTIVE_LOW,
		"pwnmenu", offsets[:]...)
	if err != nil {
		_ = chip.Close()
		return nil, errors.Annotatef(err, "button lines=%v", offsets)
	}
	b := NewBoardWithLiner(log, linerCloser{lines}, settle)
	b.chip = chip
	return b, nil
}

func NewBoardWithLiner(log *log2.Log, liner Liner, settle time.Duration) *Board {
	if settle == 0 {
		settle = DefaultSettle
	}
	return &Board{
		Log:    log,
		liner:  liner,
		settle: settle,
		sleep:  time.Sleep,
	}
}

// Pressed reads the current raw level. Read failure is "not pressed".
func (self *Board) Pressed(b Button) bool {
	data, err := self.liner.Read()
	if err != nil {
		self.Log.Debugf("button read err=%v", err)
		return false
	}
	return data.Values[int(b)] != 0
}

// PollEdge returns true exactly once per physical press-and-release cycle.
// A press blocks for the settle delay, then spins until release.
func (self *Board) PollEdge(b Button) bool {
	if !self.Pressed(b) {
		return false
	}
	self.sleep(self.settle)
	for self.Pressed(b) {
		self.sleep(spinInterval)
	}
	return true
}

func (self *Board) Close() error {
	err := self.liner.Close()
	if self.chip != nil {
		if e := self.chip.Close(); err == nil {
			err = e
		}
	}
	return err
}

// gpio.Lineser carries extra output-only methods, narrow it to Liner.
type linerCloser struct{ gpio.Lineser }

func (lc linerCloser) Read() (gpio.HandleData, error) { return lc.Lineser.Read() }
func (lc linerCloser) Close() error                   { return lc.Lineser.Close() }
