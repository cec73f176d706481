package button

import (
	"os"
	"sync"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
	inputevent "github.com/temoto/inputevent-go"

	"github.com/cydrysdale/pwnagotchi/log2"
)

// Linux input-event key codes for builds that expose HAT buttons via a
// /dev/input/eventN device instead of raw GPIO.
var defaultKeyCodes = map[uint16]Button{
	103: Up,    // KEY_UP
	108: Down,  // KEY_DOWN
	105: Left,  // KEY_LEFT
	106: Right, // KEY_RIGHT
	28:  Press, // KEY_ENTER
	2:   Key1,  // KEY_1
	3:   Key2,  // KEY_2
	4:   Key3,  // KEY_3
}

// DevInputSource adapts /dev/input EV_KEY events to the Liner snapshot
// contract: a background reader tracks per-button pressed state.
type DevInputSource struct {
	log   *log2.Log
	f     *os.File
	codes map[uint16]Button

	mu     sync.Mutex
	values [Count]byte
	closed bool
}

var _ Liner = new(DevInputSource)

func NewDevInputSource(log *log2.Log, device string) (*DevInputSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Annotatef(err, "dev-input device=%s", device)
	}
	self := &DevInputSource{
		log:   log,
		f:     f,
		codes: defaultKeyCodes,
	}
	go self.readLoop()
	return self, nil
}

func (self *DevInputSource) Read() (gpio.HandleData, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	data := gpio.HandleData{}
	copy(data.Values[:], self.values[:])
	return data, nil
}

func (self *DevInputSource) Close() error {
	self.mu.Lock()
	self.closed = true
	self.mu.Unlock()
	return self.f.Close()
}

func (self *DevInputSource) readLoop() {
	for {
		ie, err := inputevent.ReadOne(self.f)
		if err != nil {
			self.mu.Lock()
			closed := self.closed
			self.mu.Unlock()
			if !closed {
				self.log.Errorf("dev-input read err=%v", err)
			}
			return
		}
		if ie.Type != 1 { // EV_KEY
			continue
		}
		b, ok := self.codes[ie.Code]
		if !ok {
			continue
		}
		self.mu.Lock()
		if inputevent.KeyEventState(ie.Value) == inputevent.KeyStateUp {
			self.values[b] = 0
		} else {
			self.values[b] = 1
		}
		self.mu.Unlock()
	}
}
