package button

import (
	"sync"

	gpio "github.com/temoto/gpio-cdev-go"
)

// MockLiner serves scripted level snapshots: queued one-shot reads first,
// then a steady state. Safe for concurrent use.
type MockLiner struct {
	mu     sync.Mutex
	queue  []gpio.HandleData
	steady gpio.HandleData
	err    error
	closed bool
}

var _ Liner = new(MockLiner)

func NewMockLiner() *MockLiner { return &MockLiner{} }

// Levels builds one snapshot with the listed buttons pressed.
func Levels(pressed ...Button) gpio.HandleData {
	data := gpio.HandleData{}
	for _, b := range pressed {
		data.Values[int(b)] = 1
	}
	return data
}

// Push queues snapshots, each consumed by exactly one Read.
func (m *MockLiner) Push(snapshots ...gpio.HandleData) {
	m.mu.Lock()
	m.queue = append(m.queue, snapshots...)
	m.mu.Unlock()
}

// PushPress queues one full press-and-release cycle: holds pressed
// snapshots followed by a release.
func (m *MockLiner) PushPress(b Button, holds int) {
	snapshots := make([]gpio.HandleData, 0, holds+1)
	for i := 0; i < holds; i++ {
		snapshots = append(snapshots, Levels(b))
	}
	snapshots = append(snapshots, Levels())
	m.Push(snapshots...)
}

// Set changes the steady state returned after the queue drains.
func (m *MockLiner) Set(steady gpio.HandleData) {
	m.mu.Lock()
	m.steady = steady
	m.mu.Unlock()
}

// Pending reports how many queued snapshots are left unconsumed.
func (m *MockLiner) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *MockLiner) SetError(e error) {
	m.mu.Lock()
	m.err = e
	m.mu.Unlock()
}

func (m *MockLiner) Read() (gpio.HandleData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return gpio.HandleData{}, m.err
	}
	if len(m.queue) > 0 {
		data := m.queue[0]
		m.queue = m.queue[1:]
		return data, nil
	}
	return m.steady, nil
}

func (m *MockLiner) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *MockLiner) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
