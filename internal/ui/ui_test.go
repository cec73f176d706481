package ui

import (
	"context"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
	"github.com/cydrysdale/pwnagotchi/hardware/display"
	"github.com/cydrysdale/pwnagotchi/internal/platform"
	"github.com/cydrysdale/pwnagotchi/internal/state"
	"github.com/cydrysdale/pwnagotchi/log2"
)

// Reads consumed before each button's check in an open-menu tick; the
// scripted liner serves one snapshot per read, so a simulated press must
// hold through the checks preceding its own.
var openTickHolds = map[button.Button]int{
	button.Key3:  1,
	button.Up:    2,
	button.Down:  3,
	button.Left:  4,
	button.Key2:  5,
	button.Right: 6,
	button.Key1:  7,
}

// Modal waits (result ack, pager) poll Right, Key1, Left, Key2 in order.
var modalHolds = map[button.Button]int{
	button.Right: 1,
	button.Key1:  2,
	button.Left:  3,
	button.Key2:  4,
}

type fakeRun struct {
	replies map[string]string
	calls   []string
}

func (f *fakeRun) run(name string, args ...string) string {
	cmd := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmd)
	return f.replies[cmd]
}

func testUI(t testing.TB, confExtra string) (context.Context, *UI, *button.MockLiner, *fakeRun) {
	gateDir := t.TempDir()
	conf := fmt.Sprintf(`
gate {
  flag_dir = "%s/deauth"
  allow_file = "%s/allow"
  token_file = "%s/token"
  audit_file = "%s/audit.log"
}
`, gateDir, gateDir, gateDir, gateDir) + confExtra
	fs := state.NewMockFullReader(map[string]string{"test-inline": conf})

	log := log2.NewTest(t, log2.LDebug)
	log.SetFlags(log2.LTestFlags)
	ctx, g := state.NewContext(log)
	mock := button.NewMockLiner()
	g.Hardware.Board = button.NewBoardWithLiner(log, mock, time.Nanosecond)
	g.Hardware.Display = display.NewMock(image.Point{X: 240, Y: 240})
	g.MustInit(ctx, state.MustReadConfig(log, fs, "test-inline"))

	self := New(ctx)
	f := &fakeRun{replies: make(map[string]string)}
	self.sysd = platform.NewWithRunner(log, f.run)
	self.arch = platform.NewArchiver(self.sysd)
	self.sleep = func(time.Duration) {}
	return ctx, self, mock, f
}

func openMenu(t testing.TB, ctx context.Context, self *UI, mock *button.MockLiner) {
	mock.PushPress(button.Key3, 1)
	self.Tick(ctx)
	require.True(t, self.menu.IsOpen())
	require.Equal(t, 0, mock.Pending())
}

// finishTask waits out the dispatched goroutine and lets the next tick
// reap the handle.
func finishTask(t testing.TB, ctx context.Context, self *UI) {
	require.NotNil(t, self.task)
	select {
	case <-self.task.done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}
	self.Tick(ctx)
	require.Nil(t, self.task)
}

func TestTickToggleAndNavigate(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")
	openMenu(t, ctx, self, mock)

	mock.PushPress(button.Down, openTickHolds[button.Down])
	self.Tick(ctx)
	_, index, _ := self.menu.Snapshot()
	assert.Equal(t, 1, index)

	mock.PushPress(button.Up, openTickHolds[button.Up])
	self.Tick(ctx)
	_, index, _ = self.menu.Snapshot()
	assert.Equal(t, 0, index)

	mock.PushPress(button.Key2, openTickHolds[button.Key2])
	self.Tick(ctx)
	assert.False(t, self.menu.IsOpen())
	assert.Equal(t, 0, mock.Pending())
}

func TestTickPrecedenceToggleFirst(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")

	// one tick sees both KEY3 and DOWN pressed: only the toggle acts
	mock.Push(button.Levels(button.Key3, button.Down), button.Levels())
	self.Tick(ctx)
	assert.True(t, self.menu.IsOpen())
	_, index, _ := self.menu.Snapshot()
	assert.Equal(t, 0, index)
}

func TestTickClosedIgnoresNavigation(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")
	mock.PushPress(button.Down, 1)
	self.Tick(ctx)
	assert.False(t, self.menu.IsOpen())
	_, index, _ := self.menu.Snapshot()
	assert.Equal(t, 0, index)
}

func TestTickSeparatorSelectNoop(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")
	openMenu(t, ctx, self, mock)
	self.menu.Move(5) // the separator row

	mock.PushPress(button.Right, openTickHolds[button.Right])
	self.Tick(ctx)
	assert.Nil(t, self.task, "separator select spawns nothing")
	_, index, _ := self.menu.Snapshot()
	assert.Equal(t, 5, index)
}

func TestTickSelectRunsAction(t *testing.T) {
	t.Parallel()

	ctx, self, mock, f := testUI(t, "")
	f.replies["systemctl list-units --type=service --all --no-legend --no-pager"] = "pwnagotchi.service loaded active running\n"
	f.replies["systemctl is-active pwnagotchi.service"] = "active\n"

	openMenu(t, ctx, self, mock)
	self.menu.Move(1) // Restart pwnagotchi

	mock.PushPress(button.Right, openTickHolds[button.Right])
	mock.PushPress(button.Right, modalHolds[button.Right]) // ack result
	self.Tick(ctx)
	finishTask(t, ctx, self)

	assert.Contains(t, f.calls, "sudo systemctl restart pwnagotchi.service")
	assert.Equal(t, 0, mock.Pending())
	assert.True(t, self.menu.IsOpen(), "menu survives the action")
}

func TestTickActionErrorContained(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")
	openMenu(t, ctx, self, mock)
	self.menu = NewMenu([]Entry{{Label: "boom", Do: func(context.Context) (string, error) {
		panic("kaboom")
	}}})
	self.menu.Toggle()

	mock.PushPress(button.Right, openTickHolds[button.Right])
	mock.PushPress(button.Key2, modalHolds[button.Key2]) // ack error screen
	self.Tick(ctx)
	finishTask(t, ctx, self)
	assert.Equal(t, 0, mock.Pending())
}

func TestTickBusyIgnoresButtons(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")
	openMenu(t, ctx, self, mock)

	release := make(chan struct{})
	self.menu = NewMenu([]Entry{{Label: "slow", Do: func(context.Context) (string, error) {
		<-release
		return "ok", nil
	}}})
	self.menu.Toggle()

	mock.PushPress(button.Right, openTickHolds[button.Right])
	self.Tick(ctx)
	require.NotNil(t, self.task)

	// while the action runs ticks poll nothing
	self.Tick(ctx)
	self.Tick(ctx)
	assert.Equal(t, 0, mock.Pending())

	mock.PushPress(button.Right, modalHolds[button.Right])
	close(release)
	finishTask(t, ctx, self)
}

func TestTickIdleReset(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "menu { reset_sec = 1 }\n")
	require.Equal(t, time.Second, self.resetTimeout)
	openMenu(t, ctx, self, mock)

	self.lastActivity.Set(time.Now().Add(-2 * time.Second).UnixNano())
	self.Tick(ctx)
	assert.False(t, self.menu.IsOpen())
}

func TestRenderScreens(t *testing.T) {
	t.Parallel()

	ctx, self, mock, _ := testUI(t, "")
	d := self.g.Hardware.Display

	openMenu(t, ctx, self, mock)
	assert.True(t, d.Lit(titleTop, titleTop+display.LineStep), "title row")
	assert.True(t, d.Lit(entriesTop, entriesTop+display.LineStep), "first entry row")
	assert.True(t, d.Lit(d.Height()-hintInset, d.Height()), "hint footer")

	self.menu.Close()
	self.render()
	assert.False(t, d.Lit(0, d.Height()), "closed menu blanks the panel")
}

func TestPageThrough(t *testing.T) {
	t.Parallel()

	lines := make([]string, 22)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}

	t.Run("complete", func(t *testing.T) {
		_, self, mock, _ := testUI(t, "")
		for i := 0; i < 4; i++ { // pages of 6, 6, 6, 4
			mock.PushPress(button.Right, modalHolds[button.Right])
		}
		assert.True(t, self.pageThrough(lines, 6))
		assert.Equal(t, 0, mock.Pending(), "exactly one confirm per page")
		assert.True(t, self.g.Hardware.Display.Lit(titleTop, titleTop+display.LineStep))
	})

	t.Run("back-aborts", func(t *testing.T) {
		_, self, mock, _ := testUI(t, "")
		mock.PushPress(button.Right, modalHolds[button.Right]) // page 1 -> 2
		mock.PushPress(button.Left, modalHolds[button.Left])   // back on page 2
		assert.False(t, self.pageThrough(lines, 6))
		assert.Equal(t, 0, mock.Pending(), "pages 3 and 4 never shown")
	})
}
