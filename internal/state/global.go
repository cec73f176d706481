package state

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
	"github.com/cydrysdale/pwnagotchi/hardware/display"
	"github.com/cydrysdale/pwnagotchi/helpers"
	"github.com/cydrysdale/pwnagotchi/log2"
)

const ContextKey = "run/state-global"

// Global is the one explicit context object constructed at startup and
// passed down; nothing else holds shared mutable state.
type Global struct {
	Alive  *alive.Alive
	Config *Config
	Log    *log2.Log

	Hardware struct {
		Board   *button.Board
		Display *display.Display
	}
}

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error NewContext log=nil")
	}
	g := &Global{
		Alive: alive.NewAlive(),
		Log:   log,
	}
	ctx := context.Background()
	ctx = context.WithValue(ctx, ContextKey, g) //nolint:staticcheck
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
// Tests and the dev harness may preset Hardware before Init to skip
// touching real devices.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg

	errs := make([]error, 0)

	if g.Hardware.Board == nil {
		settle := helpers.IntMillisecondDefault(cfg.Menu.DebounceMs, button.DefaultSettle)
		if cfg.Hardware.DevInputEvent.Enable {
			src, err := button.NewDevInputSource(g.Log, cfg.Hardware.DevInputEvent.Device)
			if err != nil {
				errs = append(errs, errors.Annotate(err, "init input"))
			} else {
				g.Hardware.Board = button.NewBoardWithLiner(g.Log, src, settle)
			}
		} else {
			b, err := button.NewBoard(g.Log, cfg.Hardware.PinChip, cfg.Hardware.Pinmap, settle)
			if err != nil {
				errs = append(errs, errors.Annotate(err, "init buttons"))
			} else {
				g.Hardware.Board = b
			}
		}
	}

	if g.Hardware.Display == nil {
		d, err := display.NewFb(cfg.Hardware.FbDevice)
		if err != nil {
			errs = append(errs, errors.Annotate(err, "init display"))
		} else {
			g.Hardware.Display = d
		}
	}

	return helpers.FoldErrors(errs)
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) > 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(errors.ErrorStack(err))
	}
}

// Teardown releases bound input and display resources.
func (g *Global) Teardown() {
	g.Alive.Stop()
	g.Alive.Wait()
	if g.Hardware.Board != nil {
		if err := g.Hardware.Board.Close(); err != nil {
			g.Log.Errorf("teardown buttons err=%v", err)
		}
	}
	if g.Hardware.Display != nil {
		g.Hardware.Display.Close()
	}
}
