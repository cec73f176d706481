// Command pwnmenu runs the on-device maintenance menu service.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"github.com/cydrysdale/pwnagotchi/helpers"
	"github.com/cydrysdale/pwnagotchi/internal/state"
	"github.com/cydrysdale/pwnagotchi/internal/ui"
	"github.com/cydrysdale/pwnagotchi/log2"
)

var log = log2.NewStderr(log2.LDebug)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "/etc/pwnagotchi/pwnmenu.hcl", "")
	cmdline.Parse(os.Args[1:])

	if sdnotify("start") {
		// under systemd, journal adds timestamps
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}
	log.Debugf("hello")

	ctx, g := state.NewContext(log)
	g.MustInit(ctx, state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig))
	log.Debugf("config=%+v", g.Config)

	menu := ui.New(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Infof("signal=%v", sig)
		g.Alive.Stop()
	}()

	sdnotify(daemon.SdNotifyReady)
	log.Infof("init complete, running")

	tick := helpers.IntMillisecondDefault(g.Config.Menu.TickMs, ui.DefaultTickInterval)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	stopCh := g.Alive.StopChan()
	for g.Alive.IsRunning() {
		select {
		case <-stopCh:
		case <-ticker.C:
			menu.Tick(ctx)
		}
	}

	g.Teardown()
	log.Infof("goodbye")
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
