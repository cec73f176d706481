package ui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/juju/errors"
)

// fallbackUnit is tried when unit detection comes up empty.
const fallbackUnit = "pwnagotchi"

const (
	eventsShown   = 40
	eventsPage    = 6
	eventsTail    = 300
	networksShown = 10
	networksPage  = 1
)

func (self *UI) entries() []Entry {
	return []Entry{
		{Label: "Status", Do: self.actionStatus},
		{Label: "Restart pwnagotchi", Do: self.actionRestart},
		{Label: "Toggle deauth", Do: self.actionToggleDeauth},
		{Label: "Reboot device", Do: self.actionReboot},
		{Label: "Shutdown device", Do: self.actionShutdown},
		{Label: "----"},
		{Label: "View events (40)", Do: self.actionEvents},
		{Label: "Saved nets (10)", Do: self.actionNetworks},
		{Label: "Upload logs", Do: self.actionUpload},
		{Label: "PiSugar: battery", Do: self.actionBattery},
	}
}

func (self *UI) unit() string {
	if unit := self.sysd.DetectUnit(); unit != "" {
		return unit
	}
	return fallbackUnit
}

func (self *UI) actionStatus(ctx context.Context) (string, error) {
	up := self.sysd.Uptime()
	svc := self.sysd.UnitStatus(self.unit())
	if svc == "" {
		svc = "unknown"
	}
	ip := self.sysd.FirstAddr()
	return fmt.Sprintf("uptime: %s\nsvc: %s\nip: %s", up, svc, ip), nil
}

func (self *UI) actionRestart(ctx context.Context) (string, error) {
	return self.sysd.RestartUnit(self.unit()), nil
}

// actionToggleDeauth flips the gate and bounces the managed service so
// the new state takes effect. The restart is best-effort.
func (self *UI) actionToggleDeauth(ctx context.Context) (string, error) {
	st, err := self.gate.Toggle()
	if err != nil {
		return "", errors.Annotate(err, "toggle deauth")
	}
	self.sysd.RestartUnit(self.unit())
	return fmt.Sprintf("deauth -> %s", st.String()), nil
}

func (self *UI) actionReboot(ctx context.Context) (string, error) {
	return self.sysd.Reboot(), nil
}

func (self *UI) actionShutdown(ctx context.Context) (string, error) {
	return self.sysd.Shutdown(), nil
}

var eventRe = regexp.MustCompile(`(?i)(pwnagotchi|handshake|WPA|WEP|deauth|error|WARN|INFO|peer|epoch|session)`)

func (self *UI) actionEvents(ctx context.Context) (string, error) {
	raw := self.sysd.TailLog(eventsTail)
	if strings.TrimSpace(raw) == "" {
		return "No logs found.", nil
	}
	lines := filterEvents(raw)
	if len(lines) > eventsShown {
		lines = lines[len(lines)-eventsShown:]
	}
	if !self.pageThrough(lines, eventsPage) {
		return "", nil
	}
	return "End of events.", nil
}

// filterEvents keeps the relevant lines, or every non-blank line when
// nothing matches the relevance pattern.
func filterEvents(raw string) []string {
	all := strings.Split(raw, "\n")
	keep := make([]string, 0, len(all))
	for _, line := range all {
		if eventRe.MatchString(line) {
			keep = append(keep, strings.TrimSpace(line))
		}
	}
	if len(keep) > 0 {
		return keep
	}
	for _, line := range all {
		if s := strings.TrimSpace(line); s != "" {
			keep = append(keep, s)
		}
	}
	return keep
}

func (self *UI) actionNetworks(ctx context.Context) (string, error) {
	newest := self.savedNetworks()
	if len(newest) == 0 {
		return "No secured networks found.", nil
	}
	screens := make([]string, len(newest))
	for i, ssid := range newest {
		screens[i] = "SSID: " + ssid
	}
	if !self.pageThrough(screens, networksPage) {
		return "", nil
	}
	return "End of networks.", nil
}

func (self *UI) actionUpload(ctx context.Context) (string, error) {
	self.renderLines([]string{"Packaging logs..."})
	tarball := self.arch.Pack()
	if tarball == "" {
		return "No known logs found.", nil
	}
	remote := self.g.Config.Menu.RcloneRemote
	if remote == "" {
		return "Tarball created: " + tarball, nil
	}
	self.renderLines([]string{"Uploading to " + remote + " ..."})
	return self.arch.Upload(tarball, remote), nil
}

func (self *UI) actionBattery(ctx context.Context) (string, error) {
	return strings.Join(self.batt.Status(), "\n"), nil
}
