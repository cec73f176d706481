// Package platform isolates all text-command construction for system
// queries behind a narrow adapter: the menu core never interpolates
// shell strings itself.
package platform

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/cydrysdale/pwnagotchi/log2"
)

// Runner executes one external command and captures combined output.
// Failures are embedded in the returned text, never raised: from the
// menu's perspective every system query "succeeds" with something to
// display.
type Runner func(name string, args ...string) string

func ExecRunner(log *log2.Log) Runner {
	return func(name string, args ...string) string {
		out, err := exec.Command(name, args...).CombinedOutput()
		if err != nil {
			log.Debugf("platform run %s %v err=%v", name, args, err)
			if len(out) == 0 {
				return err.Error()
			}
		}
		return string(out)
	}
}

const defaultUnitHint = "pwnagotchi"

type Sysd struct {
	Log      *log2.Log
	UnitHint string // substring to match the managed service unit
	run      Runner
}

func New(log *log2.Log) *Sysd {
	return NewWithRunner(log, ExecRunner(log))
}

func NewWithRunner(log *log2.Log, run Runner) *Sysd {
	return &Sysd{Log: log, UnitHint: defaultUnitHint, run: run}
}

// DetectUnit finds the managed systemd unit name by substring match.
// Returns "" when no unit matches.
func (self *Sysd) DetectUnit() string {
	out := self.run("systemctl", "list-units", "--type=service", "--all", "--no-legend", "--no-pager")
	hint := strings.ToLower(self.UnitHint)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		for _, f := range fields {
			if strings.HasSuffix(f, ".service") && strings.Contains(strings.ToLower(f), hint) {
				return f
			}
		}
	}
	return ""
}

func (self *Sysd) UnitStatus(unit string) string {
	return firstLine(self.run("systemctl", "is-active", unit))
}

func (self *Sysd) RestartUnit(unit string) string {
	out := self.run("sudo", "systemctl", "restart", unit)
	status := self.UnitStatus(unit)
	if status != "" {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += status
	}
	return out
}

func (self *Sysd) Reboot() string {
	self.run("sudo", "reboot")
	return "Rebooting..."
}

func (self *Sysd) Shutdown() string {
	self.run("sudo", "shutdown", "now")
	return "Shutting down..."
}

// TailLog pulls ~n recent log lines with three-tier fallback:
// unit-specific journal, generic journal, flat syslog tail.
func (self *Sysd) TailLog(n int) string {
	ns := strconv.Itoa(n)
	if unit := self.DetectUnit(); unit != "" {
		raw := self.run("journalctl", "-u", unit, "-n", ns, "--no-pager")
		if strings.TrimSpace(raw) != "" {
			return raw
		}
	}
	raw := self.run("journalctl", "-n", ns, "--no-pager")
	if strings.TrimSpace(raw) != "" {
		return raw
	}
	return self.run("tail", "-n", "300", "/var/log/syslog")
}

func (self *Sysd) Uptime() string {
	return firstLine(self.run("uptime", "-p"))
}

// FirstAddr returns the first whitespace-delimited token of the host
// address query, "" when the host has no address.
func (self *Sysd) FirstAddr() string {
	fields := strings.Fields(self.run("hostname", "-I"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Which returns the resolved path of an executable, "" if not installed.
func (self *Sysd) Which(bin string) string {
	out := strings.TrimSpace(self.run("which", bin))
	if strings.ContainsAny(out, " \n") || !strings.HasPrefix(out, "/") {
		return ""
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
