// Package gate guards the deauth capability: a persisted two-state flag
// with audited transitions and best-effort notification of the local
// privileged agent. The persisted flag is the source of truth; the agent
// acknowledgment is not.
package gate

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/extremofile"

	"github.com/cydrysdale/pwnagotchi/log2"
)

type State bool

const (
	Disarmed State = false
	Armed    State = true
)

func (s State) String() string {
	if s == Armed {
		return "ARMED"
	}
	return "DISARMED"
}

func (s State) action() string {
	if s == Armed {
		return "arm"
	}
	return "disarm"
}

// markerArmed is the canonical flag content; anything else reads as
// disarmed.
const markerArmed = "armed"
const markerDisarmed = "disarmed"

const notifyTimeout = 2 * time.Second

type Config struct {
	FlagDir   string
	AllowFile string
	TokenFile string
	AuditFile string
	AgentURL  string
}

// AuditEntry is one appended line of the audit log, JSON per line.
type AuditEntry struct {
	TS          string `json:"ts"`
	Action      string `json:"action"`
	AgentNotify bool   `json:"agent_notify"`
}

type storage interface {
	Read() ([]byte, error)
	io.Writer
}

type Gate struct {
	Log    *log2.Log
	config Config
	flag   storage
	http   *http.Client
	now    func() time.Time
}

func New(log *log2.Log, config Config) *Gate {
	return &Gate{
		Log:    log,
		config: config,
		flag: extremofile.New(extremofile.Config{
			Dir:      config.FlagDir,
			DirPerm:  0755,
			FilePerm: 0644,
		}),
		http: &http.Client{Timeout: notifyTimeout},
		now:  time.Now,
	}
}

// Current reads the persisted flag. Absent or corrupt reads as Disarmed.
func (self *Gate) Current() State {
	b, err := self.flag.Read()
	if b == nil {
		if err != nil {
			self.Log.Debugf("gate flag read err=%v", err)
		}
		return Disarmed
	}
	if err != nil {
		self.Log.Errorf("gate flag ignore non-critical read err=%v", err)
	}
	if strings.TrimSpace(string(b)) == markerArmed {
		return Armed
	}
	return Disarmed
}

// Toggle flips the persisted flag, appends an audit entry regardless of
// the notification outcome, and notifies the local agent only when the
// allow-artifact authorizes it. Notification is fire-and-forget.
func (self *Gate) Toggle() (State, error) {
	new := !self.Current()

	marker := markerDisarmed
	if new == Armed {
		marker = markerArmed
	}
	if _, err := self.flag.Write([]byte(marker)); err != nil {
		return !new, errors.Annotate(err, "gate flag write")
	}

	notified := false
	if self.allowed() {
		notified = self.notify(new.action())
	}

	entry := AuditEntry{
		TS:          self.now().UTC().Format(time.RFC3339),
		Action:      new.action(),
		AgentNotify: notified,
	}
	if err := self.audit(entry); err != nil {
		self.Log.Errorf("gate audit err=%v", err)
	}

	self.Log.Infof("gate %s agent_notify=%t", new.String(), notified)
	return new, nil
}

// Authorization is computed fresh from the filesystem on every toggle.
func (self *Gate) allowed() bool {
	_, err := os.Stat(self.config.AllowFile)
	return err == nil
}

func (self *Gate) notify(action string) bool {
	tokenBytes, err := ioutil.ReadFile(self.config.TokenFile)
	if err != nil {
		// missing token: skip, recorded as not-notified
		self.Log.Debugf("gate token err=%v", err)
		return false
	}
	payload, err := json.Marshal(map[string]interface{}{
		"action": action,
		"token":  strings.TrimSpace(string(tokenBytes)),
		"ts":     self.now().Unix(),
	})
	if err != nil {
		return false
	}
	resp, err := self.http.Post(self.config.AgentURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		self.Log.Debugf("gate notify err=%v", err)
		return false
	}
	// fire-and-forget: response content does not matter
	_ = resp.Body.Close()
	return true
}

func (self *Gate) audit(entry AuditEntry) error {
	if err := os.MkdirAll(filepath.Dir(self.config.AuditFile), 0755); err != nil {
		return errors.Trace(err)
	}
	b, err := json.Marshal(&entry)
	if err != nil {
		return errors.Trace(err)
	}
	f, err := os.OpenFile(self.config.AuditFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return errors.Trace(err)
}
