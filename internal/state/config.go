package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"

	"github.com/cydrysdale/pwnagotchi/hardware/button"
	"github.com/cydrysdale/pwnagotchi/helpers"
	"github.com/cydrysdale/pwnagotchi/log2"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Menu struct {
		MsgTitle     string `hcl:"msg_title"`
		RcloneRemote string `hcl:"rclone_remote"` // e.g. "gdrive:pwna-logs"
		ResetSec     int    `hcl:"reset_sec"`     // 0 = no idle auto-close
		DebounceMs   int    `hcl:"debounce_ms"`
		TickMs       int    `hcl:"tick_ms"`
	} `hcl:"menu"`

	Hardware struct {
		PinChip  string        `hcl:"pin_chip"`
		Pinmap   button.PinMap `hcl:"pinmap"`
		FbDevice string        `hcl:"fb_device"`

		DevInputEvent struct {
			Enable bool   `hcl:"enable"`
			Device string `hcl:"device"`
		} `hcl:"dev_input_event"`
	} `hcl:"hardware"`

	Gate struct {
		FlagDir   string `hcl:"flag_dir"`
		AllowFile string `hcl:"allow_file"`
		TokenFile string `hcl:"token_file"`
		AuditFile string `hcl:"audit_file"`
		AgentURL  string `hcl:"agent_url"`
	} `hcl:"gate"`

	Battery struct {
		URL       string `hcl:"url"`
		TimeoutMs int    `hcl:"timeout_ms"`
	} `hcl:"battery"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) setDefaults() {
	if c.Menu.MsgTitle == "" {
		c.Menu.MsgTitle = "Pwnagotchi Menu"
	}
	if c.Hardware.PinChip == "" {
		c.Hardware.PinChip = "/dev/gpiochip0"
	}
	zero := button.PinMap{}
	if c.Hardware.Pinmap == zero {
		c.Hardware.Pinmap = button.DefaultPinMap()
	}
	if c.Hardware.FbDevice == "" {
		c.Hardware.FbDevice = "/dev/fb1"
	}
	if c.Gate.FlagDir == "" {
		c.Gate.FlagDir = "/var/lib/pwnagotchi/deauth"
	}
	if c.Gate.AllowFile == "" {
		c.Gate.AllowFile = "/etc/pwnagotchi/allow_deauth"
	}
	if c.Gate.TokenFile == "" {
		c.Gate.TokenFile = "/etc/pwnagotchi/deauth_token"
	}
	if c.Gate.AuditFile == "" {
		c.Gate.AuditFile = "/var/log/pwnagotchi/deauth.log"
	}
	if c.Gate.AgentURL == "" {
		c.Gate.AgentURL = "http://127.0.0.1:8422/deauth"
	}
	if c.Battery.URL == "" {
		c.Battery.URL = "http://127.0.0.1:8421/getBattery"
	}
	if c.Battery.TimeoutMs == 0 {
		c.Battery.TimeoutMs = 800
	}
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
			return
		}
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

// Missing file, section or key falls back to defaults; only unreadable or
// invalid content is an error.
func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name, Optional: true}, &errs)
	}
	c.setDefaults()
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
