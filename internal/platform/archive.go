package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default log/config paths worth packaging for support upload.
func KnownLogPaths() []string {
	return []string{
		"/etc/pwnagotchi/config.toml",
		"/root/.pwnagotchi/state.json",
		"/var/log/pwnagotchi.log",
		"/var/log/syslog",
	}
}

// Archiver drives the external tar/rclone utilities.
type Archiver struct {
	Sysd   *Sysd
	Paths  []string
	TmpDir string
	now    func() time.Time
}

func NewArchiver(sysd *Sysd) *Archiver {
	return &Archiver{
		Sysd:   sysd,
		Paths:  KnownLogPaths(),
		TmpDir: os.TempDir(),
		now:    time.Now,
	}
}

// Pack creates a compressed archive of the known paths that exist.
// Returns the tarball path, "" when nothing to package.
func (self *Archiver) Pack() string {
	existing := make([]string, 0, len(self.Paths))
	for _, p := range self.Paths {
		matches, _ := filepath.Glob(p)
		for _, m := range matches {
			if _, err := os.Stat(m); err == nil {
				existing = append(existing, m)
			}
		}
	}
	if len(existing) == 0 {
		return ""
	}

	tarball := filepath.Join(self.TmpDir, fmt.Sprintf("pwnalog-%d.tar.gz", self.now().Unix()))
	args := append([]string{"-czf", tarball}, existing...)
	self.Sysd.run("tar", args...)
	return tarball
}

// Upload hands the tarball to rclone if a remote is configured.
func (self *Archiver) Upload(tarball, remote string) string {
	if self.Sysd.Which("rclone") == "" {
		return "rclone not installed. Tarball created: " + tarball
	}
	self.Sysd.run("rclone", "copy", tarball, remote, "--progress")
	return "Uploaded: " + remote
}
