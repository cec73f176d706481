package ui

import (
	"encoding/json"
	"io/ioutil"
	"regexp"
	"sort"
	"strings"
)

// Heuristic locations used across community builds; whichever exists
// contributes SSIDs.
func defaultStatePaths() []string {
	return []string{
		"/root/.pwnagotchi/known_networks.json",
		"/root/.pwnagotchi/networks.json",
		"/root/.pwnagotchi/seen_networks.json",
		"/home/pi/.pwnagotchi/known_networks.json",
	}
}

func defaultHandshakeDirs() []string {
	return []string{"/root/handshakes", "/home/pi/handshakes"}
}

// capDirTail caps how many capture filenames per directory are mined.
const capDirTail = 50

var capExtRe = regexp.MustCompile(`(?i)\.(pcap|pcapng|cap|hccapx)$`)
var ssidLogRe = regexp.MustCompile(`(?i)SSID[:= ]*"?([^"]{1,32})"?`)

// savedNetworks gathers SSIDs from state files, capture filenames and as
// a last resort the journal, newest-deduped and capped.
func (self *UI) savedNetworks() []string {
	found := []string{}
	for _, p := range self.statePaths {
		b, err := ioutil.ReadFile(p)
		if err != nil {
			continue
		}
		var obj interface{}
		if err := json.Unmarshal(b, &obj); err != nil {
			self.g.Log.Debugf("networks state=%s parse err=%v", p, err)
			continue
		}
		found = append(found, gatherSSIDs(obj)...)
	}

	for _, dir := range self.handshakeDirs {
		infos, err := ioutil.ReadDir(dir)
		if err != nil {
			continue
		}
		if len(infos) > capDirTail {
			infos = infos[len(infos)-capDirTail:]
		}
		for _, fi := range infos {
			if fi.IsDir() {
				continue
			}
			if ssid := ssidFromCapName(fi.Name()); ssid != "" {
				found = append(found, ssid)
			}
		}
	}

	if len(found) == 0 {
		raw := self.sysd.TailLog(500)
		for _, m := range ssidLogRe.FindAllStringSubmatch(raw, -1) {
			if s := strings.TrimSpace(m[1]); s != "" {
				found = append(found, s)
			}
		}
	}

	return dedupeNewest(found, networksShown)
}

// gatherSSIDs walks decoded JSON pulling every string value whose key
// mentions ssid. Keys are visited sorted for stable output.
func gatherSSIDs(o interface{}) []string {
	out := []string{}
	switch v := o.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch inner := v[k].(type) {
			case map[string]interface{}, []interface{}:
				out = append(out, gatherSSIDs(inner)...)
			case string:
				if strings.Contains(strings.ToLower(k), "ssid") && strings.TrimSpace(inner) != "" {
					out = append(out, strings.TrimSpace(inner))
				}
			}
		}
	case []interface{}:
		for _, e := range v {
			out = append(out, gatherSSIDs(e)...)
		}
	}
	return out
}

// ssidFromCapName mines an SSID-ish name from a capture filename.
func ssidFromCapName(base string) string {
	ssid := capExtRe.ReplaceAllString(base, "")
	ssid = strings.ReplaceAll(ssid, "_", " ")
	return strings.TrimSpace(ssid)
}

// dedupeNewest drops older duplicates, keeps chronological order and
// returns at most the n newest entries.
func dedupeNewest(ss []string, n int) []string {
	seen := make(map[string]struct{}, len(ss))
	rev := make([]string, 0, len(ss))
	for i := len(ss) - 1; i >= 0; i-- {
		s := ss[i]
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		rev = append(rev, s)
	}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
