// Package battery probes the local PiSugar power-manager REST endpoint.
package battery

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/cydrysdale/pwnagotchi/log2"
)

const DefaultTimeout = 800 * time.Millisecond

// FallbackText is shown when the pisugar-server is absent or slow; the
// probe deadline keeps the menu responsive.
const FallbackText = "PiSugar: n/a"

type Client struct {
	Log  *log2.Log
	URL  string
	HTTP *http.Client
}

func NewClient(log *log2.Log, url string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Log:  log,
		URL:  url,
		HTTP: &http.Client{Timeout: timeout},
	}
}

// Different pisugar-server builds disagree on field names.
type status struct {
	Percentage *float64 `json:"percentage"`
	Percent    *float64 `json:"percent"`
	Voltage    float64  `json:"voltage"`
	IsCharging *bool    `json:"isCharging"`
	Charging   *bool    `json:"charging"`
}

// Status returns display lines, FallbackText on any failure.
func (self *Client) Status() []string {
	resp, err := self.HTTP.Get(self.URL)
	if err != nil {
		self.Log.Debugf("pisugar get err=%v", err)
		return []string{FallbackText}
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		self.Log.Debugf("pisugar read err=%v", err)
		return []string{FallbackText}
	}

	var st status
	if err := json.Unmarshal(body, &st); err != nil {
		self.Log.Debugf("pisugar parse err=%v body=%s", err, body)
		return []string{FallbackText}
	}

	pct := st.Percentage
	if pct == nil {
		pct = st.Percent
	}
	chg := st.IsCharging
	if chg == nil {
		chg = st.Charging
	}
	if pct == nil {
		return []string{FallbackText}
	}

	lines := []string{
		"PiSugar:",
		fmt.Sprintf("%.0f%%  %.3fV", *pct, st.Voltage),
	}
	if chg != nil {
		lines = append(lines, fmt.Sprintf("charging: %v", *chg))
	}
	return lines
}
