package gate

import (
	"bufio"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cydrysdale/pwnagotchi/helpers"
	"github.com/cydrysdale/pwnagotchi/log2"
)

func testGate(t testing.TB) (*Gate, Config) {
	dir := t.TempDir()
	config := Config{
		FlagDir:   filepath.Join(dir, "deauth"),
		AllowFile: filepath.Join(dir, "allow_deauth"),
		TokenFile: filepath.Join(dir, "deauth_token"),
		AuditFile: filepath.Join(dir, "log", "deauth.log"),
		AgentURL:  "http://127.0.0.1:8422/deauth",
	}
	g := New(log2.NewTest(t, log2.LDebug), config)
	g.now = func() time.Time { return time.Unix(1700000000, 0) }
	return g, config
}

func auditLines(t testing.TB, path string) []AuditEntry {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var out []AuditEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e AuditEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestToggleDouble(t *testing.T) {
	t.Parallel()

	g, config := testGate(t)
	require.Equal(t, Disarmed, g.Current(), "fresh gate starts disarmed")

	st, err := g.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Armed, st)
	assert.Equal(t, Armed, g.Current())

	st, err = g.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Disarmed, st)
	assert.Equal(t, Disarmed, g.Current(), "double toggle returns to the known state")

	lines := auditLines(t, config.AuditFile)
	require.Len(t, lines, 2, "each toggle appends exactly one audit entry")
	assert.Equal(t, "arm", lines[0].Action)
	assert.Equal(t, "disarm", lines[1].Action)
	for _, e := range lines {
		assert.False(t, e.AgentNotify, "no allow-artifact, no notification")
		assert.Equal(t, "2023-11-14T22:13:20Z", e.TS)
	}
}

func TestTogglePersists(t *testing.T) {
	t.Parallel()

	g, config := testGate(t)
	_, err := g.Toggle()
	require.NoError(t, err)

	// new gate over the same flag dir observes the persisted state
	g2 := New(log2.NewTest(t, log2.LDebug), config)
	assert.Equal(t, Armed, g2.Current())
}

func TestCurrentCorruptFlag(t *testing.T) {
	t.Parallel()

	g, _ := testGate(t)
	g.flag = &memStorage{data: []byte("maybe?")}
	assert.Equal(t, Disarmed, g.Current())

	g.flag = &memStorage{data: []byte(" armed\n")}
	assert.Equal(t, Armed, g.Current(), "canonical marker with stray whitespace")
}

func TestToggleAllowedNoToken(t *testing.T) {
	t.Parallel()

	g, config := testGate(t)
	require.NoError(t, ioutil.WriteFile(config.AllowFile, []byte(""), 0644))

	st, err := g.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Armed, st, "missing token skips notification but still flips")

	lines := auditLines(t, config.AuditFile)
	require.Len(t, lines, 1)
	assert.False(t, lines[0].AgentNotify)
}

func TestToggleNotify(t *testing.T) {
	t.Parallel()

	g, config := testGate(t)
	require.NoError(t, ioutil.WriteFile(config.AllowFile, []byte(""), 0644))
	require.NoError(t, ioutil.WriteFile(config.TokenFile, []byte("s3cret\n"), 0600))

	var got map[string]interface{}
	g.http.Transport = &helpers.MockHTTP{Fun: func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, config.AgentURL, req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		mock := helpers.MockHTTP{}
		return mock.RoundTrip(req)
	}}

	st, err := g.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Armed, st)
	assert.Equal(t, "arm", got["action"])
	assert.Equal(t, "s3cret", got["token"])
	assert.Equal(t, float64(1700000000), got["ts"])

	lines := auditLines(t, config.AuditFile)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].AgentNotify)
}

func TestToggleNotifyFailure(t *testing.T) {
	t.Parallel()

	g, config := testGate(t)
	require.NoError(t, ioutil.WriteFile(config.AllowFile, []byte(""), 0644))
	require.NoError(t, ioutil.WriteFile(config.TokenFile, []byte("s3cret"), 0600))
	g.http.Transport = &helpers.MockHTTP{Err: assert.AnError}

	// unreachable agent never aborts the toggle
	st, err := g.Toggle()
	require.NoError(t, err)
	assert.Equal(t, Armed, st)

	lines := auditLines(t, config.AuditFile)
	require.Len(t, lines, 1)
	assert.False(t, lines[0].AgentNotify)
}

type memStorage struct{ data []byte }

func (m *memStorage) Read() ([]byte, error) { return m.data, nil }
func (m *memStorage) Write(b []byte) (int, error) {
	m.data = append([]byte(nil), b...)
	return len(b), nil
}
