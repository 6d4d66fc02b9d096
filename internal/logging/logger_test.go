package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/reelmaster/internal/config"
)

func newTestLogger(t *testing.T, logFile string) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = logFile
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	var out, errOut bytes.Buffer
	l.out, l.errOut = &out, &errOut
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return l, &out, &errOut
}

func TestConsoleLevels(t *testing.T) {
	l, out, errOut := newTestLogger(t, "")
	defer l.Close()

	l.Info("hello %d", 1)
	l.Render("rendering")
	l.Debug(false, "hidden")
	l.Debug(true, "shown")
	l.Error("broken")

	assert.Equal(t,
		"2024-05-01 12:00:00 [INFO] hello 1\n"+
			"2024-05-01 12:00:00 [RENDER] rendering\n"+
			"2024-05-01 12:00:00 [DEBUG] shown\n",
		out.String())
	assert.Equal(t, "2024-05-01 12:00:00 [ERROR] broken\n", errOut.String())
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reelmaster.log")
	l, _, _ := newTestLogger(t, path)

	l.Info("to file")
	l.Outlier("odd clip")
	l.Error("failed job")
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		entries = append(entries, m)
	}
	require.Len(t, entries, 3)
	assert.Equal(t, "to file", entries[0]["msg"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "INFO", entries[0]["tag"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "OUTLIER", entries[1]["tag"])
	assert.Equal(t, "error", entries[2]["level"])
}

func TestCloseWithoutFile(t *testing.T) {
	l, _, _ := newTestLogger(t, "")
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
