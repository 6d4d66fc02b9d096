package ffmpeg

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Track(30)
	r.Track(10)
	r.Track(20)
	r.Untrack(20)
	assert.Equal(t, []int{10, 30}, r.PIDs())

	var nilReg *Registry
	nilReg.Track(1)
	nilReg.Untrack(1)
	assert.Nil(t, nilReg.PIDs())
}

func TestReapKillsTrackedProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep(1)")
	}
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	reg := NewRegistry()
	reg.Track(cmd.Process.Pid)
	r := &Reaper{Tool: "ffmpeg", Registry: reg}

	killed, err := r.Reap(context.Background())
	require.NoError(t, err)
	assert.Contains(t, killed, int32(cmd.Process.Pid))
	assert.Empty(t, reg.PIDs())

	select {
	case err := <-done:
		assert.Error(t, err, "killed process exits with a signal")
	case <-time.After(5 * time.Second):
		t.Fatal("tracked process survived the reaper")
	}
}
