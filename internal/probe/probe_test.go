package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Portrait phone clip with cover art, one video and one audio stream.
const sampleClip = `{
  "streams": [
    {
      "index": 0,
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "disposition": { "default": 0, "attached_pic": 1 }
    },
    {
      "index": 1,
      "codec_type": "video",
      "width": 1080,
      "height": 1920,
      "duration": "12.480000",
      "disposition": { "default": 1, "attached_pic": 0 }
    },
    {
      "index": 2,
      "codec_type": "audio",
      "duration": "12.500000",
      "disposition": { "default": 1, "attached_pic": 0 }
    }
  ],
  "format": {
    "filename": "/media/clips/a.mp4",
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "12.500000"
  }
}`

// Audio-only narration where only the stream carries a duration.
const sampleStreamDuration = `{
  "streams": [
    { "index": 0, "codec_type": "audio", "duration": "31.25" }
  ],
  "format": { "filename": "voice.wav", "format_name": "wav" }
}`

func TestParseJSON(t *testing.T) {
	info, err := ParseJSON([]byte(sampleClip))
	require.NoError(t, err)

	assert.Equal(t, "/media/clips/a.mp4", info.Path)
	assert.InDelta(t, 12.5, info.Duration, 1e-9)
	assert.True(t, info.HasVideo)
	assert.True(t, info.HasAudio)
	assert.Equal(t, "1080x1920", info.Resolution(), "cover art must not win")
}

func TestParseJSONStreamDuration(t *testing.T) {
	info, err := ParseJSON([]byte(sampleStreamDuration))
	require.NoError(t, err)

	assert.InDelta(t, 31.25, info.Duration, 1e-9)
	assert.False(t, info.HasVideo)
	assert.True(t, info.HasAudio)
	assert.Equal(t, "unknown", info.Resolution())
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON([]byte(`{"format": `))
	assert.Error(t, err)
}

func TestDurationMissingTool(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "no-such-ffprobe"), time.Second)

	d, err := p.Duration(context.Background(), "clip.mp4")
	assert.Equal(t, FallbackDuration, d)

	var pe *ProbeError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "clip.mp4", pe.Path)
	assert.True(t, IsToolMissing(err))
}

// fakeProbe writes a shell script standing in for ffprobe.
func fakeProbe(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestDurationFakeTool(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		want     float64
		wantErr  bool
		errMatch error
	}{
		{
			name:   "valid payload",
			script: "cat <<'JSON'\n" + sampleClip + "\nJSON",
			want:   12.5,
		},
		{
			name:    "non-zero exit",
			script:  "echo 'clip.mp4: Invalid data found when processing input' >&2; exit 1",
			want:    FallbackDuration,
			wantErr: true,
		},
		{
			name:    "garbage output",
			script:  "echo not-json",
			want:    FallbackDuration,
			wantErr: true,
		},
		{
			name:     "zero duration",
			script:   `echo '{"format":{"duration":"0"},"streams":[]}'`,
			want:     FallbackDuration,
			wantErr:  true,
			errMatch: ErrNoDuration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(fakeProbe(t, tt.script), 5*time.Second)
			d, err := p.Duration(context.Background(), "clip.mp4")
			assert.InDelta(t, tt.want, d, 1e-9)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var pe *ProbeError
			require.True(t, errors.As(err, &pe))
			if tt.errMatch != nil {
				assert.ErrorIs(t, err, tt.errMatch)
			}
		})
	}
}

func TestDurationTimeout(t *testing.T) {
	p := New(fakeProbe(t, "exec sleep 5"), 100*time.Millisecond)

	start := time.Now()
	d, err := p.Duration(context.Background(), "clip.mp4")
	assert.Equal(t, FallbackDuration, d)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestClip(t *testing.T) {
	silent := `{"format":{"duration":"8.0"},"streams":[{"codec_type":"video","width":1080,"height":1920}]}`
	p := New(fakeProbe(t, "echo '"+silent+"'"), 5*time.Second)

	c, err := p.Clip(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, Clip{Duration: 8, Resolution: "1080x1920"}, c)

	missing := New(filepath.Join(t.TempDir(), "absent"), time.Second)
	c, err = missing.Clip(context.Background(), "clip.mp4")
	assert.True(t, IsToolMissing(err))
	assert.Equal(t, Clip{Duration: FallbackDuration, HasAudio: true, Fallback: true}, c)
}
