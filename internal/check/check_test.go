package check

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/reelmaster/internal/config"
)

const filtersOutput = `Filters:
  T.. = Timeline support
  ... = Unsupported
  ------
 ... amix              N->A       Audio mixing.
 T.C drawtext          V->V       Draw text on top of video frames using libfreetype library.
 ... subtitles         V->V       Render text subtitles onto input video using the libass library.
 ... xfade             VV->V      Cross fade one video with another video.
`

func TestParseFilters(t *testing.T) {
	got := ParseFilters(filtersOutput)
	for _, f := range RequiredFilters {
		assert.True(t, got[f], f)
	}
	assert.True(t, got[CaptionFilter])
	assert.False(t, got["Timeline"])
	assert.False(t, got["Filters:"])
}

// fakeTool writes a shell script that prints filters for -filters and
// exits non-zero for H.264 test encodes when failEncode is set.
func fakeTool(t *testing.T, failEncode bool, filters string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filters.txt"), []byte(filters), 0o644))
	fail := "0"
	if failEncode {
		fail = "1"
	}
	script := `#!/bin/sh
for a in "$@"; do
  case "$a" in
    -filters) cat "` + filepath.Join(dir, "filters.txt") + `"; exit 0 ;;
    -version) echo "fake version 1.0"; exit 0 ;;
    libx264|h264_nvenc) exit ` + fail + ` ;;
  esac
done
exit 0
`
	path := filepath.Join(dir, "fakeffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testConfig(tool string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Tools.FFmpeg = tool
	cfg.Tools.FFprobe = tool
	return &cfg
}

const noSubtitles = ` ... amix   N->A  Audio mixing.
 T.C drawtext  V->V  Draw text.
 ... xfade     VV->V Cross fade.
`

func TestCheckDeps(t *testing.T) {
	ctx := context.Background()

	t.Run("all present", func(t *testing.T) {
		log := &countLogger{}
		assert.NoError(t, CheckDeps(ctx, testConfig(fakeTool(t, false, filtersOutput)), log))
		assert.Equal(t, 0, log.warns)
	})

	t.Run("ffprobe missing is a warning", func(t *testing.T) {
		cfg := testConfig(fakeTool(t, false, filtersOutput))
		cfg.Tools.FFprobe = filepath.Join(t.TempDir(), "no-ffprobe")
		log := &countLogger{}
		assert.NoError(t, CheckDeps(ctx, cfg, log))
		assert.Equal(t, 1, log.warns)
		assert.Equal(t, 0, log.errors)
	})

	t.Run("subtitles not needed without captions", func(t *testing.T) {
		cfg := testConfig(fakeTool(t, false, noSubtitles))
		cfg.Paths.Captions = ""
		assert.NoError(t, CheckDeps(ctx, cfg, &countLogger{}))
	})

	t.Run("subtitles needed with captions", func(t *testing.T) {
		cfg := testConfig(fakeTool(t, false, noSubtitles))
		cfg.Paths.Captions = "talk.srt"
		err := CheckDeps(ctx, cfg, &countLogger{})
		assert.ErrorIs(t, err, ErrFilterMissing)
		assert.ErrorContains(t, err, CaptionFilter)
	})

	t.Run("encoder fails", func(t *testing.T) {
		err := CheckDeps(ctx, testConfig(fakeTool(t, true, filtersOutput)), &countLogger{})
		assert.ErrorIs(t, err, ErrEncoderFailed)
		assert.ErrorContains(t, err, "libx264")
	})

	t.Run("missing filter", func(t *testing.T) {
		err := CheckDeps(ctx, testConfig(fakeTool(t, false, " ... amix   N->A  Audio mixing.\n")), &countLogger{})
		assert.ErrorIs(t, err, ErrFilterMissing)
		assert.ErrorContains(t, err, "xfade")
	})

	t.Run("ffmpeg missing", func(t *testing.T) {
		err := CheckDeps(ctx, testConfig(filepath.Join(t.TempDir(), "nope")), &countLogger{})
		assert.ErrorIs(t, err, ErrFfmpegNotFound)
	})
}

type countLogger struct{ errors, warns int }

func (l *countLogger) Info(string, ...interface{})        {}
func (l *countLogger) Success(string, ...interface{})     {}
func (l *countLogger) Warn(string, ...interface{})        { l.warns++ }
func (l *countLogger) Error(string, ...interface{})       { l.errors++ }
func (l *countLogger) Debug(bool, string, ...interface{}) {}

func TestRunCheck(t *testing.T) {
	log := &countLogger{}
	assert.True(t, RunCheck(context.Background(), testConfig(fakeTool(t, false, filtersOutput)), log))
	assert.Equal(t, 0, log.errors)

	log = &countLogger{}
	assert.False(t, RunCheck(context.Background(), testConfig(fakeTool(t, true, filtersOutput)), log))
	assert.Equal(t, 1, log.errors)

	cfg := testConfig(fakeTool(t, false, filtersOutput))
	cfg.Tools.FFprobe = filepath.Join(t.TempDir(), "no-ffprobe")
	log = &countLogger{}
	assert.True(t, RunCheck(context.Background(), cfg, log))
	assert.Equal(t, 0, log.errors)
}
