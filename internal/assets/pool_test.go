package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp4"))
	touch(t, filepath.Join(dir, "A.MOV"))
	touch(t, filepath.Join(dir, "c.Mp3"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "d.mp4"))

	p, err := Scan("primary", dir, []string{"mp4", ".MOV", ".mp3"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "A.MOV"),
		filepath.Join(dir, "b.mp4"),
		filepath.Join(dir, "c.Mp3"),
	}
	assert.Equal(t, want, p.Entries)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []string{".mp4", ".mov", ".mp3"}, p.Extensions)
}

func TestScanEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.md"))

	p, err := Scan("music", dir, MediaExtensions)
	require.Error(t, err)
	assert.True(t, p.Empty())

	var epe *EmptyPoolError
	require.True(t, errors.As(err, &epe))
	assert.Equal(t, "music", epe.Pool)
	assert.Nil(t, epe.Err)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan("secondary", filepath.Join(t.TempDir(), "nope"), MediaExtensions)

	var epe *EmptyPoolError
	require.True(t, errors.As(err, &epe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{"MP4", ".mp4", " mov ", "", ".Wav"})
	assert.Equal(t, []string{".mp4", ".mov", ".wav"}, got)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		ext  string
		want Kind
	}{
		{".mp4", KindVideo},
		{"MOV", KindVideo},
		{".mkv", KindVideo},
		{".mp3", KindAudio},
		{".wav", KindAudio},
		{".m4a", KindAudio},
		{".ttf", KindFont},
		{".otf", KindFont},
		{".docx", KindUnknown},
		{".nope", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.ext))
		})
	}
}

func TestCheckExtensions(t *testing.T) {
	assert.NoError(t, CheckExtensions("primary", VideoExtensions, KindVideo))
	assert.NoError(t, CheckExtensions("narration", MediaExtensions, KindVideo, KindAudio))
	assert.Error(t, CheckExtensions("primary", []string{".mp4", ".mp3"}, KindVideo))
	assert.Error(t, CheckExtensions("primary", nil, KindVideo))
}
