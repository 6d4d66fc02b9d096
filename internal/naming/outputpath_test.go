package naming

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		index  int
		ext    string
		want   string
	}{
		{"first job", "reel", 0, "mp4", "reel_1.mp4"},
		{"third job", "Nelson_Output", 2, "mp4", "Nelson_Output_3.mp4"},
		{"dotted ext", "clip", 9, ".mov", "clip_10.mov"},
		{"defaults", "", 0, "", "reel_1.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath("out", tt.prefix, tt.index, tt.ext)
			assert.Equal(t, filepath.Join("out", tt.want), got)
		})
	}
}

func TestValidPrefix(t *testing.T) {
	assert.NoError(t, ValidPrefix("reel"))
	assert.NoError(t, ValidPrefix(""))
	assert.Error(t, ValidPrefix("a/b"))
	assert.Error(t, ValidPrefix("what?"))
	assert.Error(t, ValidPrefix(" reel"))
}
