package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"typical reel 24 MiB", 25165824, "24.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{42300 * time.Millisecond, "42.3s"},
		{3*time.Minute + 7*time.Second, "3m07s"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1h02m05s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "12.5s", FormatSeconds(12.5))
	assert.Equal(t, "0ms", FormatSeconds(-3))
}

func TestPrintBanner(t *testing.T) {
	var b bytes.Buffer
	PrintBanner(&b)
	assert.Contains(t, b.String(), "|_| \\_\\")
}
