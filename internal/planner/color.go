package planner

import (
	"fmt"
	"strings"
)

// ParseHex validates "RRGGBB" or "#RRGGBB" and returns the six hex digits
// with case preserved.
func ParseHex(c string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(h) != 6 {
		return "", fmt.Errorf("color %q: want 6 hex digits", c)
	}
	for _, r := range h {
		if !isHexDigit(r) {
			return "", fmt.Errorf("color %q: %q is not a hex digit", c, r)
		}
	}
	return h, nil
}

// EncodeCaptionColor converts an RGB color to the subtitle renderer's
// "&HBBGGRR&" form: the three byte groups are reversed.
func EncodeCaptionColor(rgb string) (string, error) {
	h, err := ParseHex(rgb)
	if err != nil {
		return "", err
	}
	return "&H" + h[4:6] + h[2:4] + h[0:2] + "&", nil
}

// DecodeCaptionColor is the inverse of [EncodeCaptionColor]. It returns
// "RRGGBB" without a leading '#'.
func DecodeCaptionColor(bgr string) (string, error) {
	s := strings.TrimSpace(bgr)
	if !strings.HasPrefix(s, "&H") && !strings.HasPrefix(s, "&h") {
		return "", fmt.Errorf("caption color %q: missing &H prefix", bgr)
	}
	s = strings.TrimSuffix(s[2:], "&")
	h, err := ParseHex(s)
	if err != nil {
		return "", fmt.Errorf("caption color %q: %w", bgr, err)
	}
	return h[4:6] + h[2:4] + h[0:2], nil
}

// drawtextColor converts an RGB color to ffmpeg's 0xRRGGBB color syntax.
func drawtextColor(rgb string) (string, error) {
	h, err := ParseHex(rgb)
	if err != nil {
		return "", err
	}
	return "0x" + strings.ToUpper(h), nil
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
