package main

import (
	"strings"
	"testing"
)

func TestDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	got := dataURL(png)
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("dataURL() = %q, want an image/png data URL", got)
	}
}
