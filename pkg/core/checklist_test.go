package core

import (
	"errors"
	"testing"
)

func TestToggleChecklistLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
		want    string
		wantErr bool
	}{
		{"Check", "☐ a", 0, "☑ a", false},
		{"Uncheck", "☑ a", 0, "☐ a", false},
		{"First marker wins", "☑ a ☐ b", 0, "☐ a ☐ b", false},
		{"Other lines untouched", "title\n☐ a\n☐ b", 2, "title\n☐ a\n☑ b", false},
		{"No marker", "plain", 0, "", true},
		{"Out of range", "☐ a", 3, "", true},
		{"Negative", "☐ a", -1, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToggleChecklistLine(tc.content, tc.line)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
