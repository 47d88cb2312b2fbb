package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	valid := []string{"2025-01-10", "2024-02-29", "1999-12-31"}
	for _, key := range valid {
		if _, err := ParseDate(key); err != nil {
			t.Errorf("ParseDate(%q) failed: %v", key, err)
		}
	}

	invalid := []string{"2025-1-10", "2025-02-29", "2025-13-01", "2025-01-10T00:00:00Z", " 2025-01-10", ""}
	for _, key := range invalid {
		if _, err := ParseDate(key); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseDate(%q) expected ErrValidation, got %v", key, err)
		}
	}
}

func TestFormatDate(t *testing.T) {
	key, err := FormatDate(2025, time.March, 5)
	if err != nil {
		t.Fatalf("FormatDate failed: %v", err)
	}
	if key != "2025-03-05" {
		t.Errorf("expected 2025-03-05, got %s", key)
	}

	if _, err := FormatDate(2025, time.February, 30); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for Feb 30, got %v", err)
	}
}

func TestMonthPrefix(t *testing.T) {
	if got := monthPrefix(2025, 2); got != "2025-03" {
		t.Errorf("expected 2025-03, got %s", got)
	}
	if got := monthPrefix(2025, 11); got != "2025-12" {
		t.Errorf("expected 2025-12, got %s", got)
	}
}
