package core

import (
	"fmt"
	"strings"
)

// Checklist markers are plain characters embedded in the note text.
// There is no structured checklist model; toggling is a literal substring swap.
const (
	ChecklistUnchecked = "☐"
	ChecklistChecked   = "☑"
)

// ToggleChecklistLine flips the first checklist marker found on the given
// 0-based line of content and returns the new content.
func ToggleChecklistLine(content string, line int) (string, error) {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return "", fmt.Errorf("%w: line %d out of range (0-%d)", ErrValidation, line, len(lines)-1)
	}

	l := lines[line]
	u := strings.Index(l, ChecklistUnchecked)
	c := strings.Index(l, ChecklistChecked)
	switch {
	case u >= 0 && (c < 0 || u < c):
		lines[line] = l[:u] + ChecklistChecked + l[u+len(ChecklistUnchecked):]
	case c >= 0:
		lines[line] = l[:c] + ChecklistUnchecked + l[c+len(ChecklistChecked):]
	default:
		return "", fmt.Errorf("%w: line %d has no checklist marker", ErrValidation, line)
	}
	return strings.Join(lines, "\n"), nil
}
