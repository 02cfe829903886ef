package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AdamBeresnev/op-bracket/internal/bracket"
	"github.com/google/uuid"
)

const maxEntryNameLength = 50

// ParseEntryNames splits newline separated input into entry names, dropping
// blank lines.
func ParseEntryNames(input string) []string {
	var names []string
	for _, line := range strings.Split(input, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// newEntries validates the names and turns them into entries seeded in
// input order.
func newEntries(tournamentID uuid.UUID, names []string) ([]bracket.Entry, error) {
	entries := make([]bracket.Entry, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > maxEntryNameLength {
			return nil, fmt.Errorf("%w: %q", ErrEntryNameTooLong, name)
		}

		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
		}
		seen[key] = true

		entries = append(entries, bracket.Entry{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         name,
			Seed:         len(entries) + 1,
		})
	}

	return entries, nil
}
