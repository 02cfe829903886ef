package bracket

import "fmt"

type SeedStrategy string

const (
	// SeedInputOrder pairs participants in the order given. Byes go to the
	// tail of the list, one per pair, so no pair is ever bye against bye.
	SeedInputOrder SeedStrategy = "input"
	// SeedStandard uses classic bracket positions (1v8, 4v5, 2v7, 3v6) with
	// input order taken as seed order, so top seeds receive the byes.
	SeedStandard SeedStrategy = "standard"
)

func ParseSeedStrategy(s string) (SeedStrategy, error) {
	switch SeedStrategy(s) {
	case "":
		return SeedInputOrder, nil
	case SeedInputOrder, SeedStandard:
		return SeedStrategy(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSeeding, s)
}

// Seed lays participants out over bracketSize round-one slots. Slots 2i and
// 2i+1 meet in round-one match i.
func Seed(participants []string, bracketSize int, strategy SeedStrategy) ([]Slot, error) {
	n := len(participants)
	if n == 0 {
		return nil, ErrEmptyParticipantList
	}
	if bracketSize < n || bracketSize&(bracketSize-1) != 0 {
		return nil, fmt.Errorf("%w: bracket size %d for %d participants", ErrStructuralInvariant, bracketSize, n)
	}

	switch strategy {
	case SeedStandard:
		return seedStandard(participants, bracketSize), nil
	case SeedInputOrder, "":
		return seedInputOrder(participants, bracketSize), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSeeding, strategy)
}

func seedInputOrder(participants []string, bracketSize int) []Slot {
	n := len(participants)
	slots := make([]Slot, bracketSize)

	// Participants that actually play in round one
	playing := 2*n - bracketSize
	if playing < 0 {
		playing = 0
	}

	for i := 0; i < playing; i++ {
		slots[i] = Participant(participants[i])
	}

	next := playing
	for i := playing; i < bracketSize; i += 2 {
		if next < n {
			slots[i] = Participant(participants[next])
			next++
		} else {
			slots[i] = Bye
		}
		slots[i+1] = Bye
	}

	return slots
}

func seedStandard(participants []string, bracketSize int) []Slot {
	slots := make([]Slot, 0, bracketSize)
	for _, pair := range standardPairs(bracketSize) {
		for _, seed := range pair {
			if seed < len(participants) {
				slots = append(slots, Participant(participants[seed]))
			} else {
				slots = append(slots, Bye)
			}
		}
	}
	return slots
}

// standardPairs returns zero-based seed pairs for round one, built by
// repeatedly splitting each seed s into (s, size-1-s).
func standardPairs(bracketSize int) [][2]int {
	if bracketSize < 2 {
		return [][2]int{}
	}

	order := []int{0}
	for len(order) < bracketSize {
		next := make([]int, 0, len(order)*2)
		currentCount := len(order) * 2

		for _, seed := range order {
			next = append(next, seed, (currentCount-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}
