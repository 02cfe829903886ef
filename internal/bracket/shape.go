package bracket

import "math/bits"

type Shape struct {
	Rounds      int
	BracketSize int
	Byes        int
}

// ComputeShape returns the smallest power-of-two bracket that fits count participants.
func ComputeShape(count int) (Shape, error) {
	if count < 2 {
		return Shape{}, ErrInvalidParticipantCount
	}

	// ceil(log2(count)) without going through floats
	rounds := bits.Len(uint(count - 1))
	size := 1 << rounds

	return Shape{
		Rounds:      rounds,
		BracketSize: size,
		Byes:        size - count,
	}, nil
}

// MatchesInRound is the winners-side match count for round r (1-indexed).
func (s Shape) MatchesInRound(r int) int {
	if r < 1 || r > s.Rounds {
		return 0
	}
	return s.BracketSize >> r
}
