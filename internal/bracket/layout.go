package bracket

import "fmt"

type Format string

const (
	SingleElimination Format = "single"
	DoubleElimination Format = "double"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case SingleElimination, DoubleElimination:
		return Format(s), nil
	case "":
		return SingleElimination, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

type options struct {
	seeding      SeedStrategy
	bracketReset bool
}

type Option func(*options)

func WithSeeding(strategy SeedStrategy) Option {
	return func(o *options) { o.seeding = strategy }
}

// WithBracketReset adds a second grand final, played only when the losers
// bracket champion wins the first one. Ignored for single elimination.
func WithBracketReset() Option {
	return func(o *options) { o.bracketReset = true }
}

func collectOptions(opts []Option) options {
	o := options{seeding: SeedInputOrder}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Layout is everything about a bracket that follows from its format and
// participant count. The resolver needs it to know where a match leads.
type Layout struct {
	Format       Format
	Shape        Shape
	LoserRounds  int
	BracketReset bool
}

func NewLayout(format Format, participantCount int, bracketReset bool) (Layout, error) {
	shape, err := ComputeShape(participantCount)
	if err != nil {
		return Layout{}, err
	}

	switch format {
	case SingleElimination:
		return Layout{Format: format, Shape: shape}, nil
	case DoubleElimination:
		return Layout{
			Format:       format,
			Shape:        shape,
			LoserRounds:  2 * (shape.Rounds - 1),
			BracketReset: bracketReset,
		}, nil
	}
	return Layout{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// LoserMatchesInRound is the losers-side match count for round r:
// 2^floor((L-r)/2). Rounds pair up so each elimination round (even r, new
// dropouts enter) keeps the size of the consolidation round before it.
func (l Layout) LoserMatchesInRound(r int) int {
	if r < 1 || r > l.LoserRounds {
		return 0
	}
	return 1 << ((l.LoserRounds - r) / 2)
}

// IsEliminationRound reports whether losers round r takes in winners-bracket
// dropouts. Odd rounds are consolidation rounds between survivors.
func (l Layout) IsEliminationRound(r int) bool {
	return r%2 == 0
}

func (l Layout) GrandFinalRound() int {
	return l.Shape.Rounds + l.LoserRounds + 1
}

func (l Layout) ResetRound() int {
	return l.GrandFinalRound() + 1
}

// TerminalKey is the match whose winner is the champion, assuming no reset.
func (l Layout) TerminalKey() Key {
	if l.Format == DoubleElimination {
		return Key{Side: FinalSide, Round: l.GrandFinalRound()}
	}
	return Key{Side: WinnersSide, Round: l.Shape.Rounds}
}

// MatchCount is the number of matches a builder emits for this layout.
func (l Layout) MatchCount() int {
	n := l.Shape.BracketSize - 1
	if l.Format != DoubleElimination {
		return n
	}
	for r := 1; r <= l.LoserRounds; r++ {
		n += l.LoserMatchesInRound(r)
	}
	n++
	if l.BracketReset {
		n++
	}
	return n
}

// Target is a single slot of a single match.
type Target struct {
	Side     BracketSide `json:"side"`
	Round    int         `json:"round"`
	Position int         `json:"position"`
	Slot     SlotRef     `json:"slot"`
}

func (t Target) Key() Key {
	return Key{Side: t.Side, Round: t.Round, Position: t.Position}
}

func (t Target) String() string {
	return fmt.Sprintf("%s.%s", t.Key(), t.Slot)
}

// route computes where the winner and (when it survives) the loser of the
// match at k go. It does not look at who actually won, except for the
// grand final, whose successor depends on which slot won.
func (l Layout) route(k Key, winnerSlot SlotRef) (Target, *Target, error) {
	rounds := l.Shape.Rounds

	switch k.Side {
	case WinnersSide:
		if k.Round < 1 || k.Round > rounds || k.Position < 0 || k.Position >= l.Shape.MatchesInRound(k.Round) {
			return Target{}, nil, fmt.Errorf("%w: no winners match at %s", ErrStructuralInvariant, k)
		}

		var winnerTo Target
		if k.Round < rounds {
			pos, slot := Feed(k.Position)
			winnerTo = Target{Side: WinnersSide, Round: k.Round + 1, Position: pos, Slot: slot}
		} else if l.Format == DoubleElimination {
			winnerTo = Target{Side: FinalSide, Round: l.GrandFinalRound(), Slot: SlotA}
		} else {
			return Target{}, nil, ErrTerminalRoundHasNoNext
		}

		if l.Format != DoubleElimination {
			return winnerTo, nil, nil
		}
		loserTo := l.dropTarget(k)
		return winnerTo, &loserTo, nil

	case LosersSide:
		if l.Format != DoubleElimination || k.Round < 1 || k.Round > l.LoserRounds || k.Position < 0 || k.Position >= l.LoserMatchesInRound(k.Round) {
			return Target{}, nil, fmt.Errorf("%w: no losers match at %s", ErrStructuralInvariant, k)
		}

		switch {
		case k.Round == l.LoserRounds:
			return Target{Side: FinalSide, Round: l.GrandFinalRound(), Slot: SlotB}, nil, nil
		case l.IsEliminationRound(k.Round):
			pos, slot := Feed(k.Position)
			return Target{Side: LosersSide, Round: k.Round + 1, Position: pos, Slot: slot}, nil, nil
		default:
			return Target{Side: LosersSide, Round: k.Round + 1, Position: k.Position, Slot: SlotA}, nil, nil
		}

	case FinalSide:
		switch {
		case l.Format != DoubleElimination || k.Position != 0:
		case k.Round == l.GrandFinalRound():
			if !l.BracketReset || winnerSlot == SlotA {
				return Target{}, nil, ErrTerminalRoundHasNoNext
			}
			// Losers champion forced a rematch; both keep their sides.
			reset := l.ResetRound()
			return Target{Side: FinalSide, Round: reset, Slot: SlotB},
				&Target{Side: FinalSide, Round: reset, Slot: SlotA}, nil
		case l.BracketReset && k.Round == l.ResetRound():
			return Target{}, nil, ErrTerminalRoundHasNoNext
		}
		return Target{}, nil, fmt.Errorf("%w: no final match at %s", ErrStructuralInvariant, k)
	}

	return Target{}, nil, fmt.Errorf("%w: unknown bracket side %q", ErrStructuralInvariant, k.Side)
}

// dropTarget is where the loser of winners match k enters the losers bracket.
func (l Layout) dropTarget(k Key) Target {
	if l.LoserRounds == 0 {
		// Two-participant bracket: the winners final loser is the losers champion.
		return Target{Side: FinalSide, Round: l.GrandFinalRound(), Slot: SlotB}
	}
	if k.Round == 1 {
		pos, slot := Feed(k.Position)
		return Target{Side: LosersSide, Round: 1, Position: pos, Slot: slot}
	}
	return Target{Side: LosersSide, Round: 2 * (k.Round - 1), Position: k.Position, Slot: SlotB}
}
