package markov

import "fmt"

// Mode selects how a trained model samples successors during generation.
// The branch is picked once at model construction, not re-checked against
// a string on every generation step.
type Mode int

const (
	// ModeProbabilistic samples successors proportionally to their observed
	// frequency. It is the zero value and the default mode.
	ModeProbabilistic Mode = iota
	// ModeUniform samples uniformly among the distinct successors of a
	// context, discarding observed frequencies.
	ModeUniform
)

// String returns the canonical name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUniform:
		return "uniform"
	case ModeProbabilistic:
		return "probabilistic"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode. An unrecognized name is an
// error rather than a fallback, so a configuration typo surfaces instead
// of silently training in the default mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "uniform":
		return ModeUniform, nil
	case "probabilistic":
		return ModeProbabilistic, nil
	default:
		return ModeProbabilistic, fmt.Errorf("unknown markov mode %q", s)
	}
}
