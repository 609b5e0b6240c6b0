package markov

import (
	"fmt"
	"sort"
	"strings"
)

// ModelStats holds aggregated counters for a trained model's transition
// table.
type ModelStats struct {
	Contexts    int // The number of distinct context keys.
	Transitions int // The total size of all successor collections.
}

// MeanTransitions returns the average successor-collection size per
// context, or 0 for an empty table.
func (s ModelStats) MeanTransitions() float64 {
	if s.Contexts == 0 {
		return 0
	}
	return float64(s.Transitions) / float64(s.Contexts)
}

// Stats computes counters over the current table. Collection size follows
// the model's mode: in uniform mode a collection is the set of distinct
// successors, in probabilistic mode the frequency-weighted multiset.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{Contexts: len(m.table)}
	for _, tr := range m.table {
		if m.mode == ModeUniform {
			stats.Transitions += len(tr.succs)
		} else {
			stats.Transitions += tr.total
		}
	}
	return stats
}

// Summary renders a human-readable report of the trained table: mode,
// order, context and transition counts, the mean collection size, and the
// successor distribution of a sample context. An untrained model yields
// NotTrainedMessage.
func (m *Model) Summary() string {
	if !m.Trained() {
		return NotTrainedMessage
	}
	stats := m.Stats()

	var b strings.Builder
	b.WriteString("Markov chain statistics:\n")
	fmt.Fprintf(&b, "- mode: %s\n", m.mode)
	fmt.Fprintf(&b, "- chain order (N): %d\n", m.order)
	fmt.Fprintf(&b, "- distinct contexts: %d\n", stats.Contexts)
	fmt.Fprintf(&b, "- recorded transitions: %d\n", stats.Transitions)
	fmt.Fprintf(&b, "- mean transitions per context: %.1f\n", stats.MeanTransitions())

	sample := m.keys[0]
	tr := m.table[sample]
	top := append([]successor(nil), tr.succs...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].freq > top[j].freq })
	if len(top) > 3 {
		top = top[:3]
	}
	fmt.Fprintf(&b, "Example for context %q:\n", sample)
	for _, s := range top {
		fmt.Fprintf(&b, "  %q: %d times (%.1f%%)\n", s.token, s.freq, 100*float64(s.freq)/float64(tr.total))
	}
	return b.String()
}
