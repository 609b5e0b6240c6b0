package markov

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Train tokenizes text with the model's tokenizer and builds an order-N
// transition table from it. Any previously trained table is fully
// replaced; there is no incremental merge.
func (m *Model) Train(text string, order int) error {
	return m.TrainTokens(m.tokenizer.Split(text), order)
}

// TrainTokens builds the transition table from an already tokenized
// corpus. A window of `order` tokens slides across the input and the
// token immediately after each window is recorded as a successor of that
// context. The final `order` tokens never become a key of their own; a
// context is only stored once it has at least one observed continuation.
//
// Input shorter than order+1 tokens yields an empty table. That is not an
// error: generation against such a model reports it as untrained.
func (m *Model) TrainTokens(tokens []string, order int) error {
	if order < 1 {
		return fmt.Errorf("chain order must be positive, got %d", order)
	}

	counts := make(map[string]map[string]int)
	for i := 0; i+order < len(tokens); i++ {
		key := strings.Join(tokens[i:i+order], keySep)
		next := tokens[i+order]
		succ, ok := counts[key]
		if !ok {
			succ = make(map[string]int)
			counts[key] = succ
		}
		succ[next]++
	}

	table := make(map[string]transitions, len(counts))
	keys := make([]string, 0, len(counts))
	for key, succ := range counts {
		tr := transitions{succs: make([]successor, 0, len(succ))}
		for token, freq := range succ {
			tr.succs = append(tr.succs, successor{token: token, freq: freq})
			tr.total += freq
		}
		// Successors are sorted so that seeded sampling does not depend on
		// map iteration order.
		sort.Slice(tr.succs, func(i, j int) bool { return tr.succs[i].token < tr.succs[j].token })
		table[key] = tr
		keys = append(keys, key)
	}
	sort.Strings(keys)

	m.order = order
	m.table = table
	m.keys = keys

	m.logger.Info("Training completed",
		slog.String("mode", m.mode.String()),
		slog.Int("order", order),
		slog.Int("tokens", len(tokens)),
		slog.Int("contexts", len(table)),
	)
	return nil
}
