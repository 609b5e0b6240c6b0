package markov

import (
	"log/slog"
	"math/rand/v2"
	"strings"
)

// NotTrainedMessage is the fixed result of Generate and Summary when the
// model has no transition table to walk.
const NotTrainedMessage = "train the model before generating"

// generateOptions is used by the generate functions to configure default
// options.
type generateOptions struct {
	seed   uint64
	seeded bool
	rng    *rand.Rand
}

// GenerateOption is a function that configures a single generation call.
type GenerateOption func(*generateOptions)

// WithSeed makes the generation deterministic: the same model, length and
// seed always produce the same output. The seeded source is created per
// call, never shared.
func WithSeed(seed uint64) GenerateOption {
	return func(o *generateOptions) {
		o.seed = seed
		o.seeded = true
	}
}

// WithRand supplies a caller-owned random source, which takes precedence
// over WithSeed. The source must not be shared with other concurrent
// Generate calls unless it is synchronized.
func WithRand(rng *rand.Rand) GenerateOption {
	return func(o *generateOptions) { o.rng = rng }
}

// Generate produces up to length tokens and joins them with the model's
// tokenizer. The output is exactly length tokens unless the walk hits a
// dead end first, in which case whatever was produced so far is returned.
// An untrained model yields NotTrainedMessage.
func (m *Model) Generate(length int, opts ...GenerateOption) string {
	if !m.Trained() {
		return NotTrainedMessage
	}
	return m.tokenizer.Join(m.GenerateTokens(length, opts...))
}

// GenerateTokens performs the random walk over the transition table and
// returns the generated token sequence. It starts from a context chosen
// uniformly among all table keys, emits that context's tokens, then
// repeatedly samples a successor of the trailing window until length
// tokens exist or the trailing window has no entry in the table. A dead
// end is a normal early termination, not an error.
//
// An untrained model, or length < 1, returns nil. The model itself is
// never mutated.
func (m *Model) GenerateTokens(length int, opts ...GenerateOption) []string {
	if !m.Trained() || length < 1 {
		return nil
	}

	options := &generateOptions{}
	for _, opt := range opts {
		opt(options)
	}
	rng := options.rng
	if rng == nil {
		if options.seeded {
			rng = rand.New(rand.NewPCG(options.seed, options.seed))
		} else {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	start := contextOf(m.keys[rng.IntN(len(m.keys))])
	out := make([]string, 0, length)
	out = append(out, start...)
	if len(out) > length {
		// Callers are expected to ask for at least order tokens; a shorter
		// request just truncates the starting context.
		return out[:length]
	}

	window := make([]string, m.order)
	copy(window, start)

	for len(out) < length {
		key := strings.Join(window, keySep)
		tr, ok := m.table[key]
		if !ok { // Dead end in chain
			m.logger.Debug("Generation terminated at dead end",
				slog.String("last_context", key),
				slog.Int("generated_length", len(out)),
				slog.Int("target_length", length),
			)
			break
		}
		next := m.sample(tr, rng)
		out = append(out, next)
		window = append(window[1:], next)
	}
	return out
}

// sample picks one successor from a collection according to the model's
// mode: an unweighted choice among distinct successors in uniform mode, a
// frequency-weighted choice in probabilistic mode.
func (m *Model) sample(tr transitions, rng *rand.Rand) string {
	if m.mode == ModeUniform {
		return tr.succs[rng.IntN(len(tr.succs))].token
	}
	n := rng.IntN(tr.total)
	for _, s := range tr.succs {
		n -= s.freq
		if n < 0 {
			return s.token
		}
	}
	return tr.succs[len(tr.succs)-1].token
}
