package markov

import (
	"io"
	"log/slog"
	"strings"
)

// keySep joins the tokens of a context window into a table key. Tokens
// are whitespace-free (see Tokenizer), so the join is unambiguous.
const keySep = " "

// successor is one observed continuation of a context together with the
// number of times it was seen there.
type successor struct {
	token string
	freq  int
}

// transitions is the successor collection for a single context. total is
// the sum of all successor frequencies, kept so weighted sampling does
// not rescan the slice.
type transitions struct {
	succs []successor
	total int
}

// Model is a word-level Markov chain. It is inert until Train or
// TrainTokens is called; after training the transition table is read-only,
// so a single Model may serve any number of concurrent Generate calls.
type Model struct {
	mode      Mode
	tokenizer Tokenizer
	logger    *slog.Logger

	order int
	table map[string]transitions
	keys  []string // sorted context keys, for reproducible start selection
}

// ModelOption configures a Model at construction time.
type ModelOption func(*Model)

// WithTokenizer replaces the default whitespace tokenizer.
func WithTokenizer(t Tokenizer) ModelOption {
	return func(m *Model) { m.tokenizer = t }
}

// New returns an untrained Model that will sample in the given mode.
func New(mode Mode, opts ...ModelOption) *Model {
	m := &Model{
		mode:      mode,
		tokenizer: WhitespaceTokenizer{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetLogger sets the logger for the Model. By default, all logs are
// discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Mode returns the sampling mode the model was constructed with.
func (m *Model) Mode() Mode { return m.mode }

// Order returns the context length set by the last training run, or 0 if
// the model has never been trained.
func (m *Model) Order() int { return m.order }

// Trained reports whether the model holds a non-empty transition table.
// Training on degenerate input (fewer than order+1 tokens) leaves the
// model untrained.
func (m *Model) Trained() bool { return len(m.table) > 0 }

// contextOf splits a table key back into its tokens.
func contextOf(key string) []string {
	return strings.Split(key, keySep)
}
