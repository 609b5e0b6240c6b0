package markov

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestGenerateUntrained(t *testing.T) {
	m := New(ModeProbabilistic)
	if got := m.Generate(10); got != NotTrainedMessage {
		t.Errorf("Generate() = %q, want %q", got, NotTrainedMessage)
	}
	if got := m.GenerateTokens(10); got != nil {
		t.Errorf("GenerateTokens() = %v, want nil", got)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	m := trainedModel(t, ModeProbabilistic, "the cat sat on the mat the cat ran", 2)

	first := m.Generate(10, WithSeed(42))
	second := m.Generate(10, WithSeed(42))
	if first != second {
		t.Errorf("same seed produced different output:\n%q\n%q", first, second)
	}
}

func TestGenerateLength(t *testing.T) {
	// Two tokens alternating forever: every context has a continuation, so
	// the walk can never dead-end and must hit the target length exactly.
	m := trainedModel(t, ModeProbabilistic, strings.Repeat("tick tock ", 50), 1)

	out := m.GenerateTokens(25, WithSeed(7))
	if len(out) != 25 {
		t.Errorf("generated %d tokens, want 25", len(out))
	}
}

func TestGenerateStartsWithKnownContext(t *testing.T) {
	m := trainedModel(t, ModeUniform, "the cat sat on the mat the cat ran", 2)

	out := m.GenerateTokens(6, WithSeed(3))
	if len(out) < m.Order() {
		t.Fatalf("generated %d tokens, want at least %d", len(out), m.Order())
	}
	start := strings.Join(out[:m.Order()], " ")
	if _, ok := m.table[start]; !ok {
		t.Errorf("output starts with %q, which is not a context key", start)
	}
}

func TestGenerateDeadEnd(t *testing.T) {
	// 'c' is the final token: it has no successors and ends any walk that
	// reaches it, so the output is always shorter than requested.
	m := New(ModeProbabilistic)
	if err := m.TrainTokens([]string{"a", "b", "c"}, 1); err != nil {
		t.Fatalf("TrainTokens() failed: %v", err)
	}

	for seed := uint64(0); seed < 20; seed++ {
		out := m.GenerateTokens(10, WithSeed(seed))
		if len(out) >= 10 {
			t.Fatalf("seed %d: generated %d tokens, want early termination", seed, len(out))
		}
		if last := out[len(out)-1]; last != "c" {
			t.Errorf("seed %d: walk ended on %q, want the dead-end token 'c'", seed, last)
		}
	}
}

func TestGenerateChainConsistency(t *testing.T) {
	// Every emitted token must be a recorded successor of the window of
	// order tokens preceding it.
	m := trainedModel(t, ModeProbabilistic, "the cat sat on the mat the cat ran", 2)

	out := m.GenerateTokens(20, WithSeed(11))
	for i := m.Order(); i < len(out); i++ {
		key := strings.Join(out[i-m.Order():i], " ")
		freqs := successorFreqs(m, key)
		if freqs[out[i]] == 0 {
			t.Errorf("token %q at position %d was never observed after %q", out[i], i, key)
		}
	}
}

func TestGenerateShorterThanOrder(t *testing.T) {
	m := trainedModel(t, ModeProbabilistic, "the cat sat on the mat the cat ran", 2)
	if out := m.GenerateTokens(1, WithSeed(1)); len(out) != 1 {
		t.Errorf("generated %d tokens, want the starting context truncated to 1", len(out))
	}
}

// skewedModel trains a corpus where context "x" is followed by y eight
// times, and by z and w once each.
func skewedModel(t *testing.T, mode Mode) *Model {
	t.Helper()
	corpus := strings.Repeat("x y ", 8) + "x z x w"
	return trainedModel(t, mode, corpus, 1)
}

func TestSampleProbabilistic(t *testing.T) {
	m := skewedModel(t, ModeProbabilistic)
	tr := m.table["x"]
	if tr.total != 10 {
		t.Fatalf("total frequency for 'x' = %d, want 10", tr.total)
	}

	const trials = 20000
	rng := rand.New(rand.NewPCG(1, 2))
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		counts[m.sample(tr, rng)]++
	}

	want := map[string]float64{"y": 0.8, "z": 0.1, "w": 0.1}
	for token, p := range want {
		got := float64(counts[token]) / trials
		if !approxEqual(got, p, 0.02) {
			t.Errorf("P(%q) = %.3f, want %.3f", token, got, p)
		}
	}
}

func TestSampleUniform(t *testing.T) {
	m := skewedModel(t, ModeUniform)
	tr := m.table["x"]

	const trials = 20000
	rng := rand.New(rand.NewPCG(3, 4))
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		counts[m.sample(tr, rng)]++
	}

	// Frequencies collapse: y, z and w should each come up a third of the
	// time despite y's dominance in the corpus.
	for _, token := range []string{"y", "z", "w"} {
		got := float64(counts[token]) / trials
		if !approxEqual(got, 1.0/3.0, 0.02) {
			t.Errorf("P(%q) = %.3f, want 0.333", token, got)
		}
	}
}

func TestGenerateConcurrent(t *testing.T) {
	m := trainedModel(t, ModeProbabilistic, "the cat sat on the mat the cat ran", 2)

	const workers = 8
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Generate(12, WithSeed(uint64(i)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if want := m.Generate(12, WithSeed(uint64(i))); results[i] != want {
			t.Errorf("concurrent seed %d: got %q, want %q", i, results[i], want)
		}
	}
}

func TestGenerateWithRand(t *testing.T) {
	m := trainedModel(t, ModeProbabilistic, strings.Repeat("tick tock ", 50), 1)

	a := m.GenerateTokens(10, WithRand(rand.New(rand.NewPCG(9, 9))))
	b := m.GenerateTokens(10, WithRand(rand.New(rand.NewPCG(9, 9))))
	if strings.Join(a, " ") != strings.Join(b, " ") {
		t.Errorf("identical sources produced different output:\n%v\n%v", a, b)
	}
}

func BenchmarkGenerate(b *testing.B) {
	corpus := benchCorpus(20000)
	for _, order := range []int{1, 2, 3} {
		b.Run(fmt.Sprintf("Order%d", order), func(b *testing.B) {
			m := New(ModeProbabilistic)
			if err := m.Train(corpus, order); err != nil {
				b.Fatalf("Train() failed: %v", err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s := m.Generate(100)
				b.SetBytes(int64(len(s)))
			}
		})
	}
}
