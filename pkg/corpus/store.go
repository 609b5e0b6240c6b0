package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a named corpus has no registered sources.
var ErrNotFound = errors.New("corpus not found")

// CorpusInfo summarizes one named corpus: how many sources it aggregates
// and their combined size in bytes.
type CorpusInfo struct {
	Name    string
	Sources int
	Bytes   int64
}

// Run is one logged generation: the parameters it was invoked with and
// the text it produced. Seed is nil for non-deterministic runs.
type Run struct {
	ID        string
	Corpus    string
	Mode      string
	Order     int
	Length    int
	Seed      *int64
	Output    string
	CreatedAt time.Time
}

// Store provides access to corpora and the generation-run log. It holds
// prepared SQL statements for the life of the store.
type Store struct {
	db             *sql.DB
	stmtAddSource  *sql.Stmt
	stmtCorpusText *sql.Stmt
	stmtListAll    *sql.Stmt
	stmtInsertRun  *sql.Stmt
	stmtRecentRuns *sql.Stmt
	logger         *slog.Logger
}

// NewStore creates a Store over a database that has already been prepared
// with SetupSchema. It pre-compiles all necessary SQL statements,
// returning an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtAddSource, err := db.Prepare(`INSERT INTO corpus_sources (corpus_name, source_name, content) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtCorpusText, err := db.Prepare(`SELECT content FROM corpus_sources WHERE corpus_name = ? ORDER BY source_id;`)
	if err != nil {
		return nil, err
	}

	stmtListAll, err := db.Prepare(`SELECT corpus_name, COUNT(*), SUM(LENGTH(content)) FROM corpus_sources GROUP BY corpus_name ORDER BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	stmtInsertRun, err := db.Prepare(`INSERT INTO generation_runs (run_id, corpus_name, mode, chain_order, target_length, seed, output) VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtRecentRuns, err := db.Prepare(`SELECT run_id, corpus_name, mode, chain_order, target_length, seed, output, created_at FROM generation_runs ORDER BY created_at DESC, run_id LIMIT ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:             db,
		stmtAddSource:  stmtAddSource,
		stmtCorpusText: stmtCorpusText,
		stmtListAll:    stmtListAll,
		stmtInsertRun:  stmtInsertRun,
		stmtRecentRuns: stmtRecentRuns,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtAddSource.Close()
	_ = s.stmtCorpusText.Close()
	_ = s.stmtListAll.Close()
	_ = s.stmtInsertRun.Close()
	_ = s.stmtRecentRuns.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are
// discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// AddSource registers one text source under a corpus name. Source names
// are unique within a corpus; re-adding the same source is an error.
func (s *Store) AddSource(ctx context.Context, corpus, source, content string) error {
	if _, err := s.stmtAddSource.ExecContext(ctx, corpus, source, content); err != nil {
		return fmt.Errorf("could not add source %q to corpus %q: %w", source, corpus, err)
	}

	s.logger.InfoContext(ctx, "Corpus source added",
		slog.String("corpus", corpus),
		slog.String("source", source),
		slog.Int("bytes", len(content)),
	)
	return nil
}

// Text concatenates all sources of a corpus, in insertion order, into a
// single training string. Returns ErrNotFound if the corpus has no
// sources.
func (s *Store) Text(ctx context.Context, corpus string) (string, error) {
	rows, err := s.stmtCorpusText.QueryContext(ctx, corpus)
	if err != nil {
		return "", err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var parts []string
	for rows.Next() {
		var content string
		if err = rows.Scan(&content); err != nil {
			return "", err
		}
		parts = append(parts, content)
	}
	if err = rows.Err(); err != nil {
		return "", err
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, corpus)
	}
	return strings.Join(parts, "\n"), nil
}

// Corpora lists every registered corpus with its source count and total
// size.
func (s *Store) Corpora(ctx context.Context) ([]CorpusInfo, error) {
	rows, err := s.stmtListAll.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var infos []CorpusInfo
	for rows.Next() {
		var info CorpusInfo
		if err = rows.Scan(&info.Name, &info.Sources, &info.Bytes); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// RemoveCorpus deletes a corpus's sources and its logged runs. The
// operation is performed within a transaction.
func (s *Store) RemoveCorpus(ctx context.Context, corpus string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM corpus_sources WHERE corpus_name = ?", corpus); err != nil {
		return fmt.Errorf("failed to remove sources for corpus %q: %w", corpus, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM generation_runs WHERE corpus_name = ?", corpus); err != nil {
		return fmt.Errorf("failed to remove runs for corpus %q: %w", corpus, err)
	}

	s.logger.InfoContext(ctx, "Corpus removed",
		slog.String("corpus", corpus),
	)

	return tx.Commit()
}

// LogRun records a generation run and returns its assigned ID. The ID
// field of the argument is ignored.
func (s *Store) LogRun(ctx context.Context, run Run) (string, error) {
	id := uuid.NewString()

	var seed sql.NullInt64
	if run.Seed != nil {
		seed = sql.NullInt64{Int64: *run.Seed, Valid: true}
	}

	_, err := s.stmtInsertRun.ExecContext(ctx, id, run.Corpus, run.Mode, run.Order, run.Length, seed, run.Output)
	if err != nil {
		return "", fmt.Errorf("could not log generation run: %w", err)
	}

	s.logger.DebugContext(ctx, "Generation run logged",
		slog.String("run_id", id),
		slog.String("corpus", run.Corpus),
		slog.String("mode", run.Mode),
		slog.Int("order", run.Order),
		slog.Int("length", run.Length),
	)
	return id, nil
}

// RecentRuns returns up to limit logged runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.stmtRecentRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []Run
	for rows.Next() {
		var run Run
		var seed sql.NullInt64
		if err = rows.Scan(&run.ID, &run.Corpus, &run.Mode, &run.Order, &run.Length, &seed, &run.Output, &run.CreatedAt); err != nil {
			return nil, err
		}
		if seed.Valid {
			v := seed.Int64
			run.Seed = &v
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
