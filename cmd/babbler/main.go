package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jtarleton/babbler/pkg/corpus"
	"github.com/jtarleton/babbler/pkg/markov"
)

func printUsage() {
	fmt.Println(`Usage: babbler COMMAND [flags]

Commands:
  add       -corpus NAME FILE...                        register text files as corpus sources
  generate  -corpus NAME [-order N] [-length N]
            [-seed N] [-mode MODE]                      train on a corpus and generate text
  stats     -corpus NAME [-order N] [-mode MODE]        train on a corpus and print chain statistics
  corpora                                               list registered corpora
  remove    -corpus NAME                                delete a corpus and its run history
  history   [-n N]                                      show recent generation runs

Modes: uniform (distinct successors equally likely) or probabilistic
(successors weighted by observed frequency).`)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	config, err := LoadConfig("./babbler.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(config.LogLevel)}))

	db, err := initDB(config.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "path", config.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if err = corpus.SetupSchema(db); err != nil {
		logger.Error("Failed to set up corpus schema", "error", err)
		os.Exit(1)
	}

	store, err := corpus.NewStore(db)
	if err != nil {
		logger.Error("Failed to create corpus store", "error", err)
		os.Exit(1)
	}
	store.SetLogger(logger)
	defer store.Close()

	ctx := context.Background()

	switch os.Args[1] {
	case "add":
		err = cmdAdd(ctx, store, os.Args[2:])
	case "generate":
		err = cmdGenerate(ctx, config, store, logger, os.Args[2:])
	case "stats":
		err = cmdStats(ctx, config, store, logger, os.Args[2:])
	case "corpora":
		err = cmdCorpora(ctx, store)
	case "remove":
		err = cmdRemove(ctx, store, os.Args[2:])
	case "history":
		err = cmdHistory(ctx, store, os.Args[2:])
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func cmdAdd(ctx context.Context, store *corpus.Store, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("corpus", "", "Corpus to add the files to")
	_ = fs.Parse(args)
	if *name == "" || fs.NArg() == 0 {
		return fmt.Errorf("usage: babbler add -corpus NAME FILE...")
	}

	for _, path := range fs.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read corpus file: %w", err)
		}
		if err = store.AddSource(ctx, *name, filepath.Base(path), string(content)); err != nil {
			return err
		}
	}
	return nil
}

// trainModel loads a corpus's concatenated text from the store and trains
// a fresh model on it.
func trainModel(ctx context.Context, store *corpus.Store, logger *slog.Logger, name, modeName string, order int) (*markov.Model, error) {
	mode, err := markov.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	text, err := store.Text(ctx, name)
	if err != nil {
		return nil, err
	}
	model := markov.New(mode)
	model.SetLogger(logger)
	if err = model.Train(text, order); err != nil {
		return nil, err
	}
	return model, nil
}

func cmdGenerate(ctx context.Context, config *Config, store *corpus.Store, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	name := fs.String("corpus", "", "Corpus to train on")
	order := fs.Int("order", config.DefaultOrder, "Context length (chain order)")
	length := fs.Int("length", config.DefaultLength, "Output length in tokens")
	seed := fs.Int64("seed", -1, "Random seed; negative for a non-deterministic run")
	modeName := fs.String("mode", config.DefaultMode, "Sampling mode: uniform or probabilistic")
	_ = fs.Parse(args)
	if *name == "" {
		return fmt.Errorf("usage: babbler generate -corpus NAME [-order N] [-length N] [-seed N] [-mode MODE]")
	}

	model, err := trainModel(ctx, store, logger, *name, *modeName, *order)
	if err != nil {
		return err
	}

	var opts []markov.GenerateOption
	var seedUsed *int64
	if *seed >= 0 {
		opts = append(opts, markov.WithSeed(uint64(*seed)))
		seedUsed = seed
	}

	output := model.Generate(*length, opts...)
	fmt.Println(output)

	if !model.Trained() {
		// Nothing to log: the corpus was too short for this order.
		return nil
	}
	_, err = store.LogRun(ctx, corpus.Run{
		Corpus: *name,
		Mode:   model.Mode().String(),
		Order:  *order,
		Length: *length,
		Seed:   seedUsed,
		Output: output,
	})
	return err
}

func cmdStats(ctx context.Context, config *Config, store *corpus.Store, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	name := fs.String("corpus", "", "Corpus to train on")
	order := fs.Int("order", config.DefaultOrder, "Context length (chain order)")
	modeName := fs.String("mode", config.DefaultMode, "Sampling mode: uniform or probabilistic")
	_ = fs.Parse(args)
	if *name == "" {
		return fmt.Errorf("usage: babbler stats -corpus NAME [-order N] [-mode MODE]")
	}

	model, err := trainModel(ctx, store, logger, *name, *modeName, *order)
	if err != nil {
		return err
	}
	fmt.Println(model.Summary())
	return nil
}

func cmdCorpora(ctx context.Context, store *corpus.Store) error {
	infos, err := store.Corpora(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no corpora registered")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-24s %4d sources %10d bytes\n", info.Name, info.Sources, info.Bytes)
	}
	return nil
}

func cmdRemove(ctx context.Context, store *corpus.Store, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	name := fs.String("corpus", "", "Corpus to remove")
	_ = fs.Parse(args)
	if *name == "" {
		return fmt.Errorf("usage: babbler remove -corpus NAME")
	}
	return store.RemoveCorpus(ctx, *name)
}

func cmdHistory(ctx context.Context, store *corpus.Store, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	n := fs.Int("n", 10, "Number of runs to show")
	_ = fs.Parse(args)

	runs, err := store.RecentRuns(ctx, *n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no generation runs logged")
		return nil
	}
	for _, run := range runs {
		seed := "-"
		if run.Seed != nil {
			seed = fmt.Sprint(*run.Seed)
		}
		fmt.Printf("%s  %s  corpus=%s mode=%s order=%d length=%d seed=%s\n  %s\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"), run.ID[:8],
			run.Corpus, run.Mode, run.Order, run.Length, seed, run.Output)
	}
	return nil
}
