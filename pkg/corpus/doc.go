// Package corpus stores training corpora and a log of generation runs in
// a SQLite database. Trained models themselves are never persisted; only
// the raw text sources and the produced outputs are.
package corpus
