/*
Package markov implements an in-memory word-level Markov chain: training
an order-N transition table from whitespace-tokenized text, and generating
new text by a random walk over that table.

A model samples successors in one of two modes. In uniform mode every
distinct successor of a context is equally likely; in probabilistic mode a
successor is chosen proportionally to how often it followed that context
in the training corpus.

For a complete usage example, see the README.md file.
*/
package markov
