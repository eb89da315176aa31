// Package actors provides the stock actors shipped with the framework:
// timer and one-shot sources, a printing sink, a moving-average filter and
// key-ordered zip joins.
// Each actor is a registration helper over a [pipeline.Builder] returning a
// struct of its typed ports, ready to be connected.
package actors
