// Package ledger implements the durable checkpoint ledger: the per-document
// record of every candidate already verified as incorrect in any run.
//
// A ledger is keyed by document identity (the target's base file name) and
// grows append-only. Every append is synced to storage before the
// verification loop moves on, so an interrupted run never loses or repeats
// completed work. Two backends implement the same contract: a newline file
// that is loaded fully into memory at open, and a LevelDB database whose
// membership checks are point lookups, for search spaces whose checked set
// outgrows a flat file.
//
// The companion success record holds the discovered password, one line,
// written once.
package ledger
