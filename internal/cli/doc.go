// Package cli implements Writer's interactive terminal front end: a simple
// read-eval-print loop over notes, categories, backups and privacy mode.
//
// The App type owns the database handle and services. The REPL itself only
// depends on the execIface command surface so it can be tested with a stub.
package cli
