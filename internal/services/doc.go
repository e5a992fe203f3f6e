// Package services holds the application services used by the Writer CLI:
// entry and category management on top of the repositories, and settings
// persisted in the metadata table.
//
// Services own a *sql.DB and bind repositories per call, so multi-step
// operations can run inside dbx.WithTx with every repository rebound to the
// transaction.
package services
