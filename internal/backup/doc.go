// Package backup copies the Writer database to a local backup slot, to
// user-chosen export files, and to remote object storage (S3 or FTP), and
// restores it from any of them.
//
// Every restore path validates the SQLite file header and replaces the
// database atomically. The caller must close its *sql.DB before a restore
// and reopen it afterwards.
package backup
