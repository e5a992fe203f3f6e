// Package common defines sentinel errors and small helpers shared by the
// Writer storage, crypto, editor and backup layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound     = errors.New("not found")
	ErrEmptyEntry   = errors.New("entry has no title and no body")
	ErrMainCategory = errors.New("main category is not stored")

	// Crypto errors.
	ErrWrongPassword     = errors.New("wrong password")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	ErrEncryption        = errors.New("encryption error")

	// Editor / prompt errors.
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrCancelled        = errors.New("cancelled")

	// Backup errors.
	ErrBackupNotFound      = errors.New("backup not found")
	ErrInvalidBackup       = errors.New("not a valid database backup")
	ErrRemoteNotConfigured = errors.New("remote backup is not configured")
)
