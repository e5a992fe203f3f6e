// Package editor implements the note editing session: loading and
// decrypting a note, toggling encryption, changing its password, and the
// save decision made when the user leaves the editor.
//
// Save compares the current title and body with the plaintext loaded at
// open. A new note that is still empty is discarded; an existing note that
// was emptied is deleted; anything else is written only if something changed.
// Encrypted notes are sealed with the salt of their previous ciphertext, so
// the key cached for that salt and the session password are reused and the
// user is not prompted again.
package editor
