// Package fatal sequences an orderly process shutdown after an unrecoverable
// dispatch error: the triggering fault is logged, registered cleanup hooks
// run in LIFO order under a shared deadline, and the process exits with the
// configured code. Exit runs at most once.
package fatal
