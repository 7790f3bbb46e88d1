// Package watch runs the long-lived mode of docmill: a filesystem watcher
// over the input tree that converts documents as they change.
//
// Raw notifications are noisy. A single save in most editors produces several
// writes, a temp-file rename, or both, so every event lands in a debounce
// table first; only paths that stay quiet for the configured interval are
// dispatched to the shared worker pool. Events that arrive while a path is
// converting mark it dirty, and a dirty completion schedules exactly one
// follow-up conversion so the latest content always wins. The daemon holds a
// lock file to keep concurrent instances off the same output tree.
package watch
