// Package watcher keeps cached extraction results in sync with source
// changes on disk.
package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}
