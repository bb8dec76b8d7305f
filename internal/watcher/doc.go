// Package watcher watches synonym rule files and emits debounced change
// batches.
//
// Editors save files in bursts (truncate + write, or write a temp file and
// rename it over the original), so the watcher observes each file's parent
// directory with fsnotify and coalesces events per path before emitting them.
//
// Usage:
//
//	w, err := watcher.NewFileWatcher([]string{"synonyms/places.txt"}, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	go w.Start(ctx)
//
//	for batch := range w.Events() {
//	    for _, event := range batch {
//	        // recompile event.Path
//	    }
//	}
package watcher
