// Package watcher re-runs transition detection when a mirror is updated.
//
// Mirror syncs replace the Release (or InRelease) file of a distribution
// once its indexes are in place. The Watcher watches the distribution
// directories with fsnotify, coalesces bursts of Release events from a sync
// into one trigger, and calls back with the changed paths. Callbacks run one
// at a time; events arriving during a callback are folded into the next one.
//
// Example usage:
//
//	w, err := watcher.New(dirs, 30*time.Second, func(ctx context.Context, paths []string) error {
//		return runPipeline(ctx)
//	}, logger)
//	if err != nil {
//		return err
//	}
//
//	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//	return w.Run(ctx)
package watcher
