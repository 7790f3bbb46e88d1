package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"docmill/internal/batch"
	"docmill/internal/config"
	"docmill/internal/convert"
	"docmill/internal/docformat"
	"docmill/internal/logging"
	"docmill/internal/scan"
)

// submitQueueFactor sizes the pool queue relative to the worker count. The
// sweeper requeues paths that find the queue full, so the factor only bounds
// how far conversions can run ahead of the workers.
const submitQueueFactor = 4

// drainGrace is how long shutdown waits for in-flight conversions before
// abandoning them. Queued tasks complete as skipped once the run context is
// canceled, so the wait covers at most one conversion per worker.
const drainGrace = 30 * time.Second

// Daemon watches the input tree and converts documents once they stop
// changing. It owns the debounce table, the filesystem watcher, and a worker
// pool, and enforces single-instance execution through a lock file.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	filter     docformat.Filter
	pool       *batch.Pool
	table      *Table
	streak     *batch.StreakMonitor
	lock       *flock.Flock
	claimLimit int

	watcher *fsnotify.Watcher
}

// NewDaemon constructs a daemon around the given converter. The converter is
// shared by every worker and must be safe for concurrent use.
func NewDaemon(cfg *config.Config, logger *slog.Logger, converter convert.Converter) (*Daemon, error) {
	if cfg == nil || converter == nil {
		return nil, errors.New("watch daemon requires config and converter")
	}
	filter, err := cfg.TypeFilter()
	if err != nil {
		return nil, err
	}

	workers := cfg.WorkerCount()
	watchLogger := logging.NewComponentLogger(logger, "watch")
	return &Daemon{
		cfg:        cfg,
		logger:     watchLogger,
		filter:     filter,
		pool:       batch.NewPool(converter, logger, workers, workers*submitQueueFactor),
		table:      NewTable(),
		streak:     batch.NewStreakMonitor(watchLogger),
		lock:       flock.New(cfg.LockFilePath()),
		claimLimit: workers * submitQueueFactor,
	}, nil
}

// Run watches until ctx is canceled. It fails fast when another instance
// holds the lock, the input root cannot be registered, or the watcher cannot
// be created; after startup it only returns on shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another docmill watch instance is already running (lock %s)", d.lock.Path())
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release watch lock", logging.Error(err))
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	d.watcher = watcher
	defer watcher.Close()

	if err := d.watchTree(d.cfg.Paths.InputDir, false); err != nil {
		return convert.Wrap(convert.ErrDirectory, "watch", "register", d.cfg.Paths.InputDir, err)
	}

	d.pool.Start(ctx)

	if d.cfg.Watch.ConvertExisting {
		d.reconcile(ctx)
	}

	if schedule := d.cfg.Watch.RescanSchedule; schedule != "" {
		rescan := cron.New()
		if _, err := rescan.AddFunc(schedule, func() { d.reconcile(ctx) }); err != nil {
			return fmt.Errorf("parse rescan schedule %q: %w", schedule, err)
		}
		rescan.Start()
		defer rescan.Stop()
	}

	d.logger.Info("watch daemon started",
		logging.String("input", d.cfg.Paths.InputDir),
		logging.String("output", d.cfg.Paths.OutputDir),
		logging.String("lock", d.lock.Path()),
		logging.Duration("quiet_interval", d.cfg.QuietInterval()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.eventLoop(gctx) })
	g.Go(func() error { return d.sweepLoop(gctx) })
	err = g.Wait()

	if pending := d.table.Len(); pending > 0 {
		d.logger.Info("dropping paths still debouncing at shutdown", logging.Int("count", pending))
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainGrace)
	defer cancel()
	d.pool.Stop(drainCtx)

	d.logger.Info("watch daemon stopped")
	return err
}

// watchTree registers every directory under root with the watcher. With
// touch set, supported files found along the way enter the debounce table;
// a directory created and populated in one burst delivers its Create event
// after some of its contents already exist.
func (d *Daemon) watchTree(root string, touch bool) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return d.watcher.Add(path)
		}
		if touch && d.filter.Admits(docformat.Detect(path)) {
			d.table.Touch(path)
		}
		return nil
	})
}

// eventLoop translates raw filesystem notifications into debounce-table
// updates. It never blocks on conversion work.
func (d *Daemon) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return nil
			}
			d.handleEvent(ev)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(d.logger, "filesystem watcher error", "watch_error",
				logging.Error(err),
			)
		}
	}
}

func (d *Daemon) handleEvent(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)

	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		// The path is already gone, so there is no telling whether it was a
		// file or a directory. Drop the exact entry and any subtree entries.
		d.table.Remove(name)
		d.table.RemovePrefix(name)
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := d.watchTree(name, true); err != nil {
				logging.WarnWithContext(d.logger, "failed to watch new directory", "watch_add_failed",
					logging.String(logging.FieldSource, name),
					logging.Error(err),
				)
			}
			return
		}
	}

	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !d.filter.Admits(docformat.Detect(name)) {
		return
	}
	d.table.Touch(name)
}

// sweepLoop periodically claims paths whose quiet interval has elapsed and
// hands them to the pool.
func (d *Daemon) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.SweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, path := range d.table.ClaimDue(d.cfg.QuietInterval(), d.claimLimit) {
				d.dispatch(path)
			}
		}
	}
}

// dispatch submits one claimed path to the pool. A source that vanished
// between claiming and submission is dropped; a full queue returns the path
// to the table so the next sweep retries it.
func (d *Daemon) dispatch(path string) {
	if _, err := os.Stat(path); err != nil {
		d.table.Cancel(path)
		return
	}

	destination, err := scan.DestinationFor(d.cfg.Paths.InputDir, d.cfg.Paths.OutputDir, path)
	if err != nil {
		logging.WarnWithContext(d.logger, "cannot place watched file under output root", "watch_dispatch_failed",
			logging.String(logging.FieldSource, path),
			logging.Error(err),
		)
		d.table.Cancel(path)
		return
	}

	job := convert.NewJob(path, destination, docformat.Detect(path))
	submitted := d.pool.TrySubmit(batch.Task{
		Job: job,
		Done: func(outcome convert.Outcome) {
			batch.LogOutcome(d.logger, outcome)
			d.streak.Observe(outcome)
			d.table.Complete(path)
		},
	})
	if !submitted {
		d.table.Requeue(path)
	}
}

// reconcile walks the input tree and schedules every supported source whose
// PDF is missing or older than the source. Scheduled paths flow through the
// debounce table like any other change, so a file being written while the
// walk runs still settles before converting.
func (d *Daemon) reconcile(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	var scheduled int
	err := filepath.WalkDir(d.cfg.Paths.InputDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if walkErr != nil {
			logging.WarnWithContext(d.logger, "rescan skipped unreadable path", "rescan_skip",
				logging.String(logging.FieldSource, path),
				logging.Error(walkErr),
			)
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !d.filter.Admits(docformat.Detect(path)) {
			return nil
		}
		if d.outputCurrent(path, entry) {
			return nil
		}
		d.table.Touch(path)
		scheduled++
		return nil
	})
	if err != nil {
		logging.WarnWithContext(d.logger, "rescan aborted", "rescan_failed",
			logging.Error(err),
		)
		return
	}
	if scheduled > 0 {
		d.logger.Info("rescan scheduled conversions", logging.Int("count", scheduled))
	}
}

// outputCurrent reports whether the mirrored PDF for source exists and is at
// least as new as the source itself.
func (d *Daemon) outputCurrent(source string, entry fs.DirEntry) bool {
	destination, err := scan.DestinationFor(d.cfg.Paths.InputDir, d.cfg.Paths.OutputDir, source)
	if err != nil {
		return true
	}
	destInfo, err := os.Stat(destination)
	if err != nil {
		return false
	}
	srcInfo, err := entry.Info()
	if err != nil {
		return false
	}
	return !destInfo.ModTime().Before(srcInfo.ModTime())
}
