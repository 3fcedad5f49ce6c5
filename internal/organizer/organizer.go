package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"recsort/internal/config"
	"recsort/internal/journal"
	"recsort/internal/logging"
	"recsort/internal/metadata"
	"recsort/internal/naming"
	"recsort/internal/partition"
	"recsort/internal/preflight"
	"recsort/internal/services"
)

// Extractor supplies raw metadata date candidates for a file.
type Extractor interface {
	Candidates(path string) (metadata.Candidates, error)
}

// Recorder persists the audit trail of a run. *journal.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, source, destination, policy string) (string, error)
	Record(ctx context.Context, runID string, entry journal.Entry) error
	FinishRun(ctx context.Context, runID, status string, summary journal.Summary) error
}

// Organizer sorts a recovery dump into a destination tree.
type Organizer struct {
	cfg       *config.Config
	logger    *slog.Logger
	extractor Extractor
	recorder  Recorder
	observer  Observer
	upper     cases.Caser
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Organizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtractor replaces the EXIF extractor.
func WithExtractor(extractor Extractor) Option {
	return func(o *Organizer) {
		if extractor != nil {
			o.extractor = extractor
		}
	}
}

// WithRecorder enables the run journal.
func WithRecorder(recorder Recorder) Option {
	return func(o *Organizer) {
		o.recorder = recorder
	}
}

// WithObserver sets the progress observer.
func WithObserver(observer Observer) Option {
	return func(o *Organizer) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// New validates cfg and returns an Organizer. Invalid settings are reported
// here, before any filesystem access.
func New(cfg *config.Config, opts ...Option) (*Organizer, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "setup", "validate config", "configuration is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "setup", "validate config", "", err)
	}
	o := &Organizer{
		cfg:       cfg,
		logger:    logging.NewNop(),
		extractor: metadata.NewExtractor(),
		upper:     cases.Upper(language.Und),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "organizer")
	if o.observer == nil {
		o.observer = NewLogObserver(o.logger)
	}
	return o, nil
}

// BucketName returns the extension folder for ext (lower-case, no dot).
func (o *Organizer) BucketName(ext string) string {
	if ext == "" {
		return o.cfg.Sort.NoExtensionDir
	}
	return o.upper.String(ext)
}

// run carries the state of one Run call.
type run struct {
	*Organizer
	ctx      context.Context
	logger   *slog.Logger
	report   *Report
	recorder Recorder
	namer    *naming.Namer
	files    []*MediaFile
	resolved map[string]metadata.Resolution
}

// Run executes the copy, cluster and partition phases. The returned error is
// non-nil only for fatal problems (configuration, preflight, lock) and
// cancellation; per-file failures are reported on the Report.
func (o *Organizer) Run(ctx context.Context, source, destination string) (*Report, error) {
	report := &Report{
		Source:      source,
		Destination: destination,
		Policy:      o.cfg.Sort.FilenamePolicy,
		StartedAt:   time.Now(),
	}

	if err := o.cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "preflight", "ensure state directories", "", err)
	}
	if err := preflight.Err(preflight.RunAll(o.cfg, source, destination)); err != nil {
		logging.ErrorWithContext(o.logger, "preflight failed", "preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the source exists and the destination is writable"),
		)
		return report, services.Wrap(services.ErrValidation, "preflight", "check paths", "", err)
	}

	lock, err := acquireDestinationLock(o.cfg, destination)
	if err != nil {
		logging.ErrorWithContext(o.logger, "destination busy", "destination_locked",
			logging.String("destination", destination),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "wait for the other run to finish"),
		)
		return report, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			o.logger.Warn("failed to release destination lock", logging.String("lock", lock.path), logging.Error(err))
		}
	}()

	namer, err := naming.NewNamer(o.cfg.Sort.FilenamePolicy)
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "setup", "filename policy", "", err)
	}

	recorder := o.recorder
	report.RunID, recorder = o.beginJournal(ctx, recorder, report)
	ctx = services.WithRunID(ctx, report.RunID)

	r := &run{
		Organizer: o,
		ctx:       ctx,
		logger:    logging.WithContext(ctx, o.logger),
		report:    report,
		recorder:  recorder,
		namer:     namer,
		resolved:  make(map[string]metadata.Resolution),
	}
	r.logBanner()

	runErr := r.execute()
	report.FinishedAt = time.Now()
	finishJournal(ctx, r.recorder, o.logger, report, runErr)

	if runErr != nil {
		r.logger.Warn("run interrupted",
			logging.Error(runErr),
			logging.String(logging.FieldEventType, "run_interrupted"),
			logging.String(logging.FieldErrorHint, "re-run to sort the remaining files"),
			logging.String(logging.FieldImpact, "destination is partially sorted"),
		)
		return report, runErr
	}
	r.logger.Info("done",
		logging.Int("copied", report.Copied),
		logging.Int("clustered", report.Clustered),
		logging.Int("partition_moves", report.Partition.FilesMoved),
		logging.Int("failures", len(report.Failures)),
		logging.Duration("elapsed", report.Duration()),
	)
	return report, nil
}

func (r *run) execute() error {
	if err := r.copyPhase(); err != nil {
		return err
	}
	if err := r.clusterPhase(); err != nil {
		return err
	}
	return r.partitionPhase()
}

func (r *run) logBanner() {
	r.logger.Info("sort run starting",
		logging.String("source", r.report.Source),
		logging.String("destination", r.report.Destination),
		logging.Int("max_files_per_directory", r.cfg.Sort.MaxFilesPerDirectory),
		logging.Int("min_event_delta_days", r.cfg.Sort.MinEventDeltaDays),
		logging.Bool("split_by_month", r.cfg.Sort.SplitByMonth),
	)
	var plan string
	switch r.namer.Policy() {
	case config.PolicyKeepOriginal:
		plan = "keep the original filenames"
	case config.PolicyDateTime:
		plan = "rename to <date>_<time>.<ext> when the capture time is known, otherwise keep the original filename"
	default:
		plan = "rename files sequentially, like 0.jpg"
	}
	r.logger.Info("filename plan", logging.String("plan", plan))
}

func (r *run) partitionPhase() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	ctx := services.WithStage(r.ctx, PhasePartition)
	logger := logging.WithContext(ctx, r.Organizer.logger)
	logger.Info("applying max files-per-folder limit", logging.Int("limit", r.cfg.Sort.MaxFilesPerDirectory))
	r.observer.PhaseStarted(PhasePartition, 0)
	defer r.observer.PhaseFinished(PhasePartition)

	result, err := partition.Partition(ctx, r.report.Destination, r.cfg.Sort.MaxFilesPerDirectory, logger)
	r.report.Partition = result
	for _, failure := range result.Failures {
		r.report.addFailure(PhasePartition, failure.Path, failure)
		r.record(journal.Entry{Phase: journal.PhasePartition, Source: failure.Path, Error: failure.Error()})
	}
	return err
}

func (o *Organizer) beginJournal(ctx context.Context, recorder Recorder, report *Report) (string, Recorder) {
	if recorder == nil {
		return uuid.NewString(), nil
	}
	id, err := recorder.BeginRun(context.WithoutCancel(ctx), report.Source, report.Destination, report.Policy)
	if err != nil {
		logging.WarnWithContext(o.logger, "run journal unavailable", "journal_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions or set journal.enabled = false"),
			logging.String(logging.FieldImpact, "this run will not appear in history"),
		)
		return uuid.NewString(), nil
	}
	return id, recorder
}

func finishJournal(ctx context.Context, recorder Recorder, logger *slog.Logger, report *Report, runErr error) {
	if recorder == nil {
		return
	}
	status := journal.StatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status = journal.StatusCanceled
	case runErr != nil:
		status = journal.StatusFailed
	}
	summary := journal.Summary{
		Copied:    report.Copied,
		Clustered: report.Clustered,
		Moved:     report.Partition.FilesMoved,
		Failures:  len(report.Failures),
	}
	// The run context may already be canceled; the summary must still land.
	if err := recorder.FinishRun(context.WithoutCancel(ctx), report.RunID, status, summary); err != nil {
		logger.Warn("failed to finalize run journal", logging.String(logging.FieldRunID, report.RunID), logging.Error(err))
	}
}

func (r *run) record(entry journal.Entry) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(context.WithoutCancel(r.ctx), r.report.RunID, entry); err != nil {
		logging.WarnWithContext(r.logger, "run journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "journal disabled for the rest of this run"),
		)
		r.recorder = nil
	}
}

func (r *run) fail(phase, path string, err error, hint, impact string) {
	r.report.addFailure(phase, path, err)
	logging.WarnWithContext(r.logger, fmt.Sprintf("%s failed", phase), phase+"_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, impact),
	)
}
