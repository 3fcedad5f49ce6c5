package organizer

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"recsort/internal/config"
	"recsort/internal/fileutil"
	"recsort/internal/journal"
	"recsort/internal/logging"
	"recsort/internal/metadata"
	"recsort/internal/naming"
	"recsort/internal/scan"
	"recsort/internal/services"
)

// copyPhase copies every source file into its extension bucket. Sources are
// never modified.
func (r *run) copyPhase() error {
	ctx := services.WithStage(r.ctx, PhaseCopy)
	logger := logging.WithContext(ctx, r.Organizer.logger)

	files, skipped, err := scan.Files(r.report.Source)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, PhaseScan, "walk source", "", err)
	}
	for _, s := range skipped {
		r.fail(PhaseScan, s.Path, s.Err, "check source permissions", "files below this path were not copied")
	}
	r.report.Scanned = len(files)
	logger.Info("total files to copy", logging.Int("total", len(files)))

	r.observer.PhaseStarted(PhaseCopy, len(files))
	defer r.observer.PhaseFinished(PhaseCopy)

	created := make(map[string]struct{})
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.copyOne(file, created, logger)
		r.observer.FileDone(PhaseCopy, i+1, len(files), file.Path)
	}
	return nil
}

func (r *run) copyOne(file scan.File, created map[string]struct{}, logger *slog.Logger) {
	ext := naming.Extension(file.Name)
	media := &MediaFile{Source: file.Path, Name: file.Name, Extension: ext}

	if r.wantsTimestamp(ext) {
		if res, ok := r.resolve(file.Path, logger); ok {
			taken := res.Time
			media.Taken = &taken
		}
	}

	var taken time.Time
	if media.Taken != nil {
		taken = *media.Taken
	}
	name := r.namer.Name(file.Name, taken)

	dir := filepath.Join(r.report.Destination, r.BucketName(ext))
	if _, ok := created[dir]; !ok {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.fail(PhaseCopy, file.Path, err, "check destination permissions and free space", "file not copied")
			r.record(journal.Entry{Phase: journal.PhaseCopy, Source: file.Path, Error: err.Error()})
			return
		}
		created[dir] = struct{}{}
	}

	free, err := naming.FreeName(dir, name)
	if err != nil {
		r.fail(PhaseCopy, file.Path, err, "check destination permissions", "file not copied")
		r.record(journal.Entry{Phase: journal.PhaseCopy, Source: file.Path, Error: err.Error()})
		return
	}
	target := filepath.Join(dir, free)
	if err := fileutil.CopyFilePreserve(file.Path, target); err != nil {
		r.fail(PhaseCopy, file.Path, err, "check source readability and destination free space", "file not copied")
		r.record(journal.Entry{Phase: journal.PhaseCopy, Source: file.Path, Error: err.Error()})
		return
	}

	media.Dest = target
	r.files = append(r.files, media)
	r.report.Copied++
	if r.cfg.IsImageExtension(ext) {
		if media.Taken != nil {
			r.report.Dated++
			r.resolved[target] = metadata.Resolution{Time: *media.Taken, OK: true}
		} else {
			r.report.Undated++
			r.resolved[target] = metadata.Resolution{}
		}
	}
	r.record(journal.Entry{Phase: journal.PhaseCopy, Source: file.Path, Destination: target})
}

// wantsTimestamp reports whether the capture time matters for a file: image
// buckets are clustered, and the date-time policy names every file by it.
func (r *run) wantsTimestamp(ext string) bool {
	return r.cfg.IsImageExtension(ext) || r.namer.Policy() == config.PolicyDateTime
}

func (r *run) resolve(path string, logger *slog.Logger) (metadata.Resolution, bool) {
	candidates, err := r.extractor.Candidates(path)
	if err != nil {
		logger.Debug("no capture metadata", logging.String("path", path), logging.Error(err))
	}
	res := metadata.Resolve(candidates)
	if len(res.Malformed) > 0 {
		logger.Debug("malformed capture metadata",
			logging.String("path", path),
			logging.Any("fields", res.Malformed),
		)
	}
	if !res.OK {
		logger.Debug("capture time unknown", logging.String("path", path))
		return res, false
	}
	return res, true
}
