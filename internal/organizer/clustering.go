package organizer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"recsort/internal/cluster"
	"recsort/internal/fileutil"
	"recsort/internal/journal"
	"recsort/internal/logging"
	"recsort/internal/metadata"
	"recsort/internal/naming"
	"recsort/internal/services"
)

// ClusterDirectory clusters the direct files of an existing image bucket
// directory into year (or year/month) folders. Files without a capture time
// stay where they are. The lock is taken on the bucket's parent, the
// destination root a sort run would lock, so the two cannot overlap.
func (o *Organizer) ClusterDirectory(ctx context.Context, dir string) (*Report, error) {
	report := &Report{Destination: dir, Policy: o.cfg.Sort.FilenamePolicy, StartedAt: time.Now()}
	if err := o.cfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "preflight", "ensure state directories", "", err)
	}
	lock, err := acquireDestinationLock(o.cfg, bucketRoot(dir))
	if err != nil {
		return report, err
	}
	defer func() { _ = lock.release() }()

	report.RunID = uuid.NewString()
	ctx = services.WithRunID(ctx, report.RunID)
	r := &run{
		Organizer: o,
		ctx:       ctx,
		logger:    logging.WithContext(ctx, o.logger),
		report:    report,
		resolved:  make(map[string]metadata.Resolution),
	}
	report.Undated, err = r.clusterDir(dir)
	report.FinishedAt = time.Now()
	return report, err
}

func bucketRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return filepath.Dir(filepath.Clean(abs))
}

// clusterPhase clusters every configured image bucket of the destination.
func (r *run) clusterPhase() error {
	for _, ext := range r.cfg.Sort.ImageExtensions {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		dir := filepath.Join(r.report.Destination, r.BucketName(ext))
		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil || !info.IsDir() {
			if err == nil {
				err = errors.New("not a directory")
			}
			r.fail(PhaseCluster, dir, err, "remove or rename the conflicting entry", "images in this bucket were not clustered")
			continue
		}
		if _, err := r.clusterDir(dir); err != nil {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.fail(PhaseCluster, dir, err, "check bucket permissions", "images in this bucket were not clustered")
		}
	}
	return nil
}

// clusterDir returns the number of files left in dir for lack of a capture
// time.
func (r *run) clusterDir(dir string) (int, error) {
	ctx := services.WithStage(r.ctx, PhaseCluster)
	logger := logging.WithContext(ctx, r.Organizer.logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, PhaseCluster, "read bucket", dir, err)
	}

	var items []cluster.Item
	undated := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		res, cached := r.resolved[path]
		if !cached {
			res, _ = r.resolve(path, logger)
		}
		if !res.OK || res.Time.IsZero() {
			undated++
			continue
		}
		items = append(items, cluster.Item{Path: path, Taken: res.Time})
	}

	buckets, err := cluster.Cluster(items, cluster.Options{
		MinGapDays:   r.cfg.Sort.MinEventDeltaDays,
		SplitByMonth: r.cfg.Sort.SplitByMonth,
	})
	if err != nil {
		r.fail(PhaseCluster, dir, err, "inspect capture times of the images in this bucket", "images left in bucket root")
		return undated + len(items), nil
	}
	logger.Info("clustering images",
		logging.String("path", dir),
		logging.Int("dated", len(items)),
		logging.Int("undated", undated),
		logging.Int("buckets", len(buckets)),
	)

	r.observer.PhaseStarted(PhaseCluster, len(items))
	defer r.observer.PhaseFinished(PhaseCluster)

	byDest := make(map[string]*MediaFile, len(r.files))
	for _, media := range r.files {
		byDest[media.Dest] = media
	}

	done := 0
	for _, bucket := range buckets {
		target := filepath.Join(dir, bucket.Key.Dir())
		summary := BucketSummary{Root: dir, Key: bucket.Key.String()}
		if err := os.MkdirAll(target, 0o755); err != nil {
			for _, item := range bucket.Items {
				r.fail(PhaseCluster, item.Path, err, "check destination permissions", "image left in bucket root")
			}
			done += len(bucket.Items)
			r.report.Buckets = append(r.report.Buckets, summary)
			continue
		}
		for _, item := range bucket.Items {
			if err := ctx.Err(); err != nil {
				r.report.Buckets = append(r.report.Buckets, summary)
				return undated, err
			}
			done++
			moved, err := r.moveInto(item.Path, target)
			r.observer.FileDone(PhaseCluster, done, len(items), item.Path)
			if err != nil {
				r.fail(PhaseCluster, item.Path, err, "check destination permissions", "image left in bucket root")
				r.record(journal.Entry{Phase: journal.PhaseCluster, Source: item.Path, Error: err.Error()})
				continue
			}
			if media, ok := byDest[item.Path]; ok {
				media.Dest = moved
			}
			summary.Files++
			r.report.Clustered++
			r.record(journal.Entry{Phase: journal.PhaseCluster, Source: item.Path, Destination: moved})
		}
		r.report.Buckets = append(r.report.Buckets, summary)
	}
	return undated, nil
}

func (r *run) moveInto(path, dir string) (string, error) {
	name, err := naming.FreeName(dir, filepath.Base(path))
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, name)
	if err := fileutil.MoveFile(path, target); err != nil {
		return "", err
	}
	return target, nil
}
