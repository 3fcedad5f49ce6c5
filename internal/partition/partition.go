// Package partition enforces a maximum number of files per directory.
//
// Partition walks a tree deepest-first. Any directory holding more regular
// files than the cap has its files, in natural name order, moved into
// numbered sub-directories of at most cap files each. Existing entries are
// never reused as partition names, so running Partition again over its own
// output is a no-op.
package partition

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"recsort/internal/fileutil"
	"recsort/internal/logging"
)

// Filesystem operations used by splitDir; tests swap them to inject failures.
var (
	makeDir  = os.Mkdir
	moveFile = fileutil.MoveFile
)

// Failure pairs a path with the operation that failed on it.
type Failure struct {
	Path string
	Op   string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result summarizes a partition pass.
type Result struct {
	DirectoriesSplit int
	FilesMoved       int
	Failures         []Failure
}

// Err combines all per-path failures, or returns nil when there were none.
func (r Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Partition splits every directory under root (root included) that holds more
// than limit regular files. The returned error is reserved for precondition
// violations and cancellation; per-path problems are collected in
// Result.Failures and the pass continues.
func Partition(ctx context.Context, root string, limit int, logger *slog.Logger) (Result, error) {
	var result Result
	if logger == nil {
		logger = logging.NewNop()
	}
	if limit < 1 {
		return result, fmt.Errorf("partition: max files per directory must be at least 1, got %d", limit)
	}
	info, err := os.Stat(root)
	if err != nil {
		return result, fmt.Errorf("partition: %w", err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("partition: %s is not a directory", root)
	}

	dirs, err := collectDirs(root)
	if err != nil {
		return result, err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := splitDir(ctx, dirs[i], limit, logger, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// collectDirs returns root and every directory below it in pre-order.
// Unreadable sub-directories are still listed; splitDir reports them.
func collectDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("partition: walk %s: %w", root, err)
	}
	return dirs, nil
}

func splitDir(ctx context.Context, dir string, limit int, logger *slog.Logger, result *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Failures = append(result.Failures, Failure{Path: dir, Op: "read", Err: err})
		logging.WarnWithContext(logger, "directory skipped",
			"partition_read_failed",
			logging.String("path", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check directory permissions"),
			logging.String(logging.FieldImpact, "directory may exceed the file limit"),
		)
		return nil
	}

	taken := make(map[string]struct{}, len(entries))
	var files []string
	for _, entry := range entries {
		taken[entry.Name()] = struct{}{}
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	if len(files) <= limit {
		return nil
	}
	slices.SortFunc(files, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	logger.Debug("splitting directory",
		logging.String("path", dir),
		logging.Int("files", len(files)),
		logging.Int("limit", limit),
	)

	number := 0
	moved := 0
	created := 0
	defer func() {
		result.FilesMoved += moved
		if created > 0 {
			result.DirectoriesSplit++
		}
	}()
	for start := 0; start < len(files); start += limit {
		end := min(start+limit, len(files))

		number = nextFree(taken, number)
		target := filepath.Join(dir, strconv.Itoa(number))
		if err := makeDir(target, 0o755); err != nil {
			result.Failures = append(result.Failures, Failure{Path: target, Op: "mkdir", Err: err})
			logging.WarnWithContext(logger, "partition directory not created",
				"partition_mkdir_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions"),
				logging.String(logging.FieldImpact, "directory left above the file limit"),
			)
			break
		}
		taken[strconv.Itoa(number)] = struct{}{}
		created++

		for _, name := range files[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := filepath.Join(dir, name)
			if err := moveFile(src, filepath.Join(target, name)); err != nil {
				result.Failures = append(result.Failures, Failure{Path: src, Op: "move", Err: err})
				logging.WarnWithContext(logger, "file not moved into partition",
					"partition_move_failed",
					logging.String("path", src),
					logging.String("target", target),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file stays in its parent directory"),
				)
				continue
			}
			moved++
		}
	}

	if created == 0 {
		return nil
	}
	logger.Info("directory split",
		logging.String("path", dir),
		logging.Int("files", len(files)),
		logging.Int("moved", moved),
		logging.Int("partitions", created),
	)
	return nil
}

// nextFree returns the smallest positive number above after whose decimal
// name is not already taken in the directory.
func nextFree(taken map[string]struct{}, after int) int {
	n := after + 1
	for {
		if _, ok := taken[strconv.Itoa(n)]; !ok {
			return n
		}
		n++
	}
}
