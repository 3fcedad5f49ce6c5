package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// Match reports whether a log line should be shown. A nil Match keeps every line.
type Match func(line string) bool

// Options controls Tail.
type Options struct {
	Limit int
	Match Match
}

// Result holds the lines read and the offset to resume from.
type Result struct {
	Lines  []string
	Offset int64
}

// RunFilter matches lines carrying runID in either log format. Console lines
// print only the first block of the id, JSON lines the full value.
func RunFilter(runID string) Match {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil
	}
	short, _, _ := strings.Cut(runID, "-")
	return func(line string) bool {
		return strings.Contains(line, `"run_id":"`+runID) || strings.Contains(line, " "+short+" ")
	}
}

// Tail returns up to opts.Limit of the last matching lines in path. A
// missing file yields an empty result; Limit <= 0 returns no lines but still
// reports the end offset.
func Tail(path string, opts Options) (Result, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return Result{}, err
	}
	defer file.Close()

	var ring []string
	if opts.Limit > 0 {
		ring = make([]string, 0, opts.Limit)
	}
	offset, err := scanLines(file, func(line string) {
		if opts.Limit <= 0 || (opts.Match != nil && !opts.Match(line)) {
			return
		}
		if len(ring) == opts.Limit {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Lines: ring, Offset: offset}, nil
}

// Follow polls path from offset and hands every new matching line to emit
// until ctx is done. A truncated file is read again from the start.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, match Match, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, match, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, match Match, emit func(string)) (int64, error) {
	file, err := openLog(path)
	if err != nil || file == nil {
		return 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	consumed, err := scanLines(file, func(line string) {
		if match == nil || match(line) {
			emit(line)
		}
	})
	if err != nil {
		return offset, err
	}
	return consumed, nil
}

// scanLines feeds complete lines to fn and returns the offset just past the
// last newline, so a partially written line is read again on the next poll.
func scanLines(file *os.File, fn func(string)) (int64, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	offset := start
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		if len(line) > maxLineBytes {
			continue
		}
		fn(strings.TrimRight(line, "\r\n"))
	}
}

func openLog(path string) (*os.File, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}
