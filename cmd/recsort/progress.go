package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"recsort/internal/organizer"
)

// barObserver draws one progress bar per organizer phase.
type barObserver struct {
	out    io.Writer
	logger *slog.Logger
	bar    *progressbar.ProgressBar
}

func newBarObserver(out io.Writer, logger *slog.Logger) *barObserver {
	return &barObserver{out: out, logger: logger}
}

func (o *barObserver) PhaseStarted(phase string, total int) {
	if total <= 0 {
		o.bar = nil
		return
	}
	o.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%-9s[reset]", phase)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(o.out)
		}),
	)
}

func (o *barObserver) FileDone(_ string, done, _ int, _ string) {
	if o.bar == nil {
		return
	}
	if err := o.bar.Set(done); err != nil {
		o.logger.Debug("progress bar update failed", slog.Any("error", err))
	}
}

func (o *barObserver) PhaseFinished(string) {
	if o.bar == nil {
		return
	}
	if err := o.bar.Finish(); err != nil {
		o.logger.Debug("progress bar finish failed", slog.Any("error", err))
	}
	o.bar = nil
}

// newObserver picks a progress bar for interactive terminals and sampled log
// lines otherwise.
func newObserver(out io.Writer, logger *slog.Logger) organizer.Observer {
	if isTerminal(out) {
		return newBarObserver(out, logger)
	}
	return organizer.NewLogObserver(logger)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
