package organizer

import (
	"fmt"
	"log/slog"

	"recsort/internal/logging"
)

// Observer receives progress events. Implementations run on the organizer's
// goroutine and must not block for long.
type Observer interface {
	PhaseStarted(phase string, total int)
	FileDone(phase string, done, total int, path string)
	PhaseFinished(phase string)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) PhaseStarted(string, int) {}

func (NopObserver) FileDone(string, int, int, string) {}

func (NopObserver) PhaseFinished(string) {}

// LogObserver reports progress as log lines, one per percent at most.
type LogObserver struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

// NewLogObserver returns an observer that logs through logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogObserver{logger: logger, sampler: logging.NewProgressSampler(1)}
}

func (o *LogObserver) PhaseStarted(phase string, total int) {
	o.sampler.Reset()
	if total > 0 {
		o.logger.Info("phase started", logging.String(logging.FieldStage, phase), logging.Int("total", total))
	}
}

func (o *LogObserver) FileDone(phase string, done, total int, _ string) {
	percent, emit := o.sampler.Sample(phase, done, total)
	if !emit {
		return
	}
	o.logger.Info("progress",
		logging.String(logging.FieldStage, phase),
		logging.Int("done", done),
		logging.Int("total", total),
		logging.String("percent", fmt.Sprintf("%d%%", percent)),
	)
}

func (o *LogObserver) PhaseFinished(string) {}
