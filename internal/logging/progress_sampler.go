package logging

// ProgressSampler decides which per-file progress events deserve a log line.
// It emits once per step of completed percent within a phase, so a copy of a
// million files still logs about a hundred lines with 1% steps.
type ProgressSampler struct {
	step  int
	phase string
	last  int
}

// NewProgressSampler returns a sampler emitting every step percent. Steps
// outside 1..100 fall back to 5.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 || step > 100 {
		step = 5
	}
	return &ProgressSampler{step: step, last: -1}
}

// Sample reports the whole percent reached by done of total files and
// whether it starts a new step. Switching phase starts counting again. A nil
// sampler emits everything.
func (s *ProgressSampler) Sample(phase string, done, total int) (int, bool) {
	if total <= 0 || done < 0 {
		return 0, false
	}
	percent := min(done, total) * 100 / total
	if s == nil {
		return percent, true
	}
	if phase != s.phase {
		s.phase = phase
		s.last = -1
	}
	bucket := percent / s.step
	if bucket <= s.last {
		return percent, false
	}
	s.last = bucket
	return percent, true
}

// Reset forgets the current phase.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.phase = ""
	s.last = -1
}
