package morph

import (
	"context"
	"time"
)

// FrameScheduler calls frame once per display frame until frame returns
// false or the scheduler's own event source ends.
type FrameScheduler interface {
	Run(frame func() bool) error
}

// LoopScheduler is a headless scheduler. Frames <= 0 runs until frame
// returns false; Interval <= 0 runs frames back to back.
type LoopScheduler struct {
	Frames   int
	Interval time.Duration
	Context  context.Context
}

func (s LoopScheduler) Run(frame func() bool) error {
	ctx := s.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var tick <-chan time.Time
	if s.Interval > 0 {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; s.Frames <= 0 || i < s.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !frame() {
			return nil
		}
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
	return nil
}
