package sched

// InputPendingHint lets a host report pending input back to the yield
// policy. Discrete input (clicks, key presses) forces a yield sooner than
// continuous input (pointer moves) alone. A Scheduler with no hint
// configured falls back to a pure time-slice comparison.
type InputPendingHint interface {
	// Pending reports whether any discrete or continuous input is
	// currently queued at the host.
	Pending() (discrete bool, continuous bool)
}

// shouldYieldToHostLocked implements the yield predicate from the spec.
// Callers must hold s.mu.
func (s *Scheduler) shouldYieldToHostLocked(now int64) bool {
	elapsed := now - s.sliceStartMS
	if elapsed < s.frameIntervalMS {
		return false
	}

	if s.inputPending == nil {
		return true
	}

	if s.paintRequested {
		return true
	}

	discrete, continuous := s.inputPending.Pending()

	if elapsed < s.continuousInputIntervalMS {
		return discrete
	}
	if elapsed < s.maxIntervalMS {
		return discrete || continuous
	}
	return true
}

// ShouldYield reports whether the caller (typically a running callback)
// should return a continuation and let the scheduler yield to the host.
func (s *Scheduler) ShouldYield() bool {
	now := s.clock.NowMS()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shouldYieldToHostLocked(now)
}

// RequestPaint marks that a paint is pending for the remainder of the
// current slice. It is cleared automatically once the host adapter
// finishes the current activation.
func (s *Scheduler) RequestPaint() {
	s.mu.Lock()
	s.paintRequested = true
	now := s.clock.NowMS()
	s.mu.Unlock()
	s.emit(Event{Kind: EventPaintRequested, NowMS: now})
}

func (s *Scheduler) clearPaintRequested() {
	s.mu.Lock()
	s.paintRequested = false
	s.mu.Unlock()
}

// ForceFrameRate sets the yield policy's time-slice budget from a target
// frame rate. fps must be in [0, 125]; 0 restores the configured
// Config.FrameIntervalMS slice (5ms unless a config file overrides it).
// Out-of-range values are logged and otherwise ignored: no state changes
// and no error is returned, per the spec's "invalid argument" handling.
func (s *Scheduler) ForceFrameRate(fps int) {
	if fps < 0 || fps > 125 {
		s.logger.Warn().Int("fps", fps).Msg("sched: forceFrameRate: fps out of range [0, 125], ignoring")
		return
	}

	s.mu.Lock()
	if fps == 0 {
		s.frameIntervalMS = s.cfg.FrameIntervalMS
	} else {
		s.frameIntervalMS = int64(1000 / fps)
	}
	s.mu.Unlock()
}
