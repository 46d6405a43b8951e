package sched

import "github.com/rs/zerolog"

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithClock overrides the time source. Defaults to NewSystemClock().
func WithClock(clock Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithHostAdapter overrides the host bridge. Defaults to the channel-based
// HostAdapter from NewHostAdapter.
func WithHostAdapter(host HostAdapter) Option {
	return func(s *Scheduler) { s.host = host }
}

// WithLogger attaches a structured logger; scheduler events are emitted to
// it at Debug/Trace (Error for panics). Defaults to a disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
		s.sinks = append(s.sinks, newZerologSink(logger))
	}
}

// WithInputPendingHint supplies a host-provided discrete/continuous input
// signal to the yield policy. Without one, the policy falls back to a pure
// time-slice comparison.
func WithInputPendingHint(hint InputPendingHint) Option {
	return func(s *Scheduler) { s.inputPending = hint }
}

// WithEventSink attaches an additional observability sink (e.g. a CSV
// trace writer obtained from WithCSVTrace) alongside any logger configured
// via WithLogger.
func WithEventSink(sink EventSink) Option {
	return func(s *Scheduler) { s.sinks = append(s.sinks, sink) }
}

// WithCSVTrace opens path and attaches a CSV trace sink, generalizing the
// teacher's EnableCSVLogging. The returned closer must be called (after
// the scheduler is done) to flush and close the file; construction errors
// are reported immediately rather than swallowed, since a bad path is a
// caller mistake rather than a runtime condition the scheduler should mask.
func WithCSVTrace(path string) (Option, Closer, error) {
	sink, err := newCSVSink(path)
	if err != nil {
		return nil, nil, err
	}
	return WithEventSink(sink), sink, nil
}

// Closer is satisfied by any sink that owns a resource needing explicit
// teardown.
type Closer interface {
	Close() error
}
