package sched

import (
	"github.com/rs/zerolog"
)

// EventSink receives every Event the scheduler produces. A Scheduler may
// have zero or more sinks attached (structured logging, CSV tracing, test
// instrumentation); each is called synchronously and must not block.
type EventSink interface {
	onEvent(Event)
}

// zerologSink writes scheduler events as structured log records. Event
// kinds below Errored/TimerArmed are emitted at Debug/Trace level so a
// production deployment can dial observability up or down without code
// changes, matching the "profiling hooks" component being opt-in per spec.
type zerologSink struct {
	logger zerolog.Logger
}

func newZerologSink(logger zerolog.Logger) *zerologSink {
	return &zerologSink{logger: logger}
}

func (s *zerologSink) onEvent(ev Event) {
	switch ev.Kind {
	case EventErrored:
		s.logger.Error().
			Uint64("task_id", uint64(ev.TaskID)).
			Str("priority", ev.Priority.String()).
			Int64("now_ms", ev.NowMS).
			Interface("panic", ev.Err).
			Msg("task callback panicked")
	case EventPaintRequested:
		s.logger.Trace().Int64("now_ms", ev.NowMS).Msg(ev.Kind.String())
	case EventTimerArmed:
		s.logger.Debug().Int64("delay_ms", ev.DelayMS).Int64("now_ms", ev.NowMS).Msg(ev.Kind.String())
	default:
		s.logger.Debug().
			Uint64("task_id", uint64(ev.TaskID)).
			Str("priority", ev.Priority.String()).
			Int64("now_ms", ev.NowMS).
			Msg(ev.Kind.String())
	}
}

// emit fans an event out to every attached sink. Called with the
// scheduler's mutex NOT held, since sinks may perform I/O.
func (s *Scheduler) emit(ev Event) {
	for _, sink := range s.sinks {
		sink.onEvent(ev)
	}
}
