package sched

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// csvSink is the teacher's EnableCSVLogging carried forward: a flat CSV
// trace of scheduler events, useful for replaying or plotting a run after
// the fact. It now records the generalized Event stream instead of CFS
// vruntime ticks.
type csvSink struct {
	file   *os.File
	writer *csv.Writer
}

func newCSVSink(path string) (*csvSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sched: opening csv trace file: %w", err)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"now_ms", "event", "task_id", "priority", "delay_ms"})
	w.Flush()
	return &csvSink{file: f, writer: w}, nil
}

func (s *csvSink) onEvent(ev Event) {
	rec := []string{
		strconv.FormatInt(ev.NowMS, 10),
		ev.Kind.String(),
		strconv.FormatUint(uint64(ev.TaskID), 10),
		ev.Priority.String(),
		strconv.FormatInt(ev.DelayMS, 10),
	}
	_ = s.writer.Write(rec)
	s.writer.Flush()
}

// Close flushes and closes the underlying file.
func (s *csvSink) Close() error {
	s.writer.Flush()
	return s.file.Close()
}
