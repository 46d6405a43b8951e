package cli

import (
	"fmt"
	"time"

	"github.com/knightchaser/corosched/internal/job"
	"github.com/knightchaser/corosched/internal/sched"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var csvPath string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a small demo workload through the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sched.Load(flagConfigPath)

			opts := []sched.Option{sched.WithLogger(logger)}
			if csvPath != "" {
				opt, closer, err := sched.WithCSVTrace(csvPath)
				if err != nil {
					return fmt.Errorf("enabling csv trace: %w", err)
				}
				defer closer.Close()
				opts = append(opts, opt)
			}

			s := sched.New(cfg, opts...)
			defer s.Close()

			runDemo(s)

			time.Sleep(duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv-trace", "", "optional path to write a CSV trace of scheduler events")
	cmd.Flags().DurationVar(&duration, "duration", 500*time.Millisecond, "how long to let the demo run before exiting")

	return cmd
}

// runDemo submits a handful of representative tasks: equal-priority FIFO
// work, a higher-priority interrupt, and a deferred task, illustrating the
// ordering guarantees the core scheduler provides.
func runDemo(s *sched.Scheduler) {
	s.Schedule(sched.Normal, job.LogWork("normal-A"))
	s.Schedule(sched.Normal, job.LogWork("normal-B"))
	s.Schedule(sched.Normal, job.LogWork("normal-C"))
	s.Schedule(sched.Immediate, job.LogWork("immediate-interrupt"))
	s.Schedule(sched.Idle, job.LogWork("idle-background"))
	s.Schedule(sched.Normal, job.LogWork("deferred-normal"), sched.ScheduleOptions{DelayMS: 50})
	s.Schedule(sched.Normal, job.BusyWork(s, 6, 2))
}
