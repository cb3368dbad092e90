package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"handoff/pkg/audit"
	"handoff/pkg/coordinator"
	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// runReport is the JSON form of a finished run.
type runReport struct {
	RunID      string                 `json:"run_id"`
	Reason     string                 `json:"reason"`
	Iterations int                    `json:"iterations"`
	Final      status.Snapshot        `json:"final_status"`
	Rejected   *proto.RoutingDecision `json:"rejected,omitempty"`
	Log        []audit.Entry          `json:"log"`
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		maxIterations int
		asJSON        bool
		metricsDump   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the coordination loop until a terminal state or the iteration limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-iterations") {
				cfg.Loop.MaxIterations = maxIterations
			}
			if metricsDump {
				cfg.Metrics.Dump = true
			}

			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.coord.Run(cmd.Context(), cfg.Loop.MaxIterations)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				err = writeJSON(w, runReport{
					RunID:      out.RunID,
					Reason:     out.Reason.String(),
					Iterations: out.Iterations,
					Final:      out.Final,
					Rejected:   out.Rejected,
					Log:        out.Log,
				})
			} else {
				printOutcome(w, out)
			}
			if err != nil {
				return err
			}

			if cfg.Metrics.Dump && s.registry != nil {
				return dumpMetrics(cmd.ErrOrStderr(), s.registry)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxIterations, "max-iterations", "n", 0, "override loop.max_iterations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	cmd.Flags().BoolVar(&metricsDump, "metrics-dump", false, "print collected metrics to stderr after the run")
	return cmd
}

func printOutcome(w io.Writer, out *coordinator.Outcome) {
	fmt.Fprintf(w, "Run:        %s\n", out.RunID)
	fmt.Fprintf(w, "Reason:     %s\n", out.Reason)
	fmt.Fprintf(w, "Iterations: %d\n", out.Iterations)
	if out.Rejected != nil {
		fmt.Fprintf(w, "Rejected:   %s (%s)\n", out.Rejected.NextAgent, out.Rejected.Rationale)
	}

	fmt.Fprintln(w, "\nLog:")
	if len(out.Log) == 0 {
		fmt.Fprintln(w, "  (no iterations dispatched)")
	}
	for i := range out.Log {
		e := &out.Log[i]
		fmt.Fprintf(w, "  %2d. %-15s state=%-10s queue=%-14s errors=%d  %s\n",
			e.Iteration, e.Agent, e.Status.AIState, e.Status.AIQueueStatus, e.Status.ErrorCount, e.Decision.Rationale)
	}

	st := out.Final
	fmt.Fprintln(w, "\nFinal status:")
	fmt.Fprintf(w, "  last:      %s by %s -> %s\n", st.LastAction, st.LastAgent, st.LastResult)
	fmt.Fprintf(w, "  state:     %s / %s (handoff requested: %t)\n", st.AIState, st.AIQueueStatus, st.AIHandoffRequested)
	fmt.Fprintf(w, "  build:     %.2f\n", st.BuildSuccessRate)
	fmt.Fprintf(w, "  tests:     %.2f\n", st.TestSuccessRate)
	fmt.Fprintf(w, "  errors:    %d\n", st.ErrorCount)
	for _, e := range st.TopErrors {
		fmt.Fprintf(w, "    - %s\n", e)
	}
}
