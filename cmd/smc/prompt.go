package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"handoff/pkg/coordinator"
	"handoff/pkg/prompt"
	"handoff/pkg/workers"
)

func newPromptCmd(opts *globalOptions) *cobra.Command {
	rates := &rateFlags{}

	cmd := &cobra.Command{
		Use:       "prompt routing|triage|final [errors...]",
		Short:     "Print the encoded decision prompt for the configured status",
		Long:      "Print the JSON prompt a decision backend would receive. Triage uses the given errors, or the seeded errors when none are given.",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"routing", "triage", "final"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := rates.apply(cmd, &cfg.Seed); err != nil {
				return err
			}

			// Prompts never reach a backend, so the fallback is enough here.
			c := coordinator.New(coordinator.WithSeed(cfg.Seed))
			if err := workers.RegisterAll(c, cfg.Workers...); err != nil {
				return err //nolint:wrapcheck // already descriptive
			}
			st := c.Status()

			var p prompt.Prompt
			switch args[0] {
			case "routing":
				p = prompt.Routing(st, c.AvailableAgents())
			case "triage":
				errs := args[1:]
				if len(errs) == 0 {
					errs = st.TopErrors
				}
				p = prompt.Triage(errs)
			case "final":
				p = prompt.Final(st.BuildSuccessRate, st.TestSuccessRate)
			default:
				return fmt.Errorf("unknown prompt %q: want routing, triage or final", args[0])
			}

			text, err := p.Encode()
			if err != nil {
				return fmt.Errorf("failed to encode prompt: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err //nolint:wrapcheck // write errors passed through
		},
	}
	rates.register(cmd)
	return cmd
}
