package main

import (
	"github.com/spf13/cobra"

	"handoff/pkg/status"
)

// rateFlags override the seeded success rates for a single command.
type rateFlags struct {
	build float64
	test  float64
}

func (r *rateFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&r.build, "build-rate", 0, "override the seeded build success rate")
	cmd.Flags().Float64Var(&r.test, "test-rate", 0, "override the seeded test success rate")
}

func (r *rateFlags) apply(cmd *cobra.Command, seed *status.Seed) error {
	if cmd.Flags().Changed("build-rate") {
		seed.BuildSuccessRate = r.build
	}
	if cmd.Flags().Changed("test-rate") {
		seed.TestSuccessRate = r.test
	}
	return seed.Validate() //nolint:wrapcheck // validation errors name the field
}

func newTriageCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "triage [errors...]",
		Short: "Ask the backend how to route a list of errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.coord.Triage(cmd.Context(), args)
			if err != nil {
				return err //nolint:wrapcheck // coordinator errors carry context
			}
			return writeJSON(cmd.OutOrStdout(), d)
		},
	}
}

func newDecideCmd(opts *globalOptions) *cobra.Command {
	rates := &rateFlags{}

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Ask the backend whether the success rates justify a commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := rates.apply(cmd, &cfg.Seed); err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.coord.Decide(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck // coordinator errors carry context
			}
			return writeJSON(cmd.OutOrStdout(), d)
		},
	}
	rates.register(cmd)
	return cmd
}
