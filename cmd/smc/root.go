package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"handoff/pkg/config"
	"handoff/pkg/logx"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	scriptPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "smc",
		Short: "Small-model coordinator for autonomous agent handoff",
		Long: `smc coordinates handoff among build, fix, test and finalize workers.
Every decision is a constrained JSON request answered by a small model,
a scripted reply file, or the built-in deterministic policy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logx.SetOutput(cmd.ErrOrStderr())
			if opts.debug {
				logx.SetDebug(true)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.DefaultConfigFile+" when present)")
	flags.StringVar(&opts.scriptPath, "script", "", "file of scripted backend replies, one JSON object per line")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(opts),
		newPromptCmd(opts),
		newTriageCmd(opts),
		newDecideCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the config file and applies the --script override.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			path = config.DefaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // config errors are already descriptive
	}

	if o.scriptPath != "" {
		replies, err := readScript(o.scriptPath)
		if err != nil {
			return nil, err
		}
		cfg.Backend.Provider = config.ProviderScript
		cfg.Backend.Script = replies
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

// readScript loads one reply per non-blank line. Lines starting with # are skipped.
func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	var replies []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		replies = append(replies, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	if len(replies) == 0 {
		return nil, errors.New("script " + path + " has no replies")
	}
	return replies, nil
}
