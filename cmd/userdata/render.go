package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minecraft-server-lab/internal/bootstrap"
	"minecraft-server-lab/internal/config"
	"minecraft-server-lab/internal/stack"
)

type renderOpts struct {
	extended bool
	encode   bool
	phase    string
}

func render(cmd *cobra.Command, opts renderOpts) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if opts.extended {
		cfg.OperatorCommands = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	script := stack.BootstrapScript(cfg)
	out := cmd.OutOrStdout()

	if opts.phase != "" {
		p, ok := script.Phase(opts.phase)
		if !ok {
			return fmt.Errorf("unknown phase %q, want one of %v", opts.phase, phaseNames(script))
		}
		_, err := fmt.Fprint(out, p.Render())
		return err
	}

	if opts.encode {
		_, err = fmt.Fprintln(out, script.Base64())
		return err
	}
	_, err = fmt.Fprint(out, script.Render())
	return err
}

func phaseNames(s bootstrap.Script) []string {
	var names []string
	for _, p := range s.Phases() {
		names = append(names, p.Name)
	}
	return names
}
