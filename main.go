package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"minecraft-server-lab/internal/config"
	"minecraft-server-lab/internal/stack"
)

func main() {
	pulumi.Run(program)
}

func program(ctx *pulumi.Context) error {
	// 1. Resolve settings from the environment and stack config
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// 2. Build the resource graph
	g, err := stack.Build(cfg)
	if err != nil {
		return err
	}

	// 3. Provision network, security group, instance and outputs
	_, err = stack.Apply(ctx, g, stack.Target{
		AccountID: cfg.AccountID,
		Region:    cfg.Region,
	})
	return err
}
