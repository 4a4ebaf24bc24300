package stack

import (
	"fmt"

	"minecraft-server-lab/internal/bootstrap"
	"minecraft-server-lab/internal/config"
)

// BootstrapOptions maps the deployment config onto the script options.
func BootstrapOptions(cfg config.Config) bootstrap.Options {
	opts := bootstrap.DefaultOptions()
	opts.JavaPackage = cfg.JavaPackage
	opts.ArtifactURL = cfg.ServerJarURL
	opts.Properties.Port = cfg.GamePort
	opts.OperatorCommands = cfg.OperatorCommands
	return opts
}

// BootstrapScript returns the first-boot script for cfg.
func BootstrapScript(cfg config.Config) bootstrap.Script {
	return bootstrap.New(BootstrapOptions(cfg))
}

// BuildNetwork returns a VPC spread over cfg.MaxAZs zones with a single
// public subnet config and no NAT gateway.
func BuildNetwork(cfg config.Config) *Network {
	return &Network{
		ID:          cfg.Name + "-vpc",
		CidrBlock:   cfg.VpcCidr,
		MaxAZs:      cfg.MaxAZs,
		NatGateways: cfg.NatGateways,
		Subnets: []SubnetConfig{
			{Name: "Public", Type: SubnetPublic, CidrMask: cfg.SubnetCidrMask},
		},
	}
}

// BuildFirewallRuleSet opens the game port and SSH, outbound unrestricted.
func BuildFirewallRuleSet(cfg config.Config, network *Network) *FirewallRuleSet {
	return &FirewallRuleSet{
		ID:               cfg.Name + "-sg",
		NetworkID:        network.ID,
		Description:      "Security group for Minecraft server",
		AllowAllOutbound: true,
		Ingress: []IngressRule{
			{
				SourceCidr:  cfg.GameCidr,
				Protocol:    "tcp",
				Port:        cfg.GamePort,
				Description: "Minecraft server port",
			},
			{
				SourceCidr:  cfg.SSHCidr,
				Protocol:    "tcp",
				Port:        config.DefaultSSHPort,
				Description: "SSH access",
			},
		},
	}
}

// BuildComputeInstance places the server in a public subnet of network,
// guarded by firewall, running script on first boot.
func BuildComputeInstance(cfg config.Config, network *Network, firewall *FirewallRuleSet, script bootstrap.Script) *ComputeInstance {
	image := LatestAmazonLinux2023("arm64")
	image.ID = cfg.AmiID

	return &ComputeInstance{
		ID:           cfg.Name + "-server",
		NetworkID:    network.ID,
		FirewallID:   firewall.ID,
		SubnetType:   SubnetPublic,
		InstanceType: cfg.InstanceType,
		Image:        image,
		KeyName:      cfg.KeyPairName,
		SSMAccess:    cfg.SSMAccess,
		UserData:     script,
	}
}

// BuildOutputs exposes the public address of instance.
func BuildOutputs(cfg config.Config, instance *ComputeInstance) []*OutputValue {
	return []*OutputValue{
		{
			Name:        config.DefaultOutputName,
			Description: "Public IP address of the Minecraft server",
			Value:       Ref{ResourceID: instance.ID, Attribute: AttrPublicIP},
			Parameter:   cfg.AddressParameter,
		},
	}
}

// Build assembles the full deployment graph for cfg. Calling it twice with
// the same cfg yields structurally identical graphs.
func Build(cfg config.Config) (*Graph, error) {
	network := BuildNetwork(cfg)
	firewall := BuildFirewallRuleSet(cfg, network)
	instance := BuildComputeInstance(cfg, network, firewall, BootstrapScript(cfg))

	resources := []Resource{network, firewall, instance}
	for _, o := range BuildOutputs(cfg, instance) {
		resources = append(resources, o)
	}

	g, err := NewGraph(resources...)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}
