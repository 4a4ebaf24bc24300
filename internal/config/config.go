// Package config holds the explicit deployment settings handed to the graph
// builder. Values come from three layers, lowest priority first: built-in
// defaults, environment variables, and the Pulumi stack configuration.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"

	"github.com/caarlos0/env/v11"
)

// Namespace is the Pulumi configuration namespace read by Load.
const Namespace = "minecraft-server"

const (
	DefaultName           = "minecraft"
	DefaultInstanceType   = "t4g.small"
	DefaultVpcCidr        = "10.0.0.0/16"
	DefaultMaxAZs         = 2
	DefaultSubnetCidrMask = 24
	DefaultGamePort       = 25565
	DefaultSSHPort        = 22
	DefaultIngressCidr    = "0.0.0.0/0"
	DefaultJavaPackage    = "java-21-amazon-corretto-headless"
	DefaultServerJarURL   = "https://piston-data.mojang.com/v1/objects/4707d00eb834b446575d89a61a11b5d548d8c001/server.jar"
	DefaultOutputName     = "minecraftServerIp"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var accountIDPattern = regexp.MustCompile(`^[0-9]{12}$`)

// Config is the complete input to the resource graph builder.
//
// AccountID and Region are optional. When both are empty the stack is
// environment-agnostic and the ambient AWS provider configuration applies.
type Config struct {
	AccountID string `env:"AWS_ACCOUNT_ID"`
	Region    string `env:"AWS_REGION"`

	Name           string `env:"MINECRAFT_NAME"             envDefault:"minecraft"`
	InstanceType   string `env:"MINECRAFT_INSTANCE_TYPE"    envDefault:"t4g.small"`
	VpcCidr        string `env:"MINECRAFT_VPC_CIDR"         envDefault:"10.0.0.0/16"`
	MaxAZs         int    `env:"MINECRAFT_MAX_AZS"          envDefault:"2"`
	SubnetCidrMask int    `env:"MINECRAFT_SUBNET_CIDR_MASK" envDefault:"24"`
	NatGateways    int    `env:"MINECRAFT_NAT_GATEWAYS"     envDefault:"0"`
	GamePort       int    `env:"MINECRAFT_GAME_PORT"        envDefault:"25565"`
	GameCidr       string `env:"MINECRAFT_GAME_CIDR"        envDefault:"0.0.0.0/0"`
	SSHCidr        string `env:"MINECRAFT_SSH_CIDR"         envDefault:"0.0.0.0/0"`

	// KeyPairName is an existing EC2 key pair. Empty launches without one.
	KeyPairName string `env:"MINECRAFT_KEY_PAIR_NAME"`
	// AmiID pins the machine image. Empty resolves the most recent
	// Amazon Linux 2023 arm64 image at apply time.
	AmiID string `env:"MINECRAFT_AMI_ID"`

	JavaPackage  string `env:"MINECRAFT_JAVA_PACKAGE"   envDefault:"java-21-amazon-corretto-headless"`
	ServerJarURL string `env:"MINECRAFT_SERVER_JAR_URL" envDefault:"https://piston-data.mojang.com/v1/objects/4707d00eb834b446575d89a61a11b5d548d8c001/server.jar"`

	// OperatorCommands selects the extended bootstrap variant.
	OperatorCommands bool `env:"MINECRAFT_OPERATOR_COMMANDS" envDefault:"false"`
	// SSMAccess attaches AmazonSSMManagedInstanceCore to the instance role.
	SSMAccess bool `env:"MINECRAFT_SSM_ACCESS" envDefault:"false"`
	// AddressParameter, when set, publishes the public IP to this SSM
	// parameter name.
	AddressParameter string `env:"MINECRAFT_ADDRESS_PARAMETER"`
}

// Default returns the built-in configuration without consulting the
// environment.
func Default() Config {
	return Config{
		Name:           DefaultName,
		InstanceType:   DefaultInstanceType,
		VpcCidr:        DefaultVpcCidr,
		MaxAZs:         DefaultMaxAZs,
		SubnetCidrMask: DefaultSubnetCidrMask,
		GamePort:       DefaultGamePort,
		GameCidr:       DefaultIngressCidr,
		SSHCidr:        DefaultIngressCidr,
		JavaPackage:    DefaultJavaPackage,
		ServerJarURL:   DefaultServerJarURL,
	}
}

// FromEnv parses the process environment on top of the defaults.
func FromEnv() (Config, error) {
	return parse(env.Options{})
}

// FromEnvironment parses the given variables instead of the process
// environment.
func FromEnvironment(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the graph builder relies on.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	}
	if c.InstanceType == "" {
		return fmt.Errorf("%w: instance type must not be empty", ErrInvalidConfig)
	}
	if c.AccountID != "" && !accountIDPattern.MatchString(c.AccountID) {
		return fmt.Errorf("%w: account id %q must be 12 digits", ErrInvalidConfig, c.AccountID)
	}

	vpc, err := netip.ParsePrefix(c.VpcCidr)
	if err != nil {
		return fmt.Errorf("%w: vpc cidr: %w", ErrInvalidConfig, err)
	}
	if !vpc.Addr().Is4() {
		return fmt.Errorf("%w: vpc cidr %s is not IPv4", ErrInvalidConfig, c.VpcCidr)
	}
	if c.SubnetCidrMask <= vpc.Bits() || c.SubnetCidrMask > 28 {
		return fmt.Errorf("%w: subnet mask /%d does not fit inside %s", ErrInvalidConfig, c.SubnetCidrMask, c.VpcCidr)
	}
	if c.MaxAZs < 1 {
		return fmt.Errorf("%w: max AZs must be at least 1, got %d", ErrInvalidConfig, c.MaxAZs)
	}
	if c.MaxAZs > 1<<(c.SubnetCidrMask-vpc.Bits()) {
		return fmt.Errorf("%w: %d subnets of /%d do not fit in %s", ErrInvalidConfig, c.MaxAZs, c.SubnetCidrMask, c.VpcCidr)
	}
	if c.NatGateways != 0 {
		return fmt.Errorf("%w: nat gateways are not supported without private subnets, got %d", ErrInvalidConfig, c.NatGateways)
	}
	if c.GamePort < 1 || c.GamePort > 65535 {
		return fmt.Errorf("%w: game port %d out of range", ErrInvalidConfig, c.GamePort)
	}
	if c.GamePort == DefaultSSHPort {
		return fmt.Errorf("%w: game port must differ from the ssh port", ErrInvalidConfig)
	}
	for name, cidr := range map[string]string{"game": c.GameCidr, "ssh": c.SSHCidr} {
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			return fmt.Errorf("%w: %s cidr: %w", ErrInvalidConfig, name, err)
		}
		// Security group rules only take IPv4 sources.
		if !p.Addr().Is4() {
			return fmt.Errorf("%w: %s cidr %s is not IPv4", ErrInvalidConfig, name, cidr)
		}
	}
	if c.JavaPackage == "" {
		return fmt.Errorf("%w: java package must not be empty", ErrInvalidConfig)
	}
	if c.ServerJarURL == "" {
		return fmt.Errorf("%w: server jar url must not be empty", ErrInvalidConfig)
	}
	return nil
}
