package config

import (
	"errors"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	pulumiconfig "github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Load reads the environment and then applies the stack configuration in
// the minecraft-server namespace on top. The result is validated.
func Load(ctx *pulumi.Context) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}

	if err := ApplyStack(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("stack config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyStack overrides cfg with every key set in the stack configuration.
// Absent keys leave cfg untouched; a key that is set but does not parse is
// an error.
func ApplyStack(ctx *pulumi.Context, cfg *Config) error {
	o := &overrider{c: pulumiconfig.New(ctx, Namespace)}

	o.setString("accountId", &cfg.AccountID)
	o.setString("region", &cfg.Region)
	o.setString("name", &cfg.Name)
	o.setString("instanceType", &cfg.InstanceType)
	o.setString("vpcCidr", &cfg.VpcCidr)
	o.setInt("maxAzs", &cfg.MaxAZs)
	o.setInt("subnetCidrMask", &cfg.SubnetCidrMask)
	o.setInt("natGateways", &cfg.NatGateways)
	o.setInt("gamePort", &cfg.GamePort)
	o.setString("gameCidr", &cfg.GameCidr)
	o.setString("sshCidr", &cfg.SSHCidr)
	o.setString("keyPairName", &cfg.KeyPairName)
	o.setString("amiId", &cfg.AmiID)
	o.setString("javaPackage", &cfg.JavaPackage)
	o.setString("serverJarUrl", &cfg.ServerJarURL)
	o.setBool("operatorCommands", &cfg.OperatorCommands)
	o.setBool("ssmAccess", &cfg.SSMAccess)
	o.setString("addressParameter", &cfg.AddressParameter)

	if err := errors.Join(o.errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	ctx.Log.Debug(fmt.Sprintf("config: name=%s instanceType=%s region=%q", cfg.Name, cfg.InstanceType, cfg.Region), nil)
	return nil
}

// overrider copies set stack config keys into fields and collects parse
// failures.
type overrider struct {
	c    *pulumiconfig.Config
	errs []error
}

func (o *overrider) setString(key string, dst *string) {
	if v, err := o.c.Try(key); err == nil {
		*dst = v
	}
}

func (o *overrider) setInt(key string, dst *int) {
	if o.c.Get(key) == "" {
		return
	}
	v, err := o.c.TryInt(key)
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s.%s: %w", Namespace, key, err))
		return
	}
	*dst = v
}

func (o *overrider) setBool(key string, dst *bool) {
	if o.c.Get(key) == "" {
		return
	}
	v, err := o.c.TryBool(key)
	if err != nil {
		o.errs = append(o.errs, fmt.Errorf("%s.%s: %w", Namespace, key, err))
		return
	}
	*dst = v
}
