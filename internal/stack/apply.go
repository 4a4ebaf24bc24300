package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Target pins the AWS account and region. Both are optional; with neither
// set the default provider and its stack configuration are used.
type Target struct {
	AccountID string
	Region    string
}

// Deployment holds the provisioned handles keyed by logical ID.
type Deployment struct {
	Provider  *aws.Provider
	Networks  map[string]*NetworkResources
	Firewalls map[string]*ec2.SecurityGroup
	Instances map[string]*InstanceResources
	Outputs   map[string]pulumi.StringOutput

	resourceOpts []pulumi.ResourceOption
	invokeOpts   []pulumi.InvokeOption
}

// Apply validates g and provisions every node in topological order.
func Apply(ctx *pulumi.Context, g *Graph, target Target) (*Deployment, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	d := &Deployment{
		Networks:  make(map[string]*NetworkResources),
		Firewalls: make(map[string]*ec2.SecurityGroup),
		Instances: make(map[string]*InstanceResources),
		Outputs:   make(map[string]pulumi.StringOutput),
	}

	if target.AccountID != "" || target.Region != "" {
		if err := d.pinProvider(ctx, target); err != nil {
			return nil, err
		}
	}

	for _, r := range g.Resources() {
		ctx.Log.Info(fmt.Sprintf("Provisioning %s", r.LogicalID()), nil)

		var err error
		switch res := r.(type) {
		case *Network:
			err = d.provisionNetwork(ctx, res)
		case *FirewallRuleSet:
			err = d.provisionFirewall(ctx, res)
		case *ComputeInstance:
			err = d.provisionInstance(ctx, res)
		case *OutputValue:
			err = d.exportOutput(ctx, res)
		default:
			err = fmt.Errorf("no provisioner for %T", r)
		}
		if err != nil {
			return nil, fmt.Errorf("provision %s: %w", r.LogicalID(), err)
		}
	}

	return d, nil
}

func (d *Deployment) pinProvider(ctx *pulumi.Context, target Target) error {
	args := &aws.ProviderArgs{}
	if target.Region != "" {
		args.Region = pulumi.String(target.Region)
	}
	if target.AccountID != "" {
		args.AllowedAccountIds = pulumi.StringArray{pulumi.String(target.AccountID)}
	}

	provider, err := aws.NewProvider(ctx, "aws-pinned", args)
	if err != nil {
		return fmt.Errorf("pin aws provider: %w", err)
	}

	d.Provider = provider
	d.resourceOpts = []pulumi.ResourceOption{pulumi.Provider(provider)}
	d.invokeOpts = []pulumi.InvokeOption{pulumi.Provider(provider)}
	return nil
}

func (d *Deployment) opts(extra ...pulumi.ResourceOption) []pulumi.ResourceOption {
	return append(append([]pulumi.ResourceOption{}, d.resourceOpts...), extra...)
}

func nameTags(name string) pulumi.StringMap {
	return pulumi.StringMap{
		"Name": pulumi.String(name),
	}
}
