package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// InstanceResources holds the provisioned server host.
type InstanceResources struct {
	Instance *ec2.Instance
	Role     *InstanceRole
	// ImageID is the AMI chosen for this apply.
	ImageID string
}

func (d *Deployment) provisionInstance(ctx *pulumi.Context, inst *ComputeInstance) error {
	network, ok := d.Networks[inst.NetworkID]
	if !ok {
		return fmt.Errorf("network %s not provisioned", inst.NetworkID)
	}
	securityGroup, ok := d.Firewalls[inst.FirewallID]
	if !ok {
		return fmt.Errorf("firewall %s not provisioned", inst.FirewallID)
	}
	subnets := network.Subnets[inst.SubnetType]
	if len(subnets) == 0 {
		return fmt.Errorf("network %s has no %s subnet", inst.NetworkID, inst.SubnetType)
	}

	imageID, err := d.resolveImage(ctx, inst.Image)
	if err != nil {
		return err
	}

	role, err := d.createInstanceRole(ctx, inst)
	if err != nil {
		return err
	}

	args := &ec2.InstanceArgs{
		Ami:                      pulumi.String(imageID),
		InstanceType:             pulumi.String(inst.InstanceType),
		SubnetId:                 subnets[0].ID(),
		VpcSecurityGroupIds:      pulumi.StringArray{securityGroup.ID()},
		AssociatePublicIpAddress: pulumi.Bool(inst.SubnetType == SubnetPublic),
		IamInstanceProfile:       role.Profile.Name,
		UserData:                 pulumi.String(inst.UserData.Render()),
		Tags:                     nameTags(inst.ID),
	}
	if inst.KeyName != "" {
		args.KeyName = pulumi.String(inst.KeyName)
	}

	instance, err := ec2.NewInstance(ctx, inst.ID, args, d.opts(pulumi.DependsOn(network.connectivity))...)
	if err != nil {
		return err
	}

	d.Instances[inst.ID] = &InstanceResources{
		Instance: instance,
		Role:     role,
		ImageID:  imageID,
	}
	return nil
}

// resolveImage returns the pinned AMI or looks up the most recent match.
func (d *Deployment) resolveImage(ctx *pulumi.Context, img ImageRef) (string, error) {
	if img.Pinned() {
		return img.ID, nil
	}

	ami, err := ec2.LookupAmi(ctx, &ec2.LookupAmiArgs{
		Owners:     img.Owners,
		MostRecent: pulumi.BoolRef(true),
		NameRegex:  pulumi.StringRef(img.NameRegex),
		Filters: []ec2.GetAmiFilter{
			{
				Name:   "architecture",
				Values: []string{img.Architecture},
			},
			{
				Name:   "root-device-type",
				Values: []string{"ebs"},
			},
			{
				Name:   "virtualization-type",
				Values: []string{"hvm"},
			},
		},
	}, d.invokeOpts...)
	if err != nil {
		return "", fmt.Errorf("look up image %s: %w", img.NameRegex, err)
	}

	ctx.Log.Info(fmt.Sprintf("Resolved latest image %s; pin amiId for repeatable applies", ami.Id), nil)
	return ami.Id, nil
}
