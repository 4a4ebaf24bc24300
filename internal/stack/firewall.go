package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

func (d *Deployment) provisionFirewall(ctx *pulumi.Context, f *FirewallRuleSet) error {
	network, ok := d.Networks[f.NetworkID]
	if !ok {
		return fmt.Errorf("network %s not provisioned", f.NetworkID)
	}

	for _, dup := range f.Duplicates() {
		ctx.Log.Warn(fmt.Sprintf("Security group %s: rule %q repeats %s/%d from an overlapping source %s",
			f.ID, dup.Description, dup.Protocol, dup.Port, dup.SourceCidr), nil)
	}

	ingress := ec2.SecurityGroupIngressArray{}
	for _, r := range f.Ingress {
		ingress = append(ingress, &ec2.SecurityGroupIngressArgs{
			Protocol:    pulumi.String(r.Protocol),
			FromPort:    pulumi.Int(r.Port),
			ToPort:      pulumi.Int(r.Port),
			CidrBlocks:  pulumi.StringArray{pulumi.String(r.SourceCidr)},
			Description: pulumi.String(r.Description),
		})
	}

	egress := ec2.SecurityGroupEgressArray{}
	if f.AllowAllOutbound {
		egress = append(egress, &ec2.SecurityGroupEgressArgs{
			Protocol:    pulumi.String("-1"),
			FromPort:    pulumi.Int(0),
			ToPort:      pulumi.Int(0),
			CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
			Description: pulumi.String("Allow all outbound traffic"),
		})
	}

	securityGroup, err := ec2.NewSecurityGroup(ctx, f.ID, &ec2.SecurityGroupArgs{
		VpcId:       network.Vpc.ID(),
		Description: pulumi.String(f.Description),
		Ingress:     ingress,
		Egress:      egress,
		Tags:        nameTags(f.ID),
	}, d.opts()...)
	if err != nil {
		return err
	}

	d.Firewalls[f.ID] = securityGroup
	return nil
}
