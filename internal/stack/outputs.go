package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ssm"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

func (d *Deployment) exportOutput(ctx *pulumi.Context, o *OutputValue) error {
	res, ok := d.Instances[o.Value.ResourceID]
	if !ok {
		return fmt.Errorf("instance %s not provisioned", o.Value.ResourceID)
	}

	if o.Value.Attribute != AttrPublicIP {
		return fmt.Errorf("unknown attribute %q", o.Value.Attribute)
	}
	value := res.Instance.PublicIp

	ctx.Export(o.Name, value)
	ctx.Log.Info(fmt.Sprintf("Exported %s: %s", o.Name, o.Description), nil)

	// Publish to SSM Parameter Store for hosts and scripts that cannot read
	// stack outputs
	if o.Parameter != "" {
		_, err := ssm.NewParameter(ctx, o.Name+"-param", &ssm.ParameterArgs{
			Name:        pulumi.String(o.Parameter),
			Type:        pulumi.String("String"),
			Value:       value,
			Description: pulumi.String(o.Description),
			Tags:        nameTags(o.Name),
		}, d.opts()...)
		if err != nil {
			return err
		}
	}

	d.Outputs[o.Name] = value
	return nil
}
