package stack

import (
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const ssmManagedInstanceCore = "arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore"

// InstanceRole is the identity attached to the server host.
type InstanceRole struct {
	Role    *iam.Role
	Profile *iam.InstanceProfile
}

// createInstanceRole creates the EC2 role and instance profile. With
// ssmAccess the role can be reached through Session Manager.
func (d *Deployment) createInstanceRole(ctx *pulumi.Context, inst *ComputeInstance) (*InstanceRole, error) {
	role, err := iam.NewRole(ctx, inst.ID+"-role", &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(`{
			"Version": "2012-10-17",
			"Statement": [{
				"Action": "sts:AssumeRole",
				"Principal": {
					"Service": "ec2.amazonaws.com"
				},
				"Effect": "Allow",
				"Sid": ""
			}]
		}`),
		Tags: nameTags(inst.ID + "-role"),
	}, d.opts()...)
	if err != nil {
		return nil, err
	}

	if inst.SSMAccess {
		_, err = iam.NewRolePolicyAttachment(ctx, inst.ID+"-ssm-policy", &iam.RolePolicyAttachmentArgs{
			Role:      role.Name,
			PolicyArn: pulumi.String(ssmManagedInstanceCore),
		}, d.opts()...)
		if err != nil {
			return nil, err
		}
	}

	profile, err := iam.NewInstanceProfile(ctx, inst.ID+"-profile", &iam.InstanceProfileArgs{
		Role: role.Name,
	}, d.opts()...)
	if err != nil {
		return nil, err
	}

	return &InstanceRole{Role: role, Profile: profile}, nil
}
