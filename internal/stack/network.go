package stack

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// NetworkResources holds the provisioned networking components.
type NetworkResources struct {
	Vpc               *ec2.Vpc
	InternetGateway   *ec2.InternetGateway
	PublicRouteTable  *ec2.RouteTable
	Subnets           map[SubnetType][]*ec2.Subnet
	AvailabilityZones []string

	// connectivity completes once public subnets route to the internet.
	// Instances depend on it so first-boot downloads can reach out.
	connectivity []pulumi.Resource
}

// provisionNetwork creates public subnets only. NAT gateways and the
// private subnets they would serve are not provisioned.
func (d *Deployment) provisionNetwork(ctx *pulumi.Context, n *Network) error {
	if n.NatGateways > 0 || n.HasSubnetType(SubnetPrivate) {
		return fmt.Errorf("network %s: nat gateways and private subnets are not supported", n.ID)
	}

	zones, err := aws.GetAvailabilityZones(ctx, &aws.GetAvailabilityZonesArgs{
		State: pulumi.StringRef("available"),
	}, d.invokeOpts...)
	if err != nil {
		return fmt.Errorf("list availability zones: %w", err)
	}
	if len(zones.Names) == 0 {
		return fmt.Errorf("no availability zones available")
	}
	azs := zones.Names
	if len(azs) > n.MaxAZs {
		azs = azs[:n.MaxAZs]
	}

	blocks, err := n.SubnetBlocks(len(azs))
	if err != nil {
		return err
	}

	// Create VPC
	vpc, err := ec2.NewVpc(ctx, n.ID, &ec2.VpcArgs{
		CidrBlock:          pulumi.String(n.CidrBlock),
		EnableDnsHostnames: pulumi.Bool(true),
		EnableDnsSupport:   pulumi.Bool(true),
		Tags:               nameTags(n.ID),
	}, d.opts()...)
	if err != nil {
		return err
	}

	res := &NetworkResources{
		Vpc:               vpc,
		Subnets:           make(map[SubnetType][]*ec2.Subnet),
		AvailabilityZones: azs,
	}

	igw, err := ec2.NewInternetGateway(ctx, n.ID+"-igw", &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags:  nameTags(n.ID + "-igw"),
	}, d.opts()...)
	if err != nil {
		return err
	}

	publicRouteTable, err := ec2.NewRouteTable(ctx, n.ID+"-public-rt", &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Routes: ec2.RouteTableRouteArray{
			&ec2.RouteTableRouteArgs{
				CidrBlock: pulumi.String("0.0.0.0/0"),
				GatewayId: igw.ID(),
			},
		},
		Tags: nameTags(n.ID + "-public-rt"),
	}, d.opts()...)
	if err != nil {
		return err
	}

	res.InternetGateway = igw
	res.PublicRouteTable = publicRouteTable
	res.connectivity = append(res.connectivity, igw, publicRouteTable)

	for _, b := range blocks {
		subnetName := fmt.Sprintf("%s-%s-subnet-%d", n.ID, strings.ToLower(b.Name), b.AZIndex+1)

		subnet, err := ec2.NewSubnet(ctx, subnetName, &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(b.CidrBlock),
			AvailabilityZone:    pulumi.String(azs[b.AZIndex]),
			MapPublicIpOnLaunch: pulumi.Bool(true),
			Tags:                nameTags(subnetName),
		}, d.opts()...)
		if err != nil {
			return err
		}

		assoc, err := ec2.NewRouteTableAssociation(ctx, subnetName+"-rt-assoc", &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: res.PublicRouteTable.ID(),
		}, d.opts()...)
		if err != nil {
			return err
		}

		res.Subnets[b.Type] = append(res.Subnets[b.Type], subnet)
		res.connectivity = append(res.connectivity, assoc)
	}

	ctx.Log.Info(fmt.Sprintf("Network %s spans %s", n.ID, strings.Join(azs, ", ")), nil)
	d.Networks[n.ID] = res
	return nil
}
