package stack

import (
	"sync"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	tokInstance      = "aws:ec2/instance:Instance"
	tokSecurityGroup = "aws:ec2/securityGroup:SecurityGroup"
	tokSubnet        = "aws:ec2/subnet:Subnet"
	tokVpc           = "aws:ec2/vpc:Vpc"
	tokIGW           = "aws:ec2/internetGateway:InternetGateway"
	tokRouteTable    = "aws:ec2/routeTable:RouteTable"
	tokRTAssoc       = "aws:ec2/routeTableAssociation:RouteTableAssociation"
	tokRole          = "aws:iam/role:Role"
	tokAttachment    = "aws:iam/rolePolicyAttachment:RolePolicyAttachment"
	tokProfile       = "aws:iam/instanceProfile:InstanceProfile"
	tokParameter     = "aws:ssm/parameter:Parameter"
	tokAWSProvider   = "pulumi:providers:aws"

	getAmiToken   = "aws:ec2/getAmi:getAmi"
	getZonesToken = "aws:index/getAvailabilityZones:getAvailabilityZones"

	mockImageID  = "ami-0123456789abcdef0"
	mockPublicIP = "203.0.113.10"
)

// recordingMocks captures every registered resource and invoke so tests can
// assert on the inputs handed to the provider.
type recordingMocks struct {
	mu        sync.Mutex
	resources []pulumi.MockResourceArgs
	calls     []string
	zones     []interface{}
}

func newRecordingMocks() *recordingMocks {
	return &recordingMocks{
		zones: []interface{}{"us-east-1a", "us-east-1b", "us-east-1c"},
	}
}

func (m *recordingMocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.resources = append(m.resources, args)
	m.mu.Unlock()

	outputs := args.Inputs.Copy()
	switch args.TypeToken {
	case tokInstance:
		outputs["publicIp"] = resource.NewStringProperty(mockPublicIP)
		outputs["publicDns"] = resource.NewStringProperty("ec2-203-0-113-10.compute-1.amazonaws.com")
	case tokRole, tokProfile:
		outputs["name"] = resource.NewStringProperty(args.Name)
	}
	return args.Name + "_id", outputs, nil
}

func (m *recordingMocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	m.mu.Lock()
	m.calls = append(m.calls, args.Token)
	m.mu.Unlock()

	switch args.Token {
	case getZonesToken:
		return resource.NewPropertyMapFromMap(map[string]interface{}{
			"id":    "us-east-1",
			"names": m.zones,
		}), nil
	case getAmiToken:
		return resource.NewPropertyMapFromMap(map[string]interface{}{
			"id":           mockImageID,
			"architecture": "arm64",
			"name":         "al2023-ami-2023.6.20241010.0-kernel-6.1-arm64",
		}), nil
	}
	return resource.PropertyMap{}, nil
}

func (m *recordingMocks) byType(token string) []pulumi.MockResourceArgs {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []pulumi.MockResourceArgs
	for _, r := range m.resources {
		if r.TypeToken == token {
			out = append(out, r)
		}
	}
	return out
}

func (m *recordingMocks) callCount(token string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == token {
			n++
		}
	}
	return n
}
