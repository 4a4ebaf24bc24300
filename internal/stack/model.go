// Package stack describes the game server deployment as a graph of plain
// resource values and provisions that graph with the Pulumi AWS provider.
package stack

import (
	"errors"
	"fmt"
	"net/netip"

	"minecraft-server-lab/internal/bootstrap"
)

// ErrInvalidGraph is wrapped by every graph invariant violation.
var ErrInvalidGraph = errors.New("invalid resource graph")

// Resource is a node of the deployment graph.
type Resource interface {
	// LogicalID is the stable name of the resource, also used as the
	// Pulumi resource name.
	LogicalID() string
	// Dependencies lists the logical IDs this resource references.
	Dependencies() []string
}

type SubnetType string

const (
	SubnetPublic  SubnetType = "public"
	SubnetPrivate SubnetType = "private"
)

// SubnetConfig is repeated once per availability zone.
type SubnetConfig struct {
	Name     string
	Type     SubnetType
	CidrMask int
}

// Network is a VPC with one subnet per (config, availability zone).
type Network struct {
	ID          string
	CidrBlock   string
	MaxAZs      int
	NatGateways int
	Subnets     []SubnetConfig
}

func (n *Network) LogicalID() string      { return n.ID }
func (n *Network) Dependencies() []string { return nil }

// Validate enforces: at least one subnet, and with no NAT gateway every
// subnet must be public.
func (n *Network) Validate() error {
	if len(n.Subnets) == 0 {
		return fmt.Errorf("%w: network %s has no subnets", ErrInvalidGraph, n.ID)
	}
	if n.MaxAZs < 1 {
		return fmt.Errorf("%w: network %s needs at least one availability zone", ErrInvalidGraph, n.ID)
	}
	if n.NatGateways < 0 {
		return fmt.Errorf("%w: network %s has negative nat gateway count", ErrInvalidGraph, n.ID)
	}
	for _, s := range n.Subnets {
		if n.NatGateways == 0 && s.Type != SubnetPublic {
			return fmt.Errorf("%w: network %s subnet %s is %s but there is no nat gateway", ErrInvalidGraph, n.ID, s.Name, s.Type)
		}
	}
	return nil
}

// HasSubnetType reports whether any subnet config has type t.
func (n *Network) HasSubnetType(t SubnetType) bool {
	for _, s := range n.Subnets {
		if s.Type == t {
			return true
		}
	}
	return false
}

// SubnetBlock is one concrete subnet.
type SubnetBlock struct {
	Name      string
	Type      SubnetType
	AZIndex   int
	CidrBlock string
}

// SubnetBlocks carves the VPC range into consecutive blocks, config-major,
// for azCount availability zones.
func (n *Network) SubnetBlocks(azCount int) ([]SubnetBlock, error) {
	vpc, err := netip.ParsePrefix(n.CidrBlock)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", n.ID, err)
	}

	var blocks []SubnetBlock
	if !vpc.Addr().Is4() {
		return nil, fmt.Errorf("network %s: only IPv4 ranges are supported", n.ID)
	}
	cursor := ipToUint(vpc.Masked().Addr())
	for _, s := range n.Subnets {
		for az := 0; az < azCount; az++ {
			prefix, next, err := nextBlock(vpc, cursor, s.CidrMask)
			if err != nil {
				return nil, fmt.Errorf("network %s subnet %s: %w", n.ID, s.Name, err)
			}
			blocks = append(blocks, SubnetBlock{
				Name:      s.Name,
				Type:      s.Type,
				AZIndex:   az,
				CidrBlock: prefix.String(),
			})
			cursor = next
		}
	}
	return blocks, nil
}

// IngressRule permits inbound traffic on one port.
type IngressRule struct {
	SourceCidr  string
	Protocol    string
	Port        int
	Description string
}

// FirewallRuleSet is a security group bound to one network.
type FirewallRuleSet struct {
	ID               string
	NetworkID        string
	Description      string
	AllowAllOutbound bool
	Ingress          []IngressRule
}

func (f *FirewallRuleSet) LogicalID() string      { return f.ID }
func (f *FirewallRuleSet) Dependencies() []string { return []string{f.NetworkID} }

// Duplicates returns every rule that repeats the protocol and port of an
// earlier rule with an overlapping source. Unparseable sources only match
// identical strings.
func (f *FirewallRuleSet) Duplicates() []IngressRule {
	var dups []IngressRule
	for i, r := range f.Ingress {
		for _, prev := range f.Ingress[:i] {
			if r.Protocol == prev.Protocol && r.Port == prev.Port && sourcesOverlap(r.SourceCidr, prev.SourceCidr) {
				dups = append(dups, r)
				break
			}
		}
	}
	return dups
}

func sourcesOverlap(a, b string) bool {
	pa, errA := netip.ParsePrefix(a)
	pb, errB := netip.ParsePrefix(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return pa.Overlaps(pb)
}

// ImageRef selects a machine image. A non-empty ID pins it; otherwise the
// most recent image matching the filters is resolved at apply time, so two
// applies may pick different images.
type ImageRef struct {
	ID           string
	Owners       []string
	NameRegex    string
	Architecture string
}

// LatestAmazonLinux2023 matches the newest Amazon Linux 2023 image for arch.
func LatestAmazonLinux2023(arch string) ImageRef {
	return ImageRef{
		Owners:       []string{"amazon"},
		NameRegex:    fmt.Sprintf("^al2023-ami-2023.*-%s$", arch),
		Architecture: arch,
	}
}

func (i ImageRef) Pinned() bool { return i.ID != "" }

// ComputeInstance is the single game server host.
type ComputeInstance struct {
	ID           string
	NetworkID    string
	FirewallID   string
	SubnetType   SubnetType
	InstanceType string
	Image        ImageRef
	KeyName      string
	SSMAccess    bool
	UserData     bootstrap.Script
}

func (c *ComputeInstance) LogicalID() string { return c.ID }
func (c *ComputeInstance) Dependencies() []string {
	return []string{c.NetworkID, c.FirewallID}
}

// AttrPublicIP is the only instance attribute an output may reference. It
// resolves after apply.
const AttrPublicIP = "publicIp"

// Ref points at a runtime attribute of another resource.
type Ref struct {
	ResourceID string
	Attribute  string
}

// OutputValue is a stack output. When Parameter is set the value is also
// written to that SSM parameter.
type OutputValue struct {
	Name        string
	Description string
	Value       Ref
	Parameter   string
}

func (o *OutputValue) LogicalID() string      { return o.Name }
func (o *OutputValue) Dependencies() []string { return []string{o.Value.ResourceID} }
