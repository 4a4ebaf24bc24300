package stack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minecraft-server-lab/internal/bootstrap"
	"minecraft-server-lab/internal/config"
)

func TestBuildNetwork(t *testing.T) {
	t.Parallel()

	n := BuildNetwork(config.Default())

	assert.Equal(t, "minecraft-vpc", n.ID)
	assert.Equal(t, 2, n.MaxAZs)
	assert.Zero(t, n.NatGateways)
	assert.Equal(t, []SubnetConfig{{Name: "Public", Type: SubnetPublic, CidrMask: 24}}, n.Subnets)
	assert.NoError(t, n.Validate())
}

func TestBuildFirewallRuleSet(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	fw := BuildFirewallRuleSet(cfg, BuildNetwork(cfg))

	assert.Equal(t, "minecraft-vpc", fw.NetworkID)
	assert.True(t, fw.AllowAllOutbound)
	require.Len(t, fw.Ingress, 2)

	ports := map[int]IngressRule{}
	for _, r := range fw.Ingress {
		ports[r.Port] = r
		assert.Equal(t, "tcp", r.Protocol)
		assert.Equal(t, "0.0.0.0/0", r.SourceCidr)
		assert.NotEmpty(t, r.Description)
	}
	assert.Contains(t, ports, 22)
	assert.Contains(t, ports, 25565)
	assert.Empty(t, fw.Duplicates())
}

func TestBuildComputeInstance(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	network := BuildNetwork(cfg)
	fw := BuildFirewallRuleSet(cfg, network)
	script := bootstrap.New(bootstrap.DefaultOptions())

	inst := BuildComputeInstance(cfg, network, fw, script)

	assert.Equal(t, "minecraft-server", inst.ID)
	assert.Equal(t, "t4g.small", inst.InstanceType)
	assert.Equal(t, SubnetPublic, inst.SubnetType)
	assert.Equal(t, network.ID, inst.NetworkID)
	assert.Equal(t, fw.ID, inst.FirewallID)
	assert.False(t, inst.Image.Pinned())
	assert.Equal(t, "arm64", inst.Image.Architecture)
	assert.Equal(t, script.Render(), inst.UserData.Render())
	assert.Equal(t, []string{network.ID, fw.ID}, inst.Dependencies())
}

func TestBuildComputeInstance_PinnedImage(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.AmiID = "ami-0pinned"
	network := BuildNetwork(cfg)
	inst := BuildComputeInstance(cfg, network, BuildFirewallRuleSet(cfg, network), BootstrapScript(cfg))

	assert.True(t, inst.Image.Pinned())
	assert.Equal(t, "ami-0pinned", inst.Image.ID)
}

func TestBuildOutputs(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	network := BuildNetwork(cfg)
	inst := BuildComputeInstance(cfg, network, BuildFirewallRuleSet(cfg, network), BootstrapScript(cfg))

	outputs := BuildOutputs(cfg, inst)
	require.Len(t, outputs, 1)
	assert.Equal(t, "minecraftServerIp", outputs[0].Name)
	assert.NotEmpty(t, outputs[0].Description)
	assert.Equal(t, Ref{ResourceID: inst.ID, Attribute: AttrPublicIP}, outputs[0].Value)
	assert.Empty(t, outputs[0].Parameter)
}

func TestBootstrapScript_FollowsConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.JavaPackage = "java-17-amazon-corretto-headless"
	cfg.GamePort = 25575
	cfg.OperatorCommands = true

	body := BootstrapScript(cfg).Render()
	assert.Contains(t, body, "dnf install -y java-17-amazon-corretto-headless")
	assert.Contains(t, body, "server-port=25575")
	assert.Equal(t, 4, strings.Count(body, "chmod +x "))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	g, err := Build(config.Default())
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, []string{"minecraft-vpc", "minecraft-sg", "minecraft-server", "minecraftServerIp"}, g.Order())

	deps, err := g.Dependencies("minecraft-server")
	require.NoError(t, err)
	assert.Equal(t, []string{"minecraft-sg", "minecraft-vpc"}, deps)
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	first, err := Build(cfg)
	require.NoError(t, err)
	second, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Order(), second.Order())
	assert.Equal(t, first.Resources(), second.Resources())
	for _, id := range first.Order() {
		a, _ := first.Dependencies(id)
		b, _ := second.Dependencies(id)
		assert.Equal(t, a, b, id)
	}
}
