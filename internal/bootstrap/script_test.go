package bootstrap

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BasePhaseOrder(t *testing.T) {
	t.Parallel()

	s := New(DefaultOptions())

	var names []string
	for _, p := range s.Phases() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		PhasePreamble,
		PhasePackageRefresh,
		PhaseJavaRuntime,
		PhaseServiceAccount,
		PhaseFetchArtifact,
		PhaseAcceptEULA,
		PhaseServerProperties,
		PhaseSystemdUnit,
		PhaseEnableService,
	}, names)

	_, ok := s.Phase(PhaseOperatorCommands)
	assert.False(t, ok)
}

func TestRender_MarkersInOrder(t *testing.T) {
	t.Parallel()

	body := New(DefaultOptions()).Render()

	markers := []string{
		"java-21-amazon-corretto-headless",
		"useradd -r -m -U -d /opt/minecraft",
		"wget -O server.jar https://piston-data.mojang.com/",
		"eula=true",
		"server.properties",
		"Restart=always",
		"systemctl enable minecraft.service",
		"systemctl start minecraft.service",
	}

	last := -1
	for _, m := range markers {
		idx := strings.Index(body, m)
		require.NotEqual(t, -1, idx, "missing %q", m)
		assert.Greater(t, idx, last, "%q out of order", m)
		last = idx
	}
}

func TestRender_FailFast(t *testing.T) {
	t.Parallel()

	body := New(DefaultOptions()).Render()
	assert.True(t, strings.HasPrefix(body, "#!/bin/bash\nset -e\n"))
}

func TestBase64_RoundTrip(t *testing.T) {
	t.Parallel()

	s := New(DefaultOptions())
	decoded, err := base64.StdEncoding.DecodeString(s.Base64())
	require.NoError(t, err)
	assert.Equal(t, s.Render(), string(decoded))
}

func TestPhases_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New(DefaultOptions())
	before := s.Render()
	phases := s.Phases()
	phases[0].Name = "mutated"
	phases[1].Lines[0] = "rm -rf /"

	assert.Equal(t, PhasePreamble, s.Phases()[0].Name)
	assert.Equal(t, before, s.Render())

	p, ok := s.Phase(PhasePackageRefresh)
	require.True(t, ok)
	p.Lines[0] = "rm -rf /"
	assert.Equal(t, before, s.Render())
	assert.NotContains(t, s.Render(), "rm -rf /")
}

func TestNew_Deterministic(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.OperatorCommands = true
	assert.Equal(t, New(opts).Render(), New(opts).Render())
}
