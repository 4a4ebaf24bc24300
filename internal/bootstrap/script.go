// Package bootstrap renders the first-boot shell script attached to the game
// server instance as user data.
//
// A Script is an ordered list of named phases. Each phase is produced by its
// own builder function so its text can be inspected in isolation. The
// rendered script runs under `set -e`: the first failing command aborts the
// rest, and nothing is retried.
package bootstrap

import (
	"encoding/base64"
	"slices"
	"strings"
)

// Phase names, in the order New assembles them.
const (
	PhasePreamble         = "preamble"
	PhasePackageRefresh   = "package-refresh"
	PhaseJavaRuntime      = "java-runtime"
	PhaseServiceAccount   = "service-account"
	PhaseFetchArtifact    = "fetch-artifact"
	PhaseAcceptEULA       = "accept-eula"
	PhaseServerProperties = "server-properties"
	PhaseSystemdUnit      = "systemd-unit"
	PhaseEnableService    = "enable-service"
	PhaseOperatorCommands = "operator-commands"
)

// Phase is one named block of shell directives.
type Phase struct {
	Name    string
	Comment string
	Lines   []string
}

// Render returns the phase text, prefixed by its comment when set.
func (p Phase) Render() string {
	var b strings.Builder
	if p.Comment != "" {
		b.WriteString("# ")
		b.WriteString(p.Comment)
		b.WriteByte('\n')
	}
	for _, l := range p.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func (p Phase) clone() Phase {
	p.Lines = slices.Clone(p.Lines)
	return p
}

// Script is an immutable, ordered sequence of phases.
type Script struct {
	phases []Phase
}

// New assembles the script for opts. The operator command phase is only
// included when opts.OperatorCommands is set.
func New(opts Options) Script {
	phases := []Phase{
		Preamble(),
		PackageRefresh(),
		JavaRuntime(opts),
		ServiceAccount(opts),
		FetchArtifact(opts),
		AcceptEULA(opts),
		ServerProperties(opts),
		SystemdUnit(opts),
		EnableService(opts),
	}
	if opts.OperatorCommands {
		phases = append(phases, OperatorCommands(opts))
	}
	return Script{phases: phases}
}

// Phases returns a deep copy of the phases in order.
func (s Script) Phases() []Phase {
	out := make([]Phase, len(s.phases))
	for i, p := range s.phases {
		out[i] = p.clone()
	}
	return out
}

// Phase looks up a phase by name.
func (s Script) Phase(name string) (Phase, bool) {
	for _, p := range s.phases {
		if p.Name == name {
			return p.clone(), true
		}
	}
	return Phase{}, false
}

// Render returns the full script body with phases separated by a blank line.
func (s Script) Render() string {
	parts := make([]string, 0, len(s.phases))
	for _, p := range s.phases {
		parts = append(parts, p.Render())
	}
	return strings.Join(parts, "\n")
}

// Base64 returns the rendered script in the encoding EC2 expects on the wire.
func (s Script) Base64() string {
	return base64.StdEncoding.EncodeToString([]byte(s.Render()))
}

func (s Script) String() string {
	return s.Render()
}
