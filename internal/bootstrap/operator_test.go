package bootstrap

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorCommandSet(t *testing.T) {
	t.Parallel()

	var names []string
	for _, c := range OperatorCommandSet(DefaultOptions()) {
		names = append(names, c.Name)
		assert.Equal(t, "#!/bin/bash", c.Body[0], c.Name)
	}
	assert.Equal(t, []string{"mc-op", "mc-status", "mc-restart", "mc-logs"}, names)
}

func TestOperatorCommands_UsageComments(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	p := OperatorCommands(opts)
	for _, c := range OperatorCommandSet(opts) {
		assert.Contains(t, p.Lines, "# Usage: "+c.Usage, c.Name)
	}
	assert.Contains(t, p.Lines, "# Usage: mc-op <username>")
}

func TestNew_ExtendedInstallsFourExecutables(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.OperatorCommands = true
	s := New(opts)

	p, ok := s.Phase(PhaseOperatorCommands)
	require.True(t, ok)

	// Each body ends with the heredoc terminator and is immediately made
	// executable.
	var installed []string
	for i, line := range p.Lines {
		if !strings.HasPrefix(line, "chmod +x ") {
			continue
		}
		require.Positive(t, i)
		assert.Equal(t, "EOF", p.Lines[i-1])
		installed = append(installed, strings.TrimPrefix(line, "chmod +x "))
	}
	assert.Equal(t, []string{
		"/usr/local/bin/mc-op",
		"/usr/local/bin/mc-status",
		"/usr/local/bin/mc-restart",
		"/usr/local/bin/mc-logs",
	}, installed)

	body := s.Render()
	assert.Equal(t, 4, strings.Count(body, "chmod +x "))
	assert.Greater(t, strings.Index(body, "mc-op"), strings.Index(body, "systemctl start minecraft.service"))
}

func TestOperatorCommands_Contents(t *testing.T) {
	t.Parallel()

	cmds := map[string]string{}
	for _, c := range OperatorCommandSet(DefaultOptions()) {
		cmds[c.Name] = c.Script()
	}

	assert.Contains(t, cmds["mc-op"], `echo "$1" >> /opt/minecraft/ops.txt`)
	assert.Contains(t, cmds["mc-op"], "systemctl restart minecraft.service")
	assert.Contains(t, cmds["mc-status"], "journalctl -u minecraft.service -n 10 --no-pager")
	assert.Contains(t, cmds["mc-restart"], "systemctl restart minecraft.service\nsleep 5\nsystemctl status")
	assert.Contains(t, cmds["mc-logs"], "journalctl -u minecraft.service -f")
}

func TestMcOp_RequiresUsername(t *testing.T) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not available")
	}

	var op OperatorCommand
	for _, c := range OperatorCommandSet(DefaultOptions()) {
		if c.Name == "mc-op" {
			op = c
		}
	}
	require.Equal(t, "mc-op", op.Name)

	path := filepath.Join(t.TempDir(), op.Name)
	require.NoError(t, os.WriteFile(path, []byte(op.Script()), 0o755))

	for _, args := range [][]string{nil, {"alice", "bob"}} {
		var stderr bytes.Buffer
		cmd := exec.Command(bash, append([]string{path}, args...)...)
		cmd.Stderr = &stderr

		err := cmd.Run()
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "args %v: expected non-zero exit, got %v", args, err)
		assert.Equal(t, 1, exitErr.ExitCode())
		assert.Contains(t, stderr.String(), "Usage: mc-op <username>")
	}
}
