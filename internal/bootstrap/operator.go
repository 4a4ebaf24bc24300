package bootstrap

import (
	"fmt"
	"strings"
)

// OperatorCommand is a small wrapper script installed on the host for
// day-to-day administration.
type OperatorCommand struct {
	Name  string
	Usage string
	Body  []string
}

// Path returns where the command is installed.
func (c OperatorCommand) Path(opts Options) string {
	return opts.BinDir + "/" + c.Name
}

// Script returns the executable text of the command.
func (c OperatorCommand) Script() string {
	return strings.Join(c.Body, "\n") + "\n"
}

// OperatorCommandSet returns the four commands of the extended variant:
// mc-op, mc-status, mc-restart and mc-logs.
func OperatorCommandSet(opts Options) []OperatorCommand {
	unit := opts.unit()
	ops := opts.homePath("ops.txt")
	opUsage := "mc-op <username>"

	return []OperatorCommand{
		{
			Name:  "mc-op",
			Usage: opUsage,
			Body: []string{
				"#!/bin/bash",
				"set -e",
				`if [ "$#" -ne 1 ]; then`,
				fmt.Sprintf(`    echo "Usage: %s" >&2`, opUsage),
				"    exit 1",
				"fi",
				fmt.Sprintf(`echo "$1" >> %s`, ops),
				fmt.Sprintf("chown %s %s", opts.owner(), ops),
				"systemctl restart " + unit,
				`echo "Granted operator privileges to $1"`,
			},
		},
		{
			Name:  "mc-status",
			Usage: "mc-status",
			Body: []string{
				"#!/bin/bash",
				fmt.Sprintf("systemctl status %s --no-pager", unit),
				"echo",
				fmt.Sprintf("journalctl -u %s -n 10 --no-pager", unit),
			},
		},
		{
			Name:  "mc-restart",
			Usage: "mc-restart",
			Body: []string{
				"#!/bin/bash",
				"systemctl restart " + unit,
				"sleep 5",
				fmt.Sprintf("systemctl status %s --no-pager", unit),
			},
		},
		{
			Name:  "mc-logs",
			Usage: "mc-logs",
			Body: []string{
				"#!/bin/bash",
				fmt.Sprintf("journalctl -u %s -f", unit),
			},
		},
	}
}

// OperatorCommands installs every command from OperatorCommandSet, each
// written through a quoted heredoc and made executable right after.
func OperatorCommands(opts Options) Phase {
	var lines []string
	for _, c := range OperatorCommandSet(opts) {
		path := c.Path(opts)
		lines = append(lines, "# Usage: "+c.Usage)
		lines = append(lines, fmt.Sprintf("cat > %s << 'EOF'", path))
		lines = append(lines, c.Body...)
		lines = append(lines, "EOF", "chmod +x "+path)
	}

	return Phase{
		Name:    PhaseOperatorCommands,
		Comment: "Install operator commands",
		Lines:   lines,
	}
}
