package bootstrap

import (
	"fmt"
	"strconv"
)

// Preamble selects bash and turns on fail-fast.
func Preamble() Phase {
	return Phase{
		Name:  PhasePreamble,
		Lines: []string{"#!/bin/bash", "set -e"},
	}
}

func PackageRefresh() Phase {
	return Phase{
		Name:    PhasePackageRefresh,
		Comment: "Update system packages",
		Lines:   []string{"dnf update -y"},
	}
}

func JavaRuntime(opts Options) Phase {
	return Phase{
		Name:    PhaseJavaRuntime,
		Comment: "Install the Java runtime",
		Lines: []string{
			"dnf install -y " + opts.JavaPackage,
			"java -version",
		},
	}
}

// ServiceAccount creates the system user that owns and runs the server.
// The id check keeps a rerun from failing on an existing user.
func ServiceAccount(opts Options) Phase {
	return Phase{
		Name:    PhaseServiceAccount,
		Comment: fmt.Sprintf("Create %s user and directory", opts.ServiceUser),
		Lines: []string{
			fmt.Sprintf("id -u %s >/dev/null 2>&1 || useradd -r -m -U -d %s -s /bin/bash %s", opts.ServiceUser, opts.HomeDir, opts.ServiceUser),
			"mkdir -p " + opts.HomeDir,
			fmt.Sprintf("chown %s %s", opts.owner(), opts.HomeDir),
		},
	}
}

func FetchArtifact(opts Options) Phase {
	return Phase{
		Name:    PhaseFetchArtifact,
		Comment: "Download server " + opts.ArtifactName,
		Lines: []string{
			"cd " + opts.HomeDir,
			fmt.Sprintf("wget -O %s %s", opts.ArtifactName, opts.ArtifactURL),
			fmt.Sprintf("chown %s %s", opts.owner(), opts.homePath(opts.ArtifactName)),
		},
	}
}

// AcceptEULA writes the marker the server refuses to start without.
func AcceptEULA(opts Options) Phase {
	eula := opts.homePath("eula.txt")
	return Phase{
		Name:    PhaseAcceptEULA,
		Comment: "Accept EULA",
		Lines: []string{
			fmt.Sprintf("echo 'eula=true' > %s", eula),
			fmt.Sprintf("chown %s %s", opts.owner(), eula),
		},
	}
}

func ServerProperties(opts Options) Phase {
	path := opts.homePath("server.properties")
	p := opts.Properties

	lines := []string{fmt.Sprintf("cat > %s << 'EOF'", path)}
	lines = append(lines,
		"server-port="+strconv.Itoa(p.Port),
		"online-mode="+strconv.FormatBool(p.OnlineMode),
		"difficulty="+p.Difficulty,
		"gamemode="+p.GameMode,
		"max-players="+strconv.Itoa(p.MaxPlayers),
		"motd="+p.Motd,
		"EOF",
		fmt.Sprintf("chown %s %s", opts.owner(), path),
	)

	return Phase{
		Name:    PhaseServerProperties,
		Comment: "Create basic server.properties",
		Lines:   lines,
	}
}

// SystemdUnit registers the service with an always-restart policy.
func SystemdUnit(opts Options) Phase {
	return Phase{
		Name:    PhaseSystemdUnit,
		Comment: "Create systemd service file",
		Lines: []string{
			fmt.Sprintf("cat > /etc/systemd/system/%s << 'EOF'", opts.unit()),
			"[Unit]",
			"Description=Minecraft Server",
			"After=network.target",
			"",
			"[Service]",
			"Type=simple",
			"User=" + opts.ServiceUser,
			"Group=" + opts.ServiceUser,
			"WorkingDirectory=" + opts.HomeDir,
			fmt.Sprintf("ExecStart=/usr/bin/java -Xmx%s -Xms%s -jar %s nogui", opts.HeapSize, opts.HeapSize, opts.ArtifactName),
			"Restart=always",
			"RestartSec=" + strconv.Itoa(opts.RestartSec),
			"",
			"[Install]",
			"WantedBy=multi-user.target",
			"EOF",
		},
	}
}

func EnableService(opts Options) Phase {
	return Phase{
		Name:    PhaseEnableService,
		Comment: "Enable and start " + opts.unit(),
		Lines: []string{
			"systemctl daemon-reload",
			"systemctl enable " + opts.unit(),
			"systemctl start " + opts.unit(),
		},
	}
}
