package bootstrap

// Properties are the fixed values written to server.properties.
type Properties struct {
	Port       int
	OnlineMode bool
	Difficulty string
	GameMode   string
	MaxPlayers int
	Motd       string
}

// Options parameterize the script. Zero values are not filled in; start
// from DefaultOptions.
type Options struct {
	JavaPackage  string
	ServiceName  string
	ServiceUser  string
	HomeDir      string
	ArtifactURL  string
	ArtifactName string
	HeapSize     string
	// RestartSec is the systemd restart backoff in seconds.
	RestartSec int
	Properties Properties

	OperatorCommands bool
	BinDir           string
}

// DefaultOptions returns the stock single-server layout under /opt/minecraft.
func DefaultOptions() Options {
	return Options{
		JavaPackage:  "java-21-amazon-corretto-headless",
		ServiceName:  "minecraft",
		ServiceUser:  "minecraft",
		HomeDir:      "/opt/minecraft",
		ArtifactURL:  "https://piston-data.mojang.com/v1/objects/4707d00eb834b446575d89a61a11b5d548d8c001/server.jar",
		ArtifactName: "server.jar",
		HeapSize:     "1024M",
		RestartSec:   10,
		Properties: Properties{
			Port:       25565,
			OnlineMode: true,
			Difficulty: "easy",
			GameMode:   "survival",
			MaxPlayers: 20,
			Motd:       "Simple Minecraft Server",
		},
		BinDir: "/usr/local/bin",
	}
}

func (o Options) unit() string {
	return o.ServiceName + ".service"
}

func (o Options) owner() string {
	return o.ServiceUser + ":" + o.ServiceUser
}

func (o Options) homePath(name string) string {
	return o.HomeDir + "/" + name
}
