package config

import "time"

type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DatabasePath        string
	AttachmentsDir      string
	ItemTimeout         time.Duration
	AutoSync            bool
	LogLevel            string
}

// Flag names understood by parseFlags, for callers that need to separate
// them from positional arguments.
var (
	ValuedFlags = []string{"-a", "-i", "-f", "-d", "-t", "-l", "-c", "-config"}
	SwitchFlags = []string{"-s"}
)

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "fieldsync.db"
	c.AttachmentsDir = "attachments"
	c.ItemTimeout = 30 * time.Second
	c.AutoSync = true
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, then flags found in args
// (normally os.Args[1:]). Malformed input panics.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
