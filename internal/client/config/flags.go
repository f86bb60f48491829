package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/flagx"
)

// parseFlags overlays cfg with the flags it knows about; other arguments are
// filtered out first so subcommands and their flags do not interfere.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-f", "-d", "-t", "-l"}, SwitchFlags...)

	fs := flag.NewFlagSet("fieldsync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.AttachmentsDir, "d", cfg.AttachmentsDir, "attachment snapshot directory")
	itemTimeout := fs.Int("t", int(cfg.ItemTimeout.Seconds()), "per-item sync timeout (in seconds)")
	fs.BoolVar(&cfg.AutoSync, "s", cfg.AutoSync, "sync when the server becomes reachable")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.ItemTimeout = time.Duration(*itemTimeout) * time.Second
}
