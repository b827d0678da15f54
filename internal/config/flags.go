package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/helpkeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns; other arguments are
// filtered out with flagx.FilterArgs. Panics on a malformed flag.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-f", "-b", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text, json or zap")
	fs.StringVar(&cfg.BackupDir, "b", cfg.BackupDir, "backup directory")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session signing secret")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
