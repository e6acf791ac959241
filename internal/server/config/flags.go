package config

import (
	"flag"
	"os"
	"time"

	"github.com/dpavlenko/newsboard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   HMAC secret key for session tokens
//	-l int      session lifetime, hours
//	-r int      remember-me session lifetime, hours
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in hours and then converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-l", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionLifetime := fs.Int("l", int(config.SessionLifetime.Hours()), "session lifetime (in hours)")
	rememberLifetime := fs.Int("r", int(config.RememberSessionLifetime.Hours()), "remember-me session lifetime (in hours)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionLifetime = time.Duration(*sessionLifetime) * time.Hour
	config.RememberSessionLifetime = time.Duration(*rememberLifetime) * time.Hour
}
