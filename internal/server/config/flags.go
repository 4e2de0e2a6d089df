package config

import (
	"flag"
	"os"
	"time"

	"github.com/filehaven/filehaven/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-o string   website origin for emailed links
//	-m int      session max age, hours
//	-x int      serializable transaction retry cap (0 = unlimited)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-o", "-m", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.WebsiteOrigin, "o", config.WebsiteOrigin, "website origin")

	sessionMaxAge := fs.Int("m", int(config.SessionMaxAge.Hours()), "session max age (in hours)")
	fs.IntVar(&config.TxMaxAttempts, "x", config.TxMaxAttempts, "transaction retry cap (0 = unlimited)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionMaxAge = time.Duration(*sessionMaxAge) * time.Hour
}
