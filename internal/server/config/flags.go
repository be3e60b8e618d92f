package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/flagx"
	"github.com/dmitrijs2005/herbalgarden/internal/timex"
)

var knownFlags = []string{"-a", "-d", "-s", "-t", "-o", "-l", "-n"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":3000")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   session token validity (e.g., "168h" or "7d")
//	-o duration   OTP validity (e.g., "10m")
//	-l string     log level
//	-n string     notifier kind: smtp, kafka or log
//
// args are filtered with flagx.FilterArgs first, so flags owned by other
// loaders (such as -c) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.Func("t", "session token validity", durationFlag(&config.TokenValidityDuration))
	fs.Func("o", "otp validity", durationFlag(&config.OTPValidityDuration))
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Notifier, "n", config.Notifier, "notifier kind")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}

func durationFlag(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
