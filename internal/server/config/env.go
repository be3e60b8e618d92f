package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/herbalgarden/internal/timex"
	"github.com/joho/godotenv"
)

// envParsers replaces the stock duration parser so values such as
// JWT_EXPIRES=7d are understood.
var envParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
		return timex.ParseDuration(v)
	},
}

// mailAccount holds the mail credential names used by earlier deployments.
type mailAccount struct {
	User     string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`
}

// parseEnv loads the given .env files (missing files are skipped, variables
// already present in the process environment win) and then overlays every
// variable that is set onto config. EMAIL_USER and EMAIL_PASS fill in the SMTP
// account when SMTP_USER and SMTP_PASS are absent.
func parseEnv(config *Config, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := env.ParseWithOptions(config, env.Options{FuncMap: envParsers}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	var legacy mailAccount
	if err := env.Parse(&legacy); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if config.SMTPUser == "" {
		config.SMTPUser = legacy.User
	}
	if config.SMTPPassword == "" {
		config.SMTPPassword = legacy.Password
	}
	return nil
}
