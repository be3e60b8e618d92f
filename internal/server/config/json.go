package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/herbalgarden/internal/flagx"
	"github.com/dmitrijs2005/herbalgarden/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "10m" style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	DatabaseSSLCA         string         `json:"database_ssl_ca"`
	DatabaseMaxConns      int            `json:"database_max_conns"`
	DatabaseQueryTimeout  timex.Duration `json:"database_query_timeout"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	OTPValidityDuration   timex.Duration `json:"otp_validity_duration"`
	ResetRequiresOTP      bool           `json:"reset_requires_otp"`
	BcryptCost            int            `json:"bcrypt_cost"`
	CookieSecure          bool           `json:"cookie_secure"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	TLSCertFile           string         `json:"tls_cert_file"`
	TLSKeyFile            string         `json:"tls_key_file"`
	LogLevel              string         `json:"log_level"`
	Notifier              string         `json:"notifier"`
	SMTPHost              string         `json:"smtp_host"`
	SMTPPort              int            `json:"smtp_port"`
	SMTPUser              string         `json:"smtp_user"`
	SMTPPassword          string         `json:"smtp_password"`
	MailFrom              string         `json:"mail_from"`
	KafkaBroker           string         `json:"kafka_broker"`
	KafkaTopic            string         `json:"kafka_topic"`
	KafkaUsername         string         `json:"kafka_username"`
	KafkaPassword         string         `json:"kafka_password"`
	MediaHost             string         `json:"media_host"`
}

// parseJson overlays the JSON file named by -c/-config (or CONFIG) onto
// config. Keys missing from the file keep their current value.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:      c.EndpointAddrHTTP,
		DatabaseDSN:           c.DatabaseDSN,
		DatabaseSSLCA:         c.DatabaseSSLCA,
		DatabaseMaxConns:      c.DatabaseMaxConns,
		DatabaseQueryTimeout:  timex.Duration{Duration: c.DatabaseQueryTimeout},
		SecretKey:             c.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: c.TokenValidityDuration},
		OTPValidityDuration:   timex.Duration{Duration: c.OTPValidityDuration},
		ResetRequiresOTP:      c.ResetRequiresOTP,
		BcryptCost:            c.BcryptCost,
		CookieSecure:          c.CookieSecure,
		CORSAllowedOrigins:    c.CORSAllowedOrigins,
		TLSCertFile:           c.TLSCertFile,
		TLSKeyFile:            c.TLSKeyFile,
		LogLevel:              c.LogLevel,
		Notifier:              c.Notifier,
		SMTPHost:              c.SMTPHost,
		SMTPPort:              c.SMTPPort,
		SMTPUser:              c.SMTPUser,
		SMTPPassword:          c.SMTPPassword,
		MailFrom:              c.MailFrom,
		KafkaBroker:           c.KafkaBroker,
		KafkaTopic:            c.KafkaTopic,
		KafkaUsername:         c.KafkaUsername,
		KafkaPassword:         c.KafkaPassword,
		MediaHost:             c.MediaHost,
	}
}

func fromJson(c *Config, j *JsonConfig) {
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.DatabaseDSN = j.DatabaseDSN
	c.DatabaseSSLCA = j.DatabaseSSLCA
	c.DatabaseMaxConns = j.DatabaseMaxConns
	c.DatabaseQueryTimeout = j.DatabaseQueryTimeout.Duration
	c.SecretKey = j.SecretKey
	c.TokenValidityDuration = j.TokenValidityDuration.Duration
	c.OTPValidityDuration = j.OTPValidityDuration.Duration
	c.ResetRequiresOTP = j.ResetRequiresOTP
	c.BcryptCost = j.BcryptCost
	c.CookieSecure = j.CookieSecure
	c.CORSAllowedOrigins = j.CORSAllowedOrigins
	c.TLSCertFile = j.TLSCertFile
	c.TLSKeyFile = j.TLSKeyFile
	c.LogLevel = j.LogLevel
	c.Notifier = j.Notifier
	c.SMTPHost = j.SMTPHost
	c.SMTPPort = j.SMTPPort
	c.SMTPUser = j.SMTPUser
	c.SMTPPassword = j.SMTPPassword
	c.MailFrom = j.MailFrom
	c.KafkaBroker = j.KafkaBroker
	c.KafkaTopic = j.KafkaTopic
	c.KafkaUsername = j.KafkaUsername
	c.KafkaPassword = j.KafkaPassword
	c.MediaHost = j.MediaHost
}
