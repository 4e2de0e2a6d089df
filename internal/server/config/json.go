package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/filehaven/filehaven/internal/flagx"
	"github.com/filehaven/filehaven/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. It uses timex.Duration for interval fields, which
// allows parsing both string values such as "60s" and integer nanoseconds.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	WebsiteOrigin    string         `json:"website_origin"`
	SessionMaxAge    timex.Duration `json:"session_max_age"`
	TxMaxAttempts    int            `json:"tx_max_attempts"`
	SMTPAddr         string         `json:"smtp_addr"`
	SMTPUsername     string         `json:"smtp_username"`
	SMTPPassword     string         `json:"smtp_password"`
	MailFrom         string         `json:"mail_from"`
	CaptchaVerifyURL string         `json:"captcha_verify_url"`
	CaptchaSecret    string         `json:"captcha_secret"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.WebsiteOrigin = c.WebsiteOrigin
	config.SessionMaxAge = time.Duration(c.SessionMaxAge.Duration)
	config.TxMaxAttempts = c.TxMaxAttempts
	config.SMTPAddr = c.SMTPAddr
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.MailFrom = c.MailFrom
	config.CaptchaVerifyURL = c.CaptchaVerifyURL
	config.CaptchaSecret = c.CaptchaSecret
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
