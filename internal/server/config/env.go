package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Variables may
// come from the process environment or from a .env file loaded by the
// caller (godotenv).
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.WebsiteOrigin, "WEBSITE_ORIGIN")
	setString(&config.SMTPAddr, "SMTP_ADDR")
	setString(&config.SMTPUsername, "SMTP_USERNAME")
	setString(&config.SMTPPassword, "SMTP_PASSWORD")
	setString(&config.MailFrom, "MAIL_FROM")
	setString(&config.CaptchaVerifyURL, "CAPTCHA_VERIFY_URL")
	setString(&config.CaptchaSecret, "CAPTCHA_SECRET")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v, ok := os.LookupEnv("SESSION_MAX_AGE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.SessionMaxAge = d
		}
	}
	if v, ok := os.LookupEnv("TX_MAX_ATTEMPTS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.TxMaxAttempts = n
		}
	}
}
