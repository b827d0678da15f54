package config

import "time"

// Config holds runtime settings for the helpkeeper CLI.
//
// An empty SessionSecret means a random secret is generated for the process.
// S3 backups are used instead of BackupDir when S3Bucket is set.
type Config struct {
	DatabaseDSN string
	LogLevel    string
	LogFormat   string

	PasswordHashing string
	BodyTransform   string
	BodyKey         string

	SessionSecret string
	SessionTTL    time.Duration
	ResetTTL      time.Duration

	BackupDir      string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3Prefix       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "sqlite:helpkeeper.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.PasswordHashing = "argon2id"
	c.BodyTransform = "base64"
	c.SessionTTL = 8 * time.Hour
	c.ResetTTL = 24 * time.Hour
	c.BackupDir = "backups"
}

// S3Enabled reports whether backups go to a bucket.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig applies defaults, then the JSON file (if given), then flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
