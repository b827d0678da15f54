package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/helpkeeper/internal/flagx"
	"github.com/dmitrijs2005/helpkeeper/internal/timex"
)

// JsonConfig is the on-disk shape. Pointer fields tell an absent key from
// an empty one.
type JsonConfig struct {
	DatabaseDSN     *string `json:"database_dsn"`
	LogLevel        *string `json:"log_level"`
	LogFormat       *string `json:"log_format"`
	PasswordHashing *string `json:"password_hashing"`
	BodyTransform   *string `json:"body_transform"`
	BodyKey         *string `json:"body_key"`

	SessionSecret *string         `json:"session_secret"`
	SessionTTL    *timex.Duration `json:"session_ttl"`
	ResetTTL      *timex.Duration `json:"reset_ttl"`

	BackupDir      *string `json:"backup_dir"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3Prefix       *string `json:"s3_prefix"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// apply copies the keys present in jc onto cfg.
func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.PasswordHashing, jc.PasswordHashing)
	setString(&cfg.BodyTransform, jc.BodyTransform)
	setString(&cfg.BodyKey, jc.BodyKey)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setString(&cfg.BackupDir, jc.BackupDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setString(&cfg.S3Prefix, jc.S3Prefix)

	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.ResetTTL != nil {
		cfg.ResetTTL = jc.ResetTTL.Duration
	}
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}
