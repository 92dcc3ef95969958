package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/flagx"
	"github.com/dmitrijs2005/hrmis/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so they can be written as "15m" or as nanoseconds.
// Pointer fields distinguish "absent" from the zero value.
type JsonConfig struct {
	DatabaseDSN        *string         `json:"database_dsn"`
	SessionDBPath      *string         `json:"session_db_path"`
	JWTSecret          *string         `json:"jwt_secret"`
	AccessTokenTTL     *timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL    *timex.Duration `json:"refresh_token_ttl"`
	ActionTokenTTL     *timex.Duration `json:"action_token_ttl"`
	RefreshInterval    *timex.Duration `json:"refresh_interval"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	PublicBaseURL      *string         `json:"public_base_url"`
	SiteURL            *string         `json:"site_url"`
	AvatarMaxSide      *int            `json:"avatar_max_side"`
	LoginRatePerMinute *int            `json:"login_rate_per_minute"`
	SMTPHost           *string         `json:"smtp_host"`
	SMTPPort           *int            `json:"smtp_port"`
	SMTPUser           *string         `json:"smtp_user"`
	SMTPPassword       *string         `json:"smtp_password"`
	SMTPFrom           *string         `json:"smtp_from"`
	LogFormat          *string         `json:"log_format"`
	Debug              *bool           `json:"debug"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without the flag nothing happens. Panics on read or unmarshal
// errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.SessionDBPath, jc.SessionDBPath)
	set(&cfg.JWTSecret, jc.JWTSecret)
	setDuration(&cfg.AccessTokenTTL, jc.AccessTokenTTL)
	setDuration(&cfg.RefreshTokenTTL, jc.RefreshTokenTTL)
	setDuration(&cfg.ActionTokenTTL, jc.ActionTokenTTL)
	setDuration(&cfg.RefreshInterval, jc.RefreshInterval)
	set(&cfg.S3RootUser, jc.S3RootUser)
	set(&cfg.S3RootPassword, jc.S3RootPassword)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	set(&cfg.PublicBaseURL, jc.PublicBaseURL)
	set(&cfg.SiteURL, jc.SiteURL)
	set(&cfg.AvatarMaxSide, jc.AvatarMaxSide)
	set(&cfg.LoginRatePerMinute, jc.LoginRatePerMinute)
	set(&cfg.SMTPHost, jc.SMTPHost)
	set(&cfg.SMTPPort, jc.SMTPPort)
	set(&cfg.SMTPUser, jc.SMTPUser)
	set(&cfg.SMTPPassword, jc.SMTPPassword)
	set(&cfg.SMTPFrom, jc.SMTPFrom)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.Debug, jc.Debug)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
