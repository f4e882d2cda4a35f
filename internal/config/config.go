// Package config holds the immutable configuration of cfmon.
package config

import (
	"time"

	"github.com/macrat/cfmon/internal/region"
)

const (
	DefaultStatusURL = "https://www.cloudflarestatus.com/api/v2/components.json"
	DefaultTimeout   = 30 * time.Second
)

// Names of environment variables.
const (
	EnvWebhookURL      = "INCIDENT_IO_WEBHOOK"
	EnvToken           = "INCIDENT_IO_SECRET"
	EnvSlackWebhookURL = "SLACK_WEBHOOK_URL"
	EnvStatusURL       = "CLOUDFLARE_STATUS_URL"
)

// Config is the configuration of a run.
type Config struct {
	// StatusURL is the URL of Cloudflare's components API.
	StatusURL string

	// WebhookURL is the incident.io HTTP alert source URL.
	WebhookURL string

	// Token is the bearer token for WebhookURL.
	Token string

	// SlackWebhookURL is the Slack incoming webhook for the summary.
	SlackWebhookURL string

	// Timeout is the timeout for each outbound request.
	Timeout time.Duration

	Regions region.Table
}

// FromEnv makes a Config from environment variables.
// Settings that no variable covers get the defaults.
func FromEnv(getenv func(string) string) Config {
	c := Config{
		StatusURL:       getenv(EnvStatusURL),
		WebhookURL:      getenv(EnvWebhookURL),
		Token:           getenv(EnvToken),
		SlackWebhookURL: getenv(EnvSlackWebhookURL),
		Timeout:         DefaultTimeout,
		Regions:         region.Africa,
	}
	if c.StatusURL == "" {
		c.StatusURL = DefaultStatusURL
	}
	return c
}
