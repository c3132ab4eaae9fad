package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points at a running gate (host:port). Leaving it
	// empty skips the whole suite.
	ServerAddr  string `envconfig:"E2E_SERVER_ADDR"`
	TokenSecret string `envconfig:"E2E_TOKEN_SECRET" default:"dev-secret"`
	// E2E_DEBUG_JSON allows dumping full frame bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
