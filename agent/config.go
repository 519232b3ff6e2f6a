package agent

import (
	"time"
)

// Config holds the exploration agent configuration.
type Config struct {
	// MaxIterations bounds the observe-act loop of one exploration.
	MaxIterations int

	// TimeLimit bounds one full generation run.
	TimeLimit time.Duration

	BedrockRegion    string
	BedrockModel     string
	BedrockAccessKey string
	BedrockSecretKey string
}

const (
	defaultMaxIterations = 30
	defaultTimeLimit     = 10 * time.Minute
)

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.TimeLimit <= 0 {
		c.TimeLimit = defaultTimeLimit
	}
	return c
}
